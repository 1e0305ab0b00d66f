package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thannaske/s3inventory/pkg/models"
)

// BucketLister returns every bucket visible to the account.
type BucketLister interface {
	ListBuckets(ctx context.Context) ([]models.Bucket, error)
}

// S3Lister lists buckets through the S3 ListBuckets API.
type S3Lister struct {
	api s3.ListBucketsAPIClient
}

// NewS3Lister creates a lister on top of an S3 client.
func NewS3Lister(api s3.ListBucketsAPIClient) *S3Lister {
	return &S3Lister{api: api}
}

// ListBuckets pages through all buckets in listing order.
func (l *S3Lister) ListBuckets(ctx context.Context) ([]models.Bucket, error) {
	p := s3.NewListBucketsPaginator(l.api, &s3.ListBucketsInput{
		MaxBuckets: aws.Int32(1000),
	})

	var buckets []models.Bucket
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, classify("list buckets", err)
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, models.Bucket{
				Name:      aws.ToString(b.Name),
				CreatedAt: aws.ToTime(b.CreationDate),
			})
		}
	}
	return buckets, nil
}
