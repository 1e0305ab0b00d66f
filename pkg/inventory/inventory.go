// Package inventory computes bucket sizes from CloudWatch storage metrics and
// rolls them up per region.
package inventory

import (
	"context"
	"sync/atomic"

	"github.com/thannaske/s3inventory/pkg/format"
	"github.com/thannaske/s3inventory/pkg/logger"
	"github.com/thannaske/s3inventory/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Inventory resolves the size of every bucket in an account.
type Inventory struct {
	lister      BucketLister
	resolver    *RegionResolver
	sizer       *BucketSizer
	concurrency int
}

// New creates an Inventory. A concurrency below 2 processes buckets one at a
// time.
func New(lister BucketLister, resolver *RegionResolver, sizer *BucketSizer, concurrency int) *Inventory {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Inventory{
		lister:      lister,
		resolver:    resolver,
		sizer:       sizer,
		concurrency: concurrency,
	}
}

// Run lists all buckets and returns one record per bucket in listing order.
// Only listing failures and cancellation are returned as errors; a bucket
// whose region or size cannot be determined still yields a record.
func (inv *Inventory) Run(ctx context.Context) ([]models.BucketRecord, error) {
	buckets, err := inv.lister.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("buckets", len(buckets)).Msg("Found buckets")
	if len(buckets) == 0 {
		return nil, nil
	}

	records := make([]models.BucketRecord, len(buckets))
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inv.concurrency)
	for i, b := range buckets {
		if gctx.Err() != nil {
			break
		}
		i, b := i, b
		g.Go(func() error {
			records[i] = inv.resolve(gctx, b)
			logger.Info().
				Int64("n", done.Add(1)).
				Int("total", len(buckets)).
				Str("bucket", b.Name).
				Str("region", records[i].Region).
				Str("size", format.Size(records[i].SizeBytes)).
				Msg("Processed bucket")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// resolve builds the record for a single bucket.
func (inv *Inventory) resolve(ctx context.Context, b models.Bucket) models.BucketRecord {
	region := inv.resolver.Resolve(ctx, b.Name)
	return models.BucketRecord{
		Name:      b.Name,
		Region:    region,
		SizeBytes: inv.sizer.Size(ctx, b.Name, region),
		CreatedAt: b.CreatedAt,
	}
}
