package inventory

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/thannaske/s3inventory/pkg/logger"
)

// DefaultRegion is where S3 places buckets created without a location constraint.
const DefaultRegion = "us-east-1"

// LocationAPI is the part of the S3 client used to look up bucket regions.
type LocationAPI interface {
	GetBucketLocation(ctx context.Context, params *s3.GetBucketLocationInput, optFns ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error)
}

// RegionResolver maps bucket names to their home region.
type RegionResolver struct {
	api           LocationAPI
	defaultRegion string
}

// NewRegionResolver creates a resolver. An empty defaultRegion means us-east-1.
func NewRegionResolver(api LocationAPI, defaultRegion string) *RegionResolver {
	if defaultRegion == "" {
		defaultRegion = DefaultRegion
	}
	return &RegionResolver{api: api, defaultRegion: defaultRegion}
}

// Resolve returns the region of bucket. Lookup failures are logged and fall back
// to the default region; Resolve never fails.
func (r *RegionResolver) Resolve(ctx context.Context, bucket string) string {
	out, err := r.api.GetBucketLocation(ctx, &s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		logger.Warn().Err(err).
			Str("bucket", bucket).
			Str("fallback", r.defaultRegion).
			Msg("Could not determine bucket region")
		return r.defaultRegion
	}
	return r.normalize(string(out.LocationConstraint))
}

// normalize translates location constraints into region names. An empty
// constraint is the provider's primary region, "EU" is the legacy name of
// eu-west-1.
func (r *RegionResolver) normalize(constraint string) string {
	switch constraint {
	case "":
		return r.defaultRegion
	case "EU":
		return "eu-west-1"
	default:
		return constraint
	}
}
