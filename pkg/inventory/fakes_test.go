package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/thannaske/s3inventory/pkg/models"
)

// fakeLocations answers GetBucketLocation from a map. Buckets listed in errs
// fail with the given error.
type fakeLocations struct {
	regions map[string]string
	errs    map[string]error
}

func (f *fakeLocations) GetBucketLocation(_ context.Context, in *s3.GetBucketLocationInput, _ ...func(*s3.Options)) (*s3.GetBucketLocationOutput, error) {
	bucket := aws.ToString(in.Bucket)
	if err, ok := f.errs[bucket]; ok {
		return nil, err
	}
	return &s3.GetBucketLocationOutput{
		LocationConstraint: s3types.BucketLocationConstraint(f.regions[bucket]),
	}, nil
}

// fakeMetrics serves datapoints keyed by bucket and storage type.
type fakeMetrics struct {
	region string
	points map[string]map[string][]types.Datapoint
	errs   map[string]error

	mu    sync.Mutex
	calls int
}

func (f *fakeMetrics) GetMetricStatistics(_ context.Context, in *cloudwatch.GetMetricStatisticsInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	bucket, class := dimensionValues(in.Dimensions)
	if err, ok := f.errs[class]; ok {
		return nil, err
	}
	return &cloudwatch.GetMetricStatisticsOutput{
		Datapoints: f.points[bucket][class],
	}, nil
}

func (f *fakeMetrics) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func dimensionValues(dims []types.Dimension) (bucket, class string) {
	for _, d := range dims {
		switch aws.ToString(d.Name) {
		case "BucketName":
			bucket = aws.ToString(d.Value)
		case "StorageType":
			class = aws.ToString(d.Value)
		}
	}
	return bucket, class
}

func point(ts time.Time, avg float64) types.Datapoint {
	return types.Datapoint{Timestamp: aws.Time(ts), Average: aws.Float64(avg)}
}

// staticFactory returns the metrics client registered for a region.
func staticFactory(clients map[string]MetricsAPI) ClientFactory {
	return func(_ context.Context, region string) (MetricsAPI, error) {
		c, ok := clients[region]
		if !ok {
			return nil, errors.New("no client for " + region)
		}
		return c, nil
	}
}

type fakeLister struct {
	buckets []models.Bucket
	err     error
}

func (f *fakeLister) ListBuckets(context.Context) ([]models.Bucket, error) {
	return f.buckets, f.err
}

type countingObserver struct {
	mu       sync.Mutex
	failures map[string]int
}

func (o *countingObserver) QueryFailed(region, class string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failures == nil {
		o.failures = make(map[string]int)
	}
	o.failures[region+"/"+class]++
}
