package inventory

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/thannaske/s3inventory/pkg/logger"
	"github.com/thannaske/s3inventory/pkg/models"
	"golang.org/x/time/rate"
)

const (
	metricNamespace = "AWS/S3"
	metricName      = "BucketSizeBytes"

	// DefaultLookback covers the documented publication lag of up to 24h with
	// room for late datapoints.
	DefaultLookback       = 72 * time.Hour
	DefaultPeriod         = 24 * time.Hour
	DefaultRequestTimeout = 30 * time.Second
)

// Observer is notified about metric queries that failed.
type Observer interface {
	QueryFailed(region, storageClass string)
}

type nopObserver struct{}

func (nopObserver) QueryFailed(string, string) {}

// SizerOptions tune the metric queries issued by a BucketSizer.
type SizerOptions struct {
	Lookback       time.Duration
	Period         time.Duration
	RequestTimeout time.Duration

	// Limiter, if set, is waited on before every query.
	Limiter  *rate.Limiter
	Observer Observer
	Now      func() time.Time
}

// BucketSizer computes bucket sizes from the daily BucketSizeBytes metric.
type BucketSizer struct {
	clients *ClientCache
	probes  ProbeSet
	opts    SizerOptions
}

// NewBucketSizer creates a sizer. Zero options take the package defaults.
func NewBucketSizer(clients *ClientCache, probes ProbeSet, opts SizerOptions) *BucketSizer {
	if opts.Lookback <= 0 {
		opts.Lookback = DefaultLookback
	}
	if opts.Period <= 0 {
		opts.Period = DefaultPeriod
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BucketSizer{clients: clients, probes: probes, opts: opts}
}

// Size returns the total size in bytes of bucket summed over all storage
// types. Storage types without data count as zero. If no metrics client can
// be obtained for region the failure is logged and the size is 0.
func (s *BucketSizer) Size(ctx context.Context, bucket, region string) float64 {
	client, err := s.clients.Get(ctx, region)
	if err != nil {
		logger.Warn().Err(err).
			Str("bucket", bucket).
			Str("region", region).
			Msg("Could not get bucket size from CloudWatch")
		return 0
	}

	end := s.opts.Now()
	start := end.Add(-s.opts.Lookback)

	var total float64
	for _, class := range s.probes.classes {
		dp, ok, err := s.latest(ctx, client, bucket, class, start, end)
		if err != nil {
			s.opts.Observer.QueryFailed(region, class)
			logger.Debug().Err(err).
				Str("bucket", bucket).
				Str("storage_class", class).
				Msg("Metric query failed, counting as zero")
			continue
		}
		if !ok {
			continue
		}
		if dp.Average > 0 {
			total += dp.Average
		}
	}
	return total
}

// latest queries one storage type and returns its most recent datapoint.
func (s *BucketSizer) latest(ctx context.Context, client MetricsAPI, bucket, class string, start, end time.Time) (models.Datapoint, bool, error) {
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return models.Datapoint{}, false, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.opts.RequestTimeout)
	defer cancel()

	out, err := client.GetMetricStatistics(reqCtx, &cloudwatch.GetMetricStatisticsInput{
		Namespace:  aws.String(metricNamespace),
		MetricName: aws.String(metricName),
		Dimensions: []types.Dimension{
			{Name: aws.String("BucketName"), Value: aws.String(bucket)},
			{Name: aws.String("StorageType"), Value: aws.String(class)},
		},
		StartTime:  aws.Time(start),
		EndTime:    aws.Time(end),
		Period:     aws.Int32(int32(s.opts.Period / time.Second)),
		Statistics: []types.Statistic{types.StatisticAverage},
	})
	if err != nil {
		return models.Datapoint{}, false, err
	}

	dp, ok := latestDatapoint(out.Datapoints)
	return dp, ok, nil
}

// latestDatapoint picks the datapoint with the newest timestamp. Datapoints
// without a timestamp or average are ignored.
func latestDatapoint(points []types.Datapoint) (models.Datapoint, bool) {
	var (
		best  models.Datapoint
		found bool
	)
	for _, p := range points {
		if p.Timestamp == nil || p.Average == nil {
			continue
		}
		if !found || p.Timestamp.After(best.Timestamp) {
			best = models.Datapoint{Timestamp: *p.Timestamp, Average: *p.Average}
			found = true
		}
	}
	return best, found
}
