package main

import (
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"
	"github.com/thannaske/s3inventory/pkg/db"
	"github.com/thannaske/s3inventory/pkg/inventory"
	"github.com/thannaske/s3inventory/pkg/logger"
	"github.com/thannaske/s3inventory/pkg/metrics"
	"github.com/thannaske/s3inventory/pkg/models"
	"github.com/thannaske/s3inventory/pkg/report"
	"golang.org/x/time/rate"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report the size of every bucket",
	Long: `Resolve the home region of every bucket, read its size from CloudWatch for
each storage class and print per-bucket, per-region and total sizes.

With --save the run is stored in the database so that history and monthly
averages are available through the list and history commands.`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	probes, err := inventory.NewProbeSet(config.StorageClasses.Version, config.StorageClasses.Classes)
	if err != nil {
		return fmt.Errorf("invalid storage class list: %w", err)
	}

	awsCfg, err := inventory.LoadAWSConfig(ctx, config)
	if err != nil {
		return err
	}

	stsClient := sts.NewFromConfig(awsCfg, func(o *sts.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	account, err := inventory.CheckCredentials(ctx, stsClient)
	if err != nil {
		return err
	}
	logger.Info().Str("account", account.ID).Str("arn", account.ARN).Msg("Using AWS account")

	var (
		recorder *metrics.Recorder
		observer inventory.Observer
	)
	if config.MetricsFile != "" {
		recorder = metrics.NewRecorder()
		observer = recorder
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), max(1, int(config.RateLimit)))
	}

	s3Client := inventory.NewS3Client(awsCfg, config.Endpoint)
	clients := inventory.NewClientCache(inventory.NewMetricsClientFactory(awsCfg, config.Endpoint))
	sizer := inventory.NewBucketSizer(clients, probes, inventory.SizerOptions{
		Lookback:       config.Lookback,
		Period:         config.Period,
		RequestTimeout: config.RequestTimeout,
		Limiter:        limiter,
		Observer:       observer,
	})
	inv := inventory.New(
		inventory.NewS3Lister(s3Client),
		inventory.NewRegionResolver(s3Client, config.DefaultRegion),
		sizer,
		config.Concurrency,
	)

	logger.Info().
		Str("storage_classes", probes.Version()).
		Int("classes", probes.Len()).
		Dur("lookback", config.Lookback).
		Int("concurrency", config.Concurrency).
		Msg("Collecting bucket sizes from CloudWatch, data may lag up to 24 hours")

	started := time.Now()
	records, err := inv.Run(ctx)
	if err != nil {
		return err
	}
	finished := time.Now()

	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No buckets found.")
		return nil
	}

	rollup := inventory.Aggregate(records)
	if err := rollup.Check(); err != nil {
		logger.Warn().Err(err).Msg("Rollup totals do not add up")
	}

	if config.Save {
		if err := saveRun(records, finished); err != nil {
			logger.Error().Err(err).Str("db", config.DBPath).Msg("Could not store run")
		}
	}

	if recorder != nil {
		recorder.Observe(rollup, finished.Sub(started), finished)
		if err := recorder.WriteTextfile(config.MetricsFile); err != nil {
			logger.Error().Err(err).Str("file", config.MetricsFile).Msg("Could not write metrics file")
		}
	}

	return report.Write(cmd.OutOrStdout(), config.Output, report.Report{
		Account:         account,
		GeneratedAt:     finished,
		ProbeSetVersion: probes.Version(),
		Rollup:          rollup,
	})
}

// saveRun stores the records and, on the last day of a month, refreshes the
// monthly averages.
func saveRun(records []models.BucketRecord, ts time.Time) error {
	database, err := db.NewDB(config.DBPath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.InitDB(); err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}

	if err := database.StoreBucketRecords(records, ts); err != nil {
		return err
	}
	logger.Info().Int("buckets", len(records)).Str("db", config.DBPath).Msg("Stored bucket sizes")

	if ts.Day() == getDaysInMonth(ts.Year(), int(ts.Month())) {
		if err := database.CalculateMonthlyAverages(ts.Year(), int(ts.Month())); err != nil {
			return fmt.Errorf("calculate monthly averages: %w", err)
		}
		logger.Info().Msg("Monthly averages calculated")
	}
	return nil
}

// getDaysInMonth returns the number of days in a month
func getDaysInMonth(year, month int) int {
	t := time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
	return t.Day()
}

func init() {
	rootCmd.AddCommand(reportCmd)

	f := reportCmd.Flags()
	f.Int("concurrency", 1, "number of buckets processed in parallel")
	f.Float64("rate-limit", 0, "maximum CloudWatch requests per second (0 = unlimited)")
	f.Duration("lookback", inventory.DefaultLookback, "how far back to look for the latest datapoint")
	f.Duration("period", inventory.DefaultPeriod, "metric aggregation period")
	f.Duration("request-timeout", inventory.DefaultRequestTimeout, "timeout of a single CloudWatch request")
	f.Int("max-attempts", 3, "maximum attempts per AWS request, including retries")
	f.Bool("save", false, "store the run in the database")
	f.String("metrics-file", "", "write Prometheus metrics to this textfile")
	f.StringP("output", "o", "text", "output format (text, json)")

	bindFlags(f, map[string]string{
		"concurrency":     "concurrency",
		"rate_limit":      "rate-limit",
		"lookback":        "lookback",
		"period":          "period",
		"request_timeout": "request-timeout",
		"max_attempts":    "max-attempts",
		"save":            "save",
		"metrics_file":    "metrics-file",
		"output":          "output",
	})
}
