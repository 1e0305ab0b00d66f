package main

import (
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/thannaske/s3inventory/pkg/db"
	"github.com/thannaske/s3inventory/pkg/format"
)

var (
	year  int
	month int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List monthly bucket sizes",
	Long:  `Display monthly average sizes for all buckets stored with report --save.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no year/month specified, use previous month
		now := time.Now()
		if year == 0 && month == 0 {
			if now.Month() == 1 {
				year = now.Year() - 1
				month = 12
			} else {
				year = now.Year()
				month = int(now.Month()) - 1
			}
		}
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}

		if month < 1 || month > 12 {
			return fmt.Errorf("month must be between 1 and 12, got %d", month)
		}

		database, err := db.NewDB(config.DBPath)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.InitDB(); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}

		averages, err := database.GetAllMonthlyAverages(year, month)
		if err != nil {
			return fmt.Errorf("retrieve monthly averages: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(averages) == 0 {
			fmt.Fprintf(out, "No data available for %d-%02d\n", year, month)
			return nil
		}

		// Sort by size (largest first)
		sort.SliceStable(averages, func(i, j int) bool {
			return averages[i].AvgSizeBytes > averages[j].AvgSizeBytes
		})

		fmt.Fprintf(out, "Monthly Average Size for %d-%02d\n\n", year, month)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "Bucket\tRegion\tSize\tSamples")
		fmt.Fprintln(w, "------\t------\t----\t-------")

		for _, avg := range averages {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
				avg.BucketName,
				avg.Region,
				format.Size(avg.AvgSizeBytes),
				avg.DataPoints,
			)
		}
		return w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [bucket-name]",
	Short: "Show size history for a bucket",
	Long:  `Display the stored sizes of a specific bucket over the last year.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bucketName := args[0]

		database, err := db.NewDB(config.DBPath)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer database.Close()

		if err := database.InitDB(); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}

		now := time.Now().UTC()
		startTime := time.Date(now.Year()-1, now.Month(), 1, 0, 0, 0, 0, time.UTC)
		endTime := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, time.UTC)

		samples, err := database.GetBucketHistory(bucketName, startTime, endTime)
		if err != nil {
			return fmt.Errorf("retrieve size history: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(samples) == 0 {
			fmt.Fprintf(out, "No size data available for bucket %s\n", bucketName)
			return nil
		}

		fmt.Fprintf(out, "Size History for Bucket: %s\n\n", bucketName)
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.TabIndent)
		fmt.Fprintln(w, "Date\tRegion\tSize")
		fmt.Fprintln(w, "----\t------\t----")

		for _, s := range samples {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				s.Timestamp.Format("2006-01-02 15:04:05"),
				s.Region,
				format.Size(s.SizeBytes),
			)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(historyCmd)

	listCmd.Flags().IntVar(&year, "year", 0, "Year to query (default: year of the previous month)")
	listCmd.Flags().IntVar(&month, "month", 0, "Month to query (1-12, default: previous month)")
}
