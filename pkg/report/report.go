// Package report renders the result of an inventory run.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/thannaske/s3inventory/pkg/format"
	"github.com/thannaske/s3inventory/pkg/inventory"
)

const timeLayout = "2006-01-02 15:04:05"

// Report is everything shown to the user after a run.
type Report struct {
	Account         inventory.Account `json:"account"`
	GeneratedAt     time.Time         `json:"generated_at"`
	ProbeSetVersion string            `json:"storage_classes_version"`
	Rollup          inventory.Rollup  `json:"rollup"`
}

// Write renders r in the given output format ("text" or "json").
func Write(w io.Writer, output string, r Report) error {
	switch output {
	case "json":
		return WriteJSON(w, r)
	case "text", "":
		return WriteText(w, r)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the bucket table, the region table and the summary.
func WriteText(w io.Writer, r Report) error {
	rollup := r.Rollup

	if r.Account.ID != "" {
		fmt.Fprintf(w, "Bucket Sizes for Account %s (%s)\n\n", r.Account.ID, r.GeneratedAt.UTC().Format(timeLayout))
	} else {
		fmt.Fprintf(w, "Bucket Sizes (%s)\n\n", r.GeneratedAt.UTC().Format(timeLayout))
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintln(tw, "Bucket\tRegion\tSize\tCreated")
	fmt.Fprintln(tw, "------\t------\t----\t-------")
	for _, b := range rollup.Buckets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			b.Name,
			b.Region,
			format.Size(b.SizeBytes),
			b.CreatedAt.UTC().Format(timeLayout),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 3, ' ', tabwriter.TabIndent)
	fmt.Fprintln(tw, "Region\tBuckets\tTotal Size")
	fmt.Fprintln(tw, "------\t-------\t----------")
	for _, rr := range rollup.Regions {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", rr.Region, rr.BucketCount, format.Size(rr.TotalSizeBytes))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total buckets:      %d\n", rollup.BucketCount())
	fmt.Fprintf(w, "Regions:            %d\n", len(rollup.Regions))
	fmt.Fprintf(w, "Total size:         %s\n", format.Size(rollup.TotalBytes))
	_, err := fmt.Fprintf(w, "Total size (bytes): %s\n", humanize.Comma(int64(math.Round(rollup.TotalBytes))))
	return err
}
