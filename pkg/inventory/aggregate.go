package inventory

import (
	"fmt"
	"math"
	"sort"

	"github.com/thannaske/s3inventory/pkg/models"
)

// Rollup is the result of aggregating the bucket records of one run.
type Rollup struct {
	// Buckets is ordered by size, largest first. Equal sizes keep input order.
	Buckets []models.BucketRecord `json:"buckets"`
	// Regions is ordered by region name.
	Regions    []models.RegionRollup `json:"regions"`
	TotalBytes float64               `json:"total_bytes"`
}

// Aggregate sorts records by size and rolls them up per region. records is
// not modified.
func Aggregate(records []models.BucketRecord) Rollup {
	sorted := make([]models.BucketRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SizeBytes > sorted[j].SizeBytes
	})

	byRegion := make(map[string]*models.RegionRollup)
	var total float64
	for _, r := range records {
		rr, ok := byRegion[r.Region]
		if !ok {
			rr = &models.RegionRollup{Region: r.Region}
			byRegion[r.Region] = rr
		}
		rr.BucketCount++
		rr.TotalSizeBytes += r.SizeBytes
		total += r.SizeBytes
	}

	regions := make([]models.RegionRollup, 0, len(byRegion))
	for _, rr := range byRegion {
		regions = append(regions, *rr)
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Region < regions[j].Region
	})

	return Rollup{
		Buckets:    sorted,
		Regions:    regions,
		TotalBytes: total,
	}
}

// BucketCount returns the number of buckets in the rollup.
func (r Rollup) BucketCount() int {
	return len(r.Buckets)
}

// Check verifies that the region totals add up to the grand total.
func (r Rollup) Check() error {
	var sum float64
	var count int
	for _, rr := range r.Regions {
		sum += rr.TotalSizeBytes
		count += rr.BucketCount
	}
	if count != len(r.Buckets) {
		return fmt.Errorf("region rollups cover %d buckets, want %d", count, len(r.Buckets))
	}
	// Summation order differs between the two totals.
	if math.Abs(sum-r.TotalBytes) > 1e-6*math.Max(1, r.TotalBytes) {
		return fmt.Errorf("region totals sum to %.0f bytes, grand total is %.0f", sum, r.TotalBytes)
	}
	return nil
}
