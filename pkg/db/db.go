package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/thannaske/s3inventory/pkg/models"
)

// DB represents the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
func NewDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{db}, nil
}

// InitDB initializes the database tables
func (db *DB) InitDB() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS bucket_sizes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket_name TEXT NOT NULL,
			region TEXT NOT NULL,
			size_bytes REAL NOT NULL,
			created_at DATETIME NOT NULL,
			timestamp DATETIME NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS monthly_averages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bucket_name TEXT NOT NULL,
			region TEXT NOT NULL,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			avg_size_bytes REAL NOT NULL,
			data_points INTEGER NOT NULL,
			UNIQUE(bucket_name, year, month)
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bucket_sizes_name_time
		ON bucket_sizes(bucket_name, timestamp)
	`)
	return err
}

// StoreBucketRecords stores the records of one inventory run taken at ts.
// Either all records are stored or none.
func (db *DB) StoreBucketRecords(records []models.BucketRecord, ts time.Time) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO bucket_sizes (bucket_name, region, size_bytes, created_at, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	ts = ts.UTC()
	for _, r := range records {
		if _, err := stmt.Exec(r.Name, r.Region, r.SizeBytes, r.CreatedAt.UTC(), ts); err != nil {
			return fmt.Errorf("failed to store bucket %s: %w", r.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBucketHistory retrieves the stored sizes of a bucket between startTime and endTime
func (db *DB) GetBucketHistory(bucketName string, startTime, endTime time.Time) ([]models.BucketSizeSample, error) {
	rows, err := db.Query(`
		SELECT id, bucket_name, region, size_bytes, created_at, timestamp
		FROM bucket_sizes
		WHERE bucket_name = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp
	`, bucketName, startTime.UTC(), endTime.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.BucketSizeSample
	for rows.Next() {
		var s models.BucketSizeSample
		if err := rows.Scan(&s.ID, &s.BucketName, &s.Region, &s.SizeBytes, &s.CreatedAt, &s.Timestamp); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// CalculateMonthlyAverages calculates the monthly averages for all buckets
func (db *DB) CalculateMonthlyAverages(year, month int) error {
	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	endDate := startDate.AddDate(0, 1, 0).Add(-time.Second)

	// The most recent region wins if a bucket was recreated elsewhere.
	_, err := db.Exec(`
		INSERT INTO monthly_averages
		(bucket_name, region, year, month, avg_size_bytes, data_points)
		SELECT s.bucket_name,
			(SELECT l.region FROM bucket_sizes l
			 WHERE l.bucket_name = s.bucket_name AND l.timestamp BETWEEN ? AND ?
			 ORDER BY l.timestamp DESC LIMIT 1),
			?, ?, AVG(s.size_bytes), COUNT(*)
		FROM bucket_sizes s
		WHERE s.timestamp BETWEEN ? AND ?
		GROUP BY s.bucket_name
		ON CONFLICT(bucket_name, year, month)
		DO UPDATE SET
			region = excluded.region,
			avg_size_bytes = excluded.avg_size_bytes,
			data_points = excluded.data_points
	`, startDate, endDate, year, month, startDate, endDate)
	return err
}

// GetMonthlyAverage gets the monthly average for a specific bucket
func (db *DB) GetMonthlyAverage(bucketName string, year, month int) (*models.MonthlyBucketAverage, error) {
	var avg models.MonthlyBucketAverage
	err := db.QueryRow(`
		SELECT bucket_name, region, year, month, avg_size_bytes, data_points
		FROM monthly_averages
		WHERE bucket_name = ? AND year = ? AND month = ?
	`, bucketName, year, month).Scan(
		&avg.BucketName, &avg.Region, &avg.Year, &avg.Month,
		&avg.AvgSizeBytes, &avg.DataPoints,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no data available for bucket %s in %d-%02d", bucketName, year, month)
	}
	if err != nil {
		return nil, err
	}
	return &avg, nil
}

// GetAllMonthlyAverages gets all monthly averages for a specific month
func (db *DB) GetAllMonthlyAverages(year, month int) ([]models.MonthlyBucketAverage, error) {
	rows, err := db.Query(`
		SELECT bucket_name, region, year, month, avg_size_bytes, data_points
		FROM monthly_averages
		WHERE year = ? AND month = ?
		ORDER BY bucket_name
	`, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var averages []models.MonthlyBucketAverage
	for rows.Next() {
		var avg models.MonthlyBucketAverage
		if err := rows.Scan(
			&avg.BucketName, &avg.Region, &avg.Year, &avg.Month,
			&avg.AvgSizeBytes, &avg.DataPoints,
		); err != nil {
			return nil, err
		}
		averages = append(averages, avg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return averages, nil
}

// PruneOldData removes stored size samples from months that have already been
// aggregated into monthly averages. Samples of the current month and of months
// without averages are kept.
func (db *DB) PruneOldData() (int64, error) {
	return db.pruneBefore(time.Now())
}

func (db *DB) pruneBefore(now time.Time) (int64, error) {
	now = now.UTC()
	currentMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(`
		SELECT DISTINCT year, month
		FROM monthly_averages
		ORDER BY year, month
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to query monthly averages: %w", err)
	}

	var completedMonths []time.Time
	for rows.Next() {
		var year, month int
		if err := rows.Scan(&year, &month); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan monthly average row: %w", err)
		}

		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		if monthStart.Before(currentMonthStart) {
			completedMonths = append(completedMonths, monthStart)
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return 0, fmt.Errorf("error iterating monthly average rows: %w", err)
	}

	if len(completedMonths) == 0 {
		return 0, nil
	}

	var totalDeleted int64
	for _, monthStart := range completedMonths {
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Second)

		result, err := tx.Exec(`
			DELETE FROM bucket_sizes
			WHERE timestamp >= ? AND timestamp <= ?
		`, monthStart, monthEnd)
		if err != nil {
			return 0, fmt.Errorf("failed to delete samples for %s: %w",
				monthStart.Format("2006-01"), err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}

		totalDeleted += rowsAffected
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return totalDeleted, nil
}
