package models

import (
	"time"
)

// Bucket is a single entry of the account's bucket listing
type Bucket struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BucketRecord is the resolved size of one bucket for a single inventory run
type BucketRecord struct {
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	SizeBytes float64   `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// RegionRollup is the aggregate of all bucket records sharing one region
type RegionRollup struct {
	Region         string  `json:"region"`
	BucketCount    int     `json:"bucket_count"`
	TotalSizeBytes float64 `json:"total_size_bytes"`
}

// Datapoint is one sample returned by the metrics backend
type Datapoint struct {
	Timestamp time.Time
	Average   float64
}

// BucketSizeSample is a stored size observation for a bucket
type BucketSizeSample struct {
	ID         int64     `json:"id"`
	BucketName string    `json:"bucket_name"`
	Region     string    `json:"region"`
	SizeBytes  float64   `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
	Timestamp  time.Time `json:"timestamp"`
}

// MonthlyBucketAverage represents the average size of a bucket over a month
type MonthlyBucketAverage struct {
	BucketName   string  `json:"bucket_name"`
	Region       string  `json:"region"`
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	AvgSizeBytes float64 `json:"avg_size_bytes"`
	DataPoints   int     `json:"data_points"`
}

// StorageClassConfig overrides the built-in list of storage type dimensions
type StorageClassConfig struct {
	Version string   `mapstructure:"version" json:"version"`
	Classes []string `mapstructure:"classes" json:"classes" validate:"omitempty,unique,dive,required"`
}

// Config represents the application configuration
type Config struct {
	Region        string `mapstructure:"region" json:"region" validate:"required"`
	DefaultRegion string `mapstructure:"default_region" json:"default_region" validate:"required"`
	Profile       string `mapstructure:"profile" json:"profile"`
	Endpoint      string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`
	AccessKey     string `mapstructure:"access_key" json:"-" validate:"required_with=SecretKey"`
	SecretKey     string `mapstructure:"secret_key" json:"-" validate:"required_with=AccessKey"`

	Concurrency    int           `mapstructure:"concurrency" json:"concurrency" validate:"min=1,max=64"`
	RateLimit      float64       `mapstructure:"rate_limit" json:"rate_limit" validate:"min=0"`
	Lookback       time.Duration `mapstructure:"lookback" json:"lookback" validate:"required,gtefield=Period"`
	Period         time.Duration `mapstructure:"period" json:"period" validate:"required,min=1m"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout" validate:"required,min=1s"`
	MaxAttempts    int           `mapstructure:"max_attempts" json:"max_attempts" validate:"min=1,max=10"`

	DBPath      string `mapstructure:"db_path" json:"db_path"`
	Save        bool   `mapstructure:"save" json:"save"`
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file"`
	Output      string `mapstructure:"output" json:"output" validate:"oneof=text json"`

	LogLevel  string `mapstructure:"log_level" json:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" json:"log_format" validate:"oneof=console json"`

	StorageClasses StorageClassConfig `mapstructure:"storage_classes" json:"storage_classes"`
}
