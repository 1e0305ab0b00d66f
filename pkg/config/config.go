package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/thannaske/s3inventory/pkg/models"
)

// EnvPrefix is the prefix for environment variables, e.g. S3INV_CONCURRENCY
const EnvPrefix = "S3INV"

// legacyEnv maps config keys to the environment variables earlier releases read.
var legacyEnv = map[string]string{
	"endpoint":   "S3_ENDPOINT",
	"access_key": "S3_ACCESS_KEY",
	"secret_key": "S3_SECRET_KEY",
	"region":     "S3_REGION",
	"db_path":    "S3_DB_PATH",
}

// SetDefaults registers the default value of every config key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("region", "us-east-1")
	v.SetDefault("default_region", "us-east-1")
	v.SetDefault("concurrency", 1)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("lookback", 72*time.Hour)
	v.SetDefault("period", 24*time.Hour)
	v.SetDefault("request_timeout", 30*time.Second)
	v.SetDefault("max_attempts", 3)
	v.SetDefault("output", "text")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// BindEnv wires S3INV_* variables and the legacy S3_* names into v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key), env); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// ReadFile merges the given YAML config file into v. A missing default file is
// not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, path string, explicit bool) error {
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !explicit && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil
		}
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return nil
}

// Load unmarshals v into a Config and validates it.
func Load(v *viper.Viper) (*models.Config, error) {
	var cfg models.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *models.Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return fmt.Errorf("config validation failed: %w", err)
		}
		msgs := make([]string, 0, len(ve))
		for _, e := range ve {
			msgs = append(msgs, formatValidationError(e))
		}
		return fmt.Errorf("config validation failed: %s", strings.Join(msgs, ", "))
	}
	return nil
}

// formatValidationError renders e as "field.path (rule=param)".
func formatValidationError(e validator.FieldError) string {
	field := e.Field()
	if ns := e.StructNamespace(); ns != "" {
		if parts := strings.Split(ns, "."); len(parts) >= 2 {
			field = strings.ToLower(strings.Join(parts[1:], "."))
		}
	}

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s (required)", field)
	case "min", "max", "oneof", "required_with", "gtefield":
		return fmt.Sprintf("%s (%s=%s)", field, e.Tag(), e.Param())
	default:
		return fmt.Sprintf("%s (%s)", field, e.Tag())
	}
}
