package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	appconfig "github.com/thannaske/s3inventory/pkg/config"
	"github.com/thannaske/s3inventory/pkg/inventory"
	"github.com/thannaske/s3inventory/pkg/logger"
	"github.com/thannaske/s3inventory/pkg/models"
)

var (
	cfgFile   string
	config    *models.Config
	v         = viper.New()
	defaultDB = filepath.Join(os.Getenv("HOME"), ".s3inventory.db")
	defaultCf = filepath.Join(os.Getenv("HOME"), ".s3inventory.yaml")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "s3inventory",
	Short: "S3 bucket size inventory from CloudWatch metrics",
	Long: `A CLI tool that reports the size of every S3 bucket in an AWS account.
Sizes are read from the daily CloudWatch BucketSizeBytes metric of each
bucket's home region and summed over all storage classes, so no objects are
listed. CloudWatch publishes these metrics with a delay of up to 24 hours.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, inventory.ErrCredentials) {
			logger.Error().Err(err).Msg("AWS credentials not found or not authorized")
			fmt.Fprintln(os.Stderr, "Make sure credentials are configured (aws configure, AWS_PROFILE or environment variables).")
		} else {
			logger.Error().Err(err).Msg("Command failed")
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	appconfig.SetDefaults(v)
	v.SetDefault("db_path", defaultDB)

	f := rootCmd.PersistentFlags()
	f.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.s3inventory.yaml)")
	f.String("endpoint", "", "S3 and CloudWatch endpoint URL override")
	f.String("access-key", "", "AWS access key (default: SDK credential chain)")
	f.String("secret-key", "", "AWS secret key")
	f.String("profile", "", "AWS shared config profile")
	f.String("region", "us-east-1", "region used for listing and location lookups")
	f.String("default-region", inventory.DefaultRegion, "region assumed when a bucket has no location constraint or lookup fails")
	f.String("db", defaultDB, "SQLite database path")
	f.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	f.String("log-format", "console", "log format (console, json)")

	bindFlags(f, map[string]string{
		"endpoint":       "endpoint",
		"access_key":     "access-key",
		"secret_key":     "secret-key",
		"profile":        "profile",
		"region":         "region",
		"default_region": "default-region",
		"db_path":        "db",
		"log_level":      "log-level",
		"log_format":     "log-format",
	})
}

// bindFlags binds config keys to flag names so that explicitly set flags win
// over the config file and environment.
func bindFlags(f *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// initConfig reads the config file and environment, validates the result
// and sets up logging.
func initConfig(cmd *cobra.Command, _ []string) error {
	path, explicit := defaultCf, false
	if cfgFile != "" {
		path, explicit = cfgFile, true
	}
	if err := appconfig.ReadFile(v, path, explicit); err != nil {
		return err
	}
	if err := appconfig.BindEnv(v); err != nil {
		return err
	}

	cfg, err := appconfig.Load(v)
	if err != nil {
		return err
	}
	config = cfg

	if err := logger.Setup(config.LogLevel, config.LogFormat); err != nil {
		return err
	}
	if used := v.ConfigFileUsed(); used != "" && explicit {
		logger.Debug().Str("file", used).Msg("Loaded config file")
	}
	return nil
}
