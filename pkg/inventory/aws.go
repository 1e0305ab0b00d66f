package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/thannaske/s3inventory/pkg/models"
)

// LoadAWSConfig builds the shared SDK configuration. Static keys from cfg take
// precedence over the default credential chain.
func LoadAWSConfig(ctx context.Context, cfg *models.Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(o *retry.StandardOptions) {
				if cfg.MaxAttempts > 0 {
					o.MaxAttempts = cfg.MaxAttempts
				}
			})
		}),
	}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}
	if cfg.AccessKey != "" {
		creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		opts = append(opts, config.WithCredentialsProvider(creds))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS SDK configuration: %w", err)
	}
	return awsCfg, nil
}

// NewS3Client creates the S3 client used for listing and location lookups.
func NewS3Client(awsCfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

// NewMetricsClientFactory returns a ClientFactory creating CloudWatch clients
// bound to the requested region.
func NewMetricsClientFactory(awsCfg aws.Config, endpoint string) ClientFactory {
	return func(_ context.Context, region string) (MetricsAPI, error) {
		if region == "" {
			return nil, errors.New("empty region")
		}
		return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			o.Region = region
			if endpoint != "" {
				o.BaseEndpoint = aws.String(endpoint)
			}
		}), nil
	}
}

// IdentityAPI is the part of the STS client used for the credentials check.
type IdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Account identifies the caller the report is produced for.
type Account struct {
	ID  string `json:"id"`
	ARN string `json:"arn"`
}

// CheckCredentials verifies that usable credentials are configured. Any
// failure is reported as ErrCredentials.
func CheckCredentials(ctx context.Context, api IdentityAPI) (Account, error) {
	out, err := api.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Account{}, fmt.Errorf("get caller identity: %w: %v", ErrCredentials, err)
	}
	return Account{
		ID:  aws.ToString(out.Account),
		ARN: aws.ToString(out.Arn),
	}, nil
}
