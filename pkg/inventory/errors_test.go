package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thannaske/s3inventory/pkg/models"
)

func TestIsAuthError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, true},
		{"wrapped invalid key", fmt.Errorf("op: %w", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}), true},
		{"throttling", &smithy.GenericAPIError{Code: "Throttling"}, false},
		{"sentinel", fmt.Errorf("x: %w", ErrCredentials), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAuthError(tt.err))
		})
	}
}

type fakeIdentity struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (f *fakeIdentity) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.out, f.err
}

func TestCheckCredentials(t *testing.T) {
	t.Parallel()

	acct, err := CheckCredentials(context.Background(), &fakeIdentity{out: &sts.GetCallerIdentityOutput{
		Account: aws.String("123456789012"),
		Arn:     aws.String("arn:aws:iam::123456789012:user/report"),
	}})
	require.NoError(t, err)
	assert.Equal(t, Account{ID: "123456789012", ARN: "arn:aws:iam::123456789012:user/report"}, acct)

	_, err = CheckCredentials(context.Background(), &fakeIdentity{err: errors.New("no EC2 IMDS role found")})
	assert.ErrorIs(t, err, ErrCredentials)
}

// pagedBuckets serves ListBuckets in pages of two.
type pagedBuckets struct {
	names []string
	err   error
}

func (p *pagedBuckets) ListBuckets(_ context.Context, in *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if p.err != nil {
		return nil, p.err
	}
	start := 0
	if in.ContinuationToken != nil {
		fmt.Sscanf(*in.ContinuationToken, "%d", &start)
	}
	end := min(start+2, len(p.names))

	out := &s3.ListBucketsOutput{}
	for i := start; i < end; i++ {
		out.Buckets = append(out.Buckets, s3types.Bucket{
			Name:         aws.String(p.names[i]),
			CreationDate: aws.Time(time.Date(2022, 1, i+1, 0, 0, 0, 0, time.UTC)),
		})
	}
	if end < len(p.names) {
		out.ContinuationToken = aws.String(fmt.Sprint(end))
	}
	return out, nil
}

func TestS3Lister_ListBuckets(t *testing.T) {
	t.Parallel()

	l := NewS3Lister(&pagedBuckets{names: []string{"a", "b", "c", "d", "e"}})
	buckets, err := l.ListBuckets(context.Background())
	require.NoError(t, err)

	require.Len(t, buckets, 5)
	assert.Equal(t, models.Bucket{Name: "c", CreatedAt: time.Date(2022, 1, 3, 0, 0, 0, 0, time.UTC)}, buckets[2])
	assert.Equal(t, "e", buckets[4].Name)
}

func TestS3Lister_AuthFailure(t *testing.T) {
	t.Parallel()

	l := NewS3Lister(&pagedBuckets{err: &smithy.GenericAPIError{Code: "InvalidAccessKeyId", Message: "bad key"}})
	_, err := l.ListBuckets(context.Background())
	assert.ErrorIs(t, err, ErrCredentials)
}

func TestS3Lister_OtherFailure(t *testing.T) {
	t.Parallel()

	l := NewS3Lister(&pagedBuckets{err: errors.New("connection reset")})
	_, err := l.ListBuckets(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentials)
	assert.Contains(t, err.Error(), "list buckets")
}
