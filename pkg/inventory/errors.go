package inventory

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// ErrCredentials marks account-level authentication or authorization failures.
// These abort the whole run.
var ErrCredentials = errors.New("aws credentials missing or not authorized")

var authErrorCodes = map[string]struct{}{
	"AccessDenied":                {},
	"AccessDeniedException":       {},
	"AuthFailure":                 {},
	"ExpiredToken":                {},
	"ExpiredTokenException":       {},
	"InvalidAccessKeyId":          {},
	"InvalidClientTokenId":        {},
	"InvalidToken":                {},
	"SignatureDoesNotMatch":       {},
	"UnrecognizedClientException": {},
}

// IsAuthError reports whether err is an AWS API error caused by bad or
// insufficient credentials.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCredentials) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, ok := authErrorCodes[apiErr.ErrorCode()]
		return ok
	}
	return false
}

// classify wraps auth failures in ErrCredentials and leaves everything else as is.
func classify(op string, err error) error {
	if IsAuthError(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrCredentials, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
