package moneylover

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind discriminates remote API failures for retry decisions.
type ErrorKind int

const (
	// KindAPI is a structured error from the API not related to
	// authentication. Never eligible for refresh-and-retry.
	KindAPI ErrorKind = iota

	// KindAuth is an authentication failure: the token is missing,
	// expired, or rejected. Eligible for one refresh-and-retry.
	KindAuth
)

// codeTokenExpired is MoneyLover's error code for an expired or revoked
// access token.
const codeTokenExpired = 711

// Error is a structured error from the MoneyLover API layer. The Kind is
// assigned once, when the response is first parsed, so callers classify by
// tag instead of probing codes and messages themselves.
//
// Transport-level failures (connection refused, timeouts) are never an
// Error: they stay plain wrapped errors and never count as auth failures.
type Error struct {
	Kind    ErrorKind
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("moneylover api error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("moneylover api error: %s", e.Message)
}

// authIndicators are message substrings that mark an error as
// authentication-related when no recognized code is present.
var authIndicators = []string{"unauthoriz", "unauthent", "token"}

// newAPIError builds an Error with its Kind classified from the code and
// message at parse time.
func newAPIError(code int, message string) *Error {
	return &Error{Kind: classify(code, message), Code: code, Message: message}
}

func classify(code int, message string) ErrorKind {
	if code == http.StatusUnauthorized || code == codeTokenExpired {
		return KindAuth
	}

	lower := strings.ToLower(message)
	for _, indicator := range authIndicators {
		if strings.Contains(lower, indicator) {
			return KindAuth
		}
	}
	return KindAPI
}

// IsAuthError reports whether err is an API-layer authentication failure.
func IsAuthError(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindAuth
}
