// Package api provides error types for Bitcasa API responses.
package api

import (
	"errors"
	"fmt"
	"net/http"

	ihttp "github.com/bitcasaclient/bitcasa-cli/internal/http"
)

// ErrAuthentication indicates the login flow failed or the access token was rejected.
var ErrAuthentication = errors.New("authentication failed")

// ErrNotFound indicates the remote path does not exist.
var ErrNotFound = errors.New("not found")

// ErrNoAccessToken is returned by calls that need a token before one is set.
var ErrNoAccessToken = errors.New("no access token, run `bitcasa login`")

// ResponseError is an error reported in the body of an otherwise successful response.
type ResponseError struct {
	Path    string
	Code    int
	Message string
}

func (e *ResponseError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s: api error %d: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: api error: %s", e.Path, e.Message)
}

// statusError converts a non-success response into a typed error, wrapping
// ErrNotFound or ErrAuthentication where the status calls for it.
func statusError(resp *http.Response, body []byte) error {
	se := &ihttp.StatusError{
		StatusCode: resp.StatusCode,
		Method:     resp.Request.Method,
		URL:        redactedURL(resp.Request),
		Body:       truncate(string(body), 200),
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrAuthentication, se)
	default:
		return se
	}
}

// IsNotFound reports whether err means the remote path does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// redactedURL strips credentials from the query before the URL lands in an error message.
func redactedURL(req *http.Request) string {
	if req == nil || req.URL == nil {
		return ""
	}
	u := *req.URL
	q := u.Query()
	for _, k := range []string{"access_token", "secret", "password", "code"} {
		if q.Has(k) {
			q.Set(k, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
