package core

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/url"
)

// ErrInvalidResponse is returned when the transport succeeded but the lookup
// service answered with a status other than 200.
var ErrInvalidResponse = errors.New("invalid response")

// InvalidURLError reports a scanned code that could not be embedded into a
// well-formed request URL. No request was sent.
type InvalidURLError struct {
	// URL is the string that failed to parse.
	URL string
}

func (e *InvalidURLError) Error() string {
	return "invalid URL: " + e.URL
}

// Kind classifies lookup failures for presenters and metrics.
type Kind string

const (
	KindInvalidURL      Kind = "invalid_url"
	KindInvalidResponse Kind = "invalid_response"
	KindDecode          Kind = "decode"
	KindTransport       Kind = "transport"
	KindUnknown         Kind = "unknown"
)

// ErrorKind returns the category of err. It never returns an empty Kind for a
// non-nil error.
func ErrorKind(err error) Kind {
	if err == nil {
		return ""
	}

	var (
		invalidURL *InvalidURLError
		syntaxErr  *json.SyntaxError
		typeErr    *json.UnmarshalTypeError
		urlErr     *url.Error
		netErr     net.Error
	)

	switch {
	case errors.As(err, &invalidURL):
		return KindInvalidURL
	case errors.Is(err, ErrInvalidResponse):
		return KindInvalidResponse
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return KindDecode
	case errors.As(err, &urlErr), errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Message returns the human readable description shown in an error alert.
func Message(err error) string {
	var invalidURL *InvalidURLError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &invalidURL):
		return "Invalid URL: " + invalidURL.URL
	case errors.Is(err, ErrInvalidResponse):
		return "This QR code is not valid."
	default:
		return err.Error()
	}
}
