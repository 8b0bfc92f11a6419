package scan

import (
	"errors"
	"fmt"
)

// Sources reported on Outcome.Source.
const (
	SourceStdin = "stdin"
	SourceMQTT  = "mqtt"
	SourceHTTP  = "http"
)

// Reasons a scan attempt can fail before producing a code.
const (
	ReasonPermissionDenied  = "permission-denied"
	ReasonDeviceUnavailable = "device-unavailable"
	ReasonUnsupported       = "unsupported"
)

// CapabilityError reports that the scanning device could not produce a code.
// It is terminal for the attempt.
type CapabilityError struct {
	Reason  string
	message string
}

func (e *CapabilityError) Error() string { return e.message }

var (
	ErrPermissionDenied = &CapabilityError{
		Reason:  ReasonPermissionDenied,
		message: "Camera permission is denied, please allow it in settings.",
	}
	ErrDeviceUnavailable = &CapabilityError{
		Reason:  ReasonDeviceUnavailable,
		message: "Video capture device is not available.",
	}
	ErrUnsupported = &CapabilityError{
		Reason:  ReasonUnsupported,
		message: "QR scanning is not supported.",
	}
)

// ParseReason maps a reason string to its capability error.
func ParseReason(reason string) (*CapabilityError, error) {
	switch reason {
	case ReasonPermissionDenied:
		return ErrPermissionDenied, nil
	case ReasonDeviceUnavailable:
		return ErrDeviceUnavailable, nil
	case ReasonUnsupported:
		return ErrUnsupported, nil
	default:
		return nil, fmt.Errorf("unknown scan failure reason %q", reason)
	}
}

// Outcome is the result of one scan attempt: either a Code or an Err.
type Outcome struct {
	Code   string
	Err    error
	Source string
}

func Scanned(source, code string) Outcome {
	return Outcome{Code: code, Source: source}
}

func Failed(source string, err error) Outcome {
	return Outcome{Err: err, Source: source}
}

// Result labels the outcome for metrics and logs: "code" or the failure reason.
func (o Outcome) Result() string {
	if o.Err == nil {
		return "code"
	}
	var capErr *CapabilityError
	if errors.As(o.Err, &capErr) {
		return capErr.Reason
	}
	return "error"
}
