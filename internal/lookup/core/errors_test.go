package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKind(t *testing.T) {
	var raw map[string]any
	syntaxErr := json.Unmarshal([]byte(`{"name":`), &raw)
	typeErr := json.Unmarshal([]byte(`[1,2]`), &raw)

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"invalid url", &InvalidURLError{URL: "https://x/vehicle?qrcode=a b"}, KindInvalidURL},
		{"wrapped invalid url", fmt.Errorf("lookup: %w", &InvalidURLError{URL: "u"}), KindInvalidURL},
		{"invalid response", ErrInvalidResponse, KindInvalidResponse},
		{"syntax", syntaxErr, KindDecode},
		{"type", typeErr, KindDecode},
		{"transport", &url.Error{Op: "Get", URL: "https://x", Err: errors.New("connection refused")}, KindTransport},
		{"deadline", context.DeadlineExceeded, KindTransport},
		{"other", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Invalid URL: https://x/vehicle?qrcode=%zz", Message(&InvalidURLError{URL: "https://x/vehicle?qrcode=%zz"}))
	assert.Equal(t, "This QR code is not valid.", Message(ErrInvalidResponse))
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "", Message(nil))
}
