package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"reflect"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

// VehicleService resolves scanned codes through the remote lookup endpoint.
type VehicleService struct {
	baseURL string
	fetcher core.Fetcher
}

var _ core.VehicleInfoService = (*VehicleService)(nil)

// NewVehicleService returns a service that appends codes to baseURL. An empty
// baseURL selects options.DefaultLookupBaseURL.
func NewVehicleService(baseURL string, fetcher core.Fetcher) *VehicleService {
	if baseURL == "" {
		baseURL = options.DefaultLookupBaseURL
	}
	return &VehicleService{baseURL: baseURL, fetcher: fetcher}
}

// GetVehicleInfo looks code up and returns the normalized vehicle. Errors from
// the fetcher and the JSON decoder are returned unchanged. A code that cannot
// be embedded in the request URL fails with *core.InvalidURLError before any
// request is made.
func (s *VehicleService) GetVehicleInfo(ctx context.Context, code string) (model.VehicleInfo, error) {
	req, err := s.newRequest(ctx, code)
	if err != nil {
		return model.VehicleInfo{}, err
	}

	data, err := s.fetcher.PerformGet(ctx, req)
	if err != nil {
		return model.VehicleInfo{}, err
	}

	raw, err := decode(data)
	if err != nil {
		log.FromContext(ctx).Debug("Failed to decode lookup response", "body", data, "error", err)
		return model.VehicleInfo{}, err
	}

	return raw.Normalize(), nil
}

func (s *VehicleService) newRequest(ctx context.Context, code string) (*http.Request, error) {
	target := s.baseURL + code
	if !validQueryValue(code) {
		return nil, &core.InvalidURLError{URL: target}
	}

	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &core.InvalidURLError{URL: target}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &core.InvalidURLError{URL: target}
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func decode(data []byte) (model.RawLookupResponse, error) {
	var raw model.RawLookupResponse

	// encoding/json accepts a bare null for a struct; the service contract is an object.
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return raw, &json.UnmarshalTypeError{Value: "null", Type: reflect.TypeOf(raw)}
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return raw, err
	}
	return raw, nil
}

// validQueryValue reports whether code can be appended to a query string as
// is: non-empty and made only of RFC 3986 query characters or well-formed
// percent escapes.
func validQueryValue(code string) bool {
	if code == "" {
		return false
	}

	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case bytes.IndexByte([]byte("-._~!$&'()*+,;=:@/?"), c) >= 0:
		case c == '%':
			if i+2 >= len(code) || !ishex(code[i+1]) || !ishex(code[i+2]) {
				return false
			}
			i += 2
		default:
			return false
		}
	}
	return true
}

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		return true
	}
	return false
}
