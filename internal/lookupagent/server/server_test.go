package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/qrlookup/internal/lookup/coordinator"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

type fakeLookup struct {
	err   error
	state string
	codes []string
}

func (f *fakeLookup) FetchVehicleInfo(code string) error {
	f.codes = append(f.codes, code)
	return f.err
}

func (f *fakeLookup) State() string { return f.state }

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) statusResponse {
	t.Helper()
	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	return got
}

func TestProbes(t *testing.T) {
	r := NewRouter(&fakeLookup{state: "idle"}, nil)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/readyz", "").Code)

	notReady := NewRouter(&fakeLookup{}, func() error { return errors.New("mqtt not connected") })
	rec := do(t, notReady, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "mqtt not connected")
}

func TestMetricsRoute(t *testing.T) {
	rec := do(t, NewRouter(&fakeLookup{}, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qrlookup_lookup_rejected_total")
}

func TestState(t *testing.T) {
	rec := do(t, NewRouter(&fakeLookup{state: "idle"}, nil), http.MethodGet, "/state", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"state":"idle"}`, rec.Body.String())
}

func TestScan(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		body   string
		status int
	}{
		{name: "accepted", body: `{"code":"w9mb"}`, status: http.StatusAccepted},
		{name: "busy", err: coordinator.ErrLookupInProgress, body: `{"code":"w9mb"}`, status: http.StatusConflict},
		{name: "closed", err: coordinator.ErrClosed, body: `{"code":"w9mb"}`, status: http.StatusServiceUnavailable},
		{name: "unexpected", err: errors.New("boom"), body: `{"code":"w9mb"}`, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := &fakeLookup{err: tt.err, state: "loading"}
			rec := do(t, NewRouter(lookup, nil), http.MethodPost, "/scan", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, []string{"w9mb"}, lookup.codes)
			got := decodeStatus(t, rec)
			assert.Equal(t, "w9mb", got.Code)
			assert.Equal(t, "loading", got.State)
			if tt.err != nil {
				assert.Equal(t, tt.err.Error(), got.Error)
			}
		})
	}
}

func TestScanRejectsMalformedBody(t *testing.T) {
	lookup := &fakeLookup{state: "idle"}
	rec := do(t, NewRouter(lookup, nil), http.MethodPost, "/scan", `not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, lookup.codes)
}

func TestScanRequiresPost(t *testing.T) {
	rec := do(t, NewRouter(&fakeLookup{}, nil), http.MethodGet, "/scan", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServerStartAndShutdown(t *testing.T) {
	opts := options.NewHttpOptions()
	opts.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer(opts, &fakeLookup{state: "idle"}, nil)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
