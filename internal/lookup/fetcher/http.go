package fetcher

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/pkg/metrics"
	"github.com/autopeer-io/qrlookup/pkg/log"
)

// maxDrainSize bounds how much of a rejected response is discarded before
// the connection is closed.
const maxDrainSize = 1 << 20

// HTTPFetcher implements core.Fetcher on top of an *http.Client.
type HTTPFetcher struct {
	client *http.Client
}

var _ core.Fetcher = (*HTTPFetcher)(nil)

// New returns a fetcher using client, or http.DefaultClient when client is nil.
func New(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// NewWithTimeout returns a fetcher whose client gives up after timeout.
// A zero timeout keeps the net/http default of no timeout.
func NewWithTimeout(timeout time.Duration) *HTTPFetcher {
	return New(&http.Client{Timeout: timeout})
}

// PerformGet sends req and returns the body of a 200 response. Any other
// status yields core.ErrInvalidResponse; transport errors are returned as the
// client produced them.
func (f *HTTPFetcher) PerformGet(ctx context.Context, req *http.Request) ([]byte, error) {
	logger := log.FromContext(ctx)
	start := time.Now()

	resp, err := f.client.Do(req.WithContext(ctx))
	metrics.FetchLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	metrics.FetchTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		logger.Debug("Lookup service returned non-200 status", "status", resp.StatusCode, "url", req.URL.Redacted())
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainSize))
		return nil, core.ErrInvalidResponse
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	logger.Debug("Lookup service responded", "bytes", len(data), "took", time.Since(start))
	return data, nil
}
