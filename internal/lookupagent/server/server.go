package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/autopeer-io/qrlookup/internal/lookup/coordinator"
	"github.com/autopeer-io/qrlookup/internal/pkg/metrics"
	"github.com/autopeer-io/qrlookup/internal/scan"
	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

const (
	shutdownTimeout = 5 * time.Second
	maxScanBody     = 4 << 10
)

// Lookup is the part of the coordinator the status server drives.
type Lookup interface {
	FetchVehicleInfo(code string) error
	State() string
}

// ReadinessCheck returns nil when the agent can serve scans.
type ReadinessCheck func() error

// Server exposes probes, metrics and a scan submission endpoint.
type Server struct {
	server  *http.Server
	options *options.HttpOptions
}

func NewServer(opts *options.HttpOptions, lookup Lookup, ready ReadinessCheck) *Server {
	return &Server{
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      NewRouter(lookup, ready),
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
		},
		options: opts,
	}
}

// NewRouter builds the route table of the status server.
func NewRouter(lookup Lookup, ready ReadinessCheck) *mux.Router {
	h := &handlers{lookup: lookup, ready: ready}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/scan", h.scan).Methods(http.MethodPost)
	r.HandleFunc("/state", h.state).Methods(http.MethodGet)
	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	network := s.options.Network
	if network == "" {
		network = "tcp"
	}
	ln, err := net.Listen(network, s.server.Addr)
	if err != nil {
		return err
	}
	log.Info("Starting HTTP Server", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

type handlers struct {
	lookup Lookup
	ready  ReadinessCheck
}

type scanRequest struct {
	Code string `json:"code"`
}

type statusResponse struct {
	State string `json:"state"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

func (h *handlers) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) readyz(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil {
		if err := h.ready(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *handlers) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{State: h.lookup.State()})
}

func (h *handlers) scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{State: h.lookup.State(), Error: "invalid scan body: " + err.Error()})
		return
	}

	outcome := scan.Scanned(scan.SourceHTTP, req.Code)
	metrics.ScanTotal.WithLabelValues(outcome.Source, outcome.Result()).Inc()

	err := h.lookup.FetchVehicleInfo(req.Code)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, statusResponse{State: h.lookup.State(), Code: req.Code})
	case errors.Is(err, coordinator.ErrLookupInProgress):
		writeJSON(w, http.StatusConflict, statusResponse{State: h.lookup.State(), Code: req.Code, Error: err.Error()})
	case errors.Is(err, coordinator.ErrClosed):
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{State: h.lookup.State(), Code: req.Code, Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, statusResponse{State: h.lookup.State(), Code: req.Code, Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to write response", "error", err)
	}
}
