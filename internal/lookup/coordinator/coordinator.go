package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/pkg/metrics"
	"github.com/autopeer-io/qrlookup/pkg/log"
)

var (
	// ErrLookupInProgress rejects a scan received while another lookup is in flight.
	ErrLookupInProgress = errors.New("a vehicle lookup is already in progress")

	// ErrClosed rejects scans after Close.
	ErrClosed = errors.New("lookup coordinator is closed")
)

// Coordinator runs one lookup per scan and publishes its progress as exactly
// three ordered events: ShowActivity, HideActivity, then either
// ShowVehicleInfo or ShowErrorAlert.
//
// Only one lookup runs at a time. A scan arriving while a lookup is in flight
// is rejected with ErrLookupInProgress and produces no events.
type Coordinator struct {
	service core.VehicleInfoService
	bus     *Broadcaster
	baseCtx context.Context
	logger  log.Logger
	newID   func() string
	now     func() time.Time

	// mu makes a state transition and the event it publishes atomic, so the
	// events of consecutive lookups never interleave.
	mu       sync.Mutex
	machine  *stateMachine
	inflight chan struct{}
	closed   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithContext sets the context lookups derive from. Its values, such as the
// logger, are kept. Its cancellation is not: an in-flight lookup runs to
// completion.
func WithContext(ctx context.Context) Option {
	return func(c *Coordinator) { c.baseCtx = ctx }
}

// WithBroadcaster shares an existing event stream.
func WithBroadcaster(b *Broadcaster) Option {
	return func(c *Coordinator) { c.bus = b }
}

// WithIDFunc replaces the request ID generator.
func WithIDFunc(fn func() string) Option {
	return func(c *Coordinator) { c.newID = fn }
}

// WithClock replaces the time source used to stamp events.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithLogger sets the logger lookups log to.
func WithLogger(l log.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

func New(service core.VehicleInfoService, opts ...Option) *Coordinator {
	c := &Coordinator{
		service: service,
		baseCtx: context.Background(),
		newID:   uuid.NewString,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.bus == nil {
		c.bus = NewBroadcaster()
	}
	if c.logger == nil {
		c.logger = log.FromContext(c.baseCtx).WithName("coordinator")
	}
	c.machine = newStateMachine(func() bool { return c.closed })
	return c
}

// Subscribe returns a subscription to the event stream.
func (c *Coordinator) Subscribe(buffer int) *Subscription {
	return c.bus.Subscribe(buffer)
}

// SubscribeFunc calls fn for every event on its own goroutine.
func (c *Coordinator) SubscribeFunc(fn func(core.Event)) (unsubscribe func()) {
	return c.bus.SubscribeFunc(fn)
}

// State returns the current lookup state.
func (c *Coordinator) State() string {
	return c.machine.Current()
}

// FetchVehicleInfo starts a lookup for code. ShowActivity is published before
// it returns; the remaining two events follow asynchronously.
func (c *Coordinator) FetchVehicleInfo(code string) error {
	id := c.newID()
	logger := c.logger.WithValues("requestID", id, "code", code)

	c.mu.Lock()
	if err := c.machine.begin(c.baseCtx); err != nil {
		c.mu.Unlock()
		if errors.Is(err, ErrLookupInProgress) {
			metrics.LookupRejectedTotal.Inc()
		}
		logger.Warn("Lookup rejected", "reason", err.Error())
		return err
	}
	done := make(chan struct{})
	c.inflight = done
	c.publish(id, code, core.ShowActivity())
	c.mu.Unlock()

	logger.Info("Lookup started")
	go c.run(logger, id, code, done)
	return nil
}

func (c *Coordinator) run(logger log.Logger, id, code string, done chan struct{}) {
	defer close(done)

	ctx := log.IntoContext(context.WithoutCancel(c.baseCtx), logger)
	start := time.Now()

	info, err := c.service.GetVehicleInfo(ctx, code)

	metrics.LookupLatency.Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()

	c.publish(id, code, core.HideActivity())

	if ferr := c.machine.finish(ctx, err != nil); ferr != nil {
		logger.Error(ferr, "Unexpected lookup state transition", "state", c.machine.Current())
	}
	c.inflight = nil

	if err != nil {
		metrics.LookupTotal.WithLabelValues(string(core.ErrorKind(err))).Inc()
		logger.Warn("Lookup failed", "kind", string(core.ErrorKind(err)), "error", err)
		c.publish(id, code, core.ShowErrorAlert(err))
		return
	}

	metrics.LookupTotal.WithLabelValues("success").Inc()
	logger.Info("Lookup succeeded", "vehicleID", info.ID, "category", info.Category, "took", time.Since(start))
	c.publish(id, code, core.ShowVehicleInfo(info))
}

func (c *Coordinator) publish(id, code string, e core.Event) {
	e.RequestID = id
	e.Code = code
	e.Time = c.now()
	c.bus.Publish(e)
}

// Wait blocks until no lookup is in flight or ctx is done.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.inflight
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further scans. A lookup already in flight still completes and
// publishes its events; call Wait to block on it.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}
