package lookupagent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/autopeer-io/qrlookup/internal/lookup/coordinator"
	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/lookupagent/presenter"
	"github.com/autopeer-io/qrlookup/internal/pkg/metrics"
	"github.com/autopeer-io/qrlookup/internal/scan"
	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/mqtt"
)

const (
	notifyTimeout = 5 * time.Second
	drainTimeout  = 5 * time.Second
)

// Server is a component that runs until its context is done.
type Server interface {
	Start(ctx context.Context) error
}

// Agent feeds scan outcomes into the lookup coordinator and fans the
// resulting events out to the console and the remote presentation layer.
type Agent struct {
	coordinator *coordinator.Coordinator
	bus         *coordinator.Broadcaster
	console     *presenter.Console

	// Optional components; nil when disabled.
	scanner  scan.Scanner
	notifier core.Notifier
	server   Server
	mqtt     mqtt.Client

	// lookupTimeout bounds how long shutdown waits for an in-flight lookup.
	lookupTimeout time.Duration
}

// Run blocks until ctx is done or the scanner is exhausted. The in-flight
// lookup, if any, completes and is presented before Run returns.
func (a *Agent) Run(ctx context.Context) error {
	log.Info("Starting qrlookup agent")

	if a.mqtt != nil {
		if err := a.connect(ctx); err != nil {
			return err
		}
		defer a.mqtt.Disconnect(context.Background())
	}

	presenters := a.startPresenters()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	if a.server != nil {
		g.Go(func() error { return a.server.Start(gctx) })
	}
	if a.scanner != nil {
		g.Go(func() error {
			defer cancel()
			return a.consume(gctx)
		})
	}
	if a.server == nil && a.scanner == nil {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	err := g.Wait()
	log.Info("Agent shutting down...")

	a.coordinator.Close()
	waitCtx, waitCancel := context.WithTimeout(context.Background(), a.lookupTimeout+drainTimeout)
	defer waitCancel()
	if werr := a.coordinator.Wait(waitCtx); werr != nil {
		log.Warn("Gave up waiting for in-flight lookup", "error", werr)
	}

	a.bus.Close()
	presenters.Wait()

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *Agent) connect(ctx context.Context) error {
	if err := a.mqtt.Start(ctx); err != nil {
		return fmt.Errorf("start mqtt client: %w", err)
	}
	if err := a.mqtt.AwaitConnection(ctx); err != nil {
		return fmt.Errorf("connect to mqtt broker: %w", err)
	}
	return nil
}

// startPresenters subscribes every presenter. The returned group finishes
// once the broadcaster is closed and every queued event has been presented.
func (a *Agent) startPresenters() *sync.WaitGroup {
	var wg sync.WaitGroup

	console := a.bus.Subscribe(8)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for e := range console.Events() {
			a.console.Present(e)
		}
	}()

	if a.notifier != nil {
		remote := a.bus.Subscribe(8)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range remote.Events() {
				ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
				if err := a.notifier.Notify(ctx, e); err != nil {
					log.Warn("Failed to forward lookup event", "kind", string(e.Kind), "requestID", e.RequestID, "error", err)
				}
				cancel()
			}
		}()
	}

	return &wg
}

// consume forwards scan outcomes until the scanner channel closes.
func (a *Agent) consume(ctx context.Context) error {
	outcomes, err := a.scanner.Start(ctx)
	if err != nil {
		return fmt.Errorf("start scanner: %w", err)
	}
	defer a.scanner.Stop()

	for o := range outcomes {
		a.handle(o)
	}
	return nil
}

func (a *Agent) handle(o scan.Outcome) {
	metrics.ScanTotal.WithLabelValues(o.Source, o.Result()).Inc()

	if o.Err != nil {
		log.Warn("Scan failed", "source", o.Source, "reason", o.Result(), "error", o.Err)
		a.console.Alert(o.Err)
		return
	}

	if err := a.coordinator.FetchVehicleInfo(o.Code); err != nil {
		a.console.Rejected(o.Code, err)
	}
}
