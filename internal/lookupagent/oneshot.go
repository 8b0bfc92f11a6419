package lookupagent

import (
	"context"
	"errors"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/lookupagent/presenter"
)

// ErrLookupFailed is returned by Lookup after an error alert was presented.
var ErrLookupFailed = errors.New("vehicle lookup failed")

// Lookup resolves a single code and presents the result on cfg.Out. It
// returns once the terminal event was presented, or when ctx is done.
func (cfg *Config) Lookup(ctx context.Context, code string) error {
	c := cfg.NewCoordinator()
	console := presenter.NewConsole(cfg.Out)

	sub := c.Subscribe(3)
	defer sub.Close()

	if err := c.FetchVehicleInfo(code); err != nil {
		return err
	}

	for {
		select {
		case e := <-sub.Events():
			console.Present(e)
			if !e.Terminal() {
				continue
			}
			if e.Kind == core.EventShowErrorAlert {
				return ErrLookupFailed
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
