package fsm

import (
	"context"

	"github.com/looplab/fsm"
)

// WrapGuard adapts an error-returning check into a before_ callback. A non-nil
// error cancels the transition; FSM.Event then returns fsm.CanceledError
// carrying it.
func WrapGuard(fn func(ctx context.Context, event *fsm.Event) error) fsm.Callback {
	return func(ctx context.Context, event *fsm.Event) {
		if err := fn(ctx, event); err != nil {
			event.Cancel(err)
		}
	}
}
