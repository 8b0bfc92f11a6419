package coordinator

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/autopeer-io/qrlookup/internal/pkg/metrics"
	fsmutil "github.com/autopeer-io/qrlookup/internal/pkg/util/fsm"
)

// Lookup states.
const (
	StateIdle      = "idle"
	StateLoading   = "loading"
	StateSucceeded = "succeeded"
	StateFailed    = "failed"
)

const (
	// EventLookup starts a lookup.
	EventLookup = "event_lookup"
	// EventSucceed ends a lookup with a vehicle.
	EventSucceed = "event_succeed"
	// EventFail ends a lookup with an error.
	EventFail = "event_fail"
)

type stateMachine struct {
	*fsm.FSM

	closed func() bool
}

func newStateMachine(closed func() bool) *stateMachine {
	m := &stateMachine{closed: closed}

	events := fsm.Events{
		{Name: EventLookup, Src: []string{StateIdle, StateSucceeded, StateFailed}, Dst: StateLoading},
		{Name: EventSucceed, Src: []string{StateLoading}, Dst: StateSucceeded},
		{Name: EventFail, Src: []string{StateLoading}, Dst: StateFailed},
	}

	callbacks := fsm.Callbacks{
		"before_" + EventLookup: fsmutil.WrapGuard(m.guardOpen),

		"enter_" + StateLoading: func(context.Context, *fsm.Event) { metrics.LookupInFlight.Set(1) },
		"leave_" + StateLoading: func(context.Context, *fsm.Event) { metrics.LookupInFlight.Set(0) },
	}

	m.FSM = fsm.NewFSM(StateIdle, events, callbacks)
	return m
}

func (m *stateMachine) guardOpen(context.Context, *fsm.Event) error {
	if m.closed() {
		return ErrClosed
	}
	return nil
}

// begin moves to loading. It fails with ErrLookupInProgress while loading and
// with ErrClosed once the coordinator is closed.
func (m *stateMachine) begin(ctx context.Context) error {
	err := m.Event(ctx, EventLookup)
	if err == nil {
		return nil
	}

	var canceled fsm.CanceledError
	if errors.As(err, &canceled) && canceled.Err != nil {
		return canceled.Err
	}

	var invalid fsm.InvalidEventError
	if errors.As(err, &invalid) {
		return ErrLookupInProgress
	}
	return err
}

func (m *stateMachine) finish(ctx context.Context, failed bool) error {
	if failed {
		return m.Event(ctx, EventFail)
	}
	return m.Event(ctx, EventSucceed)
}
