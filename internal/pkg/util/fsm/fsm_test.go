package fsm

import (
	"context"
	"errors"
	"testing"

	"github.com/looplab/fsm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapGuardCancelsTransition(t *testing.T) {
	closed := errors.New("closed")
	m := fsm.NewFSM("idle",
		fsm.Events{{Name: "start", Src: []string{"idle"}, Dst: "running"}},
		fsm.Callbacks{
			"before_start": WrapGuard(func(context.Context, *fsm.Event) error { return closed }),
		},
	)

	err := m.Event(context.Background(), "start")

	var canceled fsm.CanceledError
	require.ErrorAs(t, err, &canceled)
	assert.Equal(t, closed, canceled.Err)
	assert.Equal(t, "idle", m.Current())
}
