package scan

import (
	"context"
	"errors"
)

// ErrAlreadyStarted is returned by Start when the scanner is running.
var ErrAlreadyStarted = errors.New("scanner already started")

// Scanner produces scan outcomes until it is stopped, its source is
// exhausted or the context passed to Start is done. The outcome channel is
// closed in every case.
type Scanner interface {
	Start(ctx context.Context) (<-chan Outcome, error)

	// Stop ends the scan session. It is idempotent.
	Stop()
}
