package scan

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/autopeer-io/qrlookup/pkg/log"
)

const (
	failurePrefix = "!"

	// maxLineSize is the longest line accepted before the scan fails.
	maxLineSize = 1 << 20
)

// readResult carries either a line or the error that ended reading.
type readResult struct {
	line string
	err  error
}

var _ Scanner = (*LineScanner)(nil)

// LineScanner reads one code per line, from a terminal or a pipe. Blank lines
// are skipped. A line "!<reason>" yields the matching capability failure.
type LineScanner struct {
	r      io.Reader
	source string

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	once    sync.Once
}

func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{r: r, source: SourceStdin, stop: make(chan struct{})}
}

func (s *LineScanner) Start(ctx context.Context) (<-chan Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil, ErrAlreadyStarted
	}
	s.started = true

	lines := make(chan readResult)
	go s.read(lines)

	out := make(chan Outcome)
	go func() {
		defer close(out)
		for {
			select {
			case res, ok := <-lines:
				if !ok {
					return
				}
				var o Outcome
				if res.err != nil {
					o = Failed(s.source, res.err)
				} else if o, ok = s.parse(res.line); !ok {
					continue
				}
				select {
				case out <- o:
				case <-s.stop:
					return
				case <-ctx.Done():
					return
				}
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// read runs until the reader is exhausted or fails. A read error is sent as
// the last result. A Read blocked on a terminal cannot be interrupted; Stop
// only detaches it.
func (s *LineScanner) read(lines chan<- readResult) {
	defer close(lines)

	sc := bufio.NewScanner(s.r)
	sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineSize)
	for sc.Scan() {
		select {
		case lines <- readResult{line: sc.Text()}:
		case <-s.stop:
			return
		}
	}

	if err := sc.Err(); err != nil {
		log.Warn("Scan input ended with an error", "source", s.source, "error", err)
		select {
		case lines <- readResult{err: fmt.Errorf("read scan input: %w", err)}:
		case <-s.stop:
		}
	}
}

func (s *LineScanner) parse(line string) (Outcome, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Outcome{}, false
	}

	if reason, ok := strings.CutPrefix(line, failurePrefix); ok {
		capErr, err := ParseReason(reason)
		if err != nil {
			return Failed(s.source, err), true
		}
		return Failed(s.source, capErr), true
	}
	return Scanned(s.source, line), true
}

func (s *LineScanner) Stop() {
	s.once.Do(func() { close(s.stop) })
}
