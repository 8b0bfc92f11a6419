package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/mqtt"
)

const (
	scanQoS = 1

	unsubscribeTimeout = 5 * time.Second
)

var _ Scanner = (*MQTTScanner)(nil)

// Payload is the message a scanning device publishes. Exactly one of Code and
// Failure is set.
type Payload struct {
	Code    string `json:"code,omitempty"`
	Failure string `json:"failure,omitempty"`
}

// MQTTScanner receives outcomes published by a remote scanning device.
type MQTTScanner struct {
	client mqtt.Subscriber
	topic  string

	mu      sync.RWMutex
	started bool
	stopped bool
	out     chan Outcome

	stop chan struct{}
	once sync.Once
}

func NewMQTTScanner(client mqtt.Subscriber, topic string) *MQTTScanner {
	return &MQTTScanner{client: client, topic: topic, stop: make(chan struct{})}
}

func (s *MQTTScanner) Start(ctx context.Context) (<-chan Outcome, error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.started = true
	s.out = make(chan Outcome)
	if s.stopped {
		close(s.out)
		s.mu.Unlock()
		return s.out, nil
	}
	s.mu.Unlock()

	if err := s.client.Subscribe(ctx, s.topic, scanQoS, s.handle); err != nil {
		s.Stop()
		return nil, fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	log.Info("Listening for scans", "topic", s.topic)

	context.AfterFunc(ctx, s.Stop)
	return s.out, nil
}

func (s *MQTTScanner) handle(ctx context.Context, topic string, payload []byte) {
	o, err := Decode(payload)
	if err != nil {
		log.Warn("Dropping malformed scan message", "topic", topic, "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return
	}

	select {
	case s.out <- o:
	case <-s.stop:
	case <-ctx.Done():
	}
}

// Decode parses a scan message.
func Decode(payload []byte) (Outcome, error) {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		return Outcome{}, fmt.Errorf("decode scan payload: %w", err)
	}

	switch {
	case p.Failure != "":
		capErr, err := ParseReason(p.Failure)
		if err != nil {
			return Outcome{}, err
		}
		return Failed(SourceMQTT, capErr), nil
	case p.Code != "":
		return Scanned(SourceMQTT, p.Code), nil
	default:
		return Outcome{}, errors.New("scan payload has neither code nor failure")
	}
}

func (s *MQTTScanner) Stop() {
	s.once.Do(func() {
		close(s.stop)

		s.mu.Lock()
		s.stopped = true
		started := s.out != nil
		if started {
			close(s.out)
		}
		s.mu.Unlock()

		if !started {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), unsubscribeTimeout)
		defer cancel()
		if err := s.client.Unsubscribe(ctx, s.topic); err != nil {
			log.Warn("Failed to unsubscribe from scan topic", "topic", s.topic, "error", err)
		}
	})
}
