package lookupagent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/qrlookup/pkg/mqtt"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

const vehicleBody = `{"name":"w9mb","id":"fac39a25-7298-4226-952a-4a0a21759b9f","category":"scooter","price":10,"currency":"Kr"}`

func lookupServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newConfig(baseURL string, in string, out *syncBuffer) *Config {
	lookup := options.NewLookupOptions()
	lookup.BaseURL = baseURL + "/vehicle?qrcode="
	httpOpts := options.NewHttpOptions()
	httpOpts.Enabled = false

	return &Config{
		LookupOptions: lookup,
		HttpOptions:   httpOpts,
		MqttOptions:   options.NewMqttOptions(),
		ScanOptions:   options.NewScanOptions(),
		In:            strings.NewReader(in),
		Out:           out,
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func runAgent(t *testing.T, ctx context.Context, cfg *Config) {
	t.Helper()
	a, err := cfg.NewAgent()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("agent did not stop")
	}
}

func TestAgentPresentsLookupFromStdin(t *testing.T) {
	srv := lookupServer(t, http.StatusOK, vehicleBody)
	out := &syncBuffer{}

	runAgent(t, context.Background(), newConfig(srv.URL, "w9mb\n", out))

	got := out.String()
	assert.True(t, strings.HasPrefix(got, "Looking up w9mb...\n"), got)
	assert.Contains(t, got, "fac39a25-7298-4226-952a-4a0a21759b9f")
	assert.Contains(t, got, "10 Kr")
}

func TestAgentPresentsLookupFailure(t *testing.T) {
	srv := lookupServer(t, http.StatusNotFound, "")
	out := &syncBuffer{}

	runAgent(t, context.Background(), newConfig(srv.URL, "unknown\n", out))

	assert.Equal(t, "Looking up unknown...\nError: This QR code is not valid.\n", out.String())
}

func TestAgentPresentsCapabilityFailure(t *testing.T) {
	out := &syncBuffer{}

	runAgent(t, context.Background(), newConfig("http://127.0.0.1:1", "!permission-denied\n", out))

	assert.Equal(t, "Error: Camera permission is denied, please allow it in settings.\n", out.String())
}

func TestNewAgentRequiresMqttForMqttSource(t *testing.T) {
	cfg := newConfig("http://127.0.0.1:1", "", &syncBuffer{})
	cfg.ScanOptions.Source = options.ScanSourceMQTT

	_, err := cfg.NewAgent()
	assert.ErrorContains(t, err, "--mqtt.enabled")
}

// fakeBroker is an in-memory mqtt.Client.
type fakeBroker struct {
	mu        sync.Mutex
	handlers  map[string]mqtt.MessageHandler
	published map[string][][]byte
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{
		handlers:  make(map[string]mqtt.MessageHandler),
		published: make(map[string][][]byte),
	}
}

func (b *fakeBroker) Start(context.Context) error           { return nil }
func (b *fakeBroker) Disconnect(context.Context)            {}
func (b *fakeBroker) AwaitConnection(context.Context) error { return nil }
func (b *fakeBroker) IsConnected() bool                     { return true }

func (b *fakeBroker) Publish(_ context.Context, topic string, _ int, _ bool, payload []byte) error {
	b.mu.Lock()
	b.published[topic] = append(b.published[topic], payload)
	b.mu.Unlock()
	return nil
}

func (b *fakeBroker) Subscribe(_ context.Context, topic string, _ int, h mqtt.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = h
	return nil
}

func (b *fakeBroker) Unsubscribe(_ context.Context, topic string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, topic)
	return nil
}

func (b *fakeBroker) deliver(topic, payload string) bool {
	b.mu.Lock()
	h := b.handlers[topic]
	b.mu.Unlock()
	if h == nil {
		return false
	}
	go h(context.Background(), topic, []byte(payload))
	return true
}

func (b *fakeBroker) events(topic string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []map[string]any
	for _, p := range b.published[topic] {
		var m map[string]any
		if err := json.Unmarshal(p, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

func TestAgentMqttScanAndForwarding(t *testing.T) {
	srv := lookupServer(t, http.StatusOK, vehicleBody)
	broker := newFakeBroker()

	cfg := newConfig(srv.URL, "", &syncBuffer{})
	cfg.MqttOptions.Enabled = true
	cfg.ScanOptions.Source = options.ScanSourceMQTT
	cfg.NewMqttClient = func(c *mqtt.ClientConfig) (mqtt.Client, error) {
		if c.ClientID != "qrlookup-scanner-001" {
			return nil, errors.New("unexpected client id " + c.ClientID)
		}
		return broker, nil
	}

	a, err := cfg.NewAgent()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	const scanTopic = "qrlookup/v1/scan/scanner-001"
	const eventsTopic = "qrlookup/v1/lookup/events/scanner-001"

	require.Eventually(t, func() bool {
		return broker.deliver(scanTopic, `{"code":"w9mb"}`)
	}, 5*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(broker.events(eventsTopic)) == 3
	}, 5*time.Second, 10*time.Millisecond)

	events := broker.events(eventsTopic)
	assert.Equal(t, "show_activity", events[0]["kind"])
	assert.Equal(t, "hide_activity", events[1]["kind"])
	assert.Equal(t, "show_vehicle_info", events[2]["kind"])
	assert.Equal(t, events[0]["requestId"], events[2]["requestId"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("agent did not stop")
	}
}
