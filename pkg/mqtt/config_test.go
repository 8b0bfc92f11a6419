package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientConfigValidate(t *testing.T) {
	cfg := &ClientConfig{BrokerURL: "tcp://localhost:1883", ClientID: "qrlookup-test"}
	setDefaultConfig(cfg)

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, uint16(60), cfg.KeepAlive)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)

	assert.Error(t, (&ClientConfig{ClientID: "x"}).Validate())
	assert.Error(t, (&ClientConfig{BrokerURL: "http://broker:80", ClientID: "x"}).Validate())
	assert.Error(t, (&ClientConfig{BrokerURL: "tcp://broker:1883"}).Validate())
}

func TestNewClientRejectsNilConfig(t *testing.T) {
	_, err := NewClient(nil)
	assert.Error(t, err)
}

func TestTopicsMatch(t *testing.T) {
	tests := []struct {
		filter, topic string
		want          bool
	}{
		{"qrlookup/v1/scan/kiosk-7", "qrlookup/v1/scan/kiosk-7", true},
		{"qrlookup/v1/scan/+", "qrlookup/v1/scan/kiosk-7", true},
		{"qrlookup/v1/scan/+", "qrlookup/v1/scan/kiosk-7/extra", false},
		{"qrlookup/v1/#", "qrlookup/v1/lookup/events/kiosk-7", true},
		{"qrlookup/v1/scan/+", "qrlookup/v1/lookup/events/kiosk-7", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, topicsMatch(tt.filter, tt.topic), "%s vs %s", tt.filter, tt.topic)
	}

	assert.Equal(t, "qrlookup/v1/scan/+", topicFilter("$share/agents/qrlookup/v1/scan/+"))
}
