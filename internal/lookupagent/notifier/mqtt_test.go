package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
)

type published struct {
	topic   string
	qos     int
	retain  bool
	payload []byte
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(_ context.Context, topic string, qos int, retain bool, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{topic, qos, retain, payload})
	return nil
}

const topic = "qrlookup/v1/lookup/events/scanner-001"

func TestNotifyPublishesVehicleEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, topic)

	e := core.ShowVehicleInfo(model.VehicleInfo{Name: "w9mb", ID: "id-1", Category: "scooter", Price: 10, Currency: "Kr"})
	e.RequestID = "req-1"
	e.Code = "w9mb"
	e.Time = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, n.Notify(context.Background(), e))
	require.Len(t, pub.msgs, 1)

	msg := pub.msgs[0]
	assert.Equal(t, topic, msg.topic)
	assert.Equal(t, 1, msg.qos)
	assert.False(t, msg.retain)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "show_vehicle_info", got["kind"])
	assert.Equal(t, "req-1", got["requestId"])
	assert.Equal(t, "w9mb", got["code"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got["time"])
	assert.Equal(t, map[string]any{
		"name": "w9mb", "id": "id-1", "category": "scooter", "price": float64(10), "currency": "Kr",
	}, got["vehicle"])
	assert.NotContains(t, got, "error")
}

func TestNotifyPublishesErrorEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, topic)

	require.NoError(t, n.Notify(context.Background(), core.ShowErrorAlert(core.ErrInvalidResponse)))

	var got struct {
		Kind  string `json:"kind"`
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(pub.msgs[0].payload, &got))
	assert.Equal(t, "show_error_alert", got.Kind)
	assert.Equal(t, "invalid_response", got.Error.Kind)
	assert.Equal(t, "This QR code is not valid.", got.Error.Message)
}

func TestNotifyWrapsPublishError(t *testing.T) {
	cause := errors.New("not connected")
	n := NewMQTTNotifier(&fakePublisher{err: cause}, topic)

	err := n.Notify(context.Background(), core.HideActivity())
	assert.ErrorIs(t, err, cause)
	assert.ErrorContains(t, err, topic)
}
