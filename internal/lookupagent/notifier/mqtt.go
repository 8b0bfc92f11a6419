package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/pkg/mqtt"
)

const eventQoS = 1

var _ core.Notifier = (*MQTTNotifier)(nil)

// MQTTNotifier forwards lookup events to a remote presentation layer.
type MQTTNotifier struct {
	publisher mqtt.Publisher
	topic     string
}

func NewMQTTNotifier(publisher mqtt.Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{publisher: publisher, topic: topic}
}

// Notify publishes e as JSON. Events are not retained: a presenter that
// connects later must not see a stale activity indicator.
func (n *MQTTNotifier) Notify(ctx context.Context, e core.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Kind, err)
	}

	if err := n.publisher.Publish(ctx, n.topic, eventQoS, false, payload); err != nil {
		return fmt.Errorf("publish %s event to %s: %w", e.Kind, n.topic, err)
	}
	return nil
}
