package topic

import (
	"fmt"
)

// Standard topic segments shared by scanning devices and lookup agents.
// Changing these values breaks compatibility with deployed devices.
const (
	// SuffixScan carries scanned codes and capability failures (Device -> Agent).
	// Structure: {root}/scan/{deviceID}
	SuffixScan = "scan"

	// SuffixLookupEvents carries coordinator events (Agent -> Presentation).
	// Structure: {root}/lookup/events/{deviceID}
	SuffixLookupEvents = "lookup/events"
)

// TopicBuilder encapsulates the logic for constructing MQTT topic strings.
type TopicBuilder struct {
	// root is the base namespace for all topics (e.g., "qrlookup/v1").
	root string
}

// NewTopicBuilder creates a new instance of TopicBuilder with the specified root namespace.
func NewTopicBuilder(root string) *TopicBuilder {
	return &TopicBuilder{root: root}
}

// Scan returns the topic a device publishes scan results on.
func (b *TopicBuilder) Scan(deviceID string) string {
	return b.build(SuffixScan, deviceID)
}

// ScanWildcard matches scan results of every device.
// Result: {root}/scan/+
func (b *TopicBuilder) ScanWildcard() string {
	return b.build(SuffixScan, "+")
}

// LookupEvents returns the topic lookup events for deviceID are forwarded to.
func (b *TopicBuilder) LookupEvents(deviceID string) string {
	return b.build(SuffixLookupEvents, deviceID)
}

// DeviceID extracts the trailing device segment of a topic built by this builder.
// It returns false when topic does not belong to suffix.
func (b *TopicBuilder) DeviceID(suffix, topic string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", b.root, suffix)
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	return topic[len(prefix):], true
}

// Pattern: {root}/{suffix}/{identifier}
func (b *TopicBuilder) build(suffix, id string) string {
	return fmt.Sprintf("%s/%s/%s", b.root, suffix, id)
}
