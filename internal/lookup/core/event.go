package core

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
)

// EventKind tags the variants of the coordinator event stream.
type EventKind string

const (
	EventShowActivity    EventKind = "show_activity"
	EventHideActivity    EventKind = "hide_activity"
	EventShowVehicleInfo EventKind = "show_vehicle_info"
	EventShowErrorAlert  EventKind = "show_error_alert"
)

// Event is one message of the lookup event stream. Vehicle is only set for
// EventShowVehicleInfo and Err only for EventShowErrorAlert.
type Event struct {
	Kind EventKind

	// RequestID correlates the three events of one lookup.
	RequestID string

	// Code is the scanned code the lookup was started for.
	Code string

	Vehicle model.VehicleInfo
	Err     error

	Time time.Time
}

func ShowActivity() Event { return Event{Kind: EventShowActivity} }

func HideActivity() Event { return Event{Kind: EventHideActivity} }

func ShowVehicleInfo(v model.VehicleInfo) Event {
	return Event{Kind: EventShowVehicleInfo, Vehicle: v}
}

func ShowErrorAlert(err error) Event {
	return Event{Kind: EventShowErrorAlert, Err: err}
}

// Terminal reports whether e ends a lookup.
func (e Event) Terminal() bool {
	return e.Kind == EventShowVehicleInfo || e.Kind == EventShowErrorAlert
}

// Equal compares the variant and its payload, ignoring correlation fields.
// Error payloads are equal when they are the same error, one wraps the other,
// or both fall in the same Kind.
func (e Event) Equal(o Event) bool {
	if e.Kind != o.Kind {
		return false
	}

	switch e.Kind {
	case EventShowVehicleInfo:
		return e.Vehicle == o.Vehicle
	case EventShowErrorAlert:
		if e.Err == nil || o.Err == nil {
			return e.Err == o.Err
		}
		if errors.Is(e.Err, o.Err) || errors.Is(o.Err, e.Err) {
			return true
		}
		return ErrorKind(e.Err) == ErrorKind(o.Err) && ErrorKind(e.Err) != KindUnknown
	default:
		return true
	}
}

type eventError struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

type eventJSON struct {
	Kind      EventKind          `json:"kind"`
	RequestID string             `json:"requestId,omitempty"`
	Code      string             `json:"code,omitempty"`
	Vehicle   *model.VehicleInfo `json:"vehicle,omitempty"`
	Error     *eventError        `json:"error,omitempty"`
	Time      time.Time          `json:"time"`
}

// MarshalJSON renders the event for remote presenters. Errors are reduced to
// their Kind and user-facing message.
func (e Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{
		Kind:      e.Kind,
		RequestID: e.RequestID,
		Code:      e.Code,
		Time:      e.Time,
	}
	if e.Kind == EventShowVehicleInfo {
		v := e.Vehicle
		out.Vehicle = &v
	}
	if e.Err != nil {
		out.Error = &eventError{Kind: ErrorKind(e.Err), Message: Message(e.Err)}
	}
	return json.Marshal(out)
}
