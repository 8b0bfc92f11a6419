package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
)

var scooter = model.VehicleInfo{
	Name:     "w9mb",
	ID:       "fac39a25-7298-4226-952a-4a0a21759b9f",
	Category: "scooter",
	Price:    10,
	Currency: "Kr",
}

func TestEventEqual(t *testing.T) {
	assert.True(t, ShowActivity().Equal(ShowActivity()))
	assert.False(t, ShowActivity().Equal(HideActivity()))

	assert.True(t, ShowVehicleInfo(scooter).Equal(ShowVehicleInfo(scooter)))
	other := scooter
	other.Price = 20
	assert.False(t, ShowVehicleInfo(scooter).Equal(ShowVehicleInfo(other)))

	withID := ShowActivity()
	withID.RequestID = "abc"
	assert.True(t, withID.Equal(ShowActivity()), "correlation fields are ignored")
}

func TestEventEqualDistinguishesErrorKinds(t *testing.T) {
	invalid := ShowErrorAlert(ErrInvalidResponse)

	assert.True(t, invalid.Equal(ShowErrorAlert(ErrInvalidResponse)))
	assert.True(t, ShowErrorAlert(&InvalidURLError{URL: "a"}).Equal(ShowErrorAlert(&InvalidURLError{URL: "b"})))
	assert.False(t, invalid.Equal(ShowErrorAlert(&InvalidURLError{URL: "a"})))

	boom := errors.New("boom")
	assert.True(t, ShowErrorAlert(boom).Equal(ShowErrorAlert(boom)))
	assert.False(t, ShowErrorAlert(boom).Equal(ShowErrorAlert(errors.New("bang"))))
}

func TestEventMarshalJSON(t *testing.T) {
	at := time.Date(2025, 6, 23, 10, 0, 0, 0, time.UTC)

	e := ShowVehicleInfo(scooter)
	e.RequestID, e.Code, e.Time = "req-1", "w9mb", at

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind":"show_vehicle_info",
		"requestId":"req-1",
		"code":"w9mb",
		"vehicle":{"name":"w9mb","id":"fac39a25-7298-4226-952a-4a0a21759b9f","category":"scooter","price":10,"currency":"Kr"},
		"time":"2025-06-23T10:00:00Z"
	}`, string(data))

	e = ShowErrorAlert(ErrInvalidResponse)
	e.Time = at
	data, err = json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"kind":"show_error_alert",
		"error":{"kind":"invalid_response","message":"This QR code is not valid."},
		"time":"2025-06-23T10:00:00Z"
	}`, string(data))
}

func TestTerminal(t *testing.T) {
	assert.False(t, ShowActivity().Terminal())
	assert.False(t, HideActivity().Terminal())
	assert.True(t, ShowVehicleInfo(scooter).Terminal())
	assert.True(t, ShowErrorAlert(ErrInvalidResponse).Terminal())
}
