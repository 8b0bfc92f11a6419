package core

import (
	"context"
	"net/http"

	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
)

// Fetcher performs a single GET request and returns the raw body.
// Implementations return ErrInvalidResponse for any status other than 200 and
// hand transport errors back untouched.
type Fetcher interface {
	PerformGet(ctx context.Context, req *http.Request) ([]byte, error)
}

// VehicleInfoService resolves a scanned code to a vehicle.
type VehicleInfoService interface {
	GetVehicleInfo(ctx context.Context, code string) (model.VehicleInfo, error)
}

// Notifier delivers lookup events to a remote presentation layer.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}
