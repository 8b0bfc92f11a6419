package presenter

import (
	"fmt"
	"io"
	"sync"

	"github.com/gosuri/uitable"

	"github.com/autopeer-io/qrlookup/internal/lookup/core"
	"github.com/autopeer-io/qrlookup/internal/lookup/core/model"
)

// Console renders lookup events as plain text.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Present renders one coordinator event. HideActivity prints nothing: the
// terminal event that follows replaces the activity line.
func (c *Console) Present(e core.Event) {
	switch e.Kind {
	case core.EventShowActivity:
		c.printf("Looking up %s...\n", e.Code)
	case core.EventShowVehicleInfo:
		c.printf("%s\n", DetailsTable(e.Vehicle))
	case core.EventShowErrorAlert:
		c.Alert(e.Err)
	}
}

// Alert renders an error with its user-facing message.
func (c *Console) Alert(err error) {
	c.printf("Error: %s\n", core.Message(err))
}

// Rejected reports a scan ignored because a lookup is in flight.
func (c *Console) Rejected(code string, err error) {
	c.printf("Ignored %s: %v\n", code, err)
}

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, format, args...)
}

// DetailsTable lays out a vehicle as ID, Name, Category and Price rows.
func DetailsTable(v model.VehicleInfo) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 60
	table.AddRow("ID:", v.ID)
	table.AddRow("Name:", v.Name)
	table.AddRow("Category:", v.Category)
	table.AddRow("Price:", v.PriceLabel())
	return table
}
