package options

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAddress(t *testing.T) {
	assert.NoError(t, ValidateAddress("0.0.0.0:8080"))
	assert.NoError(t, ValidateAddress(":9090"))
	assert.Error(t, ValidateAddress("8080"))
	assert.Error(t, ValidateAddress("localhost:http-alt"))
	assert.Error(t, ValidateAddress("localhost:70000"))
}

func TestLookupOptionsValidate(t *testing.T) {
	o := NewLookupOptions()
	assert.Empty(t, o.Validate())

	o.BaseURL = "ftp://example.com/vehicle?qrcode="
	assert.Len(t, o.Validate(), 1)

	o.BaseURL = "https:///vehicle?qrcode="
	assert.Len(t, o.Validate(), 1)

	o = NewLookupOptions()
	o.Timeout = -time.Second
	assert.Len(t, o.Validate(), 1)
}

func TestHttpOptionsDisabledSkipsValidation(t *testing.T) {
	o := NewHttpOptions()
	o.Addr = "nonsense"
	assert.Len(t, o.Validate(), 1)

	o.Enabled = false
	assert.Empty(t, o.Validate())
}

func TestMqttOptions(t *testing.T) {
	o := NewMqttOptions()
	assert.Empty(t, o.Validate(), "disabled options are not validated")

	o.Enabled = true
	o.DeviceID = ""
	assert.Len(t, o.Validate(), 1)

	o.DeviceID = "kiosk-7"
	cfg := o.ToClientConfig()
	assert.Equal(t, "qrlookup-kiosk-7", cfg.ClientID)
	assert.Equal(t, uint16(60), cfg.KeepAlive)

	o.ClientID = "explicit"
	assert.Equal(t, "explicit", o.ToClientConfig().ClientID)
}

func TestScanOptions(t *testing.T) {
	o := NewScanOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--scan.source=mqtt"}))
	assert.Empty(t, o.Validate())

	o.Source = "camera"
	assert.Len(t, o.Validate(), 1)
}
