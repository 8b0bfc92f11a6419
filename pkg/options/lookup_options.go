package options

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*LookupOptions)(nil)

// DefaultLookupBaseURL is the vehicle endpoint; the scanned code is appended as is.
const DefaultLookupBaseURL = "https://ios-assignment.glitch.me/vehicle?qrcode="

// LookupOptions configures the remote vehicle lookup.
type LookupOptions struct {
	// BaseURL is concatenated with the scanned code to build the request URL.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Timeout for the whole HTTP exchange. Zero disables the client timeout.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewLookupOptions creates a LookupOptions with default values.
func NewLookupOptions() *LookupOptions {
	return &LookupOptions{
		BaseURL: DefaultLookupBaseURL,
		Timeout: 30 * time.Second,
	}
}

// Validate checks that the base URL is absolute.
func (o *LookupOptions) Validate() []error {
	if o == nil {
		return nil
	}

	errors := []error{}

	u, err := url.Parse(o.BaseURL)
	switch {
	case err != nil:
		errors = append(errors, fmt.Errorf("--lookup.base-url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https":
		errors = append(errors, fmt.Errorf("--lookup.base-url must be an http(s) URL, got %q", o.BaseURL))
	case u.Host == "":
		errors = append(errors, fmt.Errorf("--lookup.base-url has no host: %q", o.BaseURL))
	}

	if o.Timeout < 0 {
		errors = append(errors, fmt.Errorf("--lookup.timeout must not be negative"))
	}

	return errors
}

// AddFlags adds flags for LookupOptions to the specified FlagSet.
func (o *LookupOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.BaseURL, "lookup.base-url", o.BaseURL, "Vehicle lookup endpoint; the scanned code is appended to it.")
	fs.DurationVar(&o.Timeout, "lookup.timeout", o.Timeout, "Timeout of one lookup request (0 = no timeout).")
}
