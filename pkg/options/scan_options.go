package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ScanOptions)(nil)

const (
	ScanSourceStdin = "stdin"
	ScanSourceMQTT  = "mqtt"
	ScanSourceNone  = "none"
)

// ScanOptions selects where scanned codes come from.
type ScanOptions struct {
	// Source is one of "stdin", "mqtt" or "none" (codes only arrive through POST /scan).
	Source string `json:"source" mapstructure:"source"`
}

func NewScanOptions() *ScanOptions {
	return &ScanOptions{Source: ScanSourceStdin}
}

func (o *ScanOptions) Validate() []error {
	switch o.Source {
	case ScanSourceStdin, ScanSourceMQTT, ScanSourceNone:
		return nil
	default:
		return []error{fmt.Errorf("--scan.source must be one of stdin, mqtt, none; got %q", o.Source)}
	}
}

func (o *ScanOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Source, "scan.source", o.Source, "Where scanned codes come from: stdin, mqtt or none.")
}
