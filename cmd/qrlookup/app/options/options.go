package options

import (
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	cliflag "k8s.io/component-base/cli/flag"

	"github.com/autopeer-io/qrlookup/internal/lookupagent"
	"github.com/autopeer-io/qrlookup/pkg/app"
	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

// LookupOptions configures the one-shot lookup command.
type LookupOptions struct {
	LookupOptions *options.LookupOptions `json:"lookup" mapstructure:"lookup"`
	Log           *log.Options           `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*LookupOptions)(nil)

func NewLookupOptions() *LookupOptions {
	return &LookupOptions{
		LookupOptions: options.NewLookupOptions(),
		Log:           log.NewOptions(),
	}
}

func (o *LookupOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.LookupOptions.AddFlags(fss.FlagSet("lookup"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *LookupOptions) Complete() error {
	return nil
}

func (o *LookupOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.LookupOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *LookupOptions) Config() (*lookupagent.Config, error) {
	return &lookupagent.Config{
		LookupOptions: o.LookupOptions,
	}, nil
}

// AgentOptions configures the long-running agent.
type AgentOptions struct {
	LookupOptions *options.LookupOptions `json:"lookup" mapstructure:"lookup"`
	HttpOptions   *options.HttpOptions   `json:"http" mapstructure:"http"`
	MqttOptions   *options.MqttOptions   `json:"mqtt" mapstructure:"mqtt"`
	ScanOptions   *options.ScanOptions   `json:"scan" mapstructure:"scan"`
	Log           *log.Options           `json:"log" mapstructure:"log"`
}

var _ app.NamedFlagSetOptions = (*AgentOptions)(nil)

func NewAgentOptions() *AgentOptions {
	return &AgentOptions{
		LookupOptions: options.NewLookupOptions(),
		HttpOptions:   options.NewHttpOptions(),
		MqttOptions:   options.NewMqttOptions(),
		ScanOptions:   options.NewScanOptions(),
		Log:           log.NewOptions(),
	}
}

func (o *AgentOptions) Flags() cliflag.NamedFlagSets {
	fss := cliflag.NamedFlagSets{}
	o.LookupOptions.AddFlags(fss.FlagSet("lookup"))
	o.ScanOptions.AddFlags(fss.FlagSet("scan"))
	o.HttpOptions.AddFlags(fss.FlagSet("http"))
	o.MqttOptions.AddFlags(fss.FlagSet("mqtt"))
	o.Log.AddFlags(fss.FlagSet("log"))
	return fss
}

func (o *AgentOptions) Complete() error {
	if o.ScanOptions.Source == options.ScanSourceMQTT {
		o.MqttOptions.Enabled = true
	}
	return nil
}

func (o *AgentOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.LookupOptions.Validate()...)
	errs = append(errs, o.ScanOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func (o *AgentOptions) Config() (*lookupagent.Config, error) {
	return &lookupagent.Config{
		LookupOptions: o.LookupOptions,
		HttpOptions:   o.HttpOptions,
		MqttOptions:   o.MqttOptions,
		ScanOptions:   o.ScanOptions,
	}, nil
}
