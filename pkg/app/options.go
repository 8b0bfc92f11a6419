package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// CliOptions abstracts configuration options for reading parameters from the
// command line.
type CliOptions interface {
	// Complete fills in defaults derived from other options.
	Complete() error

	// Validate checks the options once flags and the config file are applied.
	Validate() error
}

// NamedFlagSetOptions provides flags grouped by section, printed that way in
// the help output.
type NamedFlagSetOptions interface {
	CliOptions

	Flags() cliflag.NamedFlagSets
}
