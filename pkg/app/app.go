package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cliflag "k8s.io/component-base/cli/flag"
	"k8s.io/component-base/term"
)

// RunFunc is the application's entry point. args holds the positional
// arguments left after flag parsing.
type RunFunc func(args []string) error

// App is the main structure of a cli application.
type App struct {
	name        string
	shortDesc   string
	description string
	options     NamedFlagSetOptions
	runFunc     RunFunc
	args        cobra.PositionalArgs
	watchConfig bool
	commands    []*App

	cmd *cobra.Command
}

// Option defines optional parameters for initializing the application
// structure.
type Option func(*App)

// WithDescription sets the long description shown by --help.
func WithDescription(desc string) Option {
	return func(a *App) {
		a.description = desc
	}
}

// WithOptions opens the application's function to read from the command line
// or read parameters from the configuration file.
func WithOptions(opts NamedFlagSetOptions) Option {
	return func(a *App) {
		a.options = opts
	}
}

// WithRunFunc is used to set the application startup callback function option.
func WithRunFunc(run RunFunc) Option {
	return func(a *App) {
		a.runFunc = run
	}
}

// WithDefaultValidArgs rejects any positional argument.
func WithDefaultValidArgs() Option {
	return func(a *App) {
		a.args = func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				if len(arg) > 0 {
					return fmt.Errorf("%q does not take any arguments, got %q", cmd.CommandPath(), args)
				}
			}
			return nil
		}
	}
}

// WithValidArgs sets a custom positional argument check.
func WithValidArgs(args cobra.PositionalArgs) Option {
	return func(a *App) {
		a.args = args
	}
}

// WithWatchConfig reloads the log level when the config file changes.
func WithWatchConfig() Option {
	return func(a *App) {
		a.watchConfig = true
	}
}

// WithSubCommands nests other applications below this one.
func WithSubCommands(apps ...*App) Option {
	return func(a *App) {
		a.commands = append(a.commands, apps...)
	}
}

// NewApp creates a new application instance based on the given application
// name, short description and options.
func NewApp(name string, shortDesc string, opts ...Option) *App {
	a := &App{
		name:      name,
		shortDesc: shortDesc,
	}

	for _, o := range opts {
		o(a)
	}

	a.buildCommand()

	return a
}

// Command returns the cobra command of the application.
func (a *App) Command() *cobra.Command {
	return a.cmd
}

// Run executes the application with os.Args.
func (a *App) Run() error {
	return a.cmd.Execute()
}

func (a *App) buildCommand() {
	cmd := &cobra.Command{
		Use:           a.name,
		Short:         a.shortDesc,
		Long:          a.description,
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          a.args,
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w\nSee '%s --help' for usage", err, cmd.CommandPath())
	})

	var namedFlagSets cliflag.NamedFlagSets
	if a.options != nil {
		namedFlagSets = a.options.Flags()
		fs := cmd.Flags()
		for _, f := range namedFlagSets.FlagSets {
			fs.AddFlagSet(f)
		}
	}

	if len(a.commands) > 0 {
		cmd.PersistentFlags().String(configFlagName, "", "Path to a YAML config file. Flags and $"+EnvPrefix+"_* variables override it.")
		for _, sub := range a.commands {
			cmd.AddCommand(sub.cmd)
		}
	}

	if a.runFunc != nil {
		cmd.RunE = a.runCommand
	}

	if len(namedFlagSets.FlagSets) > 0 {
		cols, _, _ := term.TerminalSize(cmd.OutOrStdout())
		cliflag.SetUsageAndHelpFunc(cmd, namedFlagSets, cols)
	}

	a.cmd = cmd
}

func (a *App) runCommand(cmd *cobra.Command, args []string) error {
	if a.options != nil {
		v := viper.New()
		if err := loadConfig(v, cmd); err != nil {
			return err
		}
		if err := v.Unmarshal(a.options); err != nil {
			return fmt.Errorf("apply configuration: %w", err)
		}
		if err := a.options.Complete(); err != nil {
			return err
		}
		if err := a.options.Validate(); err != nil {
			return err
		}
		if a.watchConfig {
			watchLogLevel(v)
		}
	}

	return a.runFunc(args)
}
