package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	genericapiserver "k8s.io/apiserver/pkg/server"

	"github.com/autopeer-io/qrlookup/cmd/qrlookup/app/options"
	"github.com/autopeer-io/qrlookup/pkg/app"
	"github.com/autopeer-io/qrlookup/pkg/log"
)

const (
	commandName = "qrlookup"
	commandDesc = `qrlookup resolves scanned vehicle QR codes to vehicle details.

Run "qrlookup lookup <code>" for a single lookup, or "qrlookup agent" to serve
scans from a terminal, an MQTT device topic or the status HTTP server.`
)

func NewApp() *app.App {
	return app.NewApp(
		commandName,
		"Resolve vehicle QR codes",
		app.WithDescription(commandDesc),
		app.WithSubCommands(newLookupApp(), newAgentApp()),
	)
}

func newLookupApp() *app.App {
	opts := options.NewLookupOptions()
	return app.NewApp(
		"lookup <code>",
		"Look up the vehicle behind one scanned code",
		app.WithDescription("Fetches the vehicle for <code> once, prints its details and exits non-zero on failure."),
		app.WithOptions(opts),
		app.WithValidArgs(cobra.ExactArgs(1)),
		app.WithRunFunc(runLookup(opts)),
	)
}

func newAgentApp() *app.App {
	opts := options.NewAgentOptions()
	return app.NewApp(
		"agent",
		"Run the long-lived lookup agent",
		app.WithDescription("Feeds scans from the configured source into the lookup coordinator and presents every lookup."),
		app.WithOptions(opts),
		app.WithDefaultValidArgs(),
		app.WithWatchConfig(),
		app.WithRunFunc(runAgent(opts)),
	)
}

func runLookup(opts *options.LookupOptions) app.RunFunc {
	return func(args []string) error {
		log.Init(opts.Log)
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.Out = os.Stdout

		return cfg.Lookup(ctx, args[0])
	}
}

func runAgent(opts *options.AgentOptions) app.RunFunc {
	return func([]string) error {
		log.Init(opts.Log)
		ctx := genericapiserver.SetupSignalContext()

		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg.In = os.Stdin
		cfg.Out = os.Stdout

		agent, err := cfg.NewAgent()
		if err != nil {
			return fmt.Errorf("failed to create agent: %w", err)
		}

		return agent.Run(ctx)
	}
}
