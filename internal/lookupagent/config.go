package lookupagent

import (
	"errors"
	"fmt"
	"io"

	"github.com/autopeer-io/qrlookup/internal/lookup/coordinator"
	"github.com/autopeer-io/qrlookup/internal/lookup/core/service"
	"github.com/autopeer-io/qrlookup/internal/lookup/fetcher"
	"github.com/autopeer-io/qrlookup/internal/lookupagent/notifier"
	"github.com/autopeer-io/qrlookup/internal/lookupagent/presenter"
	"github.com/autopeer-io/qrlookup/internal/lookupagent/server"
	"github.com/autopeer-io/qrlookup/internal/scan"
	"github.com/autopeer-io/qrlookup/pkg/log"
	"github.com/autopeer-io/qrlookup/pkg/mqtt"
	mqtttopic "github.com/autopeer-io/qrlookup/pkg/mqtt/topic"
	"github.com/autopeer-io/qrlookup/pkg/options"
)

type Config struct {
	LookupOptions *options.LookupOptions
	HttpOptions   *options.HttpOptions
	MqttOptions   *options.MqttOptions
	ScanOptions   *options.ScanOptions

	// In is read by the stdin scan source; Out receives console output.
	In  io.Reader
	Out io.Writer

	// NewMqttClient builds the broker client. Defaults to mqtt.NewClient.
	NewMqttClient func(cfg *mqtt.ClientConfig) (mqtt.Client, error)
}

// NewCoordinator builds the lookup pipeline: HTTP fetcher, vehicle service
// and coordinator.
func (cfg *Config) NewCoordinator(opts ...coordinator.Option) *coordinator.Coordinator {
	f := fetcher.NewWithTimeout(cfg.LookupOptions.Timeout)
	svc := service.NewVehicleService(cfg.LookupOptions.BaseURL, f)
	return coordinator.New(svc, opts...)
}

func (cfg *Config) NewAgent() (*Agent, error) {
	if cfg.ScanOptions.Source == options.ScanSourceMQTT && !cfg.MqttOptions.Enabled {
		return nil, errors.New("--scan.source=mqtt requires --mqtt.enabled")
	}

	bus := coordinator.NewBroadcaster()
	a := &Agent{
		bus:           bus,
		coordinator:   cfg.NewCoordinator(coordinator.WithBroadcaster(bus), coordinator.WithLogger(log.WithName("coordinator"))),
		console:       presenter.NewConsole(cfg.Out),
		lookupTimeout: cfg.LookupOptions.Timeout,
	}

	var topics *mqtttopic.TopicBuilder
	if cfg.MqttOptions.Enabled {
		client, err := cfg.newMqttClient()
		if err != nil {
			return nil, fmt.Errorf("failed to init mqtt client: %w", err)
		}
		a.mqtt = client
		topics = mqtttopic.NewTopicBuilder(cfg.MqttOptions.TopicRoot)
		a.notifier = notifier.NewMQTTNotifier(client, topics.LookupEvents(cfg.MqttOptions.DeviceID))
	}

	switch cfg.ScanOptions.Source {
	case options.ScanSourceStdin:
		a.scanner = scan.NewLineScanner(cfg.In)
	case options.ScanSourceMQTT:
		a.scanner = scan.NewMQTTScanner(a.mqtt, topics.Scan(cfg.MqttOptions.DeviceID))
	}

	if cfg.HttpOptions.Enabled {
		a.server = server.NewServer(cfg.HttpOptions, a.coordinator, a.ready)
	}

	return a, nil
}

func (cfg *Config) newMqttClient() (mqtt.Client, error) {
	newClient := cfg.NewMqttClient
	if newClient == nil {
		newClient = mqtt.NewClient
	}
	return newClient(cfg.MqttOptions.ToClientConfig())
}

func (a *Agent) ready() error {
	if a.mqtt != nil && !a.mqtt.IsConnected() {
		return errors.New("mqtt broker not connected")
	}
	return nil
}
