package app

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/autopeer-io/qrlookup/pkg/log"
)

const (
	configFlagName = "config"

	// EnvPrefix prefixes environment overrides, e.g. QRLOOKUP_MQTT_BROKER.
	EnvPrefix = "QRLOOKUP"
)

// loadConfig layers defaults, the optional config file, environment
// variables and command line flags into v, in increasing precedence.
func loadConfig(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	file, _ := cmd.Flags().GetString(configFlagName)
	if file == "" {
		return nil
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", file, err)
	}
	return nil
}

// watchLogLevel applies log.level changes made to the config file while the
// process runs. Other settings need a restart.
func watchLogLevel(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := v.GetString("log.level")
		if err := log.SetLevel(level); err != nil {
			log.Error(err, "Ignoring invalid log level from config file", "file", e.Name)
			return
		}
		log.Info("Reloaded log level", "file", e.Name, "level", level)
	})
	v.WatchConfig()
}
