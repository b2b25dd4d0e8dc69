package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "MEETSIGNAL"
	// envConfigDir points at a directory holding config.yaml when no path is given.
	envConfigDir = envPrefix + "_CONFIG_DIR"
	configFile   = "config.yaml"
)

// Load resolves configuration in the order defaults < YAML file < MEETSIGNAL_* env.
// CLI overrides are applied by the caller with UpdateFrom. A missing file is
// created with the defaults so operators get a template to edit.
func Load(logger *zerolog.Logger, path string) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	path = configPath(path)

	def := Default()
	v, err := newViper(def)
	if err != nil {
		return def, path, err
	}

	if err := readFile(v, path, def, logger); err != nil {
		return def, path, err
	}

	cfg := def
	hooks := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hooks); err != nil {
		return def, path, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, path, nil
}

// newViper seeds every key with its default and binds it to MEETSIGNAL_<KEY>.
// Binding explicitly lets Unmarshal see env values for keys absent from the file.
func newViper(def Config) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)

	for key, value := range defaultValues(def) {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}
	return v, nil
}

func defaultValues(c Config) map[string]any {
	return map[string]any{
		"addr":                c.Addr,
		"read_header_timeout": c.ReadHeaderTimeout,
		"shutdown_timeout":    c.ShutdownTimeout,
		"log_level":           c.LogLevel,
		"log_format":          c.LogFormat,
		"max_message_bytes":   c.MaxMessageBytes,
		"rate_limit":          c.RateLimit,
		"send_buffer":         c.SendBuffer,
		"write_timeout":       c.WriteTimeout,
		"ping_interval":       c.PingInterval,
		"allowed_origins":     c.AllowedOrigins,
		"room_capacity":       c.RoomCapacity,
		"empty_room_ttl":      c.EmptyRoomTTL,
		"sweep_interval":      c.SweepInterval,
		"jwt_secret":          c.JWTSecret,
		"jwt_issuer":          c.JWTIssuer,
		"jwt_audience":        c.JWTAudience,
		"metrics_enabled":     c.MetricsEnabled,
		"ice_servers":         c.ICEServers,
	}
}

func readFile(v *viper.Viper, path string, def Config, logger *zerolog.Logger) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeTemplate(path, def); err != nil {
			// Running read-only is fine; defaults and env still apply.
			logger.Warn().Err(err).Str("path", path).Msg("config file missing and could not be created")
			return nil
		}
		logger.Info().Str("path", path).Msg("wrote default config")
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func configPath(explicit string) string {
	switch {
	case explicit != "":
		return explicit
	case os.Getenv(envConfigDir) != "":
		return filepath.Join(os.Getenv(envConfigDir), configFile)
	default:
		return configFile
	}
}

// writeTemplate writes the defaults with durations spelled as "5s" rather than nanoseconds.
func writeTemplate(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	values := defaultValues(c)
	for key, value := range values {
		if d, ok := value.(time.Duration); ok {
			values[key] = d.String()
		}
	}
	data, err := yaml.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
