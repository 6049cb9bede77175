// Package config loads invaders settings from file and environment
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/lixenwraith/invaders/audio"
	"github.com/lixenwraith/invaders/constant"
)

// EnvPrefix prefixes environment overrides, e.g. INVADERS_AUDIO_POOL_SIZE
const EnvPrefix = "INVADERS"

// Config holds all configuration options for invaders
type Config struct {
	Audio    audio.Config   `mapstructure:"audio"`
	Manifest ManifestConfig `mapstructure:"manifest"`
	Log      LogConfig      `mapstructure:"log"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-"`
}

// ManifestConfig locates the clip manifest
type ManifestConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"` // reload on change
}

// LogConfig controls file logging
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	Dir   string `mapstructure:"dir"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() Config {
	return Config{
		Audio: audio.DefaultConfig(),
		Manifest: ManifestConfig{
			Path: constant.ManifestDefaultPath,
		},
		Log: LogConfig{
			Dir: "logs",
		},
	}
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("audio.enabled", d.Audio.Enabled)
	v.SetDefault("audio.pool_size", d.Audio.PoolSize)
	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("audio.stop_mode", d.Audio.StopMode)
	v.SetDefault("audio.inbox_size", d.Audio.InboxSize)
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.buffer", d.Audio.Buffer)
	v.SetDefault("audio.cache_ttl", d.Audio.CacheTTL)
	v.SetDefault("audio.shutdown_timeout", d.Audio.ShutdownTimeout)

	v.SetDefault("manifest.path", d.Manifest.Path)
	v.SetDefault("manifest.watch", d.Manifest.Watch)

	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.dir", d.Log.Dir)
}

// Load reads configuration from path, or searches ./invaders.yaml and
// $XDG_CONFIG_HOME/invaders/invaders.yaml when path is empty
// Environment variables take precedence over the file. A missing file is
// only an error when path was given explicitly
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("invaders")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "invaders"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Audio.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
