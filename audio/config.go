package audio

import (
	"fmt"
	"time"

	"github.com/lixenwraith/invaders/constant"
)

// Config holds audio service settings, decoded by viper via mapstructure tags
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	PoolSize        int           `mapstructure:"pool_size"`
	Backend         string        `mapstructure:"backend"`   // auto, speaker, oto, silent
	StopMode        string        `mapstructure:"stop_mode"` // cooperative, preemptive
	InboxSize       int           `mapstructure:"inbox_size"`
	SampleRate      int           `mapstructure:"sample_rate"`
	Buffer          time.Duration `mapstructure:"buffer"`
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultConfig returns the default audio configuration
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		PoolSize:        constant.AudioPoolSize,
		Backend:         string(BackendAuto),
		StopMode:        string(StopCooperative),
		InboxSize:       constant.AudioInboxSize,
		SampleRate:      constant.AudioSampleRate,
		Buffer:          constant.AudioBufferDuration,
		CacheTTL:        constant.AudioCacheTTL,
		ShutdownTimeout: constant.AudioShutdownTimeout,
	}
}

// Validate checks ranges and enum values
func (c Config) Validate() error {
	if c.PoolSize < 1 {
		return fmt.Errorf("%w: pool_size must be >= 1, got %d", ErrInvalidConfig, c.PoolSize)
	}
	if c.InboxSize < 1 {
		return fmt.Errorf("%w: inbox_size must be >= 1, got %d", ErrInvalidConfig, c.InboxSize)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be positive, got %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if _, err := ParseBackend(c.Backend); err != nil {
		return err
	}
	if _, err := ParseStopMode(c.StopMode); err != nil {
		return err
	}
	return nil
}

// stopMode returns the parsed stop mode, cooperative on parse failure
func (c Config) stopMode() StopMode {
	m, err := ParseStopMode(c.StopMode)
	if err != nil {
		return StopCooperative
	}
	return m
}
