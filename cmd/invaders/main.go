package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/audio"
	"github.com/lixenwraith/invaders/config"
	"github.com/lixenwraith/invaders/manifest"
	"github.com/lixenwraith/invaders/service"
	"github.com/lixenwraith/invaders/status"
)

var (
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:           "invaders",
	Short:         "Sound effect engine for the invaders game",
	Long:          `Plays named sound effects on a fixed pool of playback workers. Plays that find every worker busy are dropped.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if debugFlag {
			loaded.Log.Debug = true
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./invaders.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write debug logs to logs/invaders.log")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "invaders: %v\n", err)
		os.Exit(1)
	}
}

// app is the running service graph shared by every subcommand
type app struct {
	log      zerolog.Logger
	logFile  *os.File
	status   *status.Registry
	hub      *service.Hub
	audio    *audio.Service
	manifest *manifest.Service
}

// startApp brings up logging, the audio engine and the clip manifest
// watch enables the manifest file watcher when the config asks for it
func startApp(c config.Config, watch bool, opts ...audio.Option) (*app, error) {
	logDir = c.Log.Dir
	logFile, logger := setupLogging(c.Log.Debug)

	a := &app{
		log:     logger,
		logFile: logFile,
		status:  status.NewRegistry(),
		hub:     service.NewHub(),
	}
	a.audio = audio.NewService(c.Audio, opts...)
	a.manifest = manifest.NewService(c.Manifest.Path, watch && c.Manifest.Watch, a.audio)

	for _, svc := range []service.Service{a.audio, a.manifest} {
		if err := a.hub.Register(svc); err != nil {
			a.closeLog()
			return nil, err
		}
	}

	if err := a.hub.InitAll(logger, a.status); err != nil {
		a.closeLog()
		return nil, err
	}
	if err := a.hub.StartAll(); err != nil {
		a.closeLog()
		return nil, err
	}

	logger.Info().Str("config", c.File).Strs("services", a.hub.Names()).Msg("invaders started")
	return a, nil
}

// engine returns the audio engine; non-nil once startApp succeeded
func (a *app) engine() *audio.Engine {
	return a.audio.Engine()
}

// stop shuts services down in reverse order and closes the log file
func (a *app) stop() error {
	err := a.hub.StopAll()
	if err != nil {
		a.log.Error().Err(err).Msg("shutdown incomplete")
	} else {
		a.log.Info().Msg("invaders stopped")
	}
	a.closeLog()
	return err
}

func (a *app) closeLog() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
