package main

import (
	"fmt"
	"path/filepath"

	"github.com/gopxl/beep"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/synth"
)

var genDir string

var genCmd = &cobra.Command{
	Use:   "gen [effect]...",
	Short: "Synthesize the built-in clips as WAV files",
	Long:  `Write procedurally generated clips next to the manifest (or into --dir). With no arguments every built-in effect is written.`,
	RunE:  runGen,
}

func init() {
	genCmd.Flags().StringVar(&genDir, "dir", "", "output directory (default: manifest directory)")
	rootCmd.AddCommand(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	dir := genDir
	if dir == "" {
		dir = filepath.Dir(cfg.Manifest.Path)
	}

	paths, err := synth.Generate(dir, beep.SampleRate(cfg.Audio.SampleRate), args...)
	for _, p := range paths {
		fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", p)
	}
	if err != nil {
		return fmt.Errorf("generating clips: %w", err)
	}
	return nil
}
