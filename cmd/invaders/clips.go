package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/manifest"
)

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "List registered clips",
	Long:  `Display every clip name in the manifest and the file it plays. Without a manifest file the built-in clips are listed.`,
	Args:  cobra.NoArgs,
	RunE:  runClips,
}

func init() {
	rootCmd.AddCommand(clipsCmd)
}

func runClips(cmd *cobra.Command, args []string) error {
	source := cfg.Manifest.Path
	m, err := manifest.Load(cfg.Manifest.Path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		m = manifest.Default()
		source = "built-in"
	case err != nil:
		return fmt.Errorf("loading manifest: %w", err)
	}

	out := cmd.OutOrStdout()
	names := m.Names()
	fmt.Fprintf(out, "Clips (%s):\n", source)
	if len(names) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}

	maxLen := 0
	for _, name := range names {
		maxLen = max(maxLen, len(name))
	}
	for _, name := range names {
		path, _ := m.Path(name)
		fmt.Fprintf(out, "  %-*s  %s\n", maxLen, name, path)
	}
	return nil
}
