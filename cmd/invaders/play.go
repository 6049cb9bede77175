package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/audio"
	"github.com/lixenwraith/invaders/constant"
)

var (
	playInterval time.Duration
	playWait     time.Duration
	playMetrics  bool
)

var playCmd = &cobra.Command{
	Use:   "play <clip>...",
	Short: "Play clips by name",
	Long:  `Request each clip in order, report which worker took it or whether it was dropped, then wait for playback to finish.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().DurationVar(&playInterval, "interval", 0, "delay between requests")
	playCmd.Flags().DurationVar(&playWait, "wait", 30*time.Second, "maximum time to wait for playback to finish")
	playCmd.Flags().BoolVar(&playMetrics, "metrics", false, "dump the status registry after playback")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	a, err := startApp(cfg, false)
	if err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}

	out := cmd.OutOrStdout()
	e := a.engine()
	for i, name := range args {
		if i > 0 && playInterval > 0 {
			time.Sleep(playInterval)
		}
		res, err := e.TryPlay(cmd.Context(), name)
		switch {
		case err != nil:
			fmt.Fprintf(out, "  %-12s  error: %v\n", name, err)
		case res.Dropped:
			fmt.Fprintf(out, "  %-12s  dropped (pool busy)\n", name)
		default:
			fmt.Fprintf(out, "  %-12s  worker %d\n", name, res.Worker)
		}
	}

	if err := waitIdle(cmd.Context(), e, playWait); err != nil {
		fmt.Fprintf(out, "playback still running after %s, stopping\n", playWait)
	}
	stopErr := a.stop()

	printStats(cmd, e.Stats())
	if playMetrics {
		for _, line := range a.status.Dump() {
			fmt.Fprintln(out, line)
		}
	}
	return stopErr
}

// waitIdle polls until every worker is idle, ctx ends or limit elapses
func waitIdle(ctx context.Context, e *audio.Engine, limit time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	ticker := time.NewTicker(constant.AudioPollInterval)
	defer ticker.Stop()

	for e.BusyCount() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func printStats(cmd *cobra.Command, s audio.Stats) {
	fmt.Fprintf(cmd.OutOrStdout(), "played=%d dropped=%d failed=%d interrupted=%d rejected=%d\n",
		s.Played, s.Dropped, s.Failed, s.Interrupted, s.Rejected)
}
