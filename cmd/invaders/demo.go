package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/lixenwraith/invaders/audio"
	"github.com/lixenwraith/invaders/core"
)

const demoFrame = 50 * time.Millisecond

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Interactive key-driven sound board",
	Long: `Open a terminal screen that maps game actions to clips:
space=pew  m=move  x=explosion  s=stop all then lose  q/Esc=quit`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// keyClips maps rune keys to the clip a game action triggers
var keyClips = map[rune]string{
	' ': "pew",
	'm': "move",
	'x': "explosion",
}

type demo struct {
	screen tcell.Screen
	engine *audio.Engine
	last   string
}

func runDemo(cmd *cobra.Command, args []string) error {
	a, err := startApp(cfg, true)
	if err != nil {
		return fmt.Errorf("starting audio: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		_ = a.stop()
		return fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		_ = a.stop()
		return fmt.Errorf("initializing screen: %w", err)
	}

	// Restore the terminal before reporting a crash from any engine goroutine
	core.SetCrashHandler(func(r any, stack []byte) {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINVADERS CRASHED: %v\x1b[0m\r\n", r)
		fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", stack)
		os.Exit(1)
	})
	defer core.SetCrashHandler(nil)

	d := &demo{screen: screen, engine: a.engine()}
	d.play("startup")
	d.run()

	screen.Fini()
	stopErr := a.stop()
	printStats(cmd, d.engine.Stats())
	return stopErr
}

func (d *demo) run() {
	ticker := time.NewTicker(demoFrame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 16)
	core.Go(func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	})

	d.draw()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !d.handleInput(ev) {
				return
			}
			d.draw()
		case <-ticker.C:
			d.draw()
		}
	}
}

// handleInput returns false when the demo should exit
func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch r := ev.Rune(); r {
		case 'q':
			return false
		case 's':
			if err := d.engine.StopAll(); err != nil {
				d.last = "stop all: " + err.Error()
				return true
			}
			d.play("lose")
		default:
			if name, ok := keyClips[r]; ok {
				d.play(name)
			}
		}

	case *tcell.EventResize:
		d.screen.Sync()
	}
	return true
}

func (d *demo) play(name string) {
	if err := d.engine.Play(name); err != nil {
		d.last = fmt.Sprintf("%s: %v", name, err)
		return
	}
	d.last = "requested " + name
}

func (d *demo) draw() {
	d.screen.Clear()

	title := tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	plain := tcell.StyleDefault
	dim := tcell.StyleDefault.Foreground(tcell.ColorGray)
	busy := tcell.StyleDefault.Foreground(tcell.ColorYellow)

	y := 0
	d.text(0, y, title, "INVADERS SOUND BOARD")
	y += 2
	d.text(0, y, dim, "space=pew  m=move  x=explosion  s=stop all + lose  q=quit")
	y += 2

	st := d.engine.Status()
	for i, b := range d.engine.Busy() {
		if b {
			clip := st.Strings.Get(audio.WorkerClipKey(i)).Load()
			d.text(0, y, busy, fmt.Sprintf("worker %d  busy  %s", i, clip))
		} else {
			d.text(0, y, dim, fmt.Sprintf("worker %d  idle", i))
		}
		y++
	}
	y++

	s := d.engine.Stats()
	d.text(0, y, plain, fmt.Sprintf("played %d  dropped %d  failed %d  interrupted %d",
		s.Played, s.Dropped, s.Failed, s.Interrupted))
	y += 2
	d.text(0, y, plain, d.last)

	d.screen.Show()
}

func (d *demo) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
