// main.go - Entry point for the Voodoo emulator

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

const version = "0.4.0"

func main() {
	cli, kctx := parseArgs(os.Args[1:])

	switch kctx.Command() {
	case "clock":
		checkf(cli.Clock.run(), "clock")
	case "config", "config <file>":
		checkf(cli.Config.run(), "config")
	case "version":
		fmt.Printf("voodoo %s\n", version)
	default:
		checkf(cli.Run.run(cli.Debug), "run")
	}
}

func (c *ClockCmd) run() error {
	pll0, err := parseRegValue(c.PLL0, 16)
	if err != nil {
		return err
	}
	hSync, err := parseRegValue(c.HSync, 32)
	if err != nil {
		return err
	}
	dac6, err := parseRegValue(c.DAC6, 8)
	if err != nil {
		return err
	}
	clock := pixelClock(uint16(pll0), uint8(dac6))
	length := lineLength(uint32(hSync))
	fmt.Printf("pixel clock  %.6f MHz\n", clock/1e6)
	fmt.Printf("line length  %d clocks\n", length)
	if t := lineDuration(length, clock); t > 0 {
		fmt.Printf("line time    %v (%.3f kHz)\n", t, 1/t.Seconds()/1000)
	} else {
		fmt.Printf("line time    %v (default)\n", defaultLineTime)
	}
	return nil
}

func (c *ConfigCmd) run() error {
	cfg := DefaultConfig()
	if c.Out == "" {
		return encodeConfig(os.Stdout, cfg)
	}
	return SaveConfig(c.Out, cfg)
}

// liveStatus holds the last statistics line for the window status bar
// and the terminal.
type liveStatus struct {
	mu   sync.Mutex
	line string
}

func (s *liveStatus) StatusLine() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line
}

func (s *liveStatus) update(samples []StatsSample) {
	if len(samples) == 0 {
		return
	}
	var tris, pixels, texels uint64
	for i := range samples {
		tris += samples[i].Triangles
		pixels += samples[i].pixelsOut()
		texels += samples[i].Texels
	}
	line := fmt.Sprintf("%3d fps  %7d tri/s  %9d pix/s  %9d tex/s  fifo %5d",
		samples[0].Frames, tris, pixels, texels, samples[0].FIFOLevel)
	s.mu.Lock()
	s.line = line
	s.mu.Unlock()
}

func (r *RunCmd) run(debug logModList) error {
	cfg := DefaultConfig()
	if r.Config != "" {
		var err error
		if cfg, err = LoadConfig(r.Config); err != nil {
			return err
		}
	}
	if r.DumpDir != "" {
		cfg.Display.DumpDir = r.DumpDir
	}
	if r.Headless {
		cfg.Display.Headless = true
	}
	if err := setupLogging(os.Stderr, cfg.Log.Level, append(cfg.Log.Debug, debug...)); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if r.Statsview != "" {
		launchStatsview(r.Statsview)
	}

	set, err := NewVoodooSet(cfg.Card)
	if err != nil {
		return err
	}
	for i := 0; i < set.Cards(); i++ {
		set.Card(i).SetScreenFilter(cfg.Display.ScreenFilter, cfg.Display.FilterThreshold)
	}

	backend := VIDEO_BACKEND_EBITEN
	if cfg.Display.Headless {
		backend = VIDEO_BACKEND_HEADLESS
	}
	out, err := NewVideoOutput(backend)
	if err != nil {
		return err
	}
	var dumper *frameDumper
	if cfg.Display.DumpDir != "" {
		if dumper, err = newFrameDumper(cfg.Display.DumpDir, 0); err != nil {
			return err
		}
	}
	status := &liveStatus{}
	if s, ok := out.(interface{ SetStatusSource(statusSource) }); ok {
		s.SetStatusSource(status)
	}
	set.Card(0).SetSurface(newFrameSink(out, dumper, cfg.Display.Scale))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := out.SetDisplayConfig(DisplayConfig{
		Width:       VOODOO_DEFAULT_WIDTH,
		Height:      VOODOO_DEFAULT_HEIGHT,
		Scale:       cfg.Display.Scale,
		RefreshRate: 60,
		VSync:       true,
	}); err != nil {
		return err
	}
	if err := out.Start(); err != nil {
		return err
	}
	defer out.Close()

	if err := set.Start(ctx); err != nil {
		return err
	}
	defer set.Close()

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	var trace io.Writer
	if r.StatsOut != nil {
		trace = r.StatsOut
		defer r.StatsOut.Close()
	}
	onSample := func(samples []StatsSample) {
		status.update(samples)
		if tty {
			fmt.Printf("\r%s", status.StatusLine())
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return set.RunScanout(gctx) })
	g.Go(func() error { return set.RunStats(gctx, time.Second, trace, onSample) })
	if r.Script != "" {
		g.Go(func() error {
			err := RunScript(gctx, set, r.Script)
			if err != nil {
				return err
			}
			set.WaitIdle()
			if cfg.Display.Headless && r.Frames == 0 {
				cancel()
			}
			return nil
		})
	}
	if r.Frames > 0 {
		g.Go(func() error { return waitFrames(gctx, set.Card(0), r.Frames, cancel) })
	}
	if done, ok := out.(interface{ Done() <-chan struct{} }); ok {
		g.Go(func() error {
			select {
			case <-done.Done():
				cancel()
			case <-gctx.Done():
			}
			return nil
		})
	}

	err = g.Wait()
	if tty {
		fmt.Println()
	}
	card := set.Card(0)
	modEmu.Infof("%d frames, %d triangles", card.FrameCount(), card.stats.triangles.Load())
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// waitFrames cancels the run once card has completed n swaps.
func waitFrames(ctx context.Context, card *VoodooEngine, n uint64, cancel context.CancelFunc) error {
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			if card.FrameCount() >= n {
				cancel()
				return nil
			}
		}
	}
}
