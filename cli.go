// cli.go - Command line interface

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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
)

type (
	CLI struct {
		Run     RunCmd     `cmd:"" help:"Run a card set, optionally driven by a Lua script." default:"withargs"`
		Clock   ClockCmd   `cmd:"" help:"Print the pixel clock and line time for a PLL setting."`
		Config  ConfigCmd  `cmd:"" help:"Write the default configuration."`
		Version VersionCmd `cmd:"" help:"Show version."`

		Debug logModList `help:"${debug_help}" placeholder:"mod0,mod1,..."`
	}

	RunCmd struct {
		Script    string   `arg:"" optional:"" name:"script.lua" help:"Lua command script." type:"existingfile"`
		Config    string   `name:"config" short:"c" help:"TOML configuration file." type:"existingfile"`
		Frames    uint64   `name:"frames" help:"${frames_help}"`
		DumpDir   string   `name:"dump-dir" help:"Write every presented frame as BMP into this directory." type:"path"`
		StatsOut  *outfile `name:"stats-out" help:"Write per-second statistics as JSON lines." placeholder:"FILE|stdout|stderr"`
		Headless  bool     `name:"headless" help:"Do not open a window."`
		Statsview string   `name:"statsview" help:"Serve live runtime charts on this address." placeholder:"HOST:PORT"`
	}

	ClockCmd struct {
		PLL0  string `name:"pll0" help:"PLL word 0." default:"0x2729"`
		HSync string `name:"hsync" help:"hSync register value." default:"0x01c00060"`
		DAC6  string `name:"dac6" help:"DAC register 6." default:"0"`
	}

	ConfigCmd struct {
		Out string `arg:"" optional:"" name:"file" help:"Destination (default stdout)." type:"path"`
	}

	VersionCmd struct{}
)

var vars = kong.Vars{
	"debug_help":  "Enable debug logging for the specified modules (" + strings.Join(modNames[1:], ",") + ",all).",
	"frames_help": "Stop after this many buffer swaps (0 runs until interrupted or the script ends in headless mode).",
}

func parseArgs(args []string) (*CLI, *kong.Context) {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("voodoo"),
		kong.Description("3Dfx Voodoo Graphics accelerator emulator."),
		kong.UsageOnError(),
		vars)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)
	return &cli, ctx
}

type logModList []string

// Decode decodes a comma-separated list of module names.
//
// Implements kong.MapperValue interface.
func (l *logModList) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if v != "all" {
			if _, ok := logModuleByName(v); !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
		}
		*l = append(*l, v)
	}
	return nil
}

type outfile struct {
	w     io.Writer
	name  string
	close func() error
}

// Decode decodes FILE|stdout|stderr into a writer.
//
// Implements kong.MapperValue interface.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)
	f.close = func() error { return nil }

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
		f.close = fd.Close
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error                { return f.close() }

// parseRegValue accepts decimal, 0x hex and 0b binary.
func parseRegValue(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return v, nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
