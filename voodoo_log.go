// voodoo_log.go - Per-module logging for the Voodoo core

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
	"strings"
	"sync/atomic"

	"gopkg.in/Sirupsen/logrus.v0"
)

// logModule tags log lines with the subsystem that produced them. Debug
// output is off unless the module's bit is set in the debug mask, so
// Debugf in the FIFO and render loops costs one atomic load.
type logModule uint

const (
	modEmu logModule = iota + 1
	modFIFO
	modRender
	modTex
	modDisplay
	modDAC
	modScript
)

var modNames = []string{"<error>", "emu", "fifo", "render", "tex", "display", "dac", "script"}

var modDebugMask atomic.Uint64

func (mod logModule) mask() uint64 { return 1 << uint64(mod) }

func (mod logModule) enabled(level logrus.Level) bool {
	return level <= logrus.InfoLevel || modDebugMask.Load()&mod.mask() != 0
}

func (mod logModule) entry() *logrus.Entry {
	return logrus.StandardLogger().WithField("_mod", modNames[mod])
}

func (mod logModule) Debugf(format string, args ...any) {
	if mod.enabled(logrus.DebugLevel) {
		mod.entry().Debugf(format, args...)
	}
}

func (mod logModule) Infof(format string, args ...any) {
	mod.entry().Infof(format, args...)
}

func (mod logModule) Warnf(format string, args ...any) {
	mod.entry().Warnf(format, args...)
}

func (mod logModule) Errorf(format string, args ...any) {
	mod.entry().Errorf(format, args...)
}

func (mod logModule) WithField(key string, value any) *logrus.Entry {
	return mod.entry().WithField(key, value)
}

// logModuleByName resolves a module name as used on the command line and in
// the [log] configuration section.
func logModuleByName(name string) (logModule, bool) {
	for idx, s := range modNames {
		if idx > 0 && s == name {
			return logModule(idx), true
		}
	}
	return 0, false
}

// enableDebugModules turns on debug output for the named modules. "all"
// enables every module.
func enableDebugModules(names []string) error {
	var mask uint64
	for _, name := range names {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" {
			continue
		}
		if name == "all" {
			mask = ^uint64(0)
			continue
		}
		mod, ok := logModuleByName(name)
		if !ok {
			return fmt.Errorf("unknown log module %q", name)
		}
		mask |= mod.mask()
	}
	modDebugMask.Store(mask)
	if mask != 0 {
		logrus.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// setupLogging configures the standard logrus logger used by every module.
func setupLogging(out io.Writer, level string, debug []string) error {
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		logrus.SetLevel(lvl)
	}
	return enableDebugModules(debug)
}
