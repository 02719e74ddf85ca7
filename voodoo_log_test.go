// voodoo_log_test.go - Module logger tests

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
	"bytes"
	"os"
	"strings"
	"testing"

	"gopkg.in/Sirupsen/logrus.v0"
)

func captureLogs(t *testing.T, level string, debug []string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	if err := setupLogging(&buf, level, debug); err != nil {
		t.Fatalf("setupLogging failed: %v", err)
	}
	t.Cleanup(func() {
		modDebugMask.Store(0)
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
	return &buf
}

func TestVoodoo_Log_ModuleByName(t *testing.T) {
	mod, ok := logModuleByName("fifo")
	if !ok || mod != modFIFO {
		t.Fatalf("fifo resolved to %d,%v", mod, ok)
	}
	if _, ok := logModuleByName("<error>"); ok {
		t.Fatal("placeholder name resolved")
	}
	if _, ok := logModuleByName("blitter"); ok {
		t.Fatal("unknown name resolved")
	}
}

func TestVoodoo_Log_DebugPerModule(t *testing.T) {
	buf := captureLogs(t, "info", []string{"fifo"})

	modFIFO.Debugf("fifo detail %d", 1)
	modRender.Debugf("render detail %d", 2)
	modRender.Infof("render info")

	out := buf.String()
	if !strings.Contains(out, "fifo detail 1") || !strings.Contains(out, "_mod=fifo") {
		t.Fatalf("enabled module debug line missing:\n%s", out)
	}
	if strings.Contains(out, "render detail") {
		t.Fatalf("disabled module logged debug output:\n%s", out)
	}
	if !strings.Contains(out, "render info") {
		t.Fatalf("info line missing:\n%s", out)
	}
}

func TestVoodoo_Log_All(t *testing.T) {
	captureLogs(t, "warn", []string{" ALL "})
	for idx := range modNames[1:] {
		mod := logModule(idx + 1)
		if !mod.enabled(logrus.DebugLevel) {
			t.Errorf("module %s not enabled by all", modNames[mod])
		}
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("debug modules did not raise the level: %v", logrus.GetLevel())
	}
}

func TestVoodoo_Log_Errors(t *testing.T) {
	t.Cleanup(func() {
		modDebugMask.Store(0)
		logrus.SetOutput(os.Stderr)
		logrus.SetLevel(logrus.InfoLevel)
	})
	var buf bytes.Buffer
	if err := setupLogging(&buf, "loud", nil); err == nil {
		t.Fatal("expected error for a bad level")
	}
	if err := enableDebugModules([]string{"fifo", "nope"}); err == nil || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("expected unknown module error, got %v", err)
	}
}
