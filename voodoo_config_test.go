// voodoo_config_test.go - Configuration loading tests

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
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voodoo.toml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestVoodoo_Config_Default(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	typ, err := cfg.Card.cardType()
	if err != nil || typ != VOODOO_1 {
		t.Fatalf("default card type %d (%v)", typ, err)
	}
}

func TestVoodoo_Config_Load(t *testing.T) {
	path := writeConfigFile(t, `
[card]
type = "voodoo2"
fb_mb = 4
tex_mb = 8
dual_tmus = true
render_threads = 1
sli = true

[display]
scrfilter = true
filter_threshold = 0x101010
scale = 0

[log]
level = "debug"
debug = ["fifo", "render"]
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	want := VoodooConfig{
		Card: CardConfig{
			Type:          "voodoo2",
			FramebufferMB: 4,
			TextureMB:     8,
			DualTMUs:      true,
			RenderThreads: 1,
			SLI:           true,
		},
		Display: DisplayOptions{
			ScreenFilter:    true,
			FilterThreshold: 0x101010,
			Scale:           1,
		},
		Log: LogConfig{Level: "debug", Debug: []string{"fifo", "render"}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestVoodoo_Config_LoadKeepsDefaults(t *testing.T) {
	path := writeConfigFile(t, "[card]\nrender_threads = 1\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Card.Type != "voodoo1" || cfg.Card.FramebufferMB != 4 {
		t.Fatalf("defaults lost: %+v", cfg.Card)
	}
	if cfg.Card.RenderThreads != 1 {
		t.Fatalf("render_threads not applied: %d", cfg.Card.RenderThreads)
	}
}

func TestVoodoo_Config_LoadErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for a missing file")
	}

	path := writeConfigFile(t, "[card\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}

	path = writeConfigFile(t, "[card]\ntype = \"banshee\"\n")
	_, err := LoadConfig(path)
	var verr *VoodooError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *VoodooError in chain, got %v", err)
	}
	if !strings.Contains(err.Error(), "banshee") {
		t.Fatalf("error does not name the card type: %v", err)
	}
}

func TestVoodoo_Config_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*VoodooConfig)
	}{
		{"card type", func(c *VoodooConfig) { c.Card.Type = "voodoo3" }},
		{"zero threads", func(c *VoodooConfig) { c.Card.RenderThreads = 0 }},
		{"three threads", func(c *VoodooConfig) { c.Card.RenderThreads = 3 }},
		{"fb size", func(c *VoodooConfig) { c.Card.FramebufferMB = 3 }},
		{"tex size", func(c *VoodooConfig) { c.Card.TextureMB = 0 }},
		{"threshold", func(c *VoodooConfig) { c.Display.FilterThreshold = 0x1000000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestVoodoo_Config_SaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Card.Type = "voodoo_sb50"
	cfg.Display.DumpDir = "/tmp/frames"
	cfg.Log.Debug = []string{"lfb"}

	var buf bytes.Buffer
	if err := encodeConfig(&buf, cfg); err != nil {
		t.Fatalf("encodeConfig failed: %v", err)
	}
	if !strings.Contains(buf.String(), `type = "voodoo_sb50"`) {
		t.Fatalf("encoded config missing card type:\n%s", buf.String())
	}

	path := filepath.Join(t.TempDir(), "out.toml")
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}
