// voodoo_config.go - TOML configuration for the Voodoo card set

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
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// VoodooConfig is the complete configuration of a card set and its
// presentation.
type VoodooConfig struct {
	Card    CardConfig     `toml:"card"`
	Display DisplayOptions `toml:"display"`
	Log     LogConfig      `toml:"log"`
}

// CardConfig describes the hardware of every card in the set.
type CardConfig struct {
	Type          string `toml:"type"` // voodoo1, voodoo_sb50 or voodoo2
	FramebufferMB int    `toml:"fb_mb"`
	TextureMB     int    `toml:"tex_mb"`
	DualTMUs      bool   `toml:"dual_tmus"`
	RenderThreads int    `toml:"render_threads"`
	SLI           bool   `toml:"sli"`
	Bilinear      bool   `toml:"bilinear"`
}

type DisplayOptions struct {
	ScreenFilter    bool   `toml:"scrfilter"`
	FilterThreshold uint32 `toml:"filter_threshold"` // 0xRRGGBB
	Headless        bool   `toml:"headless"`
	Scale           int    `toml:"scale"`
	DumpDir         string `toml:"dump_dir"`
}

type LogConfig struct {
	Level string   `toml:"level"`
	Debug []string `toml:"debug"`
}

var cardTypeNames = map[string]int{
	"voodoo1":     VOODOO_1,
	"voodoo_sb50": VOODOO_SB50,
	"voodoo2":     VOODOO_2,
}

func (c CardConfig) cardType() (int, error) {
	t, ok := cardTypeNames[c.Type]
	if !ok {
		return 0, &VoodooError{Operation: "configure", Details: fmt.Sprintf("unknown card type %q", c.Type)}
	}
	return t, nil
}

// DefaultConfig returns a single Voodoo Graphics with 4 MB framebuffer,
// 4 MB texture memory and two render threads.
func DefaultConfig() VoodooConfig {
	return VoodooConfig{
		Card: CardConfig{
			Type:          "voodoo1",
			FramebufferMB: 4,
			TextureMB:     4,
			RenderThreads: 2,
		},
		Display: DisplayOptions{
			FilterThreshold: 0x000000,
			Scale:           1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig decodes the TOML file at path over the defaults and
// validates the result.
func LoadConfig(path string) (VoodooConfig, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		modEmu.Warnf("config %s: unknown key %s", path, key)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func encodeConfig(w io.Writer, cfg VoodooConfig) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// SaveConfig writes cfg to path in TOML form.
func SaveConfig(path string, cfg VoodooConfig) error {
	var buf bytes.Buffer
	if err := encodeConfig(&buf, cfg); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Validate checks the card description before any card is built.
func (cfg *VoodooConfig) Validate() error {
	c := &cfg.Card
	if _, err := c.cardType(); err != nil {
		return err
	}
	if c.RenderThreads != 1 && c.RenderThreads != 2 {
		return &VoodooError{Operation: "configure", Details: fmt.Sprintf("render_threads %d not in {1,2}", c.RenderThreads)}
	}
	if c.FramebufferMB <= 0 || !isPow2(c.FramebufferMB) {
		return &VoodooError{Operation: "configure", Details: fmt.Sprintf("fb_mb %d is not a power of two", c.FramebufferMB)}
	}
	if c.TextureMB <= 0 || !isPow2(c.TextureMB) {
		return &VoodooError{Operation: "configure", Details: fmt.Sprintf("tex_mb %d is not a power of two", c.TextureMB)}
	}
	if cfg.Display.FilterThreshold > 0xffffff {
		return &VoodooError{Operation: "configure", Details: "filter_threshold must be 0xRRGGBB"}
	}
	if cfg.Display.Scale < 1 {
		cfg.Display.Scale = 1
	}
	return nil
}
