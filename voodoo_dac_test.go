// voodoo_dac_test.go - DAC, PLL and video mode register tests

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
	"math"
	"testing"
	"time"
)

// =============================================================================
// Pixel clock
// =============================================================================

// relErr is the error of got relative to want. The clock is computed in
// float32, whose step at 34 MHz is several hertz.
func relErr(got, want float64) float64 {
	return math.Abs(got-want) / want
}

func TestVoodoo_DAC_PixelClock(t *testing.T) {
	got := pixelClock(0x2729, 0)
	want := VOODOO_PLL_REF_HZ * 43.0 / 9.0 / 2.0
	if relErr(float64(got), want) > 1e-6 {
		t.Fatalf("expected %.0f Hz, got %.0f Hz", want, got)
	}

	halved := pixelClock(0x2729, 0x20)
	if relErr(float64(halved), want/2) > 1e-6 {
		t.Fatalf("dac6 0x20: expected %.0f Hz, got %.0f Hz", want/2, halved)
	}
	if pixelClock(0x2729, 0x10) != got {
		t.Fatal("dac6 0x10 must not halve the clock")
	}
}

func TestVoodoo_DAC_LineTiming(t *testing.T) {
	if n := lineLength(0x01c00060); n != 0x60+0x1c0 {
		t.Fatalf("expected line length %d, got %d", 0x60+0x1c0, n)
	}
	if d := lineDuration(800, 25e6); d < 32*time.Microsecond-time.Nanosecond || d > 32*time.Microsecond {
		t.Fatalf("expected 32us, got %v", d)
	}
	if d := lineDuration(0, 25e6); d != 0 {
		t.Fatalf("zero length must give zero duration, got %v", d)
	}

	var d dacState
	if d.LineTime() != defaultLineTime {
		t.Fatalf("unprogrammed DAC: expected default line time, got %v", d.LineTime())
	}
}

// =============================================================================
// DAC register port
// =============================================================================

func TestVoodoo_DAC_PLLWrite(t *testing.T) {
	var d dacState
	d.write(4<<8 | 0) // PLL index 0
	d.write(5<<8 | 0x29)
	if d.data[4] != 0 {
		t.Fatal("PLL index advanced after the low byte")
	}
	d.write(5<<8 | 0x27)
	if d.pll[0] != 0x2729 {
		t.Fatalf("expected pll[0] 2729, got %04x", d.pll[0])
	}
	if d.data[4] != 1 {
		t.Fatalf("expected PLL index 1, got %d", d.data[4])
	}

	d.write(5<<8 | 0x34)
	d.write(5<<8 | 0x12)
	if d.pll[1] != 0x1234 {
		t.Fatalf("expected pll[1] 1234, got %04x", d.pll[1])
	}
}

func TestVoodoo_DAC_Readback(t *testing.T) {
	var d dacState
	d.write(2<<8 | 0x5a)
	d.write(0x800 | 2<<8)
	if d.readData != 0x5a {
		t.Fatalf("expected readback 5a, got %02x", d.readData)
	}

	d.write(7<<8 | 0x07)
	d.write(0x800 | 5<<8)
	if d.readData != 0x71 {
		t.Fatalf("expected PLL id 71, got %02x", d.readData)
	}
	d.write(7<<8 | 0x33)
	d.write(0x800 | 5<<8)
	if d.readData != 0xff {
		t.Fatalf("expected ff for unknown PLL query, got %02x", d.readData)
	}
}

func TestVoodoo_DAC_ThroughBus(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)

	v.HandleWrite(VOODOO_DAC_DATA, 4<<8)
	v.HandleWrite(VOODOO_DAC_DATA, 5<<8|0x29)
	v.HandleWrite(VOODOO_DAC_DATA, 5<<8|0x27)
	v.HandleWrite(VOODOO_H_SYNC, 0x01c00060)

	want := pixelClock(0x2729, 0)
	if got := v.PixelClock(); got != want {
		t.Fatalf("expected pixel clock %.0f, got %.0f", want, got)
	}
	if lt := v.dac.LineTime(); lt != lineDuration(0x220, want) {
		t.Fatalf("unexpected line time %v", lt)
	}

	v.HandleWrite(VOODOO_DAC_DATA, 0x800|4<<8)
	if got := v.HandleRead(VOODOO_DAC_DATA); got != 1 {
		t.Fatalf("expected DAC reg 4 readback 1, got %d", got)
	}
}

// =============================================================================
// Video mode
// =============================================================================

func TestVoodoo_Mode_VideoDimensions(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)

	m := v.mode()
	if m.hDisp != VOODOO_DEFAULT_WIDTH || m.vDisp != VOODOO_DEFAULT_HEIGHT {
		t.Fatalf("expected default mode, got %dx%d", m.hDisp, m.vDisp)
	}

	v.HandleWrite(VOODOO_VIDEO_DIMENSIONS, 600<<16|(800-1))
	m = v.mode()
	if m.hDisp != 800 || m.vDisp != 600 {
		t.Fatalf("expected 800x600, got %dx%d", m.hDisp, m.vDisp)
	}
	if m.rowWidth != 832*2 {
		t.Fatalf("expected row width %d, got %d", 832*2, m.rowWidth)
	}
	if m.vTotal <= m.vDisp {
		t.Fatalf("vertical total %d not beyond visible %d", m.vTotal, m.vDisp)
	}
	if got := v.HandleRead(VOODOO_VIDEO_DIMENSIONS); got != 600<<16|799 {
		t.Fatalf("videoDimensions readback %08x", got)
	}
}

func TestVoodoo_Mode_TiledRowWidth(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)

	// 5 tiles of 64 pixels
	v.HandleWrite(VOODOO_FBI_INIT1, 5<<4)
	if m := v.mode(); m.rowWidth != 5*64*2 {
		t.Fatalf("expected tiled row width %d, got %d", 5*64*2, m.rowWidth)
	}
}

func TestVoodoo_Mode_BufferLayout(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	v.HandleWrite(VOODOO_VIDEO_DIMENSIONS, 480<<16|639)

	cutoff := uint32((640*2*480 + 4095) &^ 4095)
	l := v.lfbLayout()
	if l.buffer(0) != 0 {
		t.Fatalf("front buffer at %x", l.buffer(0))
	}
	if l.buffer(1) != cutoff {
		t.Fatalf("expected back buffer at %x, got %x", cutoff, l.buffer(1))
	}
	if l.buffer(2) != 2*cutoff {
		t.Fatalf("expected aux buffer at %x, got %x", 2*cutoff, l.buffer(2))
	}

	v.modeMu.Lock()
	v.flipBuffersLocked()
	v.modeMu.Unlock()
	l = v.lfbLayout()
	if l.buffer(0) != cutoff || l.buffer(1) != 0 {
		t.Fatalf("flip did not exchange buffers: front %x back %x", l.buffer(0), l.buffer(1))
	}
}

func TestVoodoo_Mode_InitRegisterReadback(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	v.HandleWrite(VOODOO_FBI_INIT0, VOODOO_FBIINIT0_VGA_PASS)
	v.HandleWrite(VOODOO_FBI_INIT3, 0x1234)
	if got := v.HandleRead(VOODOO_FBI_INIT0); got != VOODOO_FBIINIT0_VGA_PASS {
		t.Fatalf("fbiInit0 readback %08x", got)
	}
	if got := v.HandleRead(VOODOO_FBI_INIT3); got != 0x1234 {
		t.Fatalf("fbiInit3 readback %08x", got)
	}
	if !v.mode().vgaPass {
		t.Fatal("VGA pass-through not reflected in mode")
	}
}
