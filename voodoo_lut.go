// voodoo_lut.go - NCC, palette and CLUT lookup tables

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

/*
voodoo_lut.go - Colour lookup tables

NCC: each texture unit holds two narrow-channel-compression tables of
Y/I/Q component words. An 8-bit texel splits into a 4-bit Y index and
2-bit I and Q indices; Y is an unsigned byte, I and Q are packed 9-bit
signed RGB triples. The decoded 256-entry table is rebuilt on the FIFO
thread only when a table register has changed.

CLUT: 33 programmed entries (index 32 is the forced-white top of the
ramp) are interpolated to 256 and then expanded into a 65536-entry
RGB565 to 32-bit table for scanout. The expanded table is rebuilt at most
once per frame and published with a single atomic pointer store, so the
scanout never sees a half-built table.

All 32-bit colours here are 0xAARRGGBB.
*/

package main

import (
	"sync"
	"sync/atomic"
)

type rgbEntry struct {
	b, g, r uint8
}

type nccTable struct {
	y, i, q [4]uint32
}

type clutTables struct {
	clut256     [256]rgbEntry
	video16to32 [65536]uint32
}

type lutState struct {
	ncc       [VOODOO_MAX_TMUS][2]nccTable
	nccDirty  [VOODOO_MAX_TMUS]bool
	nccLookup [VOODOO_MAX_TMUS][2]atomic.Pointer[[256]uint32]

	palette         [VOODOO_MAX_TMUS][256]uint32
	paletteDirty    [VOODOO_MAX_TMUS]bool
	paletteChecksum [VOODOO_MAX_TMUS]uint32

	clutMu    sync.Mutex
	clutData  [64]rgbEntry
	clutDirty atomic.Bool
	clut      atomic.Pointer[clutTables]
}

func (l *lutState) init() {
	for i := 0; i <= 32; i++ {
		c := uint8(min(i*8, 255))
		l.clutData[i] = rgbEntry{b: c, g: c, r: c}
	}
	l.clut.Store(calcClutTables(&l.clutData))
	for tmu := range l.nccLookup {
		l.updateNCC(tmu)
		for c := range l.palette[tmu] {
			l.palette[tmu][c] = 0xff000000
		}
		l.paletteDirty[tmu] = true
	}
}

func clamp8(x int) uint8 {
	if x < 0 {
		return 0
	}
	if x > 0xff {
		return 0xff
	}
	return uint8(x)
}

func clamp16(x int) uint16 {
	if x < 0 {
		return 0
	}
	if x > 0xffff {
		return 0xffff
	}
	return uint16(x)
}

// signExtend9 widens a 9-bit two's complement field.
func signExtend9(v uint32) int {
	v &= 0x1ff
	if v&0x100 != 0 {
		return int(v) - 0x200
	}
	return int(v)
}

// decodeNCC builds the 256-entry colour table for one NCC table.
func decodeNCC(t *nccTable) [256]uint32 {
	var out [256]uint32
	for col := 0; col < 256; col++ {
		yi, ii, qi := col>>4, (col>>2)&3, col&3

		y := int(t.y[yi>>2]>>((yi&3)*8)) & 0xff

		iw, qw := t.i[ii], t.q[qi]
		ir, ig, ib := signExtend9(iw>>18), signExtend9(iw>>9), signExtend9(iw)
		qr, qg, qb := signExtend9(qw>>18), signExtend9(qw>>9), signExtend9(qw)

		r := clamp8(y + ir + qr)
		g := clamp8(y + ig + qg)
		b := clamp8(y + ib + qb)
		out[col] = 0xff000000 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
	}
	return out
}

// updateNCC rebuilds both decoded tables of a texture unit.
func (l *lutState) updateNCC(tmu int) {
	for tbl := 0; tbl < 2; tbl++ {
		decoded := decodeNCC(&l.ncc[tmu][tbl])
		l.nccLookup[tmu][tbl].Store(&decoded)
	}
	l.nccDirty[tmu] = false
}

// nccChecksum folds a decoded NCC table the same way palettes are
// checksummed, so cached YIQ textures are invalidated by table changes.
func nccChecksum(t *[256]uint32) uint32 {
	var sum uint32
	for _, c := range t {
		sum += c
	}
	return sum
}

// writeNCC handles a write to one of the 24 NCC registers of a texture
// unit. I and Q registers with bit 31 set are palette writes instead.
func (l *lutState) writeNCC(tmu int, reg, val uint32) {
	var tbl int
	off := reg - VOODOO_NCC0_Y0
	if reg >= VOODOO_NCC1_Y0 {
		tbl = 1
		off = reg - VOODOO_NCC1_Y0
	}
	idx := int(off / 4)
	switch {
	case idx < 4:
		l.ncc[tmu][tbl].y[idx] = val
	case idx < 8:
		if tbl == 0 && val&(1<<31) != 0 {
			l.writePalette(tmu, idx-4, val)
			return
		}
		l.ncc[tmu][tbl].i[idx-4] = val
	default:
		if tbl == 0 && val&(1<<31) != 0 {
			l.writePalette(tmu, idx-8, val)
			return
		}
		l.ncc[tmu][tbl].q[idx-8] = val
	}
	l.nccDirty[tmu] = true
}

// writePalette stores a palette entry encoded in an NCC I/Q write. The
// entry index comes from bits 23-30; odd registers supply the low bit.
func (l *lutState) writePalette(tmu, regIdx int, val uint32) {
	p := int(val>>23)&0xfe | regIdx&1
	l.palette[tmu][p] = val | 0xff000000
	l.paletteDirty[tmu] = true
}

// refreshPalette recomputes the palette checksum if needed.
func (l *lutState) refreshPalette(tmu int) {
	if !l.paletteDirty[tmu] {
		return
	}
	var sum uint32
	for _, c := range l.palette[tmu] {
		sum += c
	}
	l.paletteChecksum[tmu] = sum
	l.paletteDirty[tmu] = false
}

// writeClut stores a clutData register write: index in bits 24-29, RGB in
// the low 24 bits, bit 29 forces white.
func (l *lutState) writeClut(val uint32) {
	l.clutMu.Lock()
	idx := (val >> 24) & 0x3f
	e := rgbEntry{b: uint8(val), g: uint8(val >> 8), r: uint8(val >> 16)}
	if val&0x20000000 != 0 {
		e = rgbEntry{b: 255, g: 255, r: 255}
	}
	l.clutData[idx] = e
	l.clutMu.Unlock()
	l.clutDirty.Store(true)
}

// interpolateCLUT expands the programmed entries to 256 by linear
// interpolation in eighths.
func interpolateCLUT(data *[64]rgbEntry) [256]rgbEntry {
	var out [256]rgbEntry
	for c := 0; c < 256; c++ {
		lo, hi := data[c>>3], data[(c>>3)+1]
		f := c & 7
		out[c] = rgbEntry{
			r: uint8((int(lo.r)*(8-f) + int(hi.r)*f) >> 3),
			g: uint8((int(lo.g)*(8-f) + int(hi.g)*f) >> 3),
			b: uint8((int(lo.b)*(8-f) + int(hi.b)*f) >> 3),
		}
	}
	return out
}

// calcClutTables builds the interpolated CLUT and the 16 to 32-bit table.
func calcClutTables(data *[64]rgbEntry) *clutTables {
	t := &clutTables{clut256: interpolateCLUT(data)}
	for c := 0; c < 65536; c++ {
		r := (c >> 8) & 0xf8
		g := (c >> 3) & 0xfc
		b := (c << 3) & 0xf8
		t.video16to32[c] = uint32(t.clut256[r].r)<<16 | uint32(t.clut256[g].g)<<8 | uint32(t.clut256[b].b)
	}
	return t
}

// recalcClut rebuilds the scanout tables if the CLUT has changed.
func (l *lutState) recalcClut() bool {
	if !l.clutDirty.CompareAndSwap(true, false) {
		return false
	}
	l.clutMu.Lock()
	data := l.clutData
	l.clutMu.Unlock()
	l.clut.Store(calcClutTables(&data))
	return true
}

// Texel expansion tables for the fixed formats.
type texFormatTables struct {
	rgb332   [256]uint32
	ai44     [256]uint32
	rgb565   [65536]uint32
	argb1555 [65536]uint32
	argb4444 [65536]uint32
	ai88     [65536]uint32
}

var texFormats = sync.OnceValue(buildTexFormatTables)

func expand(v uint32, bits uint) uint32 {
	switch bits {
	case 1:
		if v != 0 {
			return 0xff
		}
		return 0
	case 2:
		return v<<6 | v<<4 | v<<2 | v
	case 3:
		return v<<5 | v<<2 | v>>1
	case 4:
		return v<<4 | v
	case 5:
		return v<<3 | v>>2
	case 6:
		return v<<2 | v>>4
	}
	return v
}

func argb(a, r, g, b uint32) uint32 {
	return a<<24 | r<<16 | g<<8 | b
}

func buildTexFormatTables() *texFormatTables {
	t := &texFormatTables{}
	for c := uint32(0); c < 256; c++ {
		t.rgb332[c] = argb(0xff, expand(c>>5, 3), expand((c>>2)&7, 3), expand(c&3, 2))
		i := expand(c&0xf, 4)
		t.ai44[c] = argb(expand(c>>4, 4), i, i, i)
	}
	for c := uint32(0); c < 65536; c++ {
		t.rgb565[c] = argb(0xff, expand(c>>11, 5), expand((c>>5)&0x3f, 6), expand(c&0x1f, 5))
		t.argb1555[c] = argb(expand(c>>15, 1), expand((c>>10)&0x1f, 5), expand((c>>5)&0x1f, 5), expand(c&0x1f, 5))
		t.argb4444[c] = argb(expand(c>>12, 4), expand((c>>8)&0xf, 4), expand((c>>4)&0xf, 4), expand(c&0xf, 4))
		i := c & 0xff
		t.ai88[c] = argb(c>>8, i, i, i)
	}
	return t
}

// rgb565To888 expands a framebuffer pixel for blending and dumps.
func rgb565To888(c uint16) (r, g, b int) {
	return int(expand(uint32(c>>11), 5)), int(expand(uint32(c>>5)&0x3f, 6)), int(expand(uint32(c)&0x1f, 5))
}
