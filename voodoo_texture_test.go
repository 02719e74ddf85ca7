// voodoo_texture_test.go - Texture cache and texel decode tests

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
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// Slot allocation
// =============================================================================

func TestVoodoo_TexCache_ClaimRoundRobin(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	for want := 1; want < VOODOO_TEX_CACHE_MAX; want++ {
		idx, ok := c.claim()
		if !ok || idx != want {
			t.Fatalf("expected slot %d, got %d (ok=%v)", want, idx, ok)
		}
	}
	if idx, _ := c.claim(); idx != 0 {
		t.Fatalf("cursor did not wrap: got slot %d", idx)
	}
}

func TestVoodoo_TexCache_ClaimSkipsPinned(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	c.entries[1].refcount.Store(2)
	c.entries[2].refcountR[1].Store(1)

	idx, ok := c.claim()
	if !ok || idx != 3 {
		t.Fatalf("expected slot 3, got %d (ok=%v)", idx, ok)
	}
}

func TestVoodoo_TexCache_ClaimAllPinned(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	for i := range c.entries {
		c.entries[i].refcount.Store(1)
		c.entries[i].valid = true
	}
	c.lastRemoved = 17

	if idx, ok := c.claim(); ok {
		t.Fatalf("claim succeeded with every slot pinned: slot %d", idx)
	}
	if c.lastRemoved != 17 {
		t.Fatalf("cursor moved to %d after a failed claim", c.lastRemoved)
	}
	for i := range c.entries {
		if !c.entries[i].valid {
			t.Fatalf("failed claim touched slot %d", i)
		}
	}
}

func TestVoodoo_TexCache_RefcountLifecycle(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	c.acquire(5, 2)
	if !c.entries[5].pinned() {
		t.Fatal("acquired slot not pinned")
	}

	c.beginUse(5, 0)
	c.endUse(5, 0)
	if !c.entries[5].pinned() {
		t.Fatal("slot unpinned while thread 1 still holds a reference")
	}
	c.beginUse(5, 1)
	c.endUse(5, 1)
	if c.entries[5].pinned() {
		t.Fatal("slot still pinned after both threads finished")
	}
}

// =============================================================================
// Invalidation
// =============================================================================

func TestVoodoo_TexCache_Invalidate(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	a := &c.entries[0]
	a.valid = true
	a.addrStart[0], a.addrEnd[0] = 0x1000, 0x1800
	c.markPresent(a)

	b := &c.entries[1]
	b.valid = true
	b.addrStart[2], b.addrEnd[2] = 0x9000, 0x9100
	c.markPresent(b)

	if n := c.invalidate(0x5000); n != 0 {
		t.Fatalf("write outside any texture dropped %d entries", n)
	}
	if n := c.invalidate(0x1400); n != 1 || a.valid {
		t.Fatalf("expected one drop, got %d (valid=%v)", n, a.valid)
	}
	if n := c.invalidate(0x1400); n != 0 {
		t.Fatalf("second write to dropped range dropped %d entries", n)
	}
	if !b.valid {
		t.Fatal("unrelated entry dropped")
	}
	if n := c.invalidate(0x9080); n != 1 || b.valid {
		t.Fatalf("presence of surviving entry not rebuilt: dropped %d", n)
	}
}

func TestVoodoo_TexCache_InvalidateKeepsPinnedData(t *testing.T) {
	c := newTextureCache(0, 1<<20)
	e := &c.entries[3]
	e.valid = true
	e.data = []uint32{0xff123456}
	e.addrStart[0], e.addrEnd[0] = 0, 0x400
	c.markPresent(e)
	c.acquire(3, 1)

	c.invalidate(0x10)
	if e.valid {
		t.Fatal("pinned entry still matches lookups after invalidation")
	}
	if e.data[0] != 0xff123456 {
		t.Fatal("pinned texels cleared by invalidation")
	}
	if idx := c.find(&tmuParams{}, 0, 0, 0); idx >= 0 {
		t.Fatalf("find returned invalidated slot %d", idx)
	}
}

// =============================================================================
// Texel decode
// =============================================================================

func TestVoodoo_Texel_Decode(t *testing.T) {
	var ncc, pal [256]uint32
	ncc[0x42] = 0xff102030
	pal[0x07] = 0x00abcdef
	pal[0x08] = 0x3f << 18

	cases := []struct {
		name   string
		format int
		raw    uint32
		want   uint32
	}{
		{"rgb332", VOODOO_TEX_FMT_RGB332, 0xe0, 0xffff0000},
		{"yiq", VOODOO_TEX_FMT_YIQ, 0x42, 0xff102030},
		{"a8", VOODOO_TEX_FMT_A8, 0x80, 0x80808080},
		{"i8", VOODOO_TEX_FMT_I8, 0x80, 0xff808080},
		{"ai44", VOODOO_TEX_FMT_AI44, 0xf0, 0xff000000},
		{"pal8", VOODOO_TEX_FMT_PAL8, 0x07, 0xffabcdef},
		{"apal8", VOODOO_TEX_FMT_APAL8, 0x08, 0xff000000},
		{"argb8332", VOODOO_TEX_FMT_ARGB8332, 0x80e0, 0x80ff0000},
		{"ayiq8422", VOODOO_TEX_FMT_AYIQ8422, 0x4042, 0x40102030},
		{"rgb565", VOODOO_TEX_FMT_RGB565, 0x001f, 0xff0000ff},
		{"argb1555", VOODOO_TEX_FMT_ARGB1555, 0x7c00, 0x00ff0000},
		{"argb4444", VOODOO_TEX_FMT_ARGB4444, 0x8f00, 0x88ff0000},
		{"ai88", VOODOO_TEX_FMT_AI88, 0x1020, 0x10202020},
		{"apal88", VOODOO_TEX_FMT_APAL88, 0x2007, 0x20abcdef},
		{"reserved", 0x7, 0x1234, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodeTexel(tc.format, tc.raw, &ncc, &pal); got != tc.want {
				t.Fatalf("raw %04x: expected %08x, got %08x", tc.raw, tc.want, got)
			}
		})
	}
}

func TestVoodoo_Texel_Layout(t *testing.T) {
	tp := tmuParams{
		textureMode: VOODOO_TEX_FMT_RGB565 << VOODOO_TEX_FORMAT_SHIFT,
		tLOD:        2<<2 | (4<<2)<<VOODOO_TLOD_MAX_SHIFT | 1<<VOODOO_TLOD_ASPECT_SHIFT | VOODOO_TLOD_S_IS_WIDER,
	}
	recalcTextureLayout(&tp)

	if !tp.is16 || tp.format != VOODOO_TEX_FMT_RGB565 {
		t.Fatalf("format %x is16 %v", tp.format, tp.is16)
	}
	if tp.lodMin != 2 || tp.lodMax != 4 {
		t.Fatalf("expected lod range 2..4, got %d..%d", tp.lodMin, tp.lodMax)
	}
	// 256x128 at LOD 0
	if tp.lodWMask[0] != 255 || tp.lodHMask[0] != 127 {
		t.Fatalf("LOD 0 is %dx%d", tp.lodWMask[0]+1, tp.lodHMask[0]+1)
	}
	if tp.lodBase[1] != 256*128*2 {
		t.Fatalf("LOD 1 base %x", tp.lodBase[1])
	}
	if tp.lodShift[2] != 6 {
		t.Fatalf("LOD 2 shift %d", tp.lodShift[2])
	}
}

// =============================================================================
// Cache through the engine
// =============================================================================

func TestVoodoo_TexCache_UseTexture(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	ctx := context.Background()

	tp := &v.params.tmu[0]
	tp.textureMode = VOODOO_TEX_FMT_RGB565 << VOODOO_TEX_FORMAT_SHIFT
	tp.tLOD = 6<<2 | (6<<2)<<VOODOO_TLOD_MAX_SHIFT
	recalcTextureLayout(tp)

	// LOD 6 is 4x4; s=0, t=0 holds two texels
	v.writeTexture(6<<17, 0x07e0f800)

	idx, err := v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture failed: %v", err)
	}
	e := &v.texCache[0].entries[idx]
	off := e.lodOff[6]
	if e.data[off] != 0xffff0000 || e.data[off+1] != 0xff00ff00 {
		t.Fatalf("decoded texels %08x %08x", e.data[off], e.data[off+1])
	}

	again, err := v.useTexture(ctx, 0)
	if err != nil || again != idx {
		t.Fatalf("expected cache hit on slot %d, got %d (%v)", idx, again, err)
	}
	c := v.texCache[0]
	if c.hits.Load() != 1 || c.misses.Load() != 1 {
		t.Fatalf("hits %d misses %d", c.hits.Load(), c.misses.Load())
	}

	v.writeTexture(6<<17, 0x001f001f)
	if e.valid {
		t.Fatal("texture write did not invalidate cached entry")
	}
	idx, err = v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture after write failed: %v", err)
	}
	e = &v.texCache[0].entries[idx]
	if e.data[e.lodOff[6]] != 0xff0000ff {
		t.Fatalf("stale texel %08x after rewrite", e.data[e.lodOff[6]])
	}
	if c.misses.Load() != 2 {
		t.Fatalf("expected 2 misses, got %d", c.misses.Load())
	}
}

func TestVoodoo_TexCache_PaletteChangeMisses(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	ctx := context.Background()

	tp := &v.params.tmu[0]
	tp.textureMode = VOODOO_TEX_FMT_PAL8 << VOODOO_TEX_FORMAT_SHIFT
	tp.tLOD = 8<<2 | (8<<2)<<VOODOO_TLOD_MAX_SHIFT
	recalcTextureLayout(tp)

	first, err := v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture failed: %v", err)
	}
	v.lut.writeNCC(0, VOODOO_NCC0_I0, 1<<31|0x00ff00)
	second, err := v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture failed: %v", err)
	}
	if first == second {
		t.Fatal("palette change reused the cached texture")
	}
	if got := v.texCache[0].entries[second].data[0]; got != 0xff00ff00 {
		t.Fatalf("expected palette colour ff00ff00, got %08x", got)
	}
}

func TestVoodoo_TexCache_MultibaseRetarget(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	ctx := context.Background()

	// under multibase LODs 7 and 8 follow texBaseAddr38
	tp := &v.params.tmu[0]
	tp.textureMode = VOODOO_TEX_FMT_RGB565 << VOODOO_TEX_FORMAT_SHIFT
	tp.tLOD = 7<<2 | (8<<2)<<VOODOO_TLOD_MAX_SHIFT | VOODOO_TLOD_MULTIBASE
	tp.texBase[3] = 0x10000
	recalcTextureLayout(tp)
	if tp.lodBase[7] != 0x10000 || tp.lodBase[8] != 0x10008 {
		t.Fatalf("multibase layout: LOD 7 at %x, LOD 8 at %x", tp.lodBase[7], tp.lodBase[8])
	}
	v.writeTexture(8<<17, 0xf800)

	first, err := v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture failed: %v", err)
	}
	e := &v.texCache[0].entries[first]
	if got := e.data[e.lodOff[8]]; got != 0xffff0000 {
		t.Fatalf("expected red texel, got %08x", got)
	}

	tp.texBase[3] = 0x20000
	recalcTextureLayout(tp)
	v.writeTexture(8<<17, 0x001f)

	second, err := v.useTexture(ctx, 0)
	if err != nil {
		t.Fatalf("useTexture failed: %v", err)
	}
	if second == first {
		t.Fatal("retargeted base reused the slot decoded from the old base")
	}
	e = &v.texCache[0].entries[second]
	if got := e.data[e.lodOff[8]]; got != 0xff0000ff {
		t.Fatalf("expected blue texel from the new base, got %08x", got)
	}
	if v.texCache[0].misses.Load() != 2 {
		t.Fatalf("expected 2 misses, got %d", v.texCache[0].misses.Load())
	}
}

// =============================================================================
// Texture writes
// =============================================================================

func TestVoodoo_TexWrite_8bit(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	tp := &v.params.tmu[0]
	tp.textureMode = VOODOO_TEX_FMT_I8 << VOODOO_TEX_FORMAT_SHIFT
	recalcTextureLayout(tp)

	// LOD 0 is 256 texels wide: s=4, t=1 is byte 256+4
	v.writeTexture(1<<9|4<<1, 0x44332211)

	mem := v.texMem[0]
	want := []byte{0x11, 0x22, 0x33, 0x44}
	if diff := cmp.Diff(want, mem[260:264]); diff != "" {
		t.Fatalf("texels at offset 260 (-want +got):\n%s", diff)
	}
	if mem[264] != 0 {
		t.Fatalf("write spilled past the addressed long: %02x", mem[264])
	}
}

func TestVoodoo_TexWrite_16bit(t *testing.T) {
	v := newTestCard(t, DefaultConfig().Card)
	tp := &v.params.tmu[0]
	tp.textureMode = VOODOO_TEX_FMT_RGB565 << VOODOO_TEX_FORMAT_SHIFT
	recalcTextureLayout(tp)

	// s=4, t=1 is texel 256+4, two bytes each
	v.writeTexture(1<<9|4<<1, 0xbbbbaaaa)
	if got := binary.LittleEndian.Uint32(v.texMem[0][520:]); got != 0xbbbbaaaa {
		t.Fatalf("expected bbbbaaaa at offset 520, got %08x", got)
	}
}
