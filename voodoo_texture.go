// voodoo_texture.go - Texture layout, decode and cache

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
voodoo_texture.go - Decoded texture cache

Each texture unit keeps 64 decoded textures keyed by base address and the
LOD fields of tLOD. A slot is pinned while any in-flight triangle refers
to it: the FIFO thread adds one global reference per render thread when
it queues the triangle, each render thread holds a per-thread reference
while sampling and drops its global reference when done. Pinned slots are
never overwritten.

Eviction is clock style: the cursor advances one slot at a time and the
first unpinned slot is reclaimed. With every slot pinned a full turn
returns the cursor to where it started and reports failure; the caller
then waits for render progress.

Texture memory writes invalidate cached textures that cover the written
address. Invalidation only drops the key so pinned data stays readable
until its triangles finish.
*/

package main

import (
	"context"
	"encoding/binary"
	"sync/atomic"
)

type textureEntry struct {
	// Key and layout. Owned by the FIFO thread.
	valid     bool
	base      uint32
	tLOD      uint32
	format    int
	checksum  uint32
	addrStart [VOODOO_LOD_MAX + 1]uint32
	addrEnd   [VOODOO_LOD_MAX + 1]uint32

	// Decoded ARGB texels and their layout. Written by the FIFO thread
	// only while the slot is unpinned; read by render threads.
	data   []uint32
	lodOff [VOODOO_LOD_MAX + 1]int
	lodW   [VOODOO_LOD_MAX + 1]int
	lodH   [VOODOO_LOD_MAX + 1]int

	refcount  atomic.Int32
	refcountR [VOODOO_MAX_RENDER_THREADS]atomic.Int32
}

func (e *textureEntry) pinned() bool {
	n := e.refcount.Load()
	for i := range e.refcountR {
		n += e.refcountR[i].Load()
	}
	return n != 0
}

type textureCache struct {
	tmu         int
	entries     [VOODOO_TEX_CACHE_MAX]textureEntry
	lastRemoved int
	present     []bool // texture memory pages covered by a valid entry

	hits, misses, evictions atomic.Uint64
}

func newTextureCache(tmu, texSize int) *textureCache {
	return &textureCache{
		tmu:     tmu,
		present: make([]bool, texSize>>VOODOO_TEX_DIRTY_SHIFT),
	}
}

// claim finds a slot to decode into. It returns false, leaving every slot
// untouched, when all slots are pinned.
func (c *textureCache) claim() (int, bool) {
	for i := 0; i < VOODOO_TEX_CACHE_MAX; i++ {
		c.lastRemoved = (c.lastRemoved + 1) & (VOODOO_TEX_CACHE_MAX - 1)
		if !c.entries[c.lastRemoved].pinned() {
			return c.lastRemoved, true
		}
	}
	return -1, false
}

// find returns the slot holding the texture described by t. Besides the
// key registers every decoded LOD must start where t's layout puts it,
// which catches retargeted texBaseAddr1-3 under multibase.
func (c *textureCache) find(t *tmuParams, mask, key, checksum uint32) int {
next:
	for i := range c.entries {
		e := &c.entries[i]
		if !e.valid || e.base != t.texBase[0] || e.tLOD != key || e.format != t.format || e.checksum != checksum {
			continue
		}
		for lod := t.lodMin; lod <= t.lodMax; lod++ {
			if e.addrStart[lod] != t.lodBase[lod]&mask {
				continue next
			}
		}
		return i
	}
	return -1
}

// invalidate drops every entry whose texel range covers addr.
func (c *textureCache) invalidate(addr uint32) int {
	page := int(addr >> VOODOO_TEX_DIRTY_SHIFT)
	if page >= len(c.present) || !c.present[page] {
		return 0
	}
	clear(c.present)
	dropped := 0
	for i := range c.entries {
		e := &c.entries[i]
		if !e.valid {
			continue
		}
		hit := false
		for lod := range e.addrStart {
			if e.addrEnd[lod] > e.addrStart[lod] && addr >= e.addrStart[lod] && addr < e.addrEnd[lod] {
				hit = true
				break
			}
		}
		if hit {
			e.valid = false
			dropped++
			continue
		}
		c.markPresent(e)
	}
	return dropped
}

func (c *textureCache) markPresent(e *textureEntry) {
	for lod := range e.addrStart {
		for a := e.addrStart[lod]; a < e.addrEnd[lod]; a += 1 << VOODOO_TEX_DIRTY_SHIFT {
			if p := int(a >> VOODOO_TEX_DIRTY_SHIFT); p < len(c.present) {
				c.present[p] = true
			}
		}
		if e.addrEnd[lod] > e.addrStart[lod] {
			if p := int((e.addrEnd[lod] - 1) >> VOODOO_TEX_DIRTY_SHIFT); p < len(c.present) {
				c.present[p] = true
			}
		}
	}
}

// recalcTextureLayout derives the per-LOD base addresses and sizes from
// textureMode, tLOD and the texture base registers.
func recalcTextureLayout(t *tmuParams) {
	t.format = int(t.textureMode>>VOODOO_TEX_FORMAT_SHIFT) & 0xf
	t.is16 = t.format&8 != 0
	t.lodMin = int(t.tLOD&VOODOO_TLOD_MIN_MASK) >> 2
	t.lodMax = int((t.tLOD>>VOODOO_TLOD_MAX_SHIFT)&0x3f) >> 2
	t.lodMin = min(t.lodMin, VOODOO_LOD_MAX)
	t.lodMax = min(max(t.lodMax, t.lodMin), VOODOO_LOD_MAX)

	width, height := 256, 256
	aspect := int(t.tLOD>>VOODOO_TLOD_ASPECT_SHIFT) & 3
	if t.tLOD&VOODOO_TLOD_S_IS_WIDER != 0 {
		height >>= aspect
	} else {
		width >>= aspect
	}

	bpp := uint32(1)
	if t.is16 {
		bpp = 2
	}
	base := t.texBase[0]
	for lod := 0; lod <= VOODOO_LOD_MAX; lod++ {
		// Multibase gives LODs 1 and 2 their own base; 3 to 8 follow texBaseAddr38.
		if t.tLOD&VOODOO_TLOD_MULTIBASE != 0 && lod > 0 && lod <= 3 {
			base = t.texBase[lod]
		}
		w, h := max(width>>lod, 1), max(height>>lod, 1)
		t.lodBase[lod] = base
		t.lodEnd[lod] = base + uint32(w*h)*bpp
		t.lodWMask[lod] = w - 1
		t.lodHMask[lod] = h - 1
		shift := uint(0)
		for 1<<shift < w {
			shift++
		}
		t.lodShift[lod] = shift
		base = t.lodEnd[lod]
	}
}

// decodeTexel expands one raw texel of the given format.
func decodeTexel(format int, raw uint32, ncc *[256]uint32, pal *[256]uint32) uint32 {
	tab := texFormats()
	switch format {
	case VOODOO_TEX_FMT_RGB332:
		return tab.rgb332[raw&0xff]
	case VOODOO_TEX_FMT_YIQ:
		return ncc[raw&0xff]
	case VOODOO_TEX_FMT_A8:
		a := raw & 0xff
		return argb(a, a, a, a)
	case VOODOO_TEX_FMT_I8:
		i := raw & 0xff
		return argb(0xff, i, i, i)
	case VOODOO_TEX_FMT_AI44:
		return tab.ai44[raw&0xff]
	case VOODOO_TEX_FMT_PAL8:
		return pal[raw&0xff] | 0xff000000
	case VOODOO_TEX_FMT_APAL8:
		p := pal[raw&0xff]
		return argb(expand((p>>18)&0x3f, 6), expand((p>>12)&0x3f, 6), expand((p>>6)&0x3f, 6), expand(p&0x3f, 6))
	case VOODOO_TEX_FMT_ARGB8332:
		return tab.rgb332[raw&0xff]&0xffffff | (raw>>8&0xff)<<24
	case VOODOO_TEX_FMT_AYIQ8422:
		return ncc[raw&0xff]&0xffffff | (raw>>8&0xff)<<24
	case VOODOO_TEX_FMT_RGB565:
		return tab.rgb565[raw&0xffff]
	case VOODOO_TEX_FMT_ARGB1555:
		return tab.argb1555[raw&0xffff]
	case VOODOO_TEX_FMT_ARGB4444:
		return tab.argb4444[raw&0xffff]
	case VOODOO_TEX_FMT_AI88:
		return tab.ai88[raw&0xffff]
	case VOODOO_TEX_FMT_APAL88:
		return pal[raw&0xff]&0xffffff | (raw>>8&0xff)<<24
	}
	return 0
}

func usesPalette(format int) bool {
	return format == VOODOO_TEX_FMT_PAL8 || format == VOODOO_TEX_FMT_APAL8 || format == VOODOO_TEX_FMT_APAL88
}

func usesNCC(format int) bool {
	return format == VOODOO_TEX_FMT_YIQ || format == VOODOO_TEX_FMT_AYIQ8422
}

// decode fills slot e from texture memory.
func (e *textureEntry) decode(t *tmuParams, mem []byte, mask uint32, ncc, pal *[256]uint32) {
	total := 0
	for lod := t.lodMin; lod <= t.lodMax; lod++ {
		total += (t.lodWMask[lod] + 1) * (t.lodHMask[lod] + 1)
	}
	if cap(e.data) < total {
		e.data = make([]uint32, total)
	}
	e.data = e.data[:total]
	e.addrStart = [VOODOO_LOD_MAX + 1]uint32{}
	e.addrEnd = [VOODOO_LOD_MAX + 1]uint32{}

	off := 0
	for lod := 0; lod <= VOODOO_LOD_MAX; lod++ {
		w, h := t.lodWMask[lod]+1, t.lodHMask[lod]+1
		e.lodW[lod], e.lodH[lod] = w, h
		if lod < t.lodMin || lod > t.lodMax {
			e.lodOff[lod] = -1
			continue
		}
		e.lodOff[lod] = off
		e.addrStart[lod] = t.lodBase[lod] & mask
		e.addrEnd[lod] = e.addrStart[lod] + (t.lodEnd[lod] - t.lodBase[lod])
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				idx := uint32(y*w + x)
				var raw uint32
				if t.is16 {
					a := (t.lodBase[lod] + idx*2) & mask &^ 1
					raw = uint32(binary.LittleEndian.Uint16(mem[a:]))
				} else {
					raw = uint32(mem[(t.lodBase[lod]+idx)&mask])
				}
				e.data[off+y*w+x] = decodeTexel(t.format, raw, ncc, pal)
			}
		}
		off += w * h
	}
}

// useTexture resolves the texture for tmu in the parameter block to a
// cache slot, decoding it on a miss. Called on the FIFO thread.
func (v *VoodooEngine) useTexture(ctx context.Context, tmu int) (int, error) {
	t := &v.params.tmu[tmu]
	c := v.texCache[tmu]
	l := &v.lut

	var ncc *[256]uint32
	var checksum uint32
	switch {
	case usesPalette(t.format):
		l.refreshPalette(tmu)
		checksum = l.paletteChecksum[tmu]
	case usesNCC(t.format):
		if l.nccDirty[tmu] {
			l.updateNCC(tmu)
		}
		sel := 0
		if t.textureMode&VOODOO_TEX_NCC_SELECT != 0 {
			sel = 1
		}
		ncc = l.nccLookup[tmu][sel].Load()
		checksum = nccChecksum(ncc)
	}
	key := t.tLOD & VOODOO_TLOD_CACHE_KEY

	if idx := c.find(t, v.texMask, key, checksum); idx >= 0 {
		c.hits.Add(1)
		return idx, nil
	}
	c.misses.Add(1)

	idx, ok := c.claim()
	for !ok {
		modTex.Debugf("tmu %d: all %d cache slots pinned, waiting for render threads", tmu, VOODOO_TEX_CACHE_MAX)
		if err := v.waitRenderIdle(ctx); err != nil {
			return -1, err
		}
		idx, ok = c.claim()
	}
	e := &c.entries[idx]
	if e.valid {
		c.evictions.Add(1)
	}

	e.decode(t, v.texMem[tmu], v.texMask, ncc, &l.palette[tmu])
	e.valid = true
	e.base = t.texBase[0]
	e.tLOD = key
	e.format = t.format
	e.checksum = checksum
	c.markPresent(e)
	modTex.Debugf("tmu %d: slot %d <- base %06x tlod %06x fmt %x", tmu, idx, e.base, key, e.format)
	return idx, nil
}

// acquire adds one global reference per render thread.
func (c *textureCache) acquire(idx, threads int) {
	c.entries[idx].refcount.Add(int32(threads))
}

// beginUse and endUse bracket a render thread's sampling of slot idx.
func (c *textureCache) beginUse(idx, thread int) *textureEntry {
	e := &c.entries[idx]
	e.refcountR[thread].Add(1)
	return e
}

func (c *textureCache) endUse(idx, thread int) {
	e := &c.entries[idx]
	e.refcountR[thread].Add(-1)
	e.refcount.Add(-1)
}
