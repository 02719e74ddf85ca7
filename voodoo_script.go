// voodoo_script.go - Lua command-stream driver

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
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// scriptRegisters are the register offsets exported to scripts as
// voodoo.reg.<name>.
var scriptRegisters = map[string]uint32{
	"status":          VOODOO_STATUS,
	"vertexAx":        VOODOO_VERTEX_AX,
	"vertexAy":        VOODOO_VERTEX_AY,
	"vertexBx":        VOODOO_VERTEX_BX,
	"vertexBy":        VOODOO_VERTEX_BY,
	"vertexCx":        VOODOO_VERTEX_CX,
	"vertexCy":        VOODOO_VERTEX_CY,
	"startR":          VOODOO_START_R,
	"startG":          VOODOO_START_G,
	"startB":          VOODOO_START_B,
	"startZ":          VOODOO_START_Z,
	"startA":          VOODOO_START_A,
	"startS":          VOODOO_START_S,
	"startT":          VOODOO_START_T,
	"startW":          VOODOO_START_W,
	"dRdX":            VOODOO_DRDX,
	"dGdX":            VOODOO_DGDX,
	"dBdX":            VOODOO_DBDX,
	"dZdX":            VOODOO_DZDX,
	"dAdX":            VOODOO_DADX,
	"dSdX":            VOODOO_DSDX,
	"dTdX":            VOODOO_DTDX,
	"dWdX":            VOODOO_DWDX,
	"dRdY":            VOODOO_DRDY,
	"dGdY":            VOODOO_DGDY,
	"dBdY":            VOODOO_DBDY,
	"dZdY":            VOODOO_DZDY,
	"dAdY":            VOODOO_DADY,
	"dSdY":            VOODOO_DSDY,
	"dTdY":            VOODOO_DTDY,
	"dWdY":            VOODOO_DWDY,
	"triangleCMD":     VOODOO_TRIANGLE_CMD,
	"ftriangleCMD":    VOODOO_FTRIANGLE_CMD,
	"fbzColorPath":    VOODOO_FBZ_COLOR_PATH,
	"fogMode":         VOODOO_FOG_MODE,
	"alphaMode":       VOODOO_ALPHA_MODE,
	"fbzMode":         VOODOO_FBZ_MODE,
	"lfbMode":         VOODOO_LFB_MODE,
	"clipLeftRight":   VOODOO_CLIP_LEFT_RIGHT,
	"clipLowYHighY":   VOODOO_CLIP_LOW_Y_HIGH,
	"nopCMD":          VOODOO_NOP_CMD,
	"fastfillCMD":     VOODOO_FASTFILL_CMD,
	"swapbufferCMD":   VOODOO_SWAPBUF_CMD,
	"fogColor":        VOODOO_FOG_COLOR,
	"zaColor":         VOODOO_ZA_COLOR,
	"chromaKey":       VOODOO_CHROMA_KEY,
	"stipple":         VOODOO_STIPPLE,
	"color0":          VOODOO_COLOR0,
	"color1":          VOODOO_COLOR1,
	"fbiPixelsIn":     VOODOO_FBI_PIXELS_IN,
	"fbiChromaFail":   VOODOO_FBI_CHROMA_FAIL,
	"fbiZfuncFail":    VOODOO_FBI_ZFUNC_FAIL,
	"fbiAfuncFail":    VOODOO_FBI_AFUNC_FAIL,
	"fbiPixelsOut":    VOODOO_FBI_PIXELS_OUT,
	"fogTable":        VOODOO_FOG_TABLE_BASE,
	"fbiInit0":        VOODOO_FBI_INIT0,
	"fbiInit1":        VOODOO_FBI_INIT1,
	"fbiInit2":        VOODOO_FBI_INIT2,
	"fbiInit3":        VOODOO_FBI_INIT3,
	"fbiInit4":        VOODOO_FBI_INIT4,
	"fbiInit5":        VOODOO_FBI_INIT5,
	"fbiInit6":        VOODOO_FBI_INIT6,
	"fbiInit7":        VOODOO_FBI_INIT7,
	"vRetrace":        VOODOO_V_RETRACE,
	"backPorch":       VOODOO_BACK_PORCH,
	"videoDimensions": VOODOO_VIDEO_DIMENSIONS,
	"hSync":           VOODOO_H_SYNC,
	"vSync":           VOODOO_V_SYNC,
	"clutData":        VOODOO_CLUT_DATA,
	"dacData":         VOODOO_DAC_DATA,
	"textureMode":     VOODOO_TEXTURE_MODE,
	"tLOD":            VOODOO_TLOD,
	"tDetail":         VOODOO_TDETAIL,
	"texBaseAddr":     VOODOO_TEX_BASE0,
	"texBaseAddr1":    VOODOO_TEX_BASE1,
	"texBaseAddr2":    VOODOO_TEX_BASE2,
	"texBaseAddr38":   VOODOO_TEX_BASE38,
	"nccTable0":       VOODOO_NCC0_Y0,
	"nccTable1":       VOODOO_NCC1_Y0,
}

// triangleFields maps voodoo.triangle table keys to the floating point
// parameter registers.
var triangleFields = []struct {
	key string
	reg uint32
}{
	{"ax", VOODOO_FVERTEX_AX}, {"ay", VOODOO_FVERTEX_AY},
	{"bx", VOODOO_FVERTEX_BX}, {"by", VOODOO_FVERTEX_BY},
	{"cx", VOODOO_FVERTEX_CX}, {"cy", VOODOO_FVERTEX_CY},
	{"r", VOODOO_FSTART_R}, {"g", VOODOO_FSTART_G}, {"b", VOODOO_FSTART_B},
	{"z", VOODOO_FSTART_Z}, {"a", VOODOO_FSTART_A},
	{"s", VOODOO_FSTART_S}, {"t", VOODOO_FSTART_T}, {"w", VOODOO_FSTART_W},
	{"drdx", VOODOO_FDRDX}, {"dgdx", VOODOO_FDGDX}, {"dbdx", VOODOO_FDBDX},
	{"dzdx", VOODOO_FDZDX}, {"dadx", VOODOO_FDADX},
	{"dsdx", VOODOO_FDSDX}, {"dtdx", VOODOO_FDTDX}, {"dwdx", VOODOO_FDWDX},
	{"drdy", VOODOO_FDRDY}, {"dgdy", VOODOO_FDGDY}, {"dbdy", VOODOO_FDBDY},
	{"dzdy", VOODOO_FDZDY}, {"dady", VOODOO_FDADY},
	{"dsdy", VOODOO_FDSDY}, {"dtdy", VOODOO_FDTDY}, {"dwdy", VOODOO_FDWDY},
}

// voodooScript drives a card set from a Lua program. The program plays
// the role of the host CPU: every call becomes one or more bus accesses.
type voodooScript struct {
	set *VoodooSet
	ctx context.Context
	L   *lua.LState
}

func newVoodooScript(ctx context.Context, set *VoodooSet) *voodooScript {
	s := &voodooScript{set: set, ctx: ctx, L: lua.NewState()}
	s.L.SetContext(ctx)

	mod := s.L.NewTable()
	s.L.SetFuncs(mod, map[string]lua.LGFunction{
		"write":    s.write,
		"writew":   s.writew,
		"read":     s.read,
		"lfb":      s.lfb,
		"tex":      s.tex,
		"clut":     s.clut,
		"dac":      s.dac,
		"mode":     s.mode,
		"fastfill": s.fastfill,
		"triangle": s.triangle,
		"swap":     s.swap,
		"wait":     s.wait,
		"frames":   s.frames,
	})
	regs := s.L.NewTable()
	for name, off := range scriptRegisters {
		regs.RawSetString(name, lua.LNumber(off))
	}
	mod.RawSetString("reg", regs)

	chips := s.L.NewTable()
	chips.RawSetString("fbi", lua.LNumber(VOODOO_CHIP_FBI))
	chips.RawSetString("tmu0", lua.LNumber(VOODOO_CHIP_TREX0))
	chips.RawSetString("tmu1", lua.LNumber(VOODOO_CHIP_TREX1))
	mod.RawSetString("chip", chips)
	mod.RawSetString("cards", lua.LNumber(set.nrCards))

	s.L.SetGlobal("voodoo", mod)
	return s
}

func (s *voodooScript) Close() {
	s.L.Close()
}

// RunScript executes the Lua file at path against set.
func RunScript(ctx context.Context, set *VoodooSet, path string) error {
	s := newVoodooScript(ctx, set)
	defer s.Close()
	modScript.Infof("running %s", path)
	if err := s.L.DoFile(path); err != nil {
		return fmt.Errorf("run script %s: %w", path, err)
	}
	return nil
}

func (s *voodooScript) runString(src string) error {
	if err := s.L.DoString(src); err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}

func checkU32(L *lua.LState, n int) uint32 {
	return uint32(int64(L.CheckNumber(n)))
}

// voodoo.write(offset, value [, chip])
func (s *voodooScript) write(L *lua.LState) int {
	off := checkU32(L, 1) & VOODOO_REG_MASK
	val := checkU32(L, 2)
	chip := uint32(L.OptInt(3, 0)) & 0xf
	s.set.HandleWrite(off|chip<<10, val)
	return 0
}

// voodoo.writew(addr, value) is a 16-bit framebuffer write at a
// framebuffer-relative address.
func (s *voodooScript) writew(L *lua.LState) int {
	addr := checkU32(L, 1)
	s.set.HandleWrite16(VOODOO_SPACE_LFB|addr&0x3fffff, uint16(checkU32(L, 2)))
	return 0
}

// voodoo.read(offset) returns a register value.
func (s *voodooScript) read(L *lua.LState) int {
	L.Push(lua.LNumber(s.set.HandleRead(checkU32(L, 1) & VOODOO_REG_MASK)))
	return 1
}

// voodoo.lfb(x, y, rgb565) writes one pixel in the current lfbMode.
func (s *voodooScript) lfb(L *lua.LState) int {
	x, y := uint32(L.CheckInt(1))&0x3ff, uint32(L.CheckInt(2))&0x3ff
	s.set.HandleWrite16(VOODOO_SPACE_LFB|y<<11|x<<1, uint16(checkU32(L, 3)))
	return 0
}

// voodoo.tex(tmu, addr, value) writes a long to texture memory.
func (s *voodooScript) tex(L *lua.LState) int {
	tmu := uint32(L.CheckInt(1)) & 1
	addr := checkU32(L, 2) & 0x1fffff
	s.set.HandleWrite(VOODOO_SPACE_TEX|tmu<<21|addr, checkU32(L, 3))
	return 0
}

// voodoo.clut(index, r, g, b) programs one of the 33 gamma entries.
func (s *voodooScript) clut(L *lua.LState) int {
	idx := uint32(L.CheckInt(1)) & 0x3f
	r, g, b := uint32(L.CheckInt(2))&0xff, uint32(L.CheckInt(3))&0xff, uint32(L.CheckInt(4))&0xff
	s.set.HandleWrite(VOODOO_CLUT_DATA, idx<<24|r<<16|g<<8|b)
	return 0
}

// voodoo.dac(val) writes dacData.
func (s *voodooScript) dac(L *lua.LState) int {
	s.set.HandleWrite(VOODOO_DAC_DATA, checkU32(L, 1))
	return 0
}

// voodoo.mode(w, h) programs the visible area and a row stride that fits it.
func (s *voodooScript) mode(L *lua.LState) int {
	w, h := L.CheckInt(1), L.CheckInt(2)
	if w < 1 || w > VOODOO_MAX_WIDTH || h < 1 || h > VOODOO_MAX_HEIGHT {
		L.ArgError(1, fmt.Sprintf("mode %dx%d out of range", w, h))
		return 0
	}
	// Only the tile count changes; SLI and the other fbiInit1 bits stay.
	tiles := uint32((w + 63) / 64)
	init1 := s.set.HandleRead(VOODOO_FBI_INIT1) &^ (15<<4 | VOODOO_FBIINIT1_BLOCK_WIDE)
	if tiles > 15 {
		init1 |= VOODOO_FBIINIT1_BLOCK_WIDE
		tiles -= 16
	}
	s.set.HandleWrite(VOODOO_FBI_INIT1, init1|tiles<<4)
	s.set.HandleWrite(VOODOO_VIDEO_DIMENSIONS, uint32(h)<<16|uint32(w-1))
	return 0
}

// voodoo.fastfill(rgb) clears the clip rectangle to rgb.
func (s *voodooScript) fastfill(L *lua.LState) int {
	s.set.HandleWrite(VOODOO_COLOR1, checkU32(L, 1))
	s.set.HandleWrite(VOODOO_FASTFILL_CMD, 0)
	return 0
}

// voodoo.triangle{ax=, ay=, ...} loads the floating point parameter
// block and issues ftriangleCMD. Missing keys are written as zero.
func (s *voodooScript) triangle(L *lua.LState) int {
	tbl := L.CheckTable(1)
	num := func(key string) float32 {
		if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
			return float32(n)
		}
		return 0
	}
	for _, f := range triangleFields {
		s.set.HandleWrite(f.reg, math.Float32bits(num(f.key)))
	}
	area := (num("bx")-num("ax"))*(num("cy")-num("ay")) - (num("cx")-num("ax"))*(num("by")-num("ay"))
	var cmd uint32
	if area < 0 {
		cmd = 1 << 31
	}
	s.set.HandleWrite(VOODOO_FTRIANGLE_CMD, cmd)
	return 0
}

// voodoo.swap([interval]) queues a buffer swap. Interval 0 swaps at once.
func (s *voodooScript) swap(L *lua.LState) int {
	interval := uint32(L.OptInt(1, 0))
	val := uint32(0)
	if interval > 0 {
		val = 1 | (interval-1)&0xff<<1
	}
	s.set.HandleWrite(VOODOO_SWAPBUF_CMD, val)
	return 0
}

// voodoo.wait() blocks until every card is idle.
func (s *voodooScript) wait(L *lua.LState) int {
	s.set.WaitIdle()
	return 0
}

// voodoo.frames(n) blocks until the first card has retraced n more
// times, then returns its frame count.
func (s *voodooScript) frames(L *lua.LState) int {
	n := uint64(L.OptInt(1, 1))
	card := s.set.cards[0]
	target := card.scan.retraces.Load() + n
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for card.scan.retraces.Load() < target {
		select {
		case <-s.ctx.Done():
			L.RaiseError("frames: %v", s.ctx.Err())
			return 0
		case <-tick.C:
		}
	}
	L.Push(lua.LNumber(card.FrameCount()))
	return 1
}
