// voodoo_fifo_thread.go - Command FIFO consumer

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
	"math"
	"sync"
	"time"
)

// fifoThread drains the command FIFO in submission order. fifoBusy is
// raised before an entry is taken and dropped only once the ring is seen
// empty, so busy() never reports idle with an entry in flight.
func (v *VoodooEngine) fifoThread(ctx context.Context) error {
	for {
		if v.fifo.empty() {
			v.fifoBusy.Store(false)
			v.fifo.notFull.set()
			if err := v.fifo.wake.wait(ctx); err != nil {
				return err
			}
			continue
		}
		v.fifoBusy.Store(true)
		e, ok := v.fifo.tryPop()
		if !ok {
			continue
		}
		if err := v.processEntry(ctx, e); err != nil {
			v.fifoBusy.Store(false)
			return err
		}
	}
}

func (v *VoodooEngine) processEntry(ctx context.Context, e fifoEntry) error {
	v.stats.fifoReads.Add(1)
	switch e.tag() {
	case FIFO_WRITEL_REG:
		return v.writeRegister(ctx, e.addr(), e.val)
	case FIFO_WRITEW_FB, FIFO_WRITEL_FB:
		if err := v.waitRenderIdle(ctx); err != nil {
			return err
		}
		v.writeLFB(e)
	case FIFO_WRITEL_TEX:
		v.writeTexture(e.addr(), e.val)
	default:
		modFIFO.Warnf("card %d: bad fifo entry %08x", v.index, e.addrType)
	}
	return nil
}

func sext24(val uint32) int32 {
	return int32(val<<8) >> 8
}

// forTMUs applies fn to each texture unit selected by the chip field.
func (v *VoodooEngine) forTMUs(chip uint32, fn func(tmu int, t *tmuParams)) {
	if chip&VOODOO_CHIP_TREX0 != 0 {
		fn(0, &v.params.tmu[0])
	}
	if chip&VOODOO_CHIP_TREX1 != 0 && v.tmuCount > 1 {
		fn(1, &v.params.tmu[1])
	}
}

// writeRegister applies one register write from the FIFO.
func (v *VoodooEngine) writeRegister(ctx context.Context, addr, val uint32) error {
	chip := (addr >> 10) & 0xf
	if chip == 0 {
		chip = VOODOO_CHIP_ALL
	}
	reg := addr & VOODOO_REG_MASK
	p := &v.params
	f := math.Float32frombits(val)
	v.stats.regWrites.Add(1)

	switch reg {
	case VOODOO_VERTEX_AX:
		p.vertexAx = int32(int16(val))
	case VOODOO_VERTEX_AY:
		p.vertexAy = int32(int16(val))
	case VOODOO_VERTEX_BX:
		p.vertexBx = int32(int16(val))
	case VOODOO_VERTEX_BY:
		p.vertexBy = int32(int16(val))
	case VOODOO_VERTEX_CX:
		p.vertexCx = int32(int16(val))
	case VOODOO_VERTEX_CY:
		p.vertexCy = int32(int16(val))

	case VOODOO_START_R:
		p.startR = sext24(val)
	case VOODOO_START_G:
		p.startG = sext24(val)
	case VOODOO_START_B:
		p.startB = sext24(val)
	case VOODOO_START_A:
		p.startA = sext24(val)
	case VOODOO_START_Z:
		p.startZ = int32(val)
	case VOODOO_START_S:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startS = int64(int32(val)) })
	case VOODOO_START_T:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startT = int64(int32(val)) })
	case VOODOO_START_W:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.startW = int64(int32(val))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startW = int64(int32(val)) })

	case VOODOO_DRDX:
		p.dRdX = sext24(val)
	case VOODOO_DGDX:
		p.dGdX = sext24(val)
	case VOODOO_DBDX:
		p.dBdX = sext24(val)
	case VOODOO_DADX:
		p.dAdX = sext24(val)
	case VOODOO_DZDX:
		p.dZdX = int32(val)
	case VOODOO_DSDX:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dSdX = int64(int32(val)) })
	case VOODOO_DTDX:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dTdX = int64(int32(val)) })
	case VOODOO_DWDX:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.dWdX = int64(int32(val))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dWdX = int64(int32(val)) })

	case VOODOO_DRDY:
		p.dRdY = sext24(val)
	case VOODOO_DGDY:
		p.dGdY = sext24(val)
	case VOODOO_DBDY:
		p.dBdY = sext24(val)
	case VOODOO_DADY:
		p.dAdY = sext24(val)
	case VOODOO_DZDY:
		p.dZdY = int32(val)
	case VOODOO_DSDY:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dSdY = int64(int32(val)) })
	case VOODOO_DTDY:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dTdY = int64(int32(val)) })
	case VOODOO_DWDY:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.dWdY = int64(int32(val))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dWdY = int64(int32(val)) })

	case VOODOO_TRIANGLE_CMD, VOODOO_FTRIANGLE_CMD:
		p.sign = val&(1<<31) != 0
		return v.submitTriangle(ctx)

	case VOODOO_FVERTEX_AX:
		p.vertexAx = int32(int16(int32(f * 16)))
	case VOODOO_FVERTEX_AY:
		p.vertexAy = int32(int16(int32(f * 16)))
	case VOODOO_FVERTEX_BX:
		p.vertexBx = int32(int16(int32(f * 16)))
	case VOODOO_FVERTEX_BY:
		p.vertexBy = int32(int16(int32(f * 16)))
	case VOODOO_FVERTEX_CX:
		p.vertexCx = int32(int16(int32(f * 16)))
	case VOODOO_FVERTEX_CY:
		p.vertexCy = int32(int16(int32(f * 16)))

	case VOODOO_FSTART_R:
		p.startR = int32(f * 4096)
	case VOODOO_FSTART_G:
		p.startG = int32(f * 4096)
	case VOODOO_FSTART_B:
		p.startB = int32(f * 4096)
	case VOODOO_FSTART_A:
		p.startA = int32(f * 4096)
	case VOODOO_FSTART_Z:
		p.startZ = int32(f * 4096)
	case VOODOO_FSTART_S:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startS = int64(float64(f) * (1 << 18)) })
	case VOODOO_FSTART_T:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startT = int64(float64(f) * (1 << 18)) })
	case VOODOO_FSTART_W:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.startW = int64(float64(f) * (1 << 30))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.startW = int64(float64(f) * (1 << 30)) })

	case VOODOO_FDRDX:
		p.dRdX = int32(f * 4096)
	case VOODOO_FDGDX:
		p.dGdX = int32(f * 4096)
	case VOODOO_FDBDX:
		p.dBdX = int32(f * 4096)
	case VOODOO_FDADX:
		p.dAdX = int32(f * 4096)
	case VOODOO_FDZDX:
		p.dZdX = int32(f * 4096)
	case VOODOO_FDSDX:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dSdX = int64(float64(f) * (1 << 18)) })
	case VOODOO_FDTDX:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dTdX = int64(float64(f) * (1 << 18)) })
	case VOODOO_FDWDX:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.dWdX = int64(float64(f) * (1 << 30))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dWdX = int64(float64(f) * (1 << 30)) })

	case VOODOO_FDRDY:
		p.dRdY = int32(f * 4096)
	case VOODOO_FDGDY:
		p.dGdY = int32(f * 4096)
	case VOODOO_FDBDY:
		p.dBdY = int32(f * 4096)
	case VOODOO_FDADY:
		p.dAdY = int32(f * 4096)
	case VOODOO_FDZDY:
		p.dZdY = int32(f * 4096)
	case VOODOO_FDSDY:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dSdY = int64(float64(f) * (1 << 18)) })
	case VOODOO_FDTDY:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dTdY = int64(float64(f) * (1 << 18)) })
	case VOODOO_FDWDY:
		if chip&VOODOO_CHIP_FBI != 0 {
			p.dWdY = int64(float64(f) * (1 << 30))
		}
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.dWdY = int64(float64(f) * (1 << 30)) })

	case VOODOO_FBZ_COLOR_PATH:
		p.fbzColorPath = val
	case VOODOO_FOG_MODE:
		p.fogMode = val
	case VOODOO_ALPHA_MODE:
		p.alphaMode = val
	case VOODOO_FBZ_MODE:
		p.fbzMode = val
	case VOODOO_LFB_MODE:
		v.modeMu.Lock()
		v.lfbMode = val
		v.modeMu.Unlock()
	case VOODOO_CLIP_LEFT_RIGHT:
		p.clipLeft = int(val>>16) & 0x3ff
		p.clipRight = int(val) & 0x3ff
	case VOODOO_CLIP_LOW_Y_HIGH:
		p.clipLowY = int(val>>16) & 0x3ff
		p.clipHighY = int(val) & 0x3ff

	case VOODOO_NOP_CMD:
	case VOODOO_FASTFILL_CMD:
		return v.fastfill(ctx)
	case VOODOO_SWAPBUF_CMD:
		return v.swapBuffer(ctx, val)
	case VOODOO_USERINTR_CMD:
		modFIFO.Debugf("card %d: user interrupt %08x", v.index, val)

	case VOODOO_FOG_COLOR:
		p.fogColor = val
	case VOODOO_ZA_COLOR:
		p.zaColor = val
	case VOODOO_CHROMA_KEY:
		p.chromaKey = val
	case VOODOO_STIPPLE:
		p.stipple = val
	case VOODOO_COLOR0:
		p.color0 = val
	case VOODOO_COLOR1:
		p.color1 = val

	case VOODOO_TEXTURE_MODE:
		v.forTMUs(chip, func(_ int, t *tmuParams) {
			t.textureMode = val
			recalcTextureLayout(t)
		})
	case VOODOO_TLOD:
		v.forTMUs(chip, func(_ int, t *tmuParams) {
			t.tLOD = val
			recalcTextureLayout(t)
		})
	case VOODOO_TDETAIL:
		v.forTMUs(chip, func(_ int, t *tmuParams) { t.tDetail = val })
	case VOODOO_TEX_BASE0, VOODOO_TEX_BASE1, VOODOO_TEX_BASE2, VOODOO_TEX_BASE38:
		i := (reg - VOODOO_TEX_BASE0) / 4
		v.forTMUs(chip, func(_ int, t *tmuParams) {
			t.texBase[i] = (val & 0x7ffff) << 3
			recalcTextureLayout(t)
		})

	default:
		switch {
		case reg >= VOODOO_FOG_TABLE_BASE && reg <= VOODOO_FOG_TABLE_END:
			i := (reg - VOODOO_FOG_TABLE_BASE) / 4 * 2
			p.fogTable[i] = fogEntry{dfog: uint8(val), fog: uint8(val >> 8)}
			p.fogTable[i+1] = fogEntry{dfog: uint8(val >> 16), fog: uint8(val >> 24)}
		case reg >= VOODOO_NCC0_Y0 && reg <= VOODOO_NCC1_Q3:
			v.forTMUs(chip, func(tmu int, _ *tmuParams) { v.lut.writeNCC(tmu, reg, val) })
		default:
			modFIFO.Debugf("card %d: unhandled register %03x = %08x", v.index, reg, val)
		}
	}
	return nil
}

// snapshotLayout copies the current buffer layout into p.
func (v *VoodooEngine) snapshotLayout(p *triangleParams) {
	v.modeMu.RLock()
	defer v.modeMu.RUnlock()
	p.rowWidth = v.rowWidth
	p.width, p.height = v.hDisp, v.vDisp
	p.frontOffset = v.frontOffset.Load()
	p.auxOffset = 2 * v.layoutCutoff
	if (p.fbzMode>>VOODOO_FBZ_DRAW_SHIFT)&3 == 0 {
		p.drawOffset = p.frontOffset
	} else {
		p.drawOffset = v.backOffset
	}
	p.yOriginSwap = int(v.fbiInit[3]>>22) & 0x3ff
	if p.yOriginSwap == 0 {
		p.yOriginSwap = v.vDisp - 1
	}
	p.sli = v.sli.Load()
	p.sliParity = v.sliMasterSlave
}

// fbLine maps a screen line to a row of this card's framebuffer.
func (p *triangleParams) fbLine(y int) (int, bool) {
	if y < 0 {
		return 0, false
	}
	if p.sli {
		if y&1 != p.sliParity {
			return 0, false
		}
		y >>= 1
	}
	if y >= VOODOO_MAX_HEIGHT {
		return 0, false
	}
	return y, true
}

// submitTriangle resolves textures and queues a copy of the parameter
// block for the render threads.
func (v *VoodooEngine) submitTriangle(ctx context.Context) error {
	p := &v.params
	v.snapshotLayout(p)
	for i := range p.tmu {
		p.tmu[i].texEntry = -1
	}
	if p.fbzColorPath&VOODOO_FCP_TEXTURE_ENABLE != 0 {
		for tmu := 0; tmu < v.tmuCount; tmu++ {
			if tmu > 0 && p.tmu[tmu].textureMode == 0 {
				continue
			}
			idx, err := v.useTexture(ctx, tmu)
			if err != nil {
				v.releaseTextures(p)
				return err
			}
			p.tmu[tmu].texEntry = idx
			v.texCache[tmu].acquire(idx, v.renderThreads)
		}
	}
	if err := v.queue.push(ctx, p); err != nil {
		v.releaseTextures(p)
		return err
	}
	v.stats.triangles.Add(1)
	return nil
}

func (v *VoodooEngine) releaseTextures(p *triangleParams) {
	for tmu := 0; tmu < v.tmuCount; tmu++ {
		if idx := p.tmu[tmu].texEntry; idx >= 0 {
			v.texCache[tmu].acquire(idx, -v.renderThreads)
			p.tmu[tmu].texEntry = -1
		}
	}
}

// rgb888To565 packs a 24-bit colour into a framebuffer pixel.
func rgb888To565(c uint32) uint16 {
	r, g, b := (c>>16)&0xff, (c>>8)&0xff, c&0xff
	return uint16(r>>3<<11 | g>>2<<5 | b>>3)
}

func rgb555To565(c uint32) uint16 {
	r, g, b := (c>>10)&0x1f, (c>>5)&0x1f, c&0x1f
	return uint16(r<<11 | (g<<1|g>>4)<<5 | b)
}

// fastfill clears the clip rectangle of the draw buffer to color1 and
// the depth buffer to the low half of zaColor.
func (v *VoodooEngine) fastfill(ctx context.Context) error {
	if err := v.waitRenderIdle(ctx); err != nil {
		return err
	}
	p := &v.params
	v.snapshotLayout(p)
	color := rgb888To565(p.color1)
	depth := uint16(p.zaColor)
	right := min(p.clipRight, p.rowWidth/2)

	for y := p.clipLowY; y < p.clipHighY; y++ {
		row, ok := p.fbLine(y)
		if !ok {
			continue
		}
		rowOff := uint32(row * p.rowWidth)
		for x := p.clipLeft; x < right; x++ {
			if p.fbzMode&VOODOO_FBZ_RGB_WRITE != 0 {
				v.fbWrite16(p.drawOffset+rowOff+uint32(x*2), color)
			}
			if p.fbzMode&VOODOO_FBZ_DEPTH_WRITE != 0 {
				v.fbWrite16(p.auxOffset+rowOff+uint32(x*2), depth)
			}
		}
		if p.drawOffset == p.frontOffset {
			v.markDirty(row)
		}
	}
	v.stats.fastfills.Add(1)
	return nil
}

func (v *VoodooEngine) swapLock() *sync.Mutex {
	if v.set != nil {
		return &v.set.swapMu
	}
	return &v.soloSwapMu
}

func (v *VoodooEngine) decSwapCount() {
	for {
		n := v.swapCount.Load()
		if n <= 0 || v.swapCount.CompareAndSwap(n, n-1) {
			return
		}
	}
}

// completeSwap finishes a swap already applied to frontOffset.
func (v *VoodooEngine) completeSwap() {
	v.decSwapCount()
	v.markAllDirty()
	v.frameCount.Add(1)
	v.stats.swaps.Add(1)
}

// swapBuffer handles swapbufferCMD. Bit 0 clear swaps immediately;
// otherwise the swap waits for the scanout to honour the interval in
// bits 1-8.
func (v *VoodooEngine) swapBuffer(ctx context.Context, val uint32) error {
	if err := v.waitRenderIdle(ctx); err != nil {
		return err
	}
	mu := v.swapLock()
	v.modeMu.RLock()
	back := v.backOffset
	v.modeMu.RUnlock()

	if val&1 == 0 {
		mu.Lock()
		v.frontOffset.Store(back)
		v.swapPending = false
		mu.Unlock()
		v.completeSwap()
	} else {
		mu.Lock()
		v.swapInterval = int(val>>1) & 0xff
		v.swapOffset = back
		v.swapPending = true
		mu.Unlock()
		if err := v.waitForSwap(ctx); err != nil {
			return err
		}
	}

	v.modeMu.Lock()
	v.flipBuffersLocked()
	v.modeMu.Unlock()
	return nil
}

// waitForSwap blocks until the scanout has performed the pending swap.
// If the bus side is stalled on a full FIFO or waiting for idle the swap
// is forced without waiting for retrace.
func (v *VoodooEngine) waitForSwap(ctx context.Context) error {
	mu := v.swapLock()
	for {
		mu.Lock()
		pending := v.swapPending
		mu.Unlock()
		if !pending {
			return nil
		}

		if v.fifo.full() || v.fifo.waiting.Load() || v.flushing.Load() {
			forced := false
			mu.Lock()
			if v.swapPending {
				v.frontOffset.Store(v.swapOffset)
				v.swapPending = false
				v.retraceCount = 0
				forced = true
			}
			mu.Unlock()
			if forced {
				modFIFO.Debugf("card %d: forced swap", v.index)
				v.completeSwap()
			}
			return nil
		}

		v.fifo.wake.waitTimeout(ctx, time.Millisecond)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// lfbAddress splits a framebuffer address into pixel coordinates.
func lfbAddress(addr uint32, wide bool) (x, y int) {
	if wide {
		return int(addr>>2) & 0x3ff, int(addr>>12) & 0x3ff
	}
	return int(addr>>1) & 0x3ff, int(addr>>11) & 0x3ff
}

type lfbLayout struct {
	mode     uint32
	front    uint32
	back     uint32
	aux      uint32
	rowWidth int
	yOrigin  int
	sli      bool
	parity   int
}

func (v *VoodooEngine) lfbLayout() lfbLayout {
	v.modeMu.RLock()
	defer v.modeMu.RUnlock()
	l := lfbLayout{
		mode:     v.lfbMode,
		front:    v.frontOffset.Load(),
		back:     v.backOffset,
		aux:      2 * v.layoutCutoff,
		rowWidth: v.rowWidth,
		yOrigin:  int(v.fbiInit[3]>>22) & 0x3ff,
		sli:      v.sli.Load(),
		parity:   v.sliMasterSlave,
	}
	if l.yOrigin == 0 {
		l.yOrigin = v.vDisp - 1
	}
	return l
}

// buffer returns the byte offset of the buffer selected by a 2-bit
// buffer select field: 0 front, 1 back, other values aux.
func (l *lfbLayout) buffer(sel uint32) uint32 {
	switch sel & 3 {
	case 0:
		return l.front
	case 1:
		return l.back
	}
	return l.aux
}

// row maps an LFB y coordinate to a framebuffer row.
func (l *lfbLayout) row(y int) (int, bool) {
	if l.mode&VOODOO_LFB_Y_ORIGIN != 0 {
		y = l.yOrigin - y
	}
	p := triangleParams{sli: l.sli, sliParity: l.parity}
	return p.fbLine(y)
}

// writeLFB applies a linear framebuffer write. Pixels go straight to
// memory in the format selected by lfbMode.
func (v *VoodooEngine) writeLFB(e fifoEntry) {
	l := v.lfbLayout()
	format := l.mode & VOODOO_LFB_FORMAT_MASK
	word := e.tag() == FIFO_WRITEW_FB
	wide := !word && (format == VOODOO_LFB_888 || format == VOODOO_LFB_8888 || format == VOODOO_LFB_Z565)
	x, y := lfbAddress(e.addr(), wide)
	row, ok := l.row(y)
	if !ok {
		return
	}
	base := l.buffer(l.mode >> VOODOO_LFB_WRITE_SHIFT)
	rowOff := uint32(row * l.rowWidth)
	maxX := l.rowWidth / 2

	color := func(px int, c uint16) {
		if px < maxX {
			v.fbWrite16(base+rowOff+uint32(px*2), c)
		}
	}
	depth := func(px int, d uint16) {
		if px < maxX {
			v.fbWrite16(l.aux+rowOff+uint32(px*2), d)
		}
	}

	val := e.val
	switch format {
	case VOODOO_LFB_565:
		color(x, uint16(val))
		if !word {
			color(x+1, uint16(val>>16))
		}
	case VOODOO_LFB_555, VOODOO_LFB_1555:
		color(x, rgb555To565(val))
		if !word {
			color(x+1, rgb555To565(val>>16))
		}
	case VOODOO_LFB_888, VOODOO_LFB_8888:
		color(x, rgb888To565(val))
	case VOODOO_LFB_Z565:
		color(x, uint16(val))
		if !word {
			depth(x, uint16(val>>16))
		}
	case VOODOO_LFB_DEPTH:
		depth(x, uint16(val))
		if !word {
			depth(x+1, uint16(val>>16))
		}
	default:
		modFIFO.Debugf("card %d: unsupported lfb format %d", v.index, format)
		return
	}
	if base == l.front {
		v.markDirty(row)
	}
	v.stats.lfbWrites.Add(1)
}

// readLFB returns the two 16-bit pixels at addr from the buffer selected
// by lfbMode.
func (v *VoodooEngine) readLFB(addr uint32) uint32 {
	l := v.lfbLayout()
	x, y := lfbAddress(addr, false)
	row, ok := l.row(y)
	if !ok {
		return 0xFFFFFFFF
	}
	off := l.buffer(l.mode>>VOODOO_LFB_READ_SHIFT) + uint32(row*l.rowWidth) + uint32(x*2)
	return uint32(v.fbRead16(off)) | uint32(v.fbRead16(off+2))<<16
}

// writeTexture stores one 32-bit word of texture memory. Bit 21 selects
// the texture unit; LOD, t and s come from the address and are mapped
// through the current texture layout of that unit.
func (v *VoodooEngine) writeTexture(addr, val uint32) {
	tmu := int(addr>>21) & 1
	if tmu >= v.tmuCount {
		return
	}
	t := &v.params.tmu[tmu]
	lod := int(addr>>17) & 0xf
	if lod > VOODOO_LOD_MAX {
		return
	}
	row := uint32(int(addr>>9)&0xff) << t.lodShift[lod]
	var off uint32
	if t.is16 {
		s := uint32(addr>>1) & 0xfe
		off = t.lodBase[lod] + (s+row)*2
	} else {
		s := uint32(addr>>1) & 0xfc
		off = t.lodBase[lod] + s + row
	}
	off &= v.texMask &^ 3
	binary.LittleEndian.PutUint32(v.texMem[tmu][off:], val)

	c := v.texCache[tmu]
	if n := c.invalidate(off); n > 0 {
		modTex.Debugf("tmu %d: write at %06x dropped %d cached textures", tmu, off, n)
	}
	v.stats.texWrites.Add(1)
}
