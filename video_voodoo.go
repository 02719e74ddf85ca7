// video_voodoo.go - 3DFX Voodoo Graphics Emulation

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
video_voodoo.go - 3DFX Voodoo Graphics Emulation

This module implements the 3DFX Voodoo Graphics (SST-1), Voodoo Rush/SB50
and Voodoo2 (SST-2) accelerator cores at register level.

Architecture:
- VoodooEngine: one card. Bus interface, device state, lifecycle
- FIFO thread: drains bus writes, decodes registers, resolves triangle setup
- Render threads: one or two, rasterise triangles split by scanline parity
- Scanout: per-scanline callback driven by the host timer, swaps at vsync

Programming Model:
1. Host writes registers through HandleWrite (32-bit) or HandleWrite16
2. Writes are tagged and queued in the 64K entry command FIFO
3. A write to triangleCMD snapshots the parameter block into the
   parameter queue; render threads rasterise it into framebuffer memory
4. swapbufferCMD flips the displayed buffer at the next eligible vsync

Initialisation and video timing registers bypass the FIFO and take effect
immediately.
*/

package main

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

type fogEntry struct {
	fog, dfog uint8
}

// tmuParams is the per texture unit slice of the parameter block.
type tmuParams struct {
	startS, startT, startW int64 // 14.18, 14.18, 2.30
	dSdX, dTdX, dWdX       int64
	dSdY, dTdY, dWdY       int64

	textureMode uint32
	tLOD        uint32
	tDetail     uint32
	texBase     [4]uint32 // texBaseAddr, 1, 2, 3-8 in byte units

	// Derived by recalcTextureLayout.
	lodBase  [VOODOO_LOD_MAX + 2]uint32
	lodEnd   [VOODOO_LOD_MAX + 2]uint32
	lodShift [VOODOO_LOD_MAX + 2]uint
	lodWMask [VOODOO_LOD_MAX + 2]int
	lodHMask [VOODOO_LOD_MAX + 2]int
	lodMin   int
	lodMax   int
	format   int
	is16     bool

	texEntry int // texture cache slot, -1 when untextured
}

// triangleParams is the full raster state captured at triangle submit.
// Render threads only ever see copies held in the parameter queue.
type triangleParams struct {
	vertexAx, vertexAy int32 // 12.4
	vertexBx, vertexBy int32
	vertexCx, vertexCy int32

	startR, startG, startB, startA int32 // 12.12
	startZ                         int32 // 20.12
	startW                         int64 // 2.30
	dRdX, dGdX, dBdX, dAdX, dZdX   int32
	dRdY, dGdY, dBdY, dAdY, dZdY   int32
	dWdX, dWdY                     int64

	tmu [VOODOO_MAX_TMUS]tmuParams

	sign bool

	fbzColorPath uint32
	fogMode      uint32
	alphaMode    uint32
	fbzMode      uint32
	fogColor     uint32
	fogTable     [VOODOO_FOG_TABLE_SIZE]fogEntry
	zaColor      uint32
	chromaKey    uint32
	color0       uint32
	color1       uint32
	stipple      uint32

	clipLeft, clipRight int
	clipLowY, clipHighY int

	drawOffset  uint32
	auxOffset   uint32
	frontOffset uint32
	rowWidth    int // bytes per framebuffer row
	width       int // visible pixels per row
	height      int // visible rows, in screen lines
	yOriginSwap int

	// Alternate line rendering: this card owns screen lines whose low
	// bit equals sliParity and stores them at line/2.
	sli       bool
	sliParity int
}

// VoodooEngine implements one Voodoo accelerator card.
type VoodooEngine struct {
	cardType int
	set      *VoodooSet
	index    int

	// Parameter block under construction. Owned by the FIFO thread.
	params   triangleParams
	tmuCount int

	// Memory. Framebuffer and texture memory are little-endian byte
	// arrays; see fbRead16/fbWrite16 for the 16-bit pixel view.
	fbMem   []byte
	fbMask  uint32
	texMem  [VOODOO_MAX_TMUS][]byte
	texMask uint32

	// Video mode state, written on the bus path, read by the FIFO
	// thread and scanout.
	modeMu         sync.RWMutex
	initEnable     uint32
	fbiInit        [8]uint32
	lfbMode        uint32
	videoDims      uint32
	hSync, vSync   uint32
	backPorch      uint32
	hDisp, vDisp   int
	hTotal, vTotal int
	rowWidth       int
	blockWidth     int
	bufferCutoff   uint32
	layoutCutoff   uint32
	dispBuffer     int
	drawBuffer     int
	backOffset     uint32
	frontOffset    atomic.Uint32
	swapAlgorithm  uint32
	scrFilter      bool
	sliMasterSlave int
	sli            atomic.Bool

	// DAC and PLL.
	dac dacState

	// Lookup tables.
	lut lutState

	// Queues and threads.
	fifo          *commandFIFO
	queue         *paramQueue
	renderThreads int
	oddEvenMask   int
	fifoBusy      atomic.Bool
	renderBusy    [VOODOO_MAX_RENDER_THREADS]atomic.Bool
	texCache      [VOODOO_MAX_TMUS]*textureCache
	pipeline      PixelPipeline
	bilinear      bool

	// Swap state. swapPending, swapInterval, swapOffset and retraceCount
	// are guarded by the set's swap mutex.
	swapPending  bool
	swapInterval int
	swapOffset   uint32
	retraceCount int
	swapCount    atomic.Int32
	frameCount   atomic.Uint64
	soloSwapMu   sync.Mutex
	vRetrace     atomic.Bool
	flushing     atomic.Bool

	// Scanout.
	scan      scanoutState
	surface   VoodooSurface
	dirtyLine [VOODOO_DIRTY_LINES]atomic.Bool

	stats voodooStats

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	mu     sync.Mutex
}

// NewVoodooEngine creates one card from its configuration. set may be nil
// for a standalone card.
func NewVoodooEngine(cfg CardConfig, set *VoodooSet, index int) (*VoodooEngine, error) {
	cardType, err := cfg.cardType()
	if err != nil {
		return nil, err
	}
	if cfg.RenderThreads != 1 && cfg.RenderThreads != 2 {
		return nil, &VoodooError{Operation: "create", Details: "render_threads must be 1 or 2"}
	}
	fbSize := cfg.FramebufferMB << 20
	texSize := cfg.TextureMB << 20
	if !isPow2(fbSize) || !isPow2(texSize) {
		return nil, &VoodooError{Operation: "create", Details: "framebuffer and texture memory must be a power of two in MB"}
	}

	v := &VoodooEngine{
		cardType:      cardType,
		set:           set,
		index:         index,
		fbMem:         make([]byte, fbSize),
		fbMask:        uint32(fbSize - 1),
		texMask:       uint32(texSize - 1),
		renderThreads: cfg.RenderThreads,
		oddEvenMask:   cfg.RenderThreads - 1,
		bilinear:      cfg.Bilinear,
		fifo:          newCommandFIFO(),
		queue:         newParamQueue(cfg.RenderThreads),
		pipeline:      newSoftwarePipeline(),
		tmuCount:      1,
	}
	if cfg.DualTMUs || cardType == VOODOO_2 {
		v.tmuCount = 2
	}
	for tmu := 0; tmu < v.tmuCount; tmu++ {
		v.texMem[tmu] = make([]byte, texSize)
		v.texCache[tmu] = newTextureCache(tmu, texSize)
	}
	if index == 1 {
		v.initEnable |= VOODOO_INITENABLE_SLI_SLAVE
		v.sliMasterSlave = 1
	}
	for i := range v.params.tmu {
		v.params.tmu[i].texEntry = -1
	}
	v.lut.init()
	v.scan.reset()
	v.ctx, v.cancel = context.WithCancel(context.Background())

	v.modeMu.Lock()
	v.setVideoDimensionsLocked(VOODOO_DEFAULT_WIDTH, VOODOO_DEFAULT_HEIGHT)
	v.modeMu.Unlock()
	return v, nil
}

// Start launches the FIFO thread and the render threads. They run until
// ctx is cancelled or Close is called.
func (v *VoodooEngine) Start(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.group != nil {
		return &VoodooError{Operation: "start", Details: "already running"}
	}
	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		<-v.ctx.Done()
		cancel()
	}()
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return v.fifoThread(gctx) })
	for i := 0; i < v.renderThreads; i++ {
		idx := i
		g.Go(func() error { return v.renderThread(gctx, idx) })
	}
	v.group = g
	modEmu.Debugf("card %d started: type %d, %d render threads, %d tmus", v.index, v.cardType, v.renderThreads, v.tmuCount)
	return nil
}

// Close stops all threads and waits for them to exit.
func (v *VoodooEngine) Close() error {
	v.cancel()
	v.mu.Lock()
	g := v.group
	v.group = nil
	v.mu.Unlock()
	if g == nil {
		return nil
	}
	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// HandleWrite is the 32-bit bus write entry point. addr is an offset into
// the card's 16MB window.
func (v *VoodooEngine) HandleWrite(addr uint32, value uint32) {
	addr &= FIFO_ADDR
	v.stats.writes.Add(1)
	switch addr & VOODOO_SPACE_MASK {
	case VOODOO_SPACE_REG:
		reg := addr & VOODOO_REG_MASK
		if reg >= VOODOO_INIT_SPACE_START && reg <= VOODOO_INIT_SPACE_END {
			v.writeInitRegister(reg, value)
			return
		}
		if reg == VOODOO_SWAPBUF_CMD {
			v.swapCount.Add(1)
		}
		v.queueWrite(FIFO_WRITEL_REG|addr, value)
	case VOODOO_SPACE_LFB:
		v.queueWrite(FIFO_WRITEL_FB|addr, value)
	default:
		v.queueWrite(FIFO_WRITEL_TEX|addr, value)
	}
}

// HandleWrite16 is the 16-bit bus write entry point. Only the linear
// framebuffer accepts 16-bit writes.
func (v *VoodooEngine) HandleWrite16(addr uint32, value uint16) {
	addr &= FIFO_ADDR
	if addr&VOODOO_SPACE_MASK != VOODOO_SPACE_LFB {
		return
	}
	v.stats.writes.Add(1)
	v.queueWrite(FIFO_WRITEW_FB|addr, uint32(value))
}

func (v *VoodooEngine) queueWrite(addrType, value uint32) {
	v.stats.fifoWrites.Add(1)
	if err := v.fifo.push(v.ctx, fifoEntry{addrType: addrType, val: value}); err != nil {
		modFIFO.Debugf("write %08x dropped: %v", addrType, err)
	}
}

// HandleRead serves register and framebuffer reads. Register reads do not
// pass through the FIFO; framebuffer reads wait for it to drain first.
func (v *VoodooEngine) HandleRead(addr uint32) uint32 {
	addr &= FIFO_ADDR
	v.stats.reads.Add(1)
	switch addr & VOODOO_SPACE_MASK {
	case VOODOO_SPACE_REG:
		return v.readRegister(addr & VOODOO_REG_MASK)
	case VOODOO_SPACE_LFB:
		v.WaitIdle()
		return v.readLFB(addr)
	}
	return 0xFFFFFFFF
}

func (v *VoodooEngine) readRegister(reg uint32) uint32 {
	switch reg {
	case VOODOO_STATUS:
		return v.status()
	case VOODOO_FBI_PIXELS_IN:
		return uint32(v.stats.pixelsIn.Load()) & 0xFFFFFF
	case VOODOO_FBI_CHROMA_FAIL:
		return uint32(v.stats.chromaFail.Load()) & 0xFFFFFF
	case VOODOO_FBI_ZFUNC_FAIL:
		return uint32(v.stats.zFuncFail.Load()) & 0xFFFFFF
	case VOODOO_FBI_AFUNC_FAIL:
		return uint32(v.stats.aFuncFail.Load()) & 0xFFFFFF
	case VOODOO_FBI_PIXELS_OUT:
		return uint32(v.stats.pixelsOut.Load()) & 0xFFFFFF
	case VOODOO_FBI_INIT2:
		// With DAC readback latched, fbiInit2 returns the DAC data.
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		if v.initEnable&VOODOO_INITENABLE_REMAP_DAC != 0 {
			return uint32(v.dac.readData)
		}
		return v.fbiInit[2]
	case VOODOO_DAC_DATA:
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		return uint32(v.dac.readData)
	case VOODOO_FBI_INIT0, VOODOO_FBI_INIT1, VOODOO_FBI_INIT3, VOODOO_FBI_INIT4:
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		return v.fbiInit[initIndex(reg)]
	case VOODOO_H_SYNC:
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		return v.hSync
	case VOODOO_V_SYNC:
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		return v.vSync
	case VOODOO_VIDEO_DIMENSIONS:
		v.modeMu.RLock()
		defer v.modeMu.RUnlock()
		return v.videoDims
	case VOODOO_V_RETRACE:
		return uint32(v.scan.line.Load()) & 0x1FFF
	}
	return 0
}

// status assembles the status register.
func (v *VoodooEngine) status() uint32 {
	occ := v.fifo.occupancy()
	free := uint32(0)
	if occ < VOODOO_FIFO_SIZE-VOODOO_FIFO_SLACK {
		free = VOODOO_FIFO_SIZE - VOODOO_FIFO_SLACK - occ
	}
	if free > VOODOO_STATUS_PCIFIFO_MASK {
		free = VOODOO_STATUS_PCIFIFO_MASK
	}
	temp := free

	// Bit 6 reads 0 while vertical retrace is active.
	if !v.vRetrace.Load() {
		temp |= VOODOO_STATUS_VRETRACE
	}
	if v.busy() {
		temp |= VOODOO_STATUS_FBI_BUSY | VOODOO_STATUS_TMU_BUSY | VOODOO_STATUS_SST_BUSY
	}
	v.modeMu.RLock()
	temp |= uint32(v.dispBuffer&3) << VOODOO_STATUS_DISP_SHIFT
	v.modeMu.RUnlock()
	temp |= VOODOO_STATUS_MEMFIFO

	swaps := v.swapCount.Load()
	if swaps > 7 {
		swaps = 7
	}
	if swaps > 0 {
		temp |= uint32(swaps) << VOODOO_STATUS_SWAP_SHIFT
	}
	return temp
}

// busy reports whether any queued work remains.
func (v *VoodooEngine) busy() bool {
	if !v.fifo.empty() || v.fifoBusy.Load() || !v.queue.drained() {
		return true
	}
	for i := 0; i < v.renderThreads; i++ {
		if v.renderBusy[i].Load() {
			return true
		}
	}
	return false
}

// WaitIdle blocks until the FIFO and both render queues are drained.
func (v *VoodooEngine) WaitIdle() {
	v.flushing.Store(true)
	defer v.flushing.Store(false)
	for v.busy() {
		select {
		case <-v.ctx.Done():
			return
		default:
		}
		v.fifo.wake.set()
		v.fifo.notFull.waitTimeout(v.ctx, time.Millisecond)
	}
}

// waitRenderIdle is called on the FIFO thread before operations that touch
// the framebuffer outside the render threads.
func (v *VoodooEngine) waitRenderIdle(ctx context.Context) error {
	for !v.renderIdle() {
		for i := 0; i < v.renderThreads; i++ {
			v.queue.wake[i].set()
		}
		v.queue.notFull[0].waitTimeout(ctx, time.Millisecond)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (v *VoodooEngine) renderIdle() bool {
	if !v.queue.drained() {
		return false
	}
	for i := 0; i < v.renderThreads; i++ {
		if v.renderBusy[i].Load() {
			return false
		}
	}
	return true
}

// SetPipeline replaces the per-pixel pipeline used by the render threads.
// It must be called before Start.
func (v *VoodooEngine) SetPipeline(p PixelPipeline) {
	v.pipeline = p
}

// sliEnabled reports whether this card renders alternate lines with its
// partner.
func (v *VoodooEngine) sliEnabled() bool {
	return v.sli.Load()
}

// fbRead16 reads the 16-bit pixel at byte offset off. Framebuffer memory
// is little-endian with a stride of rowWidth bytes; offsets wrap at the
// framebuffer size.
func (v *VoodooEngine) fbRead16(off uint32) uint16 {
	off &= v.fbMask &^ 1
	return binary.LittleEndian.Uint16(v.fbMem[off:])
}

func (v *VoodooEngine) fbWrite16(off uint32, val uint16) {
	off &= v.fbMask &^ 1
	binary.LittleEndian.PutUint16(v.fbMem[off:], val)
}

// fbRow returns the byte slice backing n pixels of row y at base.
func (v *VoodooEngine) fbRow(base uint32, rowWidth, y, n int) []byte {
	start := (base + uint32(y*rowWidth)) & v.fbMask
	end := int(start) + n*2
	if end > len(v.fbMem) {
		end = len(v.fbMem)
	}
	return v.fbMem[start:end]
}

func (v *VoodooEngine) markDirty(line int) {
	if line >= 0 && line < VOODOO_DIRTY_LINES {
		v.dirtyLine[line].Store(true)
	}
}

func (v *VoodooEngine) markAllDirty() {
	for i := range v.dirtyLine {
		v.dirtyLine[i].Store(true)
	}
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}
