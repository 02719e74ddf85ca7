// voodoo_display.go - Scanout and vsync

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
voodoo_display.go - Scanout and Vsync Synchronizer

Callback runs once per emulated scanline. Visible lines whose dirty flag
is set are composited from the front buffer into the presentation frame,
either through the 16 to 32-bit table or through the screen filter. The
line equal to the visible height starts vertical retrace: pending swaps
whose interval has elapsed are performed there. In alternate line mode
with the SLI swap algorithm the first card swaps both cards under the
set's swap mutex, and only when both are ready.

When the visible area has been scanned the dirty range is handed to the
presentation surface and the CLUT tables are rebuilt if they changed.
*/

package main

import (
	"context"
	"encoding/binary"
	"sync"
	"sync/atomic"
	"time"
)

const (
	dirtyLowNone  = 2000
	dirtyHighNone = -1
)

type scanoutState struct {
	line    atomic.Int32
	modeGen atomic.Uint64

	// Owned by the scanout caller.
	gen       uint64
	dirtyLow  int
	dirtyHigh int
	src       []uint16
	fil, fil3 []uint8
	filter    filterState

	frameMu sync.Mutex
	frame   []uint32
	width   int
	height  int

	blits    atomic.Uint64
	retraces atomic.Uint64
}

func (s *scanoutState) reset() {
	s.dirtyLow = dirtyLowNone
	s.dirtyHigh = dirtyHighNone
}

// resize sizes the scratch rows and the frame for a new mode.
func (s *scanoutState) resize(w, h int) {
	w = min(max(w, 1), VOODOO_MAX_WIDTH)
	h = min(max(h, 1), VOODOO_MAX_HEIGHT)
	s.src = make([]uint16, w+1)
	s.fil = make([]uint8, w*3)
	s.fil3 = make([]uint8, w*3)
	s.frameMu.Lock()
	s.frame = make([]uint32, w*h)
	s.width, s.height = w, h
	s.frameMu.Unlock()
}

// VoodooSurface is the host presentation surface fed by the scanout.
type VoodooSurface interface {
	// WaitBuffer is called before the first row of a frame is written.
	WaitBuffer()
	// Blit presents rows y0..y1 inclusive of a width x height frame.
	Blit(frame []uint32, width, height, y0, y1 int)
}

// SetSurface attaches the presentation surface.
func (v *VoodooEngine) SetSurface(s VoodooSurface) {
	v.surface = s
}

// SetScreenFilter enables the output filter and sets its threshold
// (0xRRGGBB).
func (v *VoodooEngine) SetScreenFilter(enabled bool, threshold uint32) {
	v.modeMu.Lock()
	v.scrFilter = enabled
	v.modeMu.Unlock()
	v.scan.filter.threshold.Store(threshold & 0xffffff)
	v.scan.filter.enabled.Store(enabled)
}

// SetFilterThreshold changes the filter threshold. The tables are
// rebuilt by the scanout at the end of the visible area.
func (v *VoodooEngine) SetFilterThreshold(threshold uint32) {
	v.scan.filter.threshold.Store(threshold & 0xffffff)
}

// Snapshot copies the current presentation frame.
func (v *VoodooEngine) Snapshot() (frame []uint32, width, height int) {
	s := &v.scan
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return append([]uint32(nil), s.frame...), s.width, s.height
}

// FrameCount returns the number of completed buffer swaps.
func (v *VoodooEngine) FrameCount() uint64 {
	return v.frameCount.Load()
}

// Callback advances the scanout by one line.
func (v *VoodooEngine) Callback() {
	m := v.mode()
	s := &v.scan
	if g := s.modeGen.Load(); g != s.gen || s.frame == nil {
		s.gen = g
		s.resize(m.hDisp, m.vDisp)
	}

	line := int(s.line.Load())
	if m.vgaPass && line < m.vDisp {
		v.drawLine(m, line)
	}

	if line == m.vDisp {
		v.retrace(m)
	}
	line++

	if m.vgaPass && line == m.vDisp {
		if s.dirtyHigh >= s.dirtyLow {
			v.blit(s.dirtyLow, s.dirtyHigh)
		}
		if v.lut.recalcClut() {
			modDisplay.Debugf("card %d: clut rebuilt", v.index)
		}
		s.filter.thresholdCheck(v.cardType)
		s.reset()
	}

	if line >= m.vTotal {
		line = 0
		v.vRetrace.Store(false)
	}
	s.line.Store(int32(line))
}

// drawLine composites one visible line if its source row is dirty.
func (v *VoodooEngine) drawLine(m modeInfo, line int) {
	s := &v.scan
	draw := v
	drawLine := line
	if v.sliEnabled() && v.set != nil {
		if v.index == 1 {
			return
		}
		if v.sliMasterSlave != line&1 {
			draw = v.set.cards[1]
		}
		drawLine = line >> 1
	}
	if drawLine >= VOODOO_DIRTY_LINES || !draw.dirtyLine[drawLine].CompareAndSwap(true, false) {
		return
	}

	if line < s.dirtyLow {
		s.dirtyLow = line
		if v.surface != nil {
			v.surface.WaitBuffer()
		}
	}
	if line > s.dirtyHigh {
		s.dirtyHigh = line
	}

	width := min(m.hDisp, len(s.src)-1)
	rowWidth := m.rowWidth
	if draw != v {
		rowWidth = draw.mode().rowWidth
	}
	raw := draw.fbRow(draw.frontOffset.Load(), rowWidth, drawLine, width+1)
	n := len(raw) / 2
	for x := 0; x <= width; x++ {
		if x < n {
			s.src[x] = binary.LittleEndian.Uint16(raw[x*2:])
		} else if x > 0 {
			s.src[x] = s.src[x-1]
		}
	}

	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if line >= s.height {
		return
	}
	out := s.frame[line*s.width : line*s.width+min(width, s.width)]

	if m.scrFilter && s.filter.enabled.Load() {
		s.filter.thresholdCheck(v.cardType)
		if t := s.filter.tables.Load(); t != nil {
			if v.cardType == VOODOO_2 {
				filterLineV2(t, s.fil, s.fil3, s.src, width)
			} else {
				filterLineV1(t, s.fil, s.fil3, s.src, width, line)
			}
			clut := v.lut.clut.Load()
			for x := range out {
				out[x] = 0xff000000 |
					uint32(clut.clut256[s.fil[x*3+filterB]].b) |
					uint32(clut.clut256[s.fil[x*3+filterG]].g)<<8 |
					uint32(clut.clut256[s.fil[x*3+filterR]].r)<<16
			}
			return
		}
	}

	table := &draw.lut.clut.Load().video16to32
	for x := range out {
		out[x] = 0xff000000 | table[s.src[x]]
	}
}

func (v *VoodooEngine) blit(y0, y1 int) {
	s := &v.scan
	s.blits.Add(1)
	if v.surface == nil {
		return
	}
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	v.surface.Blit(s.frame, s.width, s.height, y0, min(y1, s.height-1))
}

// swapReady reports whether a pending swap may be taken. Caller holds
// the swap mutex.
func (v *VoodooEngine) swapReady() bool {
	return v.swapPending && v.retraceCount > v.swapInterval
}

// takeSwapLocked moves the swap offset to the front. Caller holds the
// swap mutex.
func (v *VoodooEngine) takeSwapLocked() {
	v.frontOffset.Store(v.swapOffset)
	v.swapPending = false
	v.retraceCount = 0
}

// retrace runs at the first line of vertical retrace.
func (v *VoodooEngine) retrace(m modeInfo) {
	v.scan.retraces.Add(1)
	mu := v.swapLock()

	if v.sliEnabled() && v.set != nil && m.swapAlgorithm == VOODOO_FBIINIT2_SWAP_SLI {
		mu.Lock()
		v.retraceCount++
		if v.index != 0 {
			mu.Unlock()
			v.vRetrace.Store(true)
			return
		}
		other := v.set.cards[1]
		ready := v.swapReady() && other.swapReady()
		if ready {
			v.takeSwapLocked()
			other.takeSwapLocked()
		}
		mu.Unlock()
		if ready {
			for _, c := range []*VoodooEngine{v, other} {
				c.completeSwap()
				c.fifo.wake.set()
			}
			modDisplay.Debugf("sli swap, frame %d", v.frameCount.Load())
		}
	} else {
		mu.Lock()
		v.retraceCount++
		ready := v.swapReady()
		if ready {
			v.takeSwapLocked()
		}
		mu.Unlock()
		if ready {
			v.completeSwap()
			v.fifo.wake.set()
		}
	}
	v.vRetrace.Store(true)
}

// RunScanout drives Callback from the wall clock at the programmed line
// rate until ctx is done. Lines that fall behind are caught up in a
// batch, bounded to one frame.
func (v *VoodooEngine) RunScanout(ctx context.Context) error {
	next := time.Now()
	timer := time.NewTimer(time.Millisecond)
	defer timer.Stop()
	for {
		now := time.Now()
		lineTime := v.dac.LineTime()
		budget := max(v.mode().vTotal, 1)
		for !next.After(now) && budget > 0 {
			v.Callback()
			next = next.Add(lineTime)
			budget--
		}
		if budget == 0 {
			next = now
		}

		timer.Reset(max(next.Sub(now), time.Millisecond))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
}
