// voodoo_dac.go - Video timing, DAC and PLL programming

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
voodoo_dac.go - Video timing registers and the RAMDAC/PLL

The initialisation register block (0x200-0x2FC) is written straight from
the bus path rather than through the command FIFO, so changes to video
timing, buffer layout, the CLUT and the DAC take effect immediately.

The pixel clock comes from PLL word 0:

	clock = 14318184 * (m / n1) / 2^n2
	m  = (pll0 & 0x7f) + 2
	n1 = ((pll0 >> 8) & 0x1f) + 2
	n2 = (pll0 >> 13) & 7

halved again when DAC register 6 selects a 2:1 multiplexed pixel mode.
*/

package main

import (
	"sync/atomic"
	"time"
)

// Line time used until the DAC has produced a usable clock.
const defaultLineTime = 32 * time.Microsecond

type dacState struct {
	data     [8]uint8
	reg      int
	regFF    bool
	readData uint8
	pll      [16]uint16

	clock    float32
	lineTime atomic.Int64 // nanoseconds
}

// pixelClock derives the pixel clock in Hz from PLL word 0 and DAC
// register 6.
func pixelClock(pll0 uint16, dac6 uint8) float32 {
	m := int(pll0&0x7f) + 2
	n1 := int((pll0>>8)&0x1f) + 2
	n2 := int((pll0 >> 13) & 7)
	t := float32(VOODOO_PLL_REF_HZ*float64(float32(m)/float32(n1))) / float32(int(1)<<n2)

	switch dac6 & 0xf0 {
	case 0x20, 0x60, 0x70:
		t /= 2
	}
	return t
}

// lineLength is the programmed horizontal total in pixel clocks.
func lineLength(hSync uint32) int {
	return int(hSync&0xff) + int((hSync>>16)&0x3ff)
}

// lineDuration converts a horizontal total at a given pixel clock to the
// duration of one scanline.
func lineDuration(length int, clock float32) time.Duration {
	if clock <= 0 || length <= 0 {
		return 0
	}
	return time.Duration(float64(length) / float64(clock) * float64(time.Second))
}

func (d *dacState) updatePixelClock(hSync uint32) {
	d.clock = pixelClock(d.pll[0], d.data[6])
	d.lineTime.Store(int64(lineDuration(lineLength(hSync), d.clock)))
}

// LineTime returns the current scanline period.
func (d *dacState) LineTime() time.Duration {
	if t := time.Duration(d.lineTime.Load()); t > 0 {
		return t
	}
	return defaultLineTime
}

// write handles a dacData register write. Bits 8-10 select the DAC
// register, bit 11 requests a read. Register 5 is the PLL data port: each
// PLL word is written low byte then high byte, and the PLL index in DAC
// register 4 advances after the high byte.
func (d *dacState) write(val uint32) {
	d.reg = int(val>>8) & 7
	d.readData = 0xff
	if val&0x800 != 0 {
		if d.reg == 5 {
			switch d.data[7] {
			case 0x01:
				d.readData = 0x55
			case 0x07:
				d.readData = 0x71
			case 0x0b:
				d.readData = 0x79
			}
		} else {
			d.readData = d.data[d.reg]
		}
		return
	}

	if d.reg == 5 {
		idx := d.data[4] & 0xf
		if !d.regFF {
			d.pll[idx] = (d.pll[idx] & 0xff00) | uint16(val&0xff)
		} else {
			d.pll[idx] = (d.pll[idx] & 0xff) | uint16(val&0xff)<<8
		}
		d.regFF = !d.regFF
		if !d.regFF {
			d.data[4]++
		}
	} else {
		d.data[d.reg] = uint8(val)
		d.regFF = false
	}
}

// initIndex maps an fbiInit register offset to its slot in fbiInit.
func initIndex(reg uint32) int {
	switch reg {
	case VOODOO_FBI_INIT0:
		return 0
	case VOODOO_FBI_INIT1:
		return 1
	case VOODOO_FBI_INIT2:
		return 2
	case VOODOO_FBI_INIT3:
		return 3
	case VOODOO_FBI_INIT4:
		return 4
	case VOODOO_FBI_INIT5:
		return 5
	case VOODOO_FBI_INIT6:
		return 6
	case VOODOO_FBI_INIT7:
		return 7
	}
	return 0
}

// writeInitRegister applies a write to the initialisation block.
func (v *VoodooEngine) writeInitRegister(reg, val uint32) {
	v.modeMu.Lock()
	defer v.modeMu.Unlock()

	switch reg {
	case VOODOO_FBI_INIT0:
		v.fbiInit[0] = val
		if val&VOODOO_FBIINIT0_GRAPH_RESET != 0 {
			modDAC.Debugf("card %d: graphics reset", v.index)
		}
	case VOODOO_FBI_INIT1:
		v.fbiInit[1] = val
		v.blockWidth = int((val>>4)&15) * 2
		if v.cardType == VOODOO_2 && val&VOODOO_FBIINIT1_BLOCK_WIDE != 0 {
			v.blockWidth += 32
		}
		v.sli.Store(val&VOODOO_FBIINIT1_SLI_ENABLE != 0 && v.set != nil && v.set.nrCards == 2)
		v.recalcLayoutLocked()
	case VOODOO_FBI_INIT2:
		v.fbiInit[2] = val
		v.bufferCutoff = ((val >> 11) & 0x1ff) * 4096
		v.swapAlgorithm = val & VOODOO_FBIINIT2_SWAP_MASK
		v.recalcLayoutLocked()
	case VOODOO_FBI_INIT3, VOODOO_FBI_INIT4, VOODOO_FBI_INIT5, VOODOO_FBI_INIT6, VOODOO_FBI_INIT7:
		v.fbiInit[initIndex(reg)] = val
	case VOODOO_BACK_PORCH:
		v.backPorch = val
	case VOODOO_VIDEO_DIMENSIONS:
		v.videoDims = val
		v.setVideoDimensionsLocked(int(val&0xfff)+1, int(val>>16)&0xfff)
	case VOODOO_H_SYNC:
		v.hSync = val
		v.hTotal = lineLength(val)
		v.dac.updatePixelClock(v.hSync)
	case VOODOO_V_SYNC:
		v.vSync = val
		v.vTotal = int(val&0xfff) + int((val>>16)&0xfff)
		v.scan.modeGen.Add(1)
	case VOODOO_CLUT_DATA:
		v.lut.writeClut(val)
	case VOODOO_DAC_DATA:
		v.dac.write(val)
		v.dac.updatePixelClock(v.hSync)
		modDAC.Debugf("card %d: dac reg %d, pixel clock %.3f MHz", v.index, v.dac.reg, v.dac.clock/1e6)
	default:
		modDAC.Debugf("card %d: unhandled init register %03x = %08x", v.index, reg, val)
	}
}

// setVideoDimensionsLocked programs the visible area. Timing totals that
// have not been programmed yet default to standard VGA blanking.
func (v *VoodooEngine) setVideoDimensionsLocked(w, h int) {
	v.hDisp, v.vDisp = w, h
	if v.hSync == 0 {
		v.hSync = uint32(w+160-96)<<16 | 96
		v.hTotal = lineLength(v.hSync)
		v.dac.updatePixelClock(v.hSync)
	}
	if v.vTotal <= v.vDisp {
		v.vSync = uint32(h+45-2)<<16 | 2
		v.vTotal = int(v.vSync&0xfff) + int((v.vSync>>16)&0xfff)
	}
	v.recalcLayoutLocked()
	v.scan.modeGen.Add(1)
	modDAC.Debugf("card %d: mode %dx%d, total %dx%d, row %d bytes", v.index, w, h, v.hTotal, v.vTotal, v.rowWidth)
}

// recalcLayoutLocked recomputes the row stride and the buffer offsets.
func (v *VoodooEngine) recalcLayoutLocked() {
	if v.blockWidth > 0 {
		v.rowWidth = v.blockWidth * 32 * 2
	} else {
		v.rowWidth = ((v.hDisp + 63) &^ 63) * 2
	}

	cutoff := v.bufferCutoff
	if cutoff == 0 {
		lines := v.vDisp
		if lines < 1 {
			lines = 1
		}
		cutoff = (uint32(v.rowWidth*lines) + 4095) &^ 4095
	}
	v.drawBuffer = v.dispBuffer ^ 1
	front := uint32(v.dispBuffer) * cutoff
	v.backOffset = uint32(v.drawBuffer) * cutoff
	v.frontOffset.Store(front)
	v.layoutCutoff = cutoff
}

// flipBuffersLocked swaps the displayed and drawn buffers.
func (v *VoodooEngine) flipBuffersLocked() {
	v.dispBuffer ^= 1
	v.recalcLayoutLocked()
}

// modeInfo is a consistent copy of the video mode.
type modeInfo struct {
	hDisp, vDisp   int
	hTotal, vTotal int
	rowWidth       int
	auxOffset      uint32
	vgaPass        bool
	swapAlgorithm  uint32
	scrFilter      bool
}

func (v *VoodooEngine) mode() modeInfo {
	v.modeMu.RLock()
	defer v.modeMu.RUnlock()
	return modeInfo{
		hDisp:         v.hDisp,
		vDisp:         v.vDisp,
		hTotal:        v.hTotal,
		vTotal:        v.vTotal,
		rowWidth:      v.rowWidth,
		auxOffset:     2 * v.layoutCutoff,
		vgaPass:       v.fbiInit[0]&VOODOO_FBIINIT0_VGA_PASS != 0,
		swapAlgorithm: v.swapAlgorithm,
		scrFilter:     v.scrFilter,
	}
}

// PixelClock returns the programmed pixel clock in Hz.
func (v *VoodooEngine) PixelClock() float32 {
	v.modeMu.RLock()
	defer v.modeMu.RUnlock()
	return v.dac.clock
}
