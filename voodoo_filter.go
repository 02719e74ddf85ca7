// voodoo_filter.go - Scanout post-filter

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
voodoo_filter.go - Screen filter tables and scanline filtering

The hardware's output stage softens the 4x4 ordered dither of the 16-bit
framebuffer. Two table generators approximate the SST-1 and SST-2
variants: for every pair of intensities (g target, h neighbour) and every
channel they store a blended value capped by a per-channel threshold.
Odd raster lines of the SST-1 variant also get a small tint correction.

Tables are regenerated only when the threshold changes and are published
with a single atomic store.
*/

package main

import "sync/atomic"

// Channel order in the interleaved scratch rows: blue, green, red.
const (
	filterB = 0
	filterG = 1
	filterR = 2
)

type filterThresholds struct {
	r, g, b int
}

func splitThreshold(th uint32) filterThresholds {
	return filterThresholds{r: int(th>>16) & 0xff, g: int(th>>8) & 0xff, b: int(th) & 0xff}
}

type filterTables struct {
	ch         [3][256][256]uint8
	purpleline [256][3]uint16
}

type filterState struct {
	enabled   atomic.Bool
	threshold atomic.Uint32
	old       uint32
	built     bool
	tables    atomic.Pointer[filterTables]
}

func clampFilter(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func capDiff(d, limit float32) float32 {
	if d > limit {
		return limit
	}
	if d < -limit {
		return -limit
	}
	return d
}

// generateFilterV1 builds the SST-1 tables.
func generateFilterV1(th filterThresholds) *filterTables {
	t := &filterTables{}
	caps := [3]float32{filterB: float32(th.b), filterG: float32(th.g), filterR: float32(th.r)}
	limits := [3]float32{filterB: float32(th.b * 5), filterG: float32(th.g * 6), filterR: float32(th.r * 5)}

	for g := 0; g < 256; g++ {
		for h := 0; h < 256; h++ {
			for c := 0; c < 3; c++ {
				diff := capDiff(float32(h-g), caps[c])
				col := float32(g)
				if diff < limits[c] {
					col = float32(g) + diff/2
				}
				t.ch[c][g][h] = clampFilter(col)
			}
		}
		t.purpleline[g][filterB] = uint16(min(g+4, 255))
		t.purpleline[g][filterG] = uint16(g)
		t.purpleline[g][filterR] = uint16(min(g+4, 255))
	}
	return t
}

// generateFilterV2 builds the SST-2 tables. Only lightening towards a
// brighter neighbour is applied, bounded by the averaged difference.
func generateFilterV2(th filterThresholds) *filterTables {
	t := &filterTables{}
	caps := [3]float32{filterB: float32(th.b), filterG: float32(th.g), filterR: float32(th.r)}
	var pre [3]float32
	for c := range caps {
		pre[c] = min(caps[c], 32)
	}

	for g := 0; g < 256; g++ {
		for h := 0; h < 256; h++ {
			diff := float32(g - h)
			if diff < 0 {
				diff = -diff
			}
			avg := float32((g + g + g + g + h) / 5)
			avgDiff := avg - float32((g+h+h+h+h)/5)
			if avgDiff < 0 {
				avgDiff = -avgDiff
			}

			for c := 0; c < 3; c++ {
				col := float32(g)
				if h > g {
					col = float32(g) + min(avgDiff, pre[c])
					col = min(col, float32(g)+caps[c])
					col = min(col, float32(g)+avgDiff)
				}
				if diff > caps[c] {
					col = float32(g)
				}
				t.ch[c][g][h] = clampFilter(col)
			}
		}
		t.purpleline[g][filterB] = uint16(min(g+3, 255))
		t.purpleline[g][filterG] = 0
		t.purpleline[g][filterR] = uint16(min(g+3, 255))
	}
	return t
}

// thresholdCheck regenerates the tables when the filter is on and the
// threshold differs from the one the current tables were built with.
// Called from the scanout path only.
func (f *filterState) thresholdCheck(cardType int) bool {
	if !f.enabled.Load() {
		return false
	}
	th := f.threshold.Load()
	if f.built && th == f.old {
		return false
	}
	f.old = th
	f.built = true

	split := splitThreshold(th)
	modDisplay.Debugf("filter threshold %06x: red %d green %d blue %d", th, split.r, split.g, split.b)
	if cardType == VOODOO_2 {
		f.tables.Store(generateFilterV2(split))
	} else {
		f.tables.Store(generateFilterV1(split))
	}
	return true
}

func channel(p uint16, c int) uint8 {
	switch c {
	case filterB:
		return uint8(p&31) << 3
	case filterG:
		return uint8((p>>5)&63) << 2
	}
	return uint8((p>>11)&31) << 3
}

func expandFilterRow(fil, fil3 []uint8, src []uint16, column int) {
	for x := 0; x < column; x++ {
		for c := 0; c < 3; c++ {
			v := channel(src[x], c)
			fil[x*3+c] = v
			fil3[x*3+c] = v
		}
	}
}

// filterLineV1 runs the tint and four alternating blend passes. The
// result is left in fil as interleaved BGR bytes.
func filterLineV1(t *filterTables, fil, fil3 []uint8, src []uint16, column, line int) {
	expandFilterRow(fil, fil3, src, column)

	if line&1 != 0 {
		for x := 0; x < column; x++ {
			for c := 0; c < 3; c++ {
				fil[x*3+c] = uint8(t.purpleline[fil[x*3+c]][c])
			}
		}
	}

	pass := func(dst, s []uint8, from, to, off int) {
		for x := from; x < to; x++ {
			for c := 0; c < 3; c++ {
				dst[x*3+c] = t.ch[c][s[x*3+c]][s[(x+off)*3+c]]
			}
		}
	}
	pass(fil3, fil, 1, column, -1)
	pass(fil, fil3, 1, column, -1)
	pass(fil3, fil, 1, column, -1)
	pass(fil, fil3, 0, column-1, 1)
}

// filterLineV2 blends each pixel against source pixels up to three to
// the right. src must hold column+1 pixels; the last one is the edge
// neighbour.
func filterLineV2(t *filterTables, fil, fil3 []uint8, src []uint16, column int) {
	expandFilterRow(fil, fil3, src, column)
	if column < 4 {
		return
	}

	for x := 1; x < column-3; x++ {
		for c := 0; c < 3; c++ {
			sx := channel(src[x], c)
			fil3[(x+3)*3+c] = t.ch[c][channel(src[x+3], c)][sx]
			fil[(x+2)*3+c] = t.ch[c][fil3[(x+2)*3+c]][sx]
			fil3[(x+1)*3+c] = t.ch[c][fil[(x+1)*3+c]][sx]
			fil[(x-1)*3+c] = t.ch[c][fil3[(x-1)*3+c]][sx]
		}
	}

	for c := 0; c < 3; c++ {
		edge := channel(src[column], c)
		for _, x := range []int{column - 3, column - 2, column - 1} {
			fil3[x*3+c] = t.ch[c][channel(src[x], c)][edge]
		}
		fil[(column-2)*3+c] = t.ch[c][fil3[(column-2)*3+c]][edge]
		fil[(column-1)*3+c] = t.ch[c][fil3[(column-1)*3+c]][edge]
		fil3[(column-1)*3+c] = t.ch[c][fil[(column-1)*3+c]][edge]
	}
}
