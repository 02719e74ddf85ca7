// voodoo_render.go - Render threads and span walker

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
voodoo_render.go - Render Threads

Each render thread consumes the parameter queue through its own cursor and
rasterises every triangle into the rows it owns. With two threads rows are
split by parity, so the threads never write the same framebuffer row and
no framebuffer lock is needed. Vertex positions are 12.4 fixed point; a
pixel is covered when its centre lies on or right of the left edge and
left of the right edge, and on or below the top vertex and above the
bottom one.

The per-pixel work is delegated to a PixelPipeline.
*/

package main

import (
	"context"
	"math"
)

// spanStats accumulates per-triangle counters before they are folded into
// the card statistics.
type spanStats struct {
	pixelsIn   uint64
	pixelsOut  uint64
	chromaFail uint64
	zFuncFail  uint64
	aFuncFail  uint64
	texels     uint64
}

// spanState describes one horizontal span of a triangle.
type spanState struct {
	p      *triangleParams
	thread int

	x, count int // first pixel and pixel count
	y        int // screen line
	row      int // framebuffer row

	color []byte // draw buffer row
	depth []byte // aux buffer row

	tex      [VOODOO_MAX_TMUS]*textureEntry
	lod      [VOODOO_MAX_TMUS]int
	bilinear bool

	// Iterated values at the first pixel.
	r, g, b, a int64 // 12.12
	z          int64 // 20.12
	w          int64 // 2.30
	s, t, tw   [VOODOO_MAX_TMUS]int64

	stats *spanStats
}

// PixelPipeline shades and writes the pixels of a span.
type PixelPipeline interface {
	DrawSpan(s *spanState)
}

// renderThread rasterises snapshots from cursor idx until ctx is done.
func (v *VoodooEngine) renderThread(ctx context.Context, idx int) error {
	for {
		p, err := v.queue.peek(ctx, idx)
		if err != nil {
			return err
		}
		v.renderBusy[idx].Store(true)
		v.renderTriangle(p, idx)
		v.queue.advance(idx)
		v.renderBusy[idx].Store(false)
	}
}

type vertex struct {
	x, y int64
}

func ceil16(n int64) int64 {
	return (n + 15) >> 4
}

// edgeX returns the x of edge a-b at height y, all in 1/16 pixels.
func edgeX(a, b vertex, y int64) int64 {
	if b.y == a.y {
		return a.x
	}
	return a.x + (y-a.y)*(b.x-a.x)/(b.y-a.y)
}

// triangleLOD picks a mip level from the texture gradients.
func triangleLOD(p *triangleParams, t *tmuParams) int {
	d := math.Max(math.Max(math.Abs(float64(t.dSdX)), math.Abs(float64(t.dTdX))),
		math.Max(math.Abs(float64(t.dSdY)), math.Abs(float64(t.dTdY)))) / (1 << 18)
	if t.textureMode&VOODOO_TEX_PERSPECTIVE != 0 && t.startW != 0 {
		d /= math.Abs(float64(t.startW)) / (1 << 30)
	}
	lod := 0
	if d > 1 {
		lod = int(math.Log2(d))
	}
	return min(max(lod, t.lodMin), t.lodMax)
}

// renderTriangle walks the rows of p owned by thread.
func (v *VoodooEngine) renderTriangle(p *triangleParams, thread int) {
	var span spanState
	var stats spanStats
	span.p = p
	span.thread = thread
	span.stats = &stats
	span.bilinear = v.bilinear

	for tmu := 0; tmu < v.tmuCount; tmu++ {
		if idx := p.tmu[tmu].texEntry; idx >= 0 {
			span.tex[tmu] = v.texCache[tmu].beginUse(idx, thread)
			span.lod[tmu] = triangleLOD(p, &p.tmu[tmu])
			defer v.texCache[tmu].endUse(idx, thread)
		}
	}

	a := vertex{int64(p.vertexAx), int64(p.vertexAy)}
	verts := [3]vertex{a, {int64(p.vertexBx), int64(p.vertexBy)}, {int64(p.vertexCx), int64(p.vertexCy)}}
	if verts[1].y < verts[0].y {
		verts[0], verts[1] = verts[1], verts[0]
	}
	if verts[2].y < verts[1].y {
		verts[1], verts[2] = verts[2], verts[1]
	}
	if verts[1].y < verts[0].y {
		verts[0], verts[1] = verts[1], verts[0]
	}
	top, mid, bot := verts[0], verts[1], verts[2]

	yStart, yEnd := int(ceil16(top.y-8)), int(ceil16(bot.y-8))
	if p.fbzMode&VOODOO_FBZ_CLIPPING != 0 {
		yStart = max(yStart, p.clipLowY)
		yEnd = min(yEnd, p.clipHighY)
	}
	yStart = max(yStart, 0)
	yEnd = min(yEnd, VOODOO_MAX_HEIGHT)
	maxX := p.rowWidth / 2

	for y := yStart; y < yEnd; y++ {
		fy := y
		if p.fbzMode&VOODOO_FBZ_Y_ORIGIN != 0 {
			fy = p.yOriginSwap - y
		}
		row, ok := p.fbLine(fy)
		if !ok || row&v.oddEvenMask != thread {
			continue
		}

		yc := int64(y)*16 + 8
		long := edgeX(top, bot, yc)
		var short int64
		if yc < mid.y {
			short = edgeX(top, mid, yc)
		} else {
			short = edgeX(mid, bot, yc)
		}
		left, right := min(long, short), max(long, short)
		x0, x1 := int(ceil16(left-8)), int(ceil16(right-8))
		if p.fbzMode&VOODOO_FBZ_CLIPPING != 0 {
			x0 = max(x0, p.clipLeft)
			x1 = min(x1, p.clipRight)
		}
		x0 = max(x0, 0)
		x1 = min(x1, maxX)
		if x1 <= x0 {
			continue
		}

		dx := int64(x0)*16 + 8 - a.x
		dy := yc - a.y
		span.x, span.count, span.y, span.row = x0, x1-x0, y, row
		span.r = int64(p.startR) + (int64(p.dRdX)*dx+int64(p.dRdY)*dy)>>4
		span.g = int64(p.startG) + (int64(p.dGdX)*dx+int64(p.dGdY)*dy)>>4
		span.b = int64(p.startB) + (int64(p.dBdX)*dx+int64(p.dBdY)*dy)>>4
		span.a = int64(p.startA) + (int64(p.dAdX)*dx+int64(p.dAdY)*dy)>>4
		span.z = int64(p.startZ) + (int64(p.dZdX)*dx+int64(p.dZdY)*dy)>>4
		span.w = p.startW + (p.dWdX*dx+p.dWdY*dy)>>4
		for tmu := range p.tmu {
			t := &p.tmu[tmu]
			span.s[tmu] = t.startS + (t.dSdX*dx+t.dSdY*dy)>>4
			span.t[tmu] = t.startT + (t.dTdX*dx+t.dTdY*dy)>>4
			span.tw[tmu] = t.startW + (t.dWdX*dx+t.dWdY*dy)>>4
		}
		span.color = v.fbRow(p.drawOffset, p.rowWidth, row, maxX)
		span.depth = v.fbRow(p.auxOffset, p.rowWidth, row, maxX)

		v.pipeline.DrawSpan(&span)

		if p.drawOffset == p.frontOffset {
			v.markDirty(row)
		}
	}

	v.stats.pixelsIn.Add(stats.pixelsIn)
	v.stats.pixelsOut.Add(stats.pixelsOut)
	v.stats.chromaFail.Add(stats.chromaFail)
	v.stats.zFuncFail.Add(stats.zFuncFail)
	v.stats.aFuncFail.Add(stats.aFuncFail)
	v.stats.texels.Add(stats.texels)
	v.stats.threadPixelsIn[thread].Add(stats.pixelsIn)
	v.stats.threadPixelsOut[thread].Add(stats.pixelsOut)
}
