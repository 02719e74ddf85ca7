// voodoo_software.go - Software Pixel Pipeline for Voodoo Graphics

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
voodoo_software.go - Software Pixel Pipeline for Voodoo Graphics

Integer pixel pipeline run by the render threads for every span:
- Stipple and depth test against the 16-bit aux buffer (Z or W)
- Texture fetch with wrap/clamp, point or bilinear sampling
- Colour and alpha combine from fbzColorPath
- Chroma key and alpha test
- Fog from the fog table, iterated alpha or Z
- Alpha blending against the draw buffer
- Ordered dithering down to RGB565
*/

package main

import (
	"encoding/binary"
	"math"
)

type softwarePipeline struct{}

func newSoftwarePipeline() *softwarePipeline {
	return &softwarePipeline{}
}

type rgba struct {
	r, g, b, a int
}

func unpackARGB(c uint32) rgba {
	return rgba{r: int(c>>16) & 0xff, g: int(c>>8) & 0xff, b: int(c) & 0xff, a: int(c >> 24)}
}

func clampColor(v int) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// iterColor clamps a 12.12 iterated colour to 8 bits.
func iterColor(v int64) int {
	return clampColor(int(v >> 12))
}

// DrawSpan runs the pipeline over every pixel of s.
func (sw *softwarePipeline) DrawSpan(s *spanState) {
	p := s.p
	fbz := p.fbzMode
	depthFunc := int(fbz>>VOODOO_FBZ_DEPTH_SHIFT) & 7
	alphaFunc := int(p.alphaMode>>VOODOO_ALPHA_FUNC_SHIFT) & 7
	alphaRef := int(p.alphaMode>>VOODOO_ALPHA_REF_SHIFT) & 0xff

	for i := 0; i < s.count; i++ {
		x := s.x + i
		di := int64(i)
		s.stats.pixelsIn++

		if fbz&VOODOO_FBZ_STIPPLE != 0 {
			bit := uint((s.y&3)<<3 | (7 - x&7))
			if p.stipple&(1<<bit) == 0 {
				continue
			}
		}

		off := x * 2
		if off+2 > len(s.color) {
			break
		}

		// Depth.
		var newDepth int
		if fbz&VOODOO_FBZ_WBUFFER != 0 {
			w := s.w + di*p.dWdX
			newDepth = 0xffff - int(clamp16(int(w>>14)))
		} else {
			newDepth = int(clamp16(int((int64(s.z) + di*int64(p.dZdX)) >> 12)))
		}
		if fbz&VOODOO_FBZ_DEPTH_BIAS != 0 {
			newDepth = int(clamp16(newDepth + int(int16(p.zaColor))))
		}
		if fbz&VOODOO_FBZ_DEPTH_SOURCE != 0 {
			newDepth = int(p.zaColor & 0xffff)
		}
		if fbz&VOODOO_FBZ_DEPTH_ENABLE != 0 && off+2 <= len(s.depth) {
			old := int(binary.LittleEndian.Uint16(s.depth[off:]))
			if !depthTest(newDepth, old, depthFunc) {
				s.stats.zFuncFail++
				continue
			}
		}

		// Iterated colour.
		iter := rgba{
			r: iterColor(s.r + di*int64(p.dRdX)),
			g: iterColor(s.g + di*int64(p.dGdX)),
			b: iterColor(s.b + di*int64(p.dBdX)),
			a: iterColor(s.a + di*int64(p.dAdX)),
		}

		// Texture.
		var tex rgba
		textured := false
		for tmu := VOODOO_MAX_TMUS - 1; tmu >= 0; tmu-- {
			e := s.tex[tmu]
			if e == nil {
				continue
			}
			t := &p.tmu[tmu]
			c := sampleTexture(e, t, s.lod[tmu],
				s.s[tmu]+di*t.dSdX, s.t[tmu]+di*t.dTdX, s.tw[tmu]+di*t.dWdX, s.bilinear)
			s.stats.texels++
			if textured {
				// The downstream unit's output modulates this one.
				c = rgba{r: c.r * (tex.r + 1) >> 8, g: c.g * (tex.g + 1) >> 8, b: c.b * (tex.b + 1) >> 8, a: c.a * (tex.a + 1) >> 8}
			}
			tex = c
			textured = true
		}

		out, other := combine(p, iter, tex, int((s.z+di*int64(p.dZdX))>>20)&0xff)

		if fbz&VOODOO_FBZ_CHROMAKEY != 0 && chromaKeyTest(other, p.chromaKey) {
			s.stats.chromaFail++
			continue
		}
		if p.alphaMode&VOODOO_ALPHA_TEST_EN != 0 && !alphaTest(out.a, alphaRef, alphaFunc) {
			s.stats.aFuncFail++
			continue
		}

		if p.fogMode&VOODOO_FOG_ENABLE != 0 {
			out = applyFog(p, out, iter.a, newDepth, int((s.z+di*int64(p.dZdX))>>20)&0xff)
		}

		if p.alphaMode&VOODOO_ALPHA_BLEND_EN != 0 {
			dr, dg, db := rgb565To888(binary.LittleEndian.Uint16(s.color[off:]))
			out = blend(p.alphaMode, out, rgba{r: dr, g: dg, b: db, a: 0xff})
		}

		if fbz&VOODOO_FBZ_RGB_WRITE != 0 {
			binary.LittleEndian.PutUint16(s.color[off:], dither565(out, x, s.y, fbz))
		}
		if fbz&VOODOO_FBZ_DEPTH_WRITE != 0 && off+2 <= len(s.depth) {
			binary.LittleEndian.PutUint16(s.depth[off:], uint16(newDepth))
		}
		s.stats.pixelsOut++
	}
}

// sampleTexture fetches one filtered texel. s and t are 14.18 and w is
// 2.30; with perspective enabled the coordinates are divided by w.
func sampleTexture(e *textureEntry, t *tmuParams, lod int, s, tt, w int64, bilinear bool) rgba {
	sf := float64(s) / (1 << 18)
	tf := float64(tt) / (1 << 18)
	if t.textureMode&VOODOO_TEX_PERSPECTIVE != 0 && w != 0 {
		wf := float64(w) / (1 << 30)
		sf /= wf
		tf /= wf
	}
	if e.lodOff[lod] < 0 {
		return rgba{}
	}
	scale := float64(int(1) << lod)
	sf /= scale
	tf /= scale
	width, height := e.lodW[lod], e.lodH[lod]
	texels := e.data[e.lodOff[lod] : e.lodOff[lod]+width*height]

	fetch := func(x, y int) rgba {
		if t.textureMode&VOODOO_TEX_CLAMP_S != 0 {
			x = min(max(x, 0), width-1)
		} else {
			x &= width - 1
		}
		if t.textureMode&VOODOO_TEX_CLAMP_T != 0 {
			y = min(max(y, 0), height-1)
		} else {
			y &= height - 1
		}
		return unpackARGB(texels[y*width+x])
	}

	filter := t.textureMode&(VOODOO_TEX_MINIFY|VOODOO_TEX_MAGNIFY) != 0
	if !bilinear || !filter {
		return fetch(int(math.Floor(sf)), int(math.Floor(tf)))
	}

	sf -= 0.5
	tf -= 0.5
	x0, y0 := int(math.Floor(sf)), int(math.Floor(tf))
	fx := int((sf - math.Floor(sf)) * 256)
	fy := int((tf - math.Floor(tf)) * 256)
	c00, c10 := fetch(x0, y0), fetch(x0+1, y0)
	c01, c11 := fetch(x0, y0+1), fetch(x0+1, y0+1)
	lerp := func(a, b, f int) int { return a + ((b-a)*f)>>8 }
	mix := func(a, b, c, d int) int { return lerp(lerp(a, b, fx), lerp(c, d, fx), fy) }
	return rgba{
		r: mix(c00.r, c10.r, c01.r, c11.r),
		g: mix(c00.g, c10.g, c01.g, c11.g),
		b: mix(c00.b, c10.b, c01.b, c11.b),
		a: mix(c00.a, c10.a, c01.a, c11.a),
	}
}

// combine evaluates the colour and alpha combine units. It returns the
// combined colour and the selected "other" colour used for chroma keying.
func combine(p *triangleParams, iter, tex rgba, z8 int) (rgba, rgba) {
	cp := p.fbzColorPath
	c0, c1 := unpackARGB(p.color0), unpackARGB(p.color1)

	var other rgba
	switch cp & VOODOO_FCP_RGB_SELECT_MASK {
	case VOODOO_CC_ITERATED:
		other.r, other.g, other.b = iter.r, iter.g, iter.b
	case VOODOO_CC_TEXTURE:
		other.r, other.g, other.b = tex.r, tex.g, tex.b
	default:
		other.r, other.g, other.b = c1.r, c1.g, c1.b
	}
	switch (cp >> VOODOO_FCP_A_SELECT_SHIFT) & 3 {
	case VOODOO_CC_ITERATED:
		other.a = iter.a
	case VOODOO_CC_TEXTURE:
		other.a = tex.a
	default:
		other.a = c1.a
	}

	local := iter
	if cp&VOODOO_FCP_CC_LOCALSELECT != 0 {
		local.r, local.g, local.b = c0.r, c0.g, c0.b
	}
	switch (cp >> VOODOO_FCP_CCA_LOCALSEL_SHIFT) & 3 {
	case 0:
		local.a = iter.a
	case 1:
		local.a = c0.a
	default:
		local.a = z8
	}

	factor := func(sel uint32, ch, localCh int) int {
		switch sel {
		case VOODOO_CC_MSEL_CLOCAL:
			return localCh
		case VOODOO_CC_MSEL_AOTHER:
			return other.a
		case VOODOO_CC_MSEL_ALOCAL:
			return local.a
		case VOODOO_CC_MSEL_TEXTURE:
			return tex.a
		}
		return 0
	}

	unit := func(otherCh, localCh int, zeroOther, subLocal bool, msel uint32, reverse bool, add uint32, invert bool) int {
		c := otherCh
		if zeroOther {
			c = 0
		}
		if subLocal {
			c -= localCh
		}
		f := factor(msel, otherCh, localCh)
		if !reverse {
			f ^= 0xff
		}
		c = c * (f + 1) >> 8
		switch add {
		case 1:
			c += localCh
		case 2:
			c += local.a
		}
		c = clampColor(c)
		if invert {
			c ^= 0xff
		}
		return c
	}

	zero := cp&VOODOO_FCP_CC_ZERO_OTHER != 0
	sub := cp&VOODOO_FCP_CC_SUB_CLOCAL != 0
	msel := (cp >> VOODOO_FCP_CC_MSELECT_SHIFT) & 7
	rev := cp&VOODOO_FCP_CC_REVERSE_BLEND != 0
	add := (cp >> VOODOO_FCP_CC_ADD_SHIFT) & 3
	inv := cp&VOODOO_FCP_CC_INVERT_OUTPUT != 0

	var out rgba
	out.r = unit(other.r, local.r, zero, sub, msel, rev, add, inv)
	out.g = unit(other.g, local.g, zero, sub, msel, rev, add, inv)
	out.b = unit(other.b, local.b, zero, sub, msel, rev, add, inv)

	aAdd := (cp >> VOODOO_FCP_CCA_ADD_SHIFT) & 3
	if aAdd != 0 {
		aAdd = 2
	}
	out.a = unit(other.a, local.a,
		cp&VOODOO_FCP_CCA_ZERO_OTHER != 0,
		cp&VOODOO_FCP_CCA_SUB_CLOCAL != 0,
		(cp>>VOODOO_FCP_CCA_MSELECT_SHIFT)&7,
		cp&VOODOO_FCP_CCA_REVERSE_BLEND != 0,
		aAdd,
		cp&VOODOO_FCP_CCA_INVERT_OUTPUT != 0)
	return out, other
}

// applyFog blends towards fogColor. The fog alpha comes from iterated
// alpha, iterated Z or the fog table indexed by depth.
func applyFog(p *triangleParams, c rgba, iterA, depth, z8 int) rgba {
	fc := unpackARGB(p.fogColor)
	if p.fogMode&VOODOO_FOG_CONSTANT != 0 {
		return rgba{r: clampColor(c.r + fc.r), g: clampColor(c.g + fc.g), b: clampColor(c.b + fc.b), a: c.a}
	}

	var fogA int
	switch {
	case p.fogMode&VOODOO_FOG_ALPHA != 0:
		fogA = iterA
	case p.fogMode&VOODOO_FOG_Z != 0:
		fogA = z8
	default:
		e := p.fogTable[(depth>>10)&63]
		fogA = int(e.fog) + (int(e.dfog)*((depth>>2)&0xff))>>10
	}
	fogA = clampColor(fogA) + 1

	ch := func(src, fog int) int {
		if p.fogMode&VOODOO_FOG_ADD != 0 {
			fog = 0
		}
		if p.fogMode&VOODOO_FOG_MULT == 0 {
			fog -= src
		}
		fog = fog * fogA >> 8
		if p.fogMode&VOODOO_FOG_MULT != 0 {
			return clampColor(fog)
		}
		return clampColor(src + fog)
	}
	return rgba{r: ch(c.r, fc.r), g: ch(c.g, fc.g), b: ch(c.b, fc.b), a: c.a}
}

// blend applies the alphaMode RGB blend factors.
func blend(alphaMode uint32, src, dst rgba) rgba {
	sf := int(alphaMode>>VOODOO_ALPHA_SRC_SHIFT) & 0xf
	df := int(alphaMode>>VOODOO_ALPHA_DST_SHIFT) & 0xf
	ch := func(s, d, sc, dc int) int {
		return clampColor((s*getBlendFactor(sf, src, dst, dc) + d*getBlendFactor(df, src, dst, sc)) >> 8)
	}
	return rgba{
		r: ch(src.r, dst.r, src.r, dst.r),
		g: ch(src.g, dst.g, src.g, dst.g),
		b: ch(src.b, dst.b, src.b, dst.b),
		a: src.a,
	}
}

// getBlendFactor returns a factor in 0..256. colour is the channel used by
// the COLOR factors: the destination for the source factor and the source
// for the destination factor.
func getBlendFactor(factor int, src, dst rgba, colour int) int {
	scale := func(v int) int { return v + v>>7 }
	switch factor {
	case VOODOO_BLEND_ZERO:
		return 0
	case VOODOO_BLEND_SRC_ALPHA:
		return scale(src.a)
	case VOODOO_BLEND_COLOR:
		return scale(colour)
	case VOODOO_BLEND_DST_ALPHA:
		return scale(dst.a)
	case VOODOO_BLEND_ONE:
		return 256
	case VOODOO_BLEND_INV_SRC_A:
		return 256 - scale(src.a)
	case VOODOO_BLEND_INV_COLOR:
		return 256 - scale(colour)
	case VOODOO_BLEND_INV_DST_A:
		return 256 - scale(dst.a)
	case VOODOO_BLEND_SATURATE:
		return scale(min(src.a, 255-dst.a))
	}
	return 256
}

// depthTest performs depth comparison
func depthTest(newZ, oldZ int, depthFunc int) bool {
	switch depthFunc {
	case VOODOO_DEPTH_NEVER:
		return false
	case VOODOO_DEPTH_LESS:
		return newZ < oldZ
	case VOODOO_DEPTH_EQUAL:
		return newZ == oldZ
	case VOODOO_DEPTH_LESSEQUAL:
		return newZ <= oldZ
	case VOODOO_DEPTH_GREATER:
		return newZ > oldZ
	case VOODOO_DEPTH_NOTEQUAL:
		return newZ != oldZ
	case VOODOO_DEPTH_GREATEREQUAL:
		return newZ >= oldZ
	}
	return true
}

// alphaTest performs alpha comparison (same functions as depth test)
func alphaTest(alphaValue, alphaRef int, alphaFunc int) bool {
	switch alphaFunc {
	case VOODOO_ALPHA_NEVER:
		return false
	case VOODOO_ALPHA_LESS:
		return alphaValue < alphaRef
	case VOODOO_ALPHA_EQUAL:
		return alphaValue == alphaRef
	case VOODOO_ALPHA_LESSEQUAL:
		return alphaValue <= alphaRef
	case VOODOO_ALPHA_GREATER:
		return alphaValue > alphaRef
	case VOODOO_ALPHA_NOTEQUAL:
		return alphaValue != alphaRef
	case VOODOO_ALPHA_GREATEREQUAL:
		return alphaValue >= alphaRef
	}
	return true
}

// chromaKeyTest reports whether c matches the key and must be discarded
func chromaKeyTest(c rgba, chromaKey uint32) bool {
	key := unpackARGB(chromaKey)
	return c.r == key.r && c.g == key.g && c.b == key.b
}

// bayer4x4 is the 4x4 ordered dither matrix
var bayer4x4 = [16]int{
	0, 8, 2, 10,
	12, 4, 14, 6,
	3, 11, 1, 9,
	15, 7, 13, 5,
}

// bayer2x2 is the 2x2 ordered dither matrix, scaled to the 4x4 range
var bayer2x2 = [4]int{
	0, 8,
	12, 4,
}

// dither565 quantises c to RGB565, dithering when fbzMode asks for it.
func dither565(c rgba, x, y int, fbzMode uint32) uint16 {
	r, g, b := c.r, c.g, c.b
	if fbzMode&VOODOO_FBZ_DITHER != 0 {
		var d int
		if fbzMode&VOODOO_FBZ_DITHER_2X2 != 0 {
			d = bayer2x2[(y&1)<<1|(x&1)]
		} else {
			d = bayer4x4[(y&3)<<2|(x&3)]
		}
		r = clampColor(r + d/2 - 4)
		g = clampColor(g + d/4 - 2)
		b = clampColor(b + d/2 - 4)
	}
	return uint16(r>>3<<11 | g>>2<<5 | b>>3)
}
