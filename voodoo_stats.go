// voodoo_stats.go - Performance counters and statistics trace

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
	"io"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// voodooStats are running totals. The bus path, the FIFO thread and the
// render threads add to them concurrently.
type voodooStats struct {
	writes, reads atomic.Uint64
	fifoWrites    atomic.Uint64
	fifoReads     atomic.Uint64
	regWrites     atomic.Uint64

	pixelsIn, pixelsOut atomic.Uint64
	chromaFail          atomic.Uint64
	zFuncFail           atomic.Uint64
	aFuncFail           atomic.Uint64
	threadPixelsIn      [VOODOO_MAX_RENDER_THREADS]atomic.Uint64
	threadPixelsOut     [VOODOO_MAX_RENDER_THREADS]atomic.Uint64

	triangles atomic.Uint64
	texels    atomic.Uint64
	texWrites atomic.Uint64
	lfbWrites atomic.Uint64
	fastfills atomic.Uint64
	swaps     atomic.Uint64
}

// statsTotals is a plain copy of the counters of one card.
type statsTotals struct {
	Frames          uint64
	Triangles       uint64
	PixelsIn        [VOODOO_MAX_RENDER_THREADS]uint64
	PixelsOut       [VOODOO_MAX_RENDER_THREADS]uint64
	Texels          uint64
	FIFOWrites      uint64
	FIFOReads       uint64
	TexWrites       uint64
	LFBWrites       uint64
	Swaps           uint64
	TexMisses       uint64
	TexEvictions    uint64
	FIFOOccupancy   int
	ParamOccupancy  int
	DisplayedBuffer int
}

func (v *VoodooEngine) statsTotals() statsTotals {
	t := statsTotals{
		Frames:        v.frameCount.Load(),
		Triangles:     v.stats.triangles.Load(),
		Texels:        v.stats.texels.Load(),
		FIFOWrites:    v.stats.fifoWrites.Load(),
		FIFOReads:     v.stats.fifoReads.Load(),
		TexWrites:     v.stats.texWrites.Load(),
		LFBWrites:     v.stats.lfbWrites.Load(),
		Swaps:         v.stats.swaps.Load(),
		FIFOOccupancy: int(v.fifo.occupancy()),
	}
	for i := 0; i < v.renderThreads; i++ {
		t.PixelsIn[i] = v.stats.threadPixelsIn[i].Load()
		t.PixelsOut[i] = v.stats.threadPixelsOut[i].Load()
		t.ParamOccupancy = max(t.ParamOccupancy, int(v.queue.lag(i)))
	}
	for tmu := 0; tmu < v.tmuCount; tmu++ {
		t.TexMisses += v.texCache[tmu].misses.Load()
		t.TexEvictions += v.texCache[tmu].evictions.Load()
	}
	v.modeMu.RLock()
	t.DisplayedBuffer = v.dispBuffer
	v.modeMu.RUnlock()
	return t
}

// StatsSample is the per-second activity of one card.
type StatsSample struct {
	Time         time.Time
	Card         int
	Frames       uint64
	Triangles    uint64
	PixelsIn     []uint64 // per render thread
	PixelsOut    []uint64
	Texels       uint64
	FIFOWrites   uint64
	FIFOReads    uint64
	TexMisses    uint64
	TexEvictions uint64
	FIFOLevel    int
}

// statsSampler turns running totals into per-interval deltas.
type statsSampler struct {
	set  *VoodooSet
	prev [2]statsTotals
}

func newStatsSampler(set *VoodooSet) *statsSampler {
	s := &statsSampler{set: set}
	for i := 0; i < set.nrCards; i++ {
		s.prev[i] = set.cards[i].statsTotals()
	}
	return s
}

func (s *statsSampler) sample(now time.Time) []StatsSample {
	out := make([]StatsSample, 0, s.set.nrCards)
	for i := 0; i < s.set.nrCards; i++ {
		card := s.set.cards[i]
		cur := card.statsTotals()
		prev := s.prev[i]
		smp := StatsSample{
			Time:         now,
			Card:         i,
			Frames:       cur.Frames - prev.Frames,
			Triangles:    cur.Triangles - prev.Triangles,
			Texels:       cur.Texels - prev.Texels,
			FIFOWrites:   cur.FIFOWrites - prev.FIFOWrites,
			FIFOReads:    cur.FIFOReads - prev.FIFOReads,
			TexMisses:    cur.TexMisses - prev.TexMisses,
			TexEvictions: cur.TexEvictions - prev.TexEvictions,
			FIFOLevel:    cur.FIFOOccupancy,
		}
		for th := 0; th < card.renderThreads; th++ {
			smp.PixelsIn = append(smp.PixelsIn, cur.PixelsIn[th]-prev.PixelsIn[th])
			smp.PixelsOut = append(smp.PixelsOut, cur.PixelsOut[th]-prev.PixelsOut[th])
		}
		s.prev[i] = cur
		out = append(out, smp)
	}
	return out
}

func (s *StatsSample) pixelsOut() uint64 {
	var n uint64
	for _, p := range s.PixelsOut {
		n += p
	}
	return n
}

func encodeUints(e *jx.Encoder, vals []uint64) {
	e.ArrStart()
	for _, v := range vals {
		e.UInt64(v)
	}
	e.ArrEnd()
}

// encode appends the sample as one JSON object.
func (s *StatsSample) encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("t")
	e.Str(s.Time.UTC().Format(time.RFC3339Nano))
	e.FieldStart("card")
	e.Int(s.Card)
	e.FieldStart("frames")
	e.UInt64(s.Frames)
	e.FieldStart("triangles")
	e.UInt64(s.Triangles)
	e.FieldStart("pixels_in")
	encodeUints(e, s.PixelsIn)
	e.FieldStart("pixels_out")
	encodeUints(e, s.PixelsOut)
	e.FieldStart("texels")
	e.UInt64(s.Texels)
	e.FieldStart("fifo_writes")
	e.UInt64(s.FIFOWrites)
	e.FieldStart("fifo_reads")
	e.UInt64(s.FIFOReads)
	e.FieldStart("tex_misses")
	e.UInt64(s.TexMisses)
	e.FieldStart("tex_evictions")
	e.UInt64(s.TexEvictions)
	e.FieldStart("fifo_level")
	e.Int(s.FIFOLevel)
	e.ObjEnd()
}

// statsTrace writes samples as JSON lines.
type statsTrace struct {
	w   io.Writer
	enc jx.Encoder
}

func newStatsTrace(w io.Writer) *statsTrace {
	return &statsTrace{w: w}
}

func (t *statsTrace) write(samples []StatsSample) error {
	for i := range samples {
		t.enc.Reset()
		samples[i].encode(&t.enc)
		t.enc.Raw([]byte{'\n'})
		if _, err := t.w.Write(t.enc.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// RunStats samples every card once per interval until ctx is done. Each
// sample is logged, written to trace if non-nil, and passed to onSample.
func (s *VoodooSet) RunStats(ctx context.Context, interval time.Duration, trace io.Writer, onSample func([]StatsSample)) error {
	sampler := newStatsSampler(s)
	var tr *statsTrace
	if trace != nil {
		tr = newStatsTrace(trace)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			samples := sampler.sample(now)
			for i := range samples {
				smp := &samples[i]
				modEmu.WithField("card", smp.Card).Infof("%d fps, %d tris, %d pixels, %d texels, fifo %d",
					smp.Frames, smp.Triangles, smp.pixelsOut(), smp.Texels, smp.FIFOLevel)
			}
			if tr != nil {
				if err := tr.write(samples); err != nil {
					return &VoodooError{Operation: "stats trace", Details: "write failed", Err: err}
				}
			}
			if onSample != nil {
				onSample(samples)
			}
		}
	}
}
