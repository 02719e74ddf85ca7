// voodoo_fifo.go - Command FIFO and parameter queue rings

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
voodoo_fifo.go - Bounded rings between the bus, the FIFO thread and the
render threads

commandFIFO carries raw bus writes from the host CPU side to the FIFO
thread. paramQueue carries resolved triangle snapshots from the FIFO
thread to one or two render threads, each with its own read cursor.

Indices are free-running uint32 counters; occupancy is write-read in
modular arithmetic and slots are addressed with a power-of-two mask.
Index loads and stores go through sync/atomic, which gives the
acquire/release pairing needed to publish a slot before its index.
*/

package main

import (
	"context"
	"sync/atomic"
	"time"
)

// event is a sticky wake-up flag. set never blocks and a set that happens
// before wait is not lost.
type event chan struct{}

func newEvent() event {
	return make(event, 1)
}

func (e event) set() {
	select {
	case e <- struct{}{}:
	default:
	}
}

func (e event) reset() {
	select {
	case <-e:
	default:
	}
}

// wait blocks until the event is set or ctx is done.
func (e event) wait(ctx context.Context) error {
	select {
	case <-e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// waitTimeout is wait bounded by d. It reports whether the event fired.
func (e event) waitTimeout(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-e:
		return true
	case <-ctx.Done():
		return false
	case <-t.C:
		return false
	}
}

// fifoEntry is one queued bus write. addrType holds the FIFO_* tag in the
// high byte and the masked card address in the low 24 bits.
type fifoEntry struct {
	addrType uint32
	val      uint32
}

func (e fifoEntry) tag() uint32  { return e.addrType & FIFO_TYPE }
func (e fifoEntry) addr() uint32 { return e.addrType & FIFO_ADDR }

// commandFIFO is a single-producer single-consumer ring of bus writes.
type commandFIFO struct {
	entries [VOODOO_FIFO_SIZE]fifoEntry

	writeIdx atomic.Uint32
	readIdx  atomic.Uint32

	notFull event // set by the consumer when a slot frees
	wake    event // set by the producer when an entry is published

	// waiting is raised while the producer is blocked on a full ring.
	waiting atomic.Bool
}

func newCommandFIFO() *commandFIFO {
	return &commandFIFO{
		notFull: newEvent(),
		wake:    newEvent(),
	}
}

func (f *commandFIFO) occupancy() uint32 {
	return f.writeIdx.Load() - f.readIdx.Load()
}

func (f *commandFIFO) empty() bool {
	return f.readIdx.Load() == f.writeIdx.Load()
}

// full reports whether the producer must stop. The slack keeps a few slots
// spare so the consumer never observes a wrapped ring.
func (f *commandFIFO) full() bool {
	return f.occupancy() >= VOODOO_FIFO_SIZE-VOODOO_FIFO_SLACK
}

// push appends an entry, blocking while the ring is saturated. The only
// error is ctx cancellation during teardown.
func (f *commandFIFO) push(ctx context.Context, e fifoEntry) error {
	for f.full() {
		f.waiting.Store(true)
		f.wake.set()
		if err := f.notFull.wait(ctx); err != nil {
			f.waiting.Store(false)
			return err
		}
	}
	f.waiting.Store(false)

	w := f.writeIdx.Load()
	f.entries[w&VOODOO_FIFO_MASK] = e
	f.writeIdx.Store(w + 1)
	f.wake.set()
	return nil
}

// pop removes the oldest entry, blocking while the ring is empty.
func (f *commandFIFO) pop(ctx context.Context) (fifoEntry, error) {
	for f.empty() {
		if err := f.wake.wait(ctx); err != nil {
			return fifoEntry{}, err
		}
	}
	r := f.readIdx.Load()
	e := f.entries[r&VOODOO_FIFO_MASK]
	f.readIdx.Store(r + 1)
	f.notFull.set()
	return e, nil
}

// tryPop is pop without blocking.
func (f *commandFIFO) tryPop() (fifoEntry, bool) {
	if f.empty() {
		return fifoEntry{}, false
	}
	r := f.readIdx.Load()
	e := f.entries[r&VOODOO_FIFO_MASK]
	f.readIdx.Store(r + 1)
	f.notFull.set()
	return e, true
}

// paramQueue is a single-producer ring read independently by up to
// VOODOO_MAX_RENDER_THREADS consumers. A slot is free only once every
// consumer has moved past it, so the slowest render thread throttles
// triangle setup.
type paramQueue struct {
	slots [VOODOO_PARAM_SIZE]triangleParams

	consumers int
	writeIdx  atomic.Uint32
	readIdx   [VOODOO_MAX_RENDER_THREADS]atomic.Uint32

	notFull [VOODOO_MAX_RENDER_THREADS]event
	wake    [VOODOO_MAX_RENDER_THREADS]event
}

func newParamQueue(consumers int) *paramQueue {
	q := &paramQueue{consumers: consumers}
	for i := range q.notFull {
		q.notFull[i] = newEvent()
		q.wake[i] = newEvent()
	}
	return q
}

// lag is the number of snapshots consumer idx has not yet finished.
func (q *paramQueue) lag(idx int) uint32 {
	return q.writeIdx.Load() - q.readIdx[idx].Load()
}

func (q *paramQueue) emptyFor(idx int) bool {
	return q.lag(idx) == 0
}

func (q *paramQueue) fullFor(idx int) bool {
	return q.lag(idx) >= VOODOO_PARAM_SIZE
}

// full reports whether any consumer lags by a whole ring.
func (q *paramQueue) full() bool {
	for i := 0; i < q.consumers; i++ {
		if q.fullFor(i) {
			return true
		}
	}
	return false
}

// drained reports whether every consumer has finished every snapshot.
func (q *paramQueue) drained() bool {
	for i := 0; i < q.consumers; i++ {
		if !q.emptyFor(i) {
			return false
		}
	}
	return true
}

// push copies p into the next slot and wakes every consumer. It blocks on
// the per-consumer notFull event of whichever consumer is a full ring
// behind.
func (q *paramQueue) push(ctx context.Context, p *triangleParams) error {
	for i := 0; i < q.consumers; i++ {
		for q.fullFor(i) {
			q.wake[i].set()
			if err := q.notFull[i].wait(ctx); err != nil {
				return err
			}
		}
	}

	w := q.writeIdx.Load()
	q.slots[w&VOODOO_PARAM_MASK] = *p
	q.writeIdx.Store(w + 1)

	for i := 0; i < q.consumers; i++ {
		q.wake[i].set()
	}
	return nil
}

// peek returns consumer idx's next snapshot without releasing it. The
// slot stays valid until advance is called.
func (q *paramQueue) peek(ctx context.Context, idx int) (*triangleParams, error) {
	for q.emptyFor(idx) {
		if err := q.wake[idx].wait(ctx); err != nil {
			return nil, err
		}
	}
	r := q.readIdx[idx].Load()
	return &q.slots[r&VOODOO_PARAM_MASK], nil
}

// advance releases consumer idx's current slot.
func (q *paramQueue) advance(idx int) {
	q.readIdx[idx].Add(1)
	q.notFull[idx].set()
}
