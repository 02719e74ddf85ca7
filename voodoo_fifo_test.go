// voodoo_fifo_test.go - Command FIFO and parameter queue tests

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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// =============================================================================
// Events
// =============================================================================

func TestVoodoo_Event_Sticky(t *testing.T) {
	e := newEvent()
	e.set()
	e.set() // second set must not block

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.wait(ctx); err != nil {
		t.Fatalf("wait after set failed: %v", err)
	}
	if e.waitTimeout(ctx, 5*time.Millisecond) {
		t.Fatal("event fired twice for a coalesced set")
	}
}

func TestVoodoo_Event_Reset(t *testing.T) {
	e := newEvent()
	e.set()
	e.reset()
	if e.waitTimeout(context.Background(), 5*time.Millisecond) {
		t.Fatal("reset event still fired")
	}
}

func TestVoodoo_Event_WaitCancelled(t *testing.T) {
	e := newEvent()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.wait(ctx); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// =============================================================================
// Command FIFO
// =============================================================================

func TestVoodoo_FIFO_Order(t *testing.T) {
	f := newCommandFIFO()
	ctx := context.Background()

	var want []fifoEntry
	for i := uint32(0); i < 100; i++ {
		e := fifoEntry{addrType: FIFO_WRITEL_REG | i*4, val: i * 3}
		want = append(want, e)
		if err := f.push(ctx, e); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}
	if got := f.occupancy(); got != 100 {
		t.Fatalf("expected occupancy 100, got %d", got)
	}

	var got []fifoEntry
	for !f.empty() {
		e, err := f.pop(ctx)
		if err != nil {
			t.Fatalf("pop failed: %v", err)
		}
		got = append(got, e)
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(fifoEntry{})); diff != "" {
		t.Fatalf("FIFO order mismatch (-want +got):\n%s", diff)
	}
	if f.occupancy() != 0 {
		t.Fatalf("expected empty FIFO, occupancy %d", f.occupancy())
	}
}

func TestVoodoo_FIFO_Tags(t *testing.T) {
	e := fifoEntry{addrType: FIFO_WRITEL_TEX | 0x812344}
	if e.tag() != FIFO_WRITEL_TEX {
		t.Fatalf("expected tag %08x, got %08x", FIFO_WRITEL_TEX, e.tag())
	}
	if e.addr() != 0x812344 {
		t.Fatalf("expected addr 812344, got %06x", e.addr())
	}
}

func TestVoodoo_FIFO_FullThreshold(t *testing.T) {
	f := newCommandFIFO()
	ctx := context.Background()
	for i := 0; i < VOODOO_FIFO_SIZE-VOODOO_FIFO_SLACK-1; i++ {
		if err := f.push(ctx, fifoEntry{val: uint32(i)}); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}
	if f.full() {
		t.Fatal("FIFO full one entry early")
	}
	if err := f.push(ctx, fifoEntry{}); err != nil {
		t.Fatalf("last push failed: %v", err)
	}
	if !f.full() {
		t.Fatalf("FIFO not full at occupancy %d", f.occupancy())
	}
}

func TestVoodoo_FIFO_PushBlocksUntilPop(t *testing.T) {
	f := newCommandFIFO()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for !f.full() {
		if err := f.push(ctx, fifoEntry{}); err != nil {
			t.Fatalf("fill failed: %v", err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- f.push(ctx, fifoEntry{val: 0xdead}) }()

	select {
	case err := <-done:
		t.Fatalf("push on a full FIFO returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	if !f.waiting.Load() {
		t.Fatal("blocked producer did not raise waiting")
	}

	if _, ok := f.tryPop(); !ok {
		t.Fatal("tryPop on a full FIFO failed")
	}
	if err := <-done; err != nil {
		t.Fatalf("blocked push failed: %v", err)
	}
	if f.waiting.Load() {
		t.Fatal("waiting still raised after push completed")
	}
}

func TestVoodoo_FIFO_PushCancelled(t *testing.T) {
	f := newCommandFIFO()
	for !f.full() {
		f.push(context.Background(), fifoEntry{})
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := f.push(ctx, fifoEntry{}); err == nil {
		t.Fatal("push on a full FIFO with expired context succeeded")
	}
}

// =============================================================================
// Parameter queue
// =============================================================================

func TestVoodoo_ParamQueue_PerConsumerCursor(t *testing.T) {
	q := newParamQueue(2)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		p := triangleParams{color0: uint32(i)}
		if err := q.push(ctx, &p); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
	}

	for i := 0; i < 3; i++ {
		p, err := q.peek(ctx, 0)
		if err != nil {
			t.Fatalf("peek failed: %v", err)
		}
		if p.color0 != uint32(i) {
			t.Fatalf("consumer 0 expected snapshot %d, got %d", i, p.color0)
		}
		q.advance(0)
	}
	if !q.emptyFor(0) {
		t.Fatal("consumer 0 not drained")
	}
	if q.lag(1) != 3 {
		t.Fatalf("consumer 1 expected lag 3, got %d", q.lag(1))
	}
	if q.drained() {
		t.Fatal("queue drained while consumer 1 lags")
	}
	for i := 0; i < 3; i++ {
		q.advance(1)
	}
	if !q.drained() {
		t.Fatal("queue not drained after both consumers advanced")
	}
}

func TestVoodoo_ParamQueue_SlowestConsumerThrottles(t *testing.T) {
	q := newParamQueue(2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var p triangleParams
	for i := 0; i < VOODOO_PARAM_SIZE; i++ {
		if err := q.push(ctx, &p); err != nil {
			t.Fatalf("push %d failed: %v", i, err)
		}
		q.advance(0)
	}
	if !q.full() {
		t.Fatal("queue not full with consumer 1 a ring behind")
	}

	done := make(chan error, 1)
	go func() { done <- q.push(ctx, &p) }()
	select {
	case err := <-done:
		t.Fatalf("push returned while consumer 1 lags a full ring: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	q.advance(1)
	if err := <-done; err != nil {
		t.Fatalf("push after advance failed: %v", err)
	}
}

func TestVoodoo_ParamQueue_SnapshotIsCopy(t *testing.T) {
	q := newParamQueue(1)
	ctx := context.Background()
	p := triangleParams{fbzMode: 1}
	if err := q.push(ctx, &p); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	p.fbzMode = 2
	got, err := q.peek(ctx, 0)
	if err != nil {
		t.Fatalf("peek failed: %v", err)
	}
	if got.fbzMode != 1 {
		t.Fatalf("snapshot changed after push: fbzMode %d", got.fbzMode)
	}
}
