// voodoo_set.go - Card set and alternate line rendering

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
	"sync"

	"golang.org/x/sync/errgroup"
)

// VoodooSet is one card, or two cards paired for alternate line
// rendering. Bus writes are broadcast to every card; each card keeps the
// lines it owns. swapMu serialises the swap check of both cards.
type VoodooSet struct {
	cards   [2]*VoodooEngine
	nrCards int
	swapMu  sync.Mutex
}

// NewVoodooSet builds the cards described by cfg.
func NewVoodooSet(cfg CardConfig) (*VoodooSet, error) {
	s := &VoodooSet{nrCards: 1}
	if cfg.SLI {
		s.nrCards = 2
	}
	for i := 0; i < s.nrCards; i++ {
		card, err := NewVoodooEngine(cfg, s, i)
		if err != nil {
			return nil, err
		}
		s.cards[i] = card
	}
	return s, nil
}

// Card returns card i, or nil.
func (s *VoodooSet) Card(i int) *VoodooEngine {
	if i < 0 || i >= s.nrCards {
		return nil
	}
	return s.cards[i]
}

// Cards returns the number of cards in the set.
func (s *VoodooSet) Cards() int {
	return s.nrCards
}

// Start launches the threads of every card.
func (s *VoodooSet) Start(ctx context.Context) error {
	for i := 0; i < s.nrCards; i++ {
		if err := s.cards[i].Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close stops every card.
func (s *VoodooSet) Close() error {
	var first error
	for i := 0; i < s.nrCards; i++ {
		if err := s.cards[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// HandleWrite broadcasts a 32-bit bus write.
func (s *VoodooSet) HandleWrite(addr, value uint32) {
	for i := 0; i < s.nrCards; i++ {
		s.cards[i].HandleWrite(addr, value)
	}
}

// HandleWrite16 broadcasts a 16-bit framebuffer write.
func (s *VoodooSet) HandleWrite16(addr uint32, value uint16) {
	for i := 0; i < s.nrCards; i++ {
		s.cards[i].HandleWrite16(addr, value)
	}
}

// HandleRead reads from the first card, or for framebuffer reads in
// alternate line mode from the card that owns the addressed line.
func (s *VoodooSet) HandleRead(addr uint32) uint32 {
	card := s.cards[0]
	if s.nrCards == 2 && card.sliEnabled() && addr&VOODOO_SPACE_MASK == VOODOO_SPACE_LFB {
		_, y := lfbAddress(addr, false)
		if y&1 != card.sliMasterSlave {
			card = s.cards[1]
		}
	}
	return card.HandleRead(addr)
}

// WaitIdle waits for every card to drain.
func (s *VoodooSet) WaitIdle() {
	for i := 0; i < s.nrCards; i++ {
		s.cards[i].WaitIdle()
	}
}

// RunScanout runs the scanline timer of every card until ctx is done.
func (s *VoodooSet) RunScanout(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < s.nrCards; i++ {
		card := s.cards[i]
		g.Go(func() error { return card.RunScanout(gctx) })
	}
	return g.Wait()
}
