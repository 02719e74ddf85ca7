// voodoo_filter_test.go - Output filter table and line tests

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
	"testing"
)

// =============================================================================
// Helpers
// =============================================================================

func TestVoodoo_Filter_Clamp(t *testing.T) {
	cases := []struct {
		in   float32
		want uint8
	}{
		{-5, 0},
		{0, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}
	for _, tc := range cases {
		if got := clampFilter(tc.in); got != tc.want {
			t.Errorf("clampFilter(%v): expected %d, got %d", tc.in, tc.want, got)
		}
	}
	if capDiff(20, 16) != 16 || capDiff(-20, 16) != -16 || capDiff(5, 16) != 5 {
		t.Fatal("capDiff does not bound to the limit")
	}
}

func TestVoodoo_Filter_SplitThreshold(t *testing.T) {
	th := splitThreshold(0x102030)
	if th.r != 0x10 || th.g != 0x20 || th.b != 0x30 {
		t.Fatalf("unexpected split %+v", th)
	}
}

func TestVoodoo_Filter_Channel(t *testing.T) {
	p := uint16(0xf81f) // red and blue full, green zero
	if channel(p, filterR) != 0xf8 || channel(p, filterB) != 0xf8 || channel(p, filterG) != 0 {
		t.Fatalf("channel split of %04x wrong", p)
	}
}

// =============================================================================
// Table generation
// =============================================================================

func TestVoodoo_Filter_V1IdentityAtZero(t *testing.T) {
	tab := generateFilterV1(filterThresholds{})
	for c := 0; c < 3; c++ {
		for _, g := range []int{0, 17, 128, 255} {
			for _, h := range []int{0, 99, 200, 255} {
				if got := tab.ch[c][g][h]; int(got) != g {
					t.Fatalf("ch[%d][%d][%d]: expected %d, got %d", c, g, h, g, got)
				}
			}
		}
	}
}

func TestVoodoo_Filter_V1Blend(t *testing.T) {
	tab := generateFilterV1(filterThresholds{r: 16, g: 16, b: 16})

	// Difference capped at 16, half applied
	if got := tab.ch[filterG][100][120]; got != 108 {
		t.Errorf("ch[G][100][120]: expected 108, got %d", got)
	}
	if got := tab.ch[filterG][100][104]; got != 102 {
		t.Errorf("ch[G][100][104]: expected 102, got %d", got)
	}
	if got := tab.ch[filterR][100][80]; got != 92 {
		t.Errorf("ch[R][100][80]: expected 92, got %d", got)
	}
	if tab.purpleline[10][filterB] != 14 || tab.purpleline[10][filterG] != 10 || tab.purpleline[254][filterR] != 255 {
		t.Errorf("unexpected purple line tint %v %v", tab.purpleline[10], tab.purpleline[254])
	}
}

func TestVoodoo_Filter_V2Blend(t *testing.T) {
	tab := generateFilterV2(splitThreshold(0x101010))
	for c := 0; c < 3; c++ {
		if got := tab.ch[c][100][110]; got != 106 {
			t.Errorf("ch[%d][100][110]: expected 106, got %d", c, got)
		}
		// Darker neighbour leaves the pixel alone
		if got := tab.ch[c][100][90]; got != 100 {
			t.Errorf("ch[%d][100][90]: expected 100, got %d", c, got)
		}
		// Beyond the threshold is an edge, not noise
		if got := tab.ch[c][100][150]; got != 100 {
			t.Errorf("ch[%d][100][150]: expected 100, got %d", c, got)
		}
	}
	if tab.purpleline[10][filterG] != 0 || tab.purpleline[10][filterB] != 13 {
		t.Errorf("unexpected purple line %v", tab.purpleline[10])
	}
}

func TestVoodoo_Filter_ThresholdCheck(t *testing.T) {
	var f filterState
	if f.thresholdCheck(VOODOO_1) {
		t.Fatal("disabled filter rebuilt its tables")
	}

	f.enabled.Store(true)
	f.threshold.Store(0x080808)
	if !f.thresholdCheck(VOODOO_1) {
		t.Fatal("first check did not build tables")
	}
	if f.tables.Load() == nil {
		t.Fatal("tables not published")
	}
	if f.thresholdCheck(VOODOO_1) {
		t.Fatal("unchanged threshold rebuilt tables")
	}

	f.threshold.Store(0x101010)
	if !f.thresholdCheck(VOODOO_2) {
		t.Fatal("threshold change did not rebuild tables")
	}
	if f.tables.Load().purpleline[10][filterG] != 0 {
		t.Fatal("SST-2 card got SST-1 tables")
	}
}

// =============================================================================
// Line filters
// =============================================================================

func uniformRow(n int, p uint16) []uint16 {
	row := make([]uint16, n+1)
	for i := range row {
		row[i] = p
	}
	return row
}

func TestVoodoo_Filter_LineV1Uniform(t *testing.T) {
	tab := generateFilterV1(splitThreshold(0x101010))
	const column = 16
	src := uniformRow(column, 0x8410)
	fil := make([]uint8, column*3)
	fil3 := make([]uint8, column*3)

	filterLineV1(tab, fil, fil3, src, column, 0)
	for i, v := range fil {
		if v != 0x80 {
			t.Fatalf("even line byte %d: expected 80, got %02x", i, v)
		}
	}

	// The tint is blended against the untinted copy near the left edge
	filterLineV1(tab, fil, fil3, src, column, 1)
	for x := 3; x < column; x++ {
		if fil[x*3+filterB] != 0x84 || fil[x*3+filterG] != 0x80 || fil[x*3+filterR] != 0x84 {
			t.Fatalf("odd line pixel %d: got %v", x, fil[x*3:x*3+3])
		}
	}
}

func TestVoodoo_Filter_LineV2Uniform(t *testing.T) {
	tab := generateFilterV2(splitThreshold(0x101010))
	const column = 16
	src := uniformRow(column, 0x8410)
	fil := make([]uint8, column*3)
	fil3 := make([]uint8, column*3)

	filterLineV2(tab, fil, fil3, src, column)
	for i, v := range fil {
		if v != 0x80 {
			t.Fatalf("byte %d: expected 80, got %02x", i, v)
		}
	}
}

func TestVoodoo_Filter_LineV2Narrow(t *testing.T) {
	tab := generateFilterV2(splitThreshold(0x101010))
	src := []uint16{0xffff, 0x0000, 0xffff, 0}
	fil := make([]uint8, 9)
	fil3 := make([]uint8, 9)
	filterLineV2(tab, fil, fil3, src, 3)
	if fil[0] != 0xf8 || fil[3] != 0 {
		t.Fatalf("narrow row not passed through: %v", fil)
	}
}
