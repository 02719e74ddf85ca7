// video_interface.go - Presentation interface for the Voodoo scanout

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
	"fmt"
	"sync"
	"time"
)

// VideoError provides detailed error context for video operations
type VideoError struct {
	Operation string // What operation was being attempted
	Details   string // Additional error context
	Err       error  // Underlying error if any
}

func (e *VideoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("video %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("video %s failed: %s", e.Operation, e.Details)
}

func (e *VideoError) Unwrap() error { return e.Err }

// VoodooError reports card construction, configuration and mode-set
// failures.
type VoodooError struct {
	Operation string
	Details   string
	Err       error
}

func (e *VoodooError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("voodoo %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("voodoo %s failed: %s", e.Operation, e.Details)
}

func (e *VoodooError) Unwrap() error { return e.Err }

// FrameSnapshot encapsulates the data needed to represent a complete frame
type FrameSnapshot struct {
	Buffer    []byte // RGBA pixels
	Width     int
	Height    int
	Format    PixelFormat
	Timestamp time.Time
}

// DisplayConfig contains hardware-independent configuration
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int // Integer scaling factor for output
	RefreshRate int // Target refresh rate in Hz
	PixelFormat PixelFormat
	VSync       bool
	Fullscreen  bool
}

// VideoOutput defines the minimal interface that backends must implement
type VideoOutput interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	UpdateFrame(buffer []byte) error // Takes raw RGBA pixels only

	// Timing and synchronization
	WaitForVSync() error
	GetFrameCount() uint64
	GetRefreshRate() int
}

type PixelFormat int

const (
	PixelFormatRGBA PixelFormat = iota
	PixelFormatRGB565
)

const maxDisplayScale = 4

func clampScale(scale int) int {
	return min(max(scale, 1), maxDisplayScale)
}

// statusSource supplies the text of the backend status bar.
type statusSource interface {
	StatusLine() string
}

// frameSink adapts the scanout's VoodooSurface to a VideoOutput. Frames
// are converted from 0xAARRGGBB to RGBA bytes and pushed after every
// blit. The display is resized when the scanout mode changes.
type frameSink struct {
	out    VideoOutput
	dumper *frameDumper
	scale  int

	mu      sync.Mutex
	rgba    []byte
	width   int
	height  int
	resizes int
}

func newFrameSink(out VideoOutput, dumper *frameDumper, scale int) *frameSink {
	return &frameSink{out: out, dumper: dumper, scale: clampScale(scale)}
}

// WaitBuffer is a no-op: the sink copies the frame during Blit.
func (f *frameSink) WaitBuffer() {}

func (f *frameSink) Blit(frame []uint32, width, height, y0, y1 int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if width != f.width || height != f.height {
		f.width, f.height = width, height
		f.rgba = make([]byte, width*height*4)
		f.resizes++
		if f.out != nil {
			cfg := f.out.GetDisplayConfig()
			cfg.Width, cfg.Height = width, height
			cfg.Scale = f.scale
			if err := f.out.SetDisplayConfig(cfg); err != nil {
				modDisplay.Warnf("display resize %dx%d: %v", width, height, err)
			}
		}
	}
	y1 = min(y1, height-1)
	for y := max(y0, 0); y <= y1; y++ {
		row := frame[y*width : (y+1)*width]
		dst := f.rgba[y*width*4:]
		for x, c := range row {
			dst[x*4] = byte(c >> 16)
			dst[x*4+1] = byte(c >> 8)
			dst[x*4+2] = byte(c)
			dst[x*4+3] = 0xff
		}
	}
	if f.out != nil {
		if err := f.out.UpdateFrame(f.rgba); err != nil {
			modDisplay.Warnf("update frame: %v", err)
		}
	}
	if f.dumper != nil {
		if err := f.dumper.dump(f.rgba, width, height); err != nil {
			modDisplay.Warnf("%v", err)
		}
	}
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN = iota // Pure Go Ebiten backend
	VIDEO_BACKEND_HEADLESS
)

// NewVideoOutput creates a new video output instance using the specified backend
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	case VIDEO_BACKEND_HEADLESS:
		return NewHeadlessVideoOutput(), nil
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}
