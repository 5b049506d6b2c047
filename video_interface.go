// video_interface.go - Display and texture interfaces for Video Surface

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
https://github.com/IntuitionAmiga/VideoSurface
License: GPLv3 or later
*/

package main

import (
	"errors"
	"fmt"
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

func (e *VideoError) Unwrap() error {
	return e.Err
}

var (
	ErrSourceNotOpen       = errors.New("video source not open")
	ErrDispatcherStopped   = errors.New("command dispatcher stopped")
	ErrCommandQueueFull    = errors.New("command queue full")
	ErrUnknownTopic        = errors.New("unknown topic")
	ErrUnsupportedEncoding = errors.New("unsupported image encoding")
	ErrBadSeek             = errors.New("seek fraction outside [0,1]")
)

// DisplayConfig contains hardware-independent configuration
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int // Integer scaling factor for the window
	RefreshRate int // Target refresh rate in Hz
	PixelFormat PixelFormat
	VSync       bool
	Fullscreen  bool
	Title       string
}

type PixelFormat int

const (
	PixelFormatRGBA PixelFormat = iota
)

// TextureSink is the renderer-facing texture. Buffers are always
// width*height*BYTES_PER_PIXEL RGBA bytes matching the last Resize.
type TextureSink interface {
	Resize(width, height int) error
	WriteFrame(buffer []byte) error
	Clear() error
}

// HostHooks connect a display host to the surface. Simulate runs once per
// simulation step, Render once per rendered frame before the texture upload.
// Submit never blocks and may return ErrCommandQueueFull.
type HostHooks struct {
	Simulate         func(dt time.Duration)
	Render           func()
	Submit           func(cmd Command) error
	Status           func() PlaybackStatus
	ToggleSimulation func() bool
}

// VideoOutput hosts the simulation loop and owns the display texture
type VideoOutput interface {
	TextureSink

	// Lifecycle management
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
	Done() <-chan struct{}

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	SetHostHooks(hooks HostHooks)

	// Timing
	GetFrameCount() uint64
	GetRefreshRate() int
}

// Predefined video backend types
const (
	VIDEO_BACKEND_EBITEN   = iota // Ebiten window
	VIDEO_BACKEND_HEADLESS        // Ticker-driven host without a window
)

// NewVideoOutput creates a new video output instance using the specified backend
func NewVideoOutput(backend int) (VideoOutput, error) {
	switch backend {
	case VIDEO_BACKEND_EBITEN:
		return NewEbitenOutput()
	case VIDEO_BACKEND_HEADLESS:
		return NewHeadlessOutput(), nil
	}
	return nil, &VideoError{
		Operation: "backend creation",
		Details:   fmt.Sprintf("unknown backend type: %d", backend),
	}
}

// ClampScale keeps the window scale factor in a usable range.
func ClampScale(scale int) int {
	if scale < 1 {
		return 1
	}
	if scale > 8 {
		return 8
	}
	return scale
}
