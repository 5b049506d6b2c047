//go:build !headless

// video_backend_ebiten.go - Ebiten window hosting the simulation and render ticks

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
	"fmt"
	"image/color"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

func init() {
	compiledFeatures = append(compiledFeatures, "display:ebiten")
}

const seekStep = 0.05

type EbitenOutput struct {
	running     atomic.Bool
	window      *ebiten.Image
	width       int
	height      int
	format      PixelFormat
	fullscreen  bool
	scale       int
	windowedW   int
	windowedH   int
	title       string
	frameBuffer []byte
	bufferMutex sync.RWMutex
	frameCount  atomic.Uint64
	uploads     atomic.Uint64
	refreshRate int
	readyChan   chan struct{}
	done        chan struct{}
	hooks       HostHooks

	clipboardOnce sync.Once
	clipboardOK   bool
	showStatusBar bool
	lastNotice    string
	noticeUntil   time.Time
}

func NewEbitenOutput() (VideoOutput, error) {
	return &EbitenOutput{
		width:         320,
		height:        240,
		format:        PixelFormatRGBA,
		scale:         2,
		windowedW:     640,
		windowedH:     480,
		title:         "Video Surface",
		frameBuffer:   make([]byte, 320*240*BYTES_PER_PIXEL),
		refreshRate:   60,
		readyChan:     make(chan struct{}, 1),
		done:          make(chan struct{}),
		showStatusBar: true,
	}, nil
}

func (eo *EbitenOutput) Start() error {
	if eo.running.Load() {
		return nil
	}
	eo.bufferMutex.Lock()
	eo.done = make(chan struct{})
	eo.bufferMutex.Unlock()
	eo.running.Store(true)
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle(eo.title)
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetTPS(eo.refreshRate)
	if eo.fullscreen {
		ebiten.SetFullscreen(true)
	}

	go func() {
		defer func() {
			eo.running.Store(false)
			eo.bufferMutex.RLock()
			done := eo.done
			eo.bufferMutex.RUnlock()
			select {
			case <-done:
			default:
				close(done)
			}
		}()
		if err := ebiten.RunGame(eo); err != nil {
			displayLog.Errorf("ebiten: %v", err)
		}
	}()

	// Wait for first Draw call to ensure Ebiten is ready
	select {
	case <-eo.readyChan:
	case <-eo.Done():
		return &VideoError{Operation: "display start", Details: "window closed before first frame"}
	}
	return nil
}

func (eo *EbitenOutput) Stop() error {
	eo.running.Store(false)
	return nil
}

func (eo *EbitenOutput) Close() error {
	return eo.Stop()
}

func (eo *EbitenOutput) Done() <-chan struct{} {
	eo.bufferMutex.RLock()
	done := eo.done
	eo.bufferMutex.RUnlock()
	return done
}

func (eo *EbitenOutput) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return &VideoError{Operation: "texture resize", Details: fmt.Sprintf("invalid dimensions %dx%d", width, height)}
	}
	eo.bufferMutex.Lock()
	eo.width = width
	eo.height = height
	eo.frameBuffer = make([]byte, width*height*BYTES_PER_PIXEL)
	eo.windowedW = width * eo.scale
	eo.windowedH = height * eo.scale
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) Clear() error {
	eo.bufferMutex.Lock()
	clear(eo.frameBuffer)
	eo.bufferMutex.Unlock()
	return nil
}

func (eo *EbitenOutput) WriteFrame(data []byte) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()
	if len(data) != len(eo.frameBuffer) {
		return &VideoError{Operation: "texture write", Details: fmt.Sprintf("got %d bytes, texture holds %d", len(data), len(eo.frameBuffer))}
	}
	copy(eo.frameBuffer, data)
	eo.uploads.Add(1)
	return nil
}

func (eo *EbitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.bufferMutex.Lock()
	defer eo.bufferMutex.Unlock()

	width := config.Width
	height := config.Height
	if width <= 0 {
		width = eo.width
	}
	if height <= 0 {
		height = eo.height
	}
	eo.width = width
	eo.height = height
	eo.format = config.PixelFormat
	eo.scale = ClampScale(config.Scale)
	if config.RefreshRate > 0 {
		eo.refreshRate = config.RefreshRate
	}
	if config.Title != "" {
		eo.title = config.Title
	}
	if newSize := eo.width * eo.height * BYTES_PER_PIXEL; len(eo.frameBuffer) != newSize {
		eo.frameBuffer = make([]byte, newSize)
	}

	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	eo.fullscreen = config.Fullscreen
	ebiten.SetFullscreen(eo.fullscreen)
	if !eo.fullscreen {
		ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	}
	if eo.window != nil {
		eo.window.Dispose()
		eo.window = nil
	}
	return nil
}

func (eo *EbitenOutput) GetDisplayConfig() DisplayConfig {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return DisplayConfig{
		Width:       eo.width,
		Height:      eo.height,
		Scale:       eo.scale,
		PixelFormat: eo.format,
		RefreshRate: eo.refreshRate,
		VSync:       true,
		Fullscreen:  eo.fullscreen,
		Title:       eo.title,
	}
}

func (eo *EbitenOutput) SetHostHooks(hooks HostHooks) {
	eo.bufferMutex.Lock()
	eo.hooks = hooks
	eo.bufferMutex.Unlock()
}

func (eo *EbitenOutput) GetFrameCount() uint64 {
	return eo.frameCount.Load()
}

func (eo *EbitenOutput) GetRefreshRate() int {
	return eo.refreshRate
}

func (eo *EbitenOutput) IsStarted() bool {
	return eo.running.Load()
}

func (eo *EbitenOutput) currentHooks() HostHooks {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return eo.hooks
}

// Update is the simulation step: input first, then simulation time.
func (eo *EbitenOutput) Update() error {
	// Check if the window was closed using Ebiten's built-in detection
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	if !eo.running.Load() {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		eo.bufferMutex.Lock()
		eo.fullscreen = !eo.fullscreen
		ebiten.SetFullscreen(eo.fullscreen)
		if !eo.fullscreen {
			ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
		}
		eo.bufferMutex.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		eo.bufferMutex.Lock()
		eo.showStatusBar = !eo.showStatusBar
		eo.bufferMutex.Unlock()
	}

	hooks := eo.currentHooks()
	eo.handleKeyboardInput(hooks)
	if hooks.Simulate != nil {
		hooks.Simulate(time.Second / time.Duration(max(ebiten.TPS(), 1)))
	}
	return nil
}

func (eo *EbitenOutput) handleKeyboardInput(hooks HostHooks) {
	if hooks.Submit == nil {
		return
	}
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControlLeft) || ebiten.IsKeyPressed(ebiten.KeyControlRight)
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	// Clipboard paste: Ctrl+Shift+V opens the pasted path
	if ctrl && shift && inpututil.IsKeyJustPressed(ebiten.KeyV) {
		eo.handleClipboardPaste(hooks)
		return
	}

	var status PlaybackStatus
	if hooks.Status != nil {
		status = hooks.Status()
	}
	for _, key := range []ebiten.Key{
		ebiten.KeySpace, ebiten.KeyArrowLeft, ebiten.KeyArrowRight,
		ebiten.KeyHome, ebiten.KeyEnd, ebiten.KeyBackspace, ebiten.KeyP,
	} {
		if !inpututil.IsKeyJustPressed(key) {
			continue
		}
		if key == ebiten.KeyP {
			if hooks.ToggleSimulation != nil {
				eo.notice(fmt.Sprintf("simulation paused=%t", hooks.ToggleSimulation()))
			}
			continue
		}
		if cmd, ok := commandForKey(key, status); ok {
			eo.submit(hooks, cmd)
		}
	}
}

// commandForKey maps playback keys to commands relative to status.
func commandForKey(key ebiten.Key, status PlaybackStatus) (Command, bool) {
	switch key {
	case ebiten.KeySpace:
		return Command{Kind: CommandSetVideoPaused, Paused: !status.Paused}, true
	case ebiten.KeyArrowLeft:
		return Command{Kind: CommandSetVideoSeek, Fraction: math.Max(0, status.Position-seekStep)}, true
	case ebiten.KeyArrowRight:
		return Command{Kind: CommandSetVideoSeek, Fraction: math.Min(1, status.Position+seekStep)}, true
	case ebiten.KeyHome:
		return Command{Kind: CommandSetVideoSeek, Fraction: 0}, true
	case ebiten.KeyEnd:
		return Command{Kind: CommandSetVideoSeek, Fraction: 1}, true
	case ebiten.KeyBackspace:
		return Command{Kind: CommandSetVideoPath}, true
	}
	return Command{}, false
}

func (eo *EbitenOutput) submit(hooks HostHooks, cmd Command) {
	cmd.Origin = "keyboard"
	if err := hooks.Submit(cmd); err != nil {
		displayLog.Warnf("%s not queued: %v", cmd, err)
		return
	}
	eo.notice(cmd.String())
}

func (eo *EbitenOutput) notice(msg string) {
	eo.bufferMutex.Lock()
	eo.lastNotice = msg
	eo.noticeUntil = time.Now().Add(2 * time.Second)
	eo.bufferMutex.Unlock()
}

// pastedMediaCommand turns clipboard text into an open command for the
// first non-empty line.
func pastedMediaCommand(raw []byte) (Command, bool) {
	for _, line := range strings.Split(strings.ReplaceAll(string(raw), "\r", "\n"), "\n") {
		p := strings.Trim(strings.TrimSpace(line), `"'`)
		p = strings.TrimPrefix(p, "file://")
		if p == "" {
			continue
		}
		if len(p) > 4096 {
			return Command{}, false
		}
		if isStillImagePath(p) {
			return Command{Kind: CommandSetImagePath, Path: p}, true
		}
		return Command{Kind: CommandSetVideoPath, Path: p}, true
	}
	return Command{}, false
}

func (eo *EbitenOutput) handleClipboardPaste(hooks HostHooks) {
	eo.clipboardOnce.Do(func() {
		eo.clipboardOK = clipboard.Init() == nil
	})
	if !eo.clipboardOK {
		return
	}
	if cmd, ok := pastedMediaCommand(clipboard.Read(clipboard.FmtText)); ok {
		eo.submit(hooks, cmd)
	}
}

// Draw is the render tick: the surface hands over its pending frame, then
// the texture is uploaded once.
func (eo *EbitenOutput) Draw(screen *ebiten.Image) {
	if hooks := eo.currentHooks(); hooks.Render != nil {
		hooks.Render()
	}

	eo.bufferMutex.Lock()
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}
	eo.window.WritePixels(eo.frameBuffer)
	showStatusBar := eo.showStatusBar
	notice := ""
	if time.Now().Before(eo.noticeUntil) {
		notice = eo.lastNotice
	}
	eo.bufferMutex.Unlock()

	screen.DrawImage(eo.window, nil)
	if showStatusBar {
		eo.drawStatusBar(screen, notice)
	}

	eo.frameCount.Add(1)
	select {
	case eo.readyChan <- struct{}{}:
	default:
	}
}

func (eo *EbitenOutput) Layout(_, _ int) (int, int) {
	eo.bufferMutex.RLock()
	defer eo.bufferMutex.RUnlock()
	return eo.width, eo.height
}

type statusToken struct {
	name    string
	enabled bool
}

func drawStatusLine(screen *ebiten.Image, x, baselineY int, label string, tokens []statusToken) {
	face := basicfont.Face7x13
	labelColor := color.RGBA{190, 190, 190, 255}
	offColor := color.RGBA{120, 120, 120, 255}
	onColor := color.RGBA{0, 220, 90, 255}

	text.Draw(screen, label, face, x, baselineY, labelColor)
	cursorX := x + text.BoundString(face, label).Dx() + 6

	for _, token := range tokens {
		c := offColor
		if token.enabled {
			c = onColor
		}
		text.Draw(screen, token.name, face, cursorX, baselineY, c)
		cursorX += text.BoundString(face, token.name).Dx() + 8
	}
}

func (eo *EbitenOutput) drawStatusBar(screen *ebiten.Image, notice string) {
	hooks := eo.currentHooks()
	if hooks.Status == nil {
		return
	}
	st := hooks.Status()

	barHeight := 30
	width, height := screen.Bounds().Dx(), screen.Bounds().Dy()
	if barHeight >= height {
		return
	}
	y := height - barHeight
	ebitenutil.DrawRect(screen, 0, float64(y), float64(width), float64(barHeight), color.RGBA{0, 0, 0, 180})

	drawStatusLine(screen, 4, y+12, "VID", []statusToken{
		{name: "PLAY", enabled: st.State == "playing"},
		{name: "PAUSE", enabled: st.State == "paused"},
		{name: "LOOP", enabled: st.Loop},
		{name: "BUF", enabled: st.Buffered > 0},
	})
	line := fmt.Sprintf("%d/%d %.1ffps", max(st.Frame, 0), st.FrameCount, st.FPS)
	if !st.WallClock {
		line += " sim"
		if st.SimPaused {
			line += "(paused)"
		}
	}
	if notice != "" {
		line = notice
	}
	text.Draw(screen, line, basicfont.Face7x13, 4, y+26, color.RGBA{160, 160, 160, 255})
}
