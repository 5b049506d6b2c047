package main

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

func init() {
	compiledFeatures = append(compiledFeatures, "display:headless")
}

// HeadlessOutput hosts the surface without a window. A ticker stands in
// for the host frame loop: each tick is one simulation step followed by
// one render tick.
type HeadlessOutput struct {
	mu          sync.Mutex
	config      DisplayConfig
	buffer      []byte
	hooks       HostHooks
	started     bool
	stopCh      chan struct{}
	done        chan struct{}
	closed      chan struct{}
	closeOnce   sync.Once
	frameCount  atomic.Uint64
	uploads     atomic.Uint64
	clears      atomic.Uint64
	refreshRate int
}

func NewHeadlessOutput() *HeadlessOutput {
	return &HeadlessOutput{refreshRate: 60, closed: make(chan struct{})}
}

func (h *HeadlessOutput) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return nil
	}
	h.started = true
	h.stopCh = make(chan struct{})
	h.done = make(chan struct{})
	go h.loop(h.stopCh, h.done, time.Second/time.Duration(h.GetRefreshRate()))
	return nil
}

func (h *HeadlessOutput) loop(stop <-chan struct{}, done chan<- struct{}, period time.Duration) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			h.Tick(period)
		}
	}
}

// Tick runs one simulation step and one render tick.
func (h *HeadlessOutput) Tick(dt time.Duration) {
	h.mu.Lock()
	hooks := h.hooks
	h.mu.Unlock()
	if hooks.Simulate != nil {
		hooks.Simulate(dt)
	}
	if hooks.Render != nil {
		hooks.Render()
	}
	h.frameCount.Add(1)
}

func (h *HeadlessOutput) Stop() error {
	h.mu.Lock()
	if !h.started {
		h.mu.Unlock()
		return nil
	}
	h.started = false
	close(h.stopCh)
	done := h.done
	h.mu.Unlock()
	<-done
	return nil
}

func (h *HeadlessOutput) Close() error {
	err := h.Stop()
	h.closeOnce.Do(func() { close(h.closed) })
	return err
}

func (h *HeadlessOutput) IsStarted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Done closes when the output is closed; there is no window to dismiss.
func (h *HeadlessOutput) Done() <-chan struct{} { return h.closed }

func (h *HeadlessOutput) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return &VideoError{Operation: "texture resize", Details: fmt.Sprintf("invalid dimensions %dx%d", width, height)}
	}
	h.mu.Lock()
	h.config.Width, h.config.Height = width, height
	h.buffer = make([]byte, width*height*BYTES_PER_PIXEL)
	h.mu.Unlock()
	return nil
}

func (h *HeadlessOutput) WriteFrame(buffer []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(buffer) != len(h.buffer) {
		return &VideoError{Operation: "texture write", Details: fmt.Sprintf("got %d bytes, texture holds %d", len(buffer), len(h.buffer))}
	}
	copy(h.buffer, buffer)
	h.uploads.Add(1)
	return nil
}

func (h *HeadlessOutput) Clear() error {
	h.mu.Lock()
	clear(h.buffer)
	h.mu.Unlock()
	h.clears.Add(1)
	return nil
}

// Snapshot copies the current texture contents.
func (h *HeadlessOutput) Snapshot() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]byte, len(h.buffer))
	copy(out, h.buffer)
	return out
}

func (h *HeadlessOutput) SetDisplayConfig(config DisplayConfig) error {
	h.mu.Lock()
	h.config = config
	if config.RefreshRate > 0 {
		h.refreshRate = config.RefreshRate
	}
	h.mu.Unlock()
	return nil
}

func (h *HeadlessOutput) GetDisplayConfig() DisplayConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.config
}

func (h *HeadlessOutput) SetHostHooks(hooks HostHooks) {
	h.mu.Lock()
	h.hooks = hooks
	h.mu.Unlock()
}

func (h *HeadlessOutput) GetFrameCount() uint64 { return h.frameCount.Load() }
func (h *HeadlessOutput) Uploads() uint64       { return h.uploads.Load() }

func (h *HeadlessOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}
