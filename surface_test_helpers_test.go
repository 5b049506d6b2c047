package main

import (
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// solidFrame returns a w x h frame filled with one colour.
func solidFrame(w, h int, r, g, b byte) *Frame {
	pix := make([]byte, w*h*BYTES_PER_PIXEL)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = r, g, b, 0xFF
	}
	return &Frame{Width: w, Height: h, Pix: pix, Index: -1}
}

// fakeVideoSource serves n frames whose red channel is the index plus one.
type fakeVideoSource struct {
	mu      sync.Mutex
	w, h    int
	n       int
	fps     float64
	cursor  int
	opened  bool
	closed  int
	seeks   []int64
	readErr error
}

func newFakeVideoSource(n, w, h int, fps float64) *fakeVideoSource {
	return &fakeVideoSource{w: w, h: h, n: n, fps: fps}
}

func (s *fakeVideoSource) Open(string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = true
	s.cursor = 0
	return nil
}

func (s *fakeVideoSource) IsOpened() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opened
}

func (s *fakeVideoSource) ReadFrame() (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return nil, s.readErr
	}
	if s.cursor >= s.n {
		return nil, io.EOF
	}
	f := solidFrame(s.w, s.h, byte(s.cursor+1), 0, 0)
	f.Index = int64(s.cursor)
	s.cursor++
	return f, nil
}

func (s *fakeVideoSource) SeekFrame(i int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seeks = append(s.seeks, i)
	s.cursor = int(i)
	return nil
}

func (s *fakeVideoSource) FrameCount() int64 { return int64(s.n) }
func (s *fakeVideoSource) FPS() float64      { return s.fps }

func (s *fakeVideoSource) Close() error {
	s.mu.Lock()
	s.closed++
	s.opened = false
	s.mu.Unlock()
	return nil
}

// fakeOpener hands out fresh fake sources and counts opens.
type fakeOpener struct {
	mu    sync.Mutex
	n     int
	fps   float64
	w, h  int
	opens int
	last  *fakeVideoSource
	fail  bool
}

func (o *fakeOpener) open(path string) (VideoSource, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	if o.fail {
		return nil, &VideoError{Operation: "source open", Details: path}
	}
	src := newFakeVideoSource(o.n, o.w, o.h, o.fps)
	src.Open(path)
	o.last = src
	return src, nil
}

func (o *fakeOpener) Opens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens
}

// pipeline is a controller, router and renderer without goroutines.
type pipeline struct {
	images   *ImageState
	sink     *FrameSink
	renderer *Renderer
	playback *PlaybackController
	router   *CommandRouter
	opener   *fakeOpener
}

func newPipeline(t *testing.T, w, h int, cfg PlaybackConfig, opener *fakeOpener) *pipeline {
	t.Helper()
	sink, err := NewFrameSink(w, h, ResampleNearest)
	if err != nil {
		t.Fatalf("NewFrameSink: %v", err)
	}
	images := NewImageState()
	cfg.Width, cfg.Height = w, h
	cfg.Filter = ResampleNearest
	cfg.OpenSource = opener.open
	pc := NewPlaybackController(images, cfg)
	return &pipeline{
		images:   images,
		sink:     sink,
		renderer: NewRenderer(images, sink, nil),
		playback: pc,
		router:   NewCommandRouter(images, pc, w, h),
		opener:   opener,
	}
}

// tick runs one decode step and one render tick.
func (p *pipeline) tick() {
	p.playback.Advance()
	p.renderer.OnRenderTick()
}

// red returns the red channel of the first sink pixel.
func (p *pipeline) red() byte { return p.sink.Pixels()[0] }

func allZero(pix []byte) bool {
	for _, b := range pix {
		if b != 0 {
			return false
		}
	}
	return true
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func writePNG(t *testing.T, path string, w, h int, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// writeGIF writes an n-frame animation; frame i is a solid palette entry i.
func writeGIF(t *testing.T, dir string, n, w, h, delay int) string {
	t.Helper()
	palette := color.Palette{}
	for i := 0; i < n; i++ {
		palette = append(palette, color.RGBA{R: byte(10 * (i + 1)), A: 0xFF})
	}
	anim := &gif.GIF{Config: image.Config{Width: w, Height: h, ColorModel: palette}}
	for i := 0; i < n; i++ {
		img := image.NewPaletted(image.Rect(0, 0, w, h), palette)
		for p := range img.Pix {
			img.Pix[p] = uint8(i)
		}
		anim.Image = append(anim.Image, img)
		anim.Delay = append(anim.Delay, delay)
		anim.Disposal = append(anim.Disposal, gif.DisposalNone)
	}
	path := filepath.Join(dir, "clip.gif")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := gif.EncodeAll(f, anim); err != nil {
		t.Fatal(err)
	}
	return path
}

// recordingSurface is a controlSurface that keeps every submitted command.
type recordingSurface struct {
	mu        sync.Mutex
	cmds      []Command
	topics    *TopicMap
	status    PlaybackStatus
	rejectAll error
}

func newRecordingSurface() *recordingSurface {
	return &recordingSurface{
		topics: NewTopicMap(DefaultSettings()),
		status: PlaybackStatus{State: "playing", Path: "/clips/a.mp4", Frame: 4, FrameCount: 10, FPS: 24, Width: 320, Height: 240},
	}
}

func (s *recordingSurface) Submit(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rejectAll != nil {
		return s.rejectAll
	}
	s.cmds = append(s.cmds, cmd)
	return nil
}

func (s *recordingSurface) Publish(topic string, payload []byte, origin string) error {
	kind, err := s.topics.Resolve(topic)
	if err != nil {
		return err
	}
	cmd, err := ParseCommandPayload(kind, payload)
	if err != nil {
		return err
	}
	cmd.Origin = origin
	return s.Submit(cmd)
}

func (s *recordingSurface) Status() PlaybackStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *recordingSurface) Topics() *TopicMap { return s.topics }

func (s *recordingSurface) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Command(nil), s.cmds...)
}
