package main

import (
	"image/color"
	"path/filepath"
	"testing"
	"time"
)

func surfaceSettings() *Settings {
	s := DefaultSettings()
	s.IPCSocket = ipcDisabled
	return s
}

// TestSurface_BufferedSeekEndToEnd drives a 10 frame clip through the real
// decoder, controller, router and sink at 320x240.
func TestSurface_BufferedSeekEndToEnd(t *testing.T) {
	clip := writeGIF(t, t.TempDir(), 10, 16, 12, 10)
	s := surfaceSettings()
	s.BufferAllFrames = true
	s.VideoFPS = 10
	vs, err := NewVideoSurface(s, nil)
	if err != nil {
		t.Fatal(err)
	}

	vs.router.SetVideoPath(clip)
	vs.playback.Advance() // opens and buffers
	vs.OnRenderTick()
	if n := vs.Status().Buffered; n != 10 {
		t.Fatalf("buffered got=%d, want 10", n)
	}

	vs.router.SetVideoSeek(0.5)
	vs.playback.Advance()
	if !vs.OnRenderTick() {
		t.Fatal("render tick found no frame")
	}
	pix := vs.Sink().Pixels()
	if len(pix) != 320*240*BYTES_PER_PIXEL {
		t.Fatalf("sink holds %d bytes", len(pix))
	}
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != 60 || pix[i+3] != 0xFF {
			t.Fatalf("pixel %d got=%v, want clip frame 5", i/4, pix[i:i+4])
		}
	}
	if st := vs.Status(); st.Frame != 5 || st.FrameCount != 10 || st.Width != 320 {
		t.Fatalf("status got=%+v", st)
	}

	// An empty image path afterwards stops the video and zeroes the sink
	vs.router.SetImagePath("")
	vs.playback.Advance()
	vs.OnRenderTick()
	if !allZero(vs.Sink().Pixels()) || vs.Status().State != "stopped" {
		t.Fatal("empty image path should stop and clear")
	}
}

func TestSurface_LifecycleWithHeadlessOutput(t *testing.T) {
	dir := t.TempDir()
	still := filepath.Join(dir, "splash.png")
	writePNG(t, still, 8, 8, color.RGBA{G: 99, A: 255})

	s := surfaceSettings()
	s.Width, s.Height = 32, 24
	s.BaseDir = dir
	s.DefaultImagePath = "splash.png"
	s.RefreshRate = 200
	out := NewHeadlessOutput()
	vs, err := NewVideoSurface(s, out)
	if err != nil {
		t.Fatal(err)
	}
	if err := vs.Start(); err != nil {
		t.Fatal(err)
	}
	if err := out.Start(); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "default image on the texture", func() bool {
		snap := out.Snapshot()
		return len(snap) == 32*24*BYTES_PER_PIXEL && snap[1] == 99
	})
	if cfg := out.GetDisplayConfig(); cfg.Width != 32 || cfg.Height != 24 {
		t.Fatalf("display config got=%+v", cfg)
	}

	clip := writeGIF(t, dir, 4, 8, 8, 5)
	if err := vs.Publish("set_video_path", []byte(`"`+clip+`"`), "test"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "video frames", func() bool {
		st := vs.Status()
		return st.State == "playing" && st.FramesProduced > 0 && st.Image == ""
	})
	if err := vs.Submit(Command{Kind: CommandSetVideoSeek, Fraction: 2}); err != nil {
		t.Fatal(err)
	}

	// Simulation hook advances the clock that SimRate waits on
	before := vs.Clock().Now()
	out.Tick(10 * time.Millisecond)
	if vs.Clock().Now() <= before {
		t.Fatal("host tick did not advance simulation time")
	}

	vs.Stop()
	vs.Stop()
	if err := vs.Submit(Command{Kind: CommandSetVideoPaused}); err == nil {
		t.Fatal("submit accepted after Stop")
	}
	if out.IsStarted() {
		t.Fatal("output still running after Stop")
	}
	select {
	case <-out.Done():
	default:
		t.Fatal("output not closed")
	}
}

func TestSurface_PublishRejectsUnknownTopic(t *testing.T) {
	vs, err := NewVideoSurface(surfaceSettings(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := vs.Publish("nope", []byte("1"), "test"); err == nil {
		t.Fatal("expected unknown topic error")
	}
	if err := vs.Publish("set_video_seek", []byte("[]"), "test"); err == nil {
		t.Fatal("expected payload error")
	}
}

func TestSurface_InvalidSettings(t *testing.T) {
	s := surfaceSettings()
	s.Width = 0
	if _, err := NewVideoSurface(s, nil); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestSurface_HooksUseNonBlockingSubmit(t *testing.T) {
	s := surfaceSettings()
	s.CommandQueueDepth = 1
	vs, err := NewVideoSurface(s, nil)
	if err != nil {
		t.Fatal(err)
	}
	hooks := vs.hooks()
	// Dispatcher not started, so the second command finds the queue full
	if err := hooks.Submit(Command{Kind: CommandSetVideoPaused}); err != nil {
		t.Fatal(err)
	}
	if err := hooks.Submit(Command{Kind: CommandSetVideoPaused}); err != ErrCommandQueueFull {
		t.Fatalf("got=%v, want ErrCommandQueueFull", err)
	}
	if !hooks.ToggleSimulation() || !vs.Status().SimPaused {
		t.Fatal("toggle should pause the simulation clock")
	}
	vs.Stop()
}

func TestHeadlessOutput_TextureOps(t *testing.T) {
	out := NewHeadlessOutput()
	if err := out.Resize(2, 2); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteFrame(make([]byte, 3)); err == nil {
		t.Fatal("expected size mismatch error")
	}
	frame := solidFrame(2, 2, 5, 6, 7)
	if err := out.WriteFrame(frame.Pix); err != nil {
		t.Fatal(err)
	}
	if snap := out.Snapshot(); snap[0] != 5 || out.Uploads() != 1 {
		t.Fatalf("snapshot got=%v", snap[:4])
	}
	out.Clear()
	if !allZero(out.Snapshot()) {
		t.Fatal("clear did not zero the texture")
	}
	if err := out.Resize(0, 1); err == nil {
		t.Fatal("expected error for zero width")
	}

	var sims, renders int
	out.SetHostHooks(HostHooks{
		Simulate: func(time.Duration) { sims++ },
		Render:   func() { renders++ },
	})
	out.Tick(time.Millisecond)
	if sims != 1 || renders != 1 || out.GetFrameCount() != 1 {
		t.Fatalf("got sims=%d renders=%d frames=%d", sims, renders, out.GetFrameCount())
	}
}

func TestHeadlessOutput_SetDisplayConfig_StoresFullscreen(t *testing.T) {
	out := NewHeadlessOutput()
	cfg := DisplayConfig{Width: 640, Height: 480, Scale: 2, Fullscreen: true, RefreshRate: 50}
	if err := out.SetDisplayConfig(cfg); err != nil {
		t.Fatalf("SetDisplayConfig returned error: %v", err)
	}
	got := out.GetDisplayConfig()
	if !got.Fullscreen || got.Scale != 2 {
		t.Fatalf("expected Scale=2, Fullscreen=true; got Scale=%d, Fullscreen=%v", got.Scale, got.Fullscreen)
	}
	if out.GetRefreshRate() != 50 {
		t.Fatalf("refresh got=%d, want 50", out.GetRefreshRate())
	}
}

func TestClampScale(t *testing.T) {
	for in, want := range map[int]int{-1: 1, 0: 1, 3: 3, 8: 8, 20: 8} {
		if got := ClampScale(in); got != want {
			t.Fatalf("%d: got=%d, want %d", in, got, want)
		}
	}
}
