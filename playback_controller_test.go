package main

import (
	"errors"
	"testing"
	"time"
)

func TestPlayback_BufferedLoopWraps(t *testing.T) {
	p := newPipeline(t, 4, 4, PlaybackConfig{FPS: 24, Loop: true, BufferAllFrames: true}, &fakeOpener{n: 3, w: 4, h: 4})
	p.router.SetVideoPath("/clips/three.mp4")

	want := []byte{1, 2, 3, 1, 2}
	for i, w := range want {
		p.tick()
		if got := p.red(); got != w {
			t.Fatalf("tick %d: got=%d, want %d", i, got, w)
		}
	}
	if p.opener.Opens() != 1 {
		t.Fatalf("buffered loop reopened the source %d times", p.opener.Opens())
	}
	if st := p.playback.Status(); st.Buffered != 3 || st.State != "playing" {
		t.Fatalf("status got=%+v", st)
	}
}

func TestPlayback_BufferedNoLoopStopsAndClears(t *testing.T) {
	p := newPipeline(t, 4, 4, PlaybackConfig{FPS: 24, BufferAllFrames: true}, &fakeOpener{n: 3, w: 4, h: 4})
	p.router.SetVideoPath("/clips/three.mp4")
	for i := 0; i < 3; i++ {
		p.tick()
	}
	if p.red() != 3 {
		t.Fatalf("got=%d, want last frame", p.red())
	}
	p.tick()
	if !allZero(p.sink.Pixels()) {
		t.Fatal("sink not cleared at end of video")
	}
	st := p.playback.State()
	if !st.Stopped {
		t.Fatal("expected stopped")
	}
	if n := p.playback.Status().Buffered; n != 0 {
		t.Fatalf("buffer not released, %d frames", n)
	}
	p.tick()
	if !allZero(p.sink.Pixels()) {
		t.Fatal("stopped controller produced a frame")
	}
}

func TestPlayback_LiveLoopReopens(t *testing.T) {
	p := newPipeline(t, 4, 4, PlaybackConfig{FPS: 24, Loop: true}, &fakeOpener{n: 2, w: 4, h: 4})
	p.router.SetVideoPath("/clips/two.mp4")

	p.tick()
	p.tick()
	if p.red() != 2 {
		t.Fatalf("got=%d, want 2", p.red())
	}
	p.tick() // end of stream, reopen
	if p.red() != 2 {
		t.Fatalf("frame changed on the reopen tick, got=%d", p.red())
	}
	if p.opener.Opens() != 2 {
		t.Fatalf("opens got=%d, want 2", p.opener.Opens())
	}
	p.tick()
	if p.red() != 1 {
		t.Fatalf("after loop got=%d, want 1", p.red())
	}
}

func TestPlayback_LiveNoLoopStopsAndClears(t *testing.T) {
	p := newPipeline(t, 4, 4, PlaybackConfig{FPS: 24}, &fakeOpener{n: 2, w: 4, h: 4})
	p.router.SetVideoPath("/clips/two.mp4")
	p.tick()
	p.tick()
	p.tick()
	if !allZero(p.sink.Pixels()) {
		t.Fatal("sink not cleared at end of video")
	}
	if !p.playback.State().Stopped {
		t.Fatal("expected stopped")
	}
}

func TestPlayback_LiveDecodeErrorTreatedAsEnd(t *testing.T) {
	p := newPipeline(t, 4, 4, PlaybackConfig{FPS: 24}, &fakeOpener{n: 5, w: 4, h: 4})
	p.router.SetVideoPath("/clips/broken.mp4")
	p.tick()
	p.opener.last.readErr = errors.New("corrupt packet")
	p.tick()
	if !p.playback.State().Stopped || !allZero(p.sink.Pixels()) {
		t.Fatal("decode error should stop and clear")
	}
}

func TestPlayback_BufferedSeek(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 24, Loop: true, BufferAllFrames: true}, &fakeOpener{n: 10, w: 2, h: 2})
	p.router.SetVideoPath("/clips/ten.mp4")
	p.tick()

	p.router.SetVideoSeek(0.5)
	p.tick()
	if p.red() != 6 { // index 5
		t.Fatalf("got=%d, want frame index 5", p.red())
	}
	if p.playback.State().HasSeek() {
		t.Fatal("seek request not cleared")
	}
	p.tick()
	if p.red() != 7 {
		t.Fatalf("playback did not continue from the seek, got=%d", p.red())
	}
	if pos := p.playback.Status().Position; pos != 6.0/9.0 {
		t.Fatalf("position got=%v", pos)
	}
}

func TestPlayback_SeekWhilePausedShowsOneFrame(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 24, Loop: true, BufferAllFrames: true, Paused: true}, &fakeOpener{n: 10, w: 2, h: 2})
	p.router.SetVideoPath("/clips/ten.mp4")
	p.tick()
	if !allZero(p.sink.Pixels()) {
		t.Fatal("paused video should show nothing until a seek")
	}

	p.router.SetVideoSeek(1)
	p.tick()
	if p.red() != 10 {
		t.Fatalf("got=%d, want last frame", p.red())
	}
	p.playback.Advance()
	if p.renderer.OnRenderTick() {
		t.Fatal("paused video produced a second frame")
	}
	if n := p.playback.Status().FramesProduced; n != 1 {
		t.Fatalf("produced got=%d, want 1", n)
	}
}

func TestPlayback_LiveSeekClampsToLastFrame(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 24}, &fakeOpener{n: 10, w: 2, h: 2})
	p.router.SetVideoPath("/clips/ten.mp4")
	p.tick()

	p.router.SetVideoSeek(0.5)
	p.tick()
	if p.red() != 6 {
		t.Fatalf("got=%d, want frame index 5", p.red())
	}
	p.router.SetVideoSeek(1)
	p.tick()
	if p.red() != 10 {
		t.Fatalf("got=%d, want frame index 9", p.red())
	}
	seeks := p.opener.last.seeks
	if len(seeks) != 2 || seeks[0] != 5 || seeks[1] != 9 {
		t.Fatalf("seeks got=%v, want [5 9]", seeks)
	}
}

func TestPlayback_OpenFailureClears(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 24, Loop: true}, &fakeOpener{fail: true})
	p.sink.WriteFrame(solidFrame(2, 2, 9, 9, 9).Pix, 2, 2)
	p.router.SetVideoPath("/clips/missing.mp4")
	p.tick()
	if !allZero(p.sink.Pixels()) {
		t.Fatal("failed open should leave a cleared sink")
	}
	p.tick()
	p.tick()
	if p.opener.Opens() != 1 {
		t.Fatalf("failed open retried %d times", p.opener.Opens())
	}
}

func TestPlayback_AdoptsNativeRate(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 0, UseWallClock: true}, &fakeOpener{n: 3, w: 2, h: 2, fps: 30})
	p.router.SetVideoPath("/clips/thirty.mp4")
	p.tick()
	if st := p.playback.Status(); st.FPS != 30 || st.NativeFPS != 30 {
		t.Fatalf("got fps=%v native=%v, want 30", st.FPS, st.NativeFPS)
	}
	if p.playback.wall.Period() != periodForFPS(30) {
		t.Fatalf("wall period got=%v", p.playback.wall.Period())
	}

	fixed := newPipeline(t, 2, 2, PlaybackConfig{FPS: 12}, &fakeOpener{n: 3, w: 2, h: 2, fps: 30})
	fixed.router.SetVideoPath("/clips/thirty.mp4")
	fixed.tick()
	if st := fixed.playback.Status(); st.FPS != 12 {
		t.Fatalf("configured rate overridden, got=%v", st.FPS)
	}
}

func TestPlayback_ResizesToSink(t *testing.T) {
	p := newPipeline(t, 8, 8, PlaybackConfig{FPS: 24, Loop: true}, &fakeOpener{n: 3, w: 2, h: 2})
	p.router.SetVideoPath("/clips/small.mp4")
	p.tick()
	for i := 0; i < len(p.sink.Pixels()); i += 4 {
		if p.sink.Pixels()[i] != 1 {
			t.Fatalf("pixel %d got=%d, want 1", i/4, p.sink.Pixels()[i])
		}
	}
}

func TestPlayback_NewSessionPerVideo(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 24, Loop: true}, &fakeOpener{n: 3, w: 2, h: 2})
	p.router.SetVideoPath("/clips/a.mp4")
	p.tick()
	first := p.playback.Status().SessionID
	p.router.SetVideoPath("/clips/b.mp4")
	p.tick()
	second := p.playback.Status().SessionID
	if first == "" || first == second {
		t.Fatalf("session ids got=%q, %q", first, second)
	}
	if p.opener.Opens() != 2 {
		t.Fatalf("opens got=%d, want 2", p.opener.Opens())
	}
}

func TestPlayback_RunLoopWallClock(t *testing.T) {
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 200, Loop: true, UseWallClock: true}, &fakeOpener{n: 5, w: 2, h: 2})
	p.router.SetVideoPath("/clips/five.mp4")
	p.playback.Start()
	waitFor(t, "frames from the decode loop", func() bool {
		return p.playback.Status().FramesProduced >= 6
	})
	stopped := make(chan struct{})
	go func() {
		p.playback.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	p.playback.Close()
}

func TestPlayback_RunLoopSimClock(t *testing.T) {
	clock := NewSimClock()
	p := newPipeline(t, 2, 2, PlaybackConfig{FPS: 10, Loop: true, Clock: clock}, &fakeOpener{n: 5, w: 2, h: 2})
	p.router.SetVideoPath("/clips/five.mp4")
	p.playback.Start()
	defer p.playback.Stop()

	waitFor(t, "first frame", func() bool { return p.playback.Status().FramesProduced == 1 })
	time.Sleep(30 * time.Millisecond)
	if n := p.playback.Status().FramesProduced; n != 1 {
		t.Fatalf("decode loop ran without simulation time, produced=%d", n)
	}
	clock.Advance(100 * time.Millisecond)
	waitFor(t, "second frame", func() bool { return p.playback.Status().FramesProduced == 2 })
}
