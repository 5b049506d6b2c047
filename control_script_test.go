package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScript_IssuesCommands(t *testing.T) {
	surface := newRecordingSurface()
	r := newScriptRunnerString(`
		video("/clips/a.mp4")
		sleep(0.01)
		seek(0.5)
		pause()
		resume()
		image("/stills/b.png")
		stop()
		publish("set_video_seek", "0.25")
		local st = status()
		if st.state ~= "playing" or st.frame_count ~= 10 then
			error("bad status " .. st.state)
		end
		log("done")
	`, surface)
	r.Start()
	if err := r.Wait(); err != nil {
		t.Fatalf("script failed: %v", err)
	}
	kinds := []CommandKind{
		CommandSetVideoPath, CommandSetVideoSeek, CommandSetVideoPaused, CommandSetVideoPaused,
		CommandSetImagePath, CommandSetVideoPath, CommandSetVideoSeek,
	}
	cmds := surface.Commands()
	if len(cmds) != len(kinds) {
		t.Fatalf("got=%d commands, want %d", len(cmds), len(kinds))
	}
	for i, k := range kinds {
		if cmds[i].Kind != k {
			t.Fatalf("command %d got=%s, want %s", i, cmds[i].Kind, k)
		}
	}
	if cmds[0].Path != "/clips/a.mp4" || cmds[1].Fraction != 0.5 || !cmds[2].Paused || cmds[6].Fraction != 0.25 {
		t.Fatalf("got=%v", cmds)
	}
	if cmds[0].Origin != "script" {
		t.Fatalf("origin got=%q", cmds[0].Origin)
	}
}

func TestScript_ErrorsReported(t *testing.T) {
	r := newScriptRunnerString(`publish("nope", "1")`, newRecordingSurface())
	r.Start()
	if err := r.Wait(); err == nil {
		t.Fatal("expected unknown topic error")
	}

	surface := newRecordingSurface()
	surface.rejectAll = ErrDispatcherStopped
	r = newScriptRunnerString(`video("/clips/a.mp4")`, surface)
	r.Start()
	if err := r.Wait(); err == nil {
		t.Fatal("expected submit error")
	}
}

func TestScript_StopCancelsSleep(t *testing.T) {
	r := newScriptRunnerString(`while true do sleep(10) end`, newRecordingSurface())
	r.Start()
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not cancel the script")
	}
	if err := r.Wait(); err != nil {
		t.Fatalf("cancelled script reported %v", err)
	}
}

func TestScript_StopCancelsBusyLoop(t *testing.T) {
	r := newScriptRunnerString(`local n = 0 while true do n = n + 1 end`, newRecordingSurface())
	r.Start()
	time.Sleep(20 * time.Millisecond)
	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("busy script not cancelled")
	}
}

func TestScript_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.lua")
	os.WriteFile(path, []byte(`video("/clips/from_file.mp4")`), 0o644)
	surface := newRecordingSurface()
	finished := make(chan error, 1)
	r := NewScriptRunner(path, surface, func(err error) { finished <- err })
	r.Start()
	select {
	case err := <-finished:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("script did not finish")
	}
	if cmds := surface.Commands(); len(cmds) != 1 || cmds[0].Path != "/clips/from_file.mp4" {
		t.Fatalf("got=%v", cmds)
	}
}
