//go:build !headless

package main

import "testing"

func TestParseVideoCaps(t *testing.T) {
	w, h, fps, err := parseVideoCaps("video/x-raw, format=(string)RGBA, width=(int)1280, height=(int)720, framerate=(fraction)30000/1001, pixel-aspect-ratio=(fraction)1/1")
	if err != nil {
		t.Fatal(err)
	}
	if w != 1280 || h != 720 {
		t.Fatalf("got=%dx%d, want 1280x720", w, h)
	}
	if fps < 29.97 || fps > 29.98 {
		t.Fatalf("fps got=%v, want 29.97", fps)
	}

	_, _, fps, err = parseVideoCaps("video/x-raw, width=(int)64, height=(int)48, framerate=(fraction)0/1")
	if err != nil || fps != 0 {
		t.Fatalf("variable rate got fps=%v err=%v", fps, err)
	}
	if _, _, _, err := parseVideoCaps("audio/x-raw, rate=(int)44100"); err == nil {
		t.Fatal("expected error for caps without geometry")
	}
}

func TestGstBackendRegistered(t *testing.T) {
	if _, ok := videoBackends["gstreamer"]; !ok {
		t.Fatal("gstreamer backend not registered")
	}
}
