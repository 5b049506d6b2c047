package main

import (
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestBackendForPath(t *testing.T) {
	dir := t.TempDir()
	cfg := SourceConfig{Backend: "gstreamer"}
	tests := []struct {
		path string
		want string
	}{
		{dir, "sequence"},
		{filepath.Join(dir, "anim.GIF"), "gif"},
		{filepath.Join(dir, "clip.mp4"), "gstreamer"},
	}
	for _, tt := range tests {
		if got := backendForPath(tt.path, cfg); got != tt.want {
			t.Fatalf("%s: got=%s, want %s", tt.path, got, tt.want)
		}
	}
	if got := backendForPath("clip.mkv", SourceConfig{}); got != "gstreamer" {
		t.Fatalf("default backend got=%s", got)
	}
}

func TestGIFVideoSource_ReadSeekEOF(t *testing.T) {
	path := writeGIF(t, t.TempDir(), 3, 4, 4, 10)
	src, err := openVideoSource(path, SourceConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	if src.FrameCount() != 3 {
		t.Fatalf("frames got=%d, want 3", src.FrameCount())
	}
	if src.FPS() != 10 {
		t.Fatalf("fps got=%v, want 10", src.FPS())
	}
	for i := 0; i < 3; i++ {
		f, err := src.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		if f.Index != int64(i) || f.Pix[0] != byte(10*(i+1)) {
			t.Fatalf("frame %d got index=%d red=%d", i, f.Index, f.Pix[0])
		}
	}
	if _, err := src.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("got=%v, want io.EOF", err)
	}
	if err := src.SeekFrame(1); err != nil {
		t.Fatal(err)
	}
	if f, _ := src.ReadFrame(); f.Index != 1 {
		t.Fatalf("after seek got index=%d, want 1", f.Index)
	}
	if err := src.SeekFrame(3); err == nil {
		t.Fatal("expected error seeking past the end")
	}
	src.Close()
	if _, err := src.ReadFrame(); !errors.Is(err, ErrSourceNotOpen) {
		t.Fatalf("got=%v, want ErrSourceNotOpen", err)
	}
}

func TestSequenceVideoSource_SortedFrames(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "frame_002.png"), 2, 2, color.RGBA{R: 2, A: 255})
	writePNG(t, filepath.Join(dir, "frame_000.png"), 2, 2, color.RGBA{R: 0, A: 255})
	writePNG(t, filepath.Join(dir, "frame_001.png"), 2, 2, color.RGBA{R: 1, A: 255})
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644)

	src, err := openVideoSource(dir, SourceConfig{SequenceFPS: 12})
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()
	if src.FrameCount() != 3 || src.FPS() != 12 {
		t.Fatalf("got=%d frames at %v fps", src.FrameCount(), src.FPS())
	}
	for i := 0; i < 3; i++ {
		f, err := src.ReadFrame()
		if err != nil {
			t.Fatal(err)
		}
		if f.Pix[0] != byte(i) || f.Index != int64(i) {
			t.Fatalf("frame %d got red=%d index=%d", i, f.Pix[0], f.Index)
		}
	}
	if _, err := src.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("got=%v, want io.EOF", err)
	}
}

func TestOpenVideoSource_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := openVideoSource(dir, SourceConfig{}); err == nil {
		t.Fatal("expected error for empty directory")
	}
	if _, err := openVideoSource(filepath.Join(dir, "missing.gif"), SourceConfig{}); err == nil {
		t.Fatal("expected error for missing gif")
	}
	if _, err := openVideoSource(filepath.Join(dir, "clip.mp4"), SourceConfig{Backend: "nonesuch"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
