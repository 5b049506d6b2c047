package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSettings_Defaults(t *testing.T) {
	s, err := ParseSettings([]byte("{}"), "/cfg")
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 320 || s.Height != 240 || s.VideoFPS != DEFAULT_FPS {
		t.Fatalf("got=%dx%d@%v", s.Width, s.Height, s.VideoFPS)
	}
	if !s.LoopVideo || !s.UseWallRate || s.BufferAllFrames || s.VideoPaused {
		t.Fatalf("flag defaults got=%+v", s)
	}
	if s.TopicImage != "image_raw" || s.TopicVideoSeek != "set_video_seek" {
		t.Fatalf("topic defaults got=%q %q", s.TopicImage, s.TopicVideoSeek)
	}
	if s.BaseDir != "/cfg" || s.CommandQueueDepth != DEFAULT_COMMAND_QUEUE_DEPTH {
		t.Fatalf("got=%+v", s)
	}
}

func TestParseSettings_MissingOptionsWarn(t *testing.T) {
	var buf bytes.Buffer
	configLog.SetOutput(&buf)
	configLog.SetLevel("info")
	t.Cleanup(func() { configLog.SetOutput(os.Stdout) })

	if _, err := ParseSettings([]byte("width: 100\nhttpListen: 127.0.0.1:0\n"), "/cfg"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, key := range []string{"height", "videoFps", "loopVideo", "useWallRate", "bufferAllFramesForFastSeek", "videoPaused", "defaultVideoPath", "defaultImagePath", "topicVideoSeek"} {
		if !strings.Contains(out, "missing <"+key+">") {
			t.Fatalf("no warning for %s in:\n%s", key, out)
		}
	}
	if !strings.Contains(out, "[WARN]") {
		t.Fatalf("warnings not logged at warn level:\n%s", out)
	}
	for _, key := range []string{"width", "httpListen", "ipcSocket", "script"} {
		if strings.Contains(out, "missing <"+key+">") {
			t.Fatalf("unexpected warning for %s", key)
		}
	}
}

func TestParseSettings_AllKeys(t *testing.T) {
	data := []byte(`
namespace: lab
topicName: camera/raw
topicImagePath: img
topicVideoPath: vid
topicVideoSeek: seek
topicVideoPaused: pause
width: 640
height: 480
videoFps: 0
loopVideo: false
useWallRate: false
bufferAllFramesForFastSeek: true
videoPaused: true
defaultVideoPath: file://clips/intro.gif
defaultImagePath: splash.png
resampleFilter: nearest
videoBackend: sequence
sequenceFps: 12
commandQueueDepth: 4
mediaPaths: [media, /srv/media]
ipcSocket: "off"
httpListen: 127.0.0.1:8090
script: show.lua
console: true
logLevel: debug
display:
  scale: 3
  fullscreen: true
  headless: true
  refreshRate: 30
`)
	s, err := ParseSettings(data, "/cfg")
	if err != nil {
		t.Fatal(err)
	}
	if s.Namespace != "lab" || s.TopicImage != "camera/raw" || s.TopicVideoPaused != "pause" {
		t.Fatalf("topics got=%+v", s)
	}
	if s.Width != 640 || s.Height != 480 || s.VideoFPS != 0 {
		t.Fatalf("size got=%dx%d@%v", s.Width, s.Height, s.VideoFPS)
	}
	if s.LoopVideo || s.UseWallRate || !s.BufferAllFrames || !s.VideoPaused {
		t.Fatal("boolean options not applied")
	}
	if s.ResampleFilter != ResampleNearest || s.VideoBackend != "sequence" || s.SequenceFPS != 12 || s.CommandQueueDepth != 4 {
		t.Fatal("decoder options not applied")
	}
	if len(s.MediaPaths) != 2 || s.IPCSocket != "off" || s.HTTPListen != "127.0.0.1:8090" || s.Script != "show.lua" || !s.Console || s.LogLevel != "debug" {
		t.Fatal("transport options not applied")
	}
	if s.Scale != 3 || !s.Fullscreen || !s.Headless || s.RefreshRate != 30 {
		t.Fatal("display options not applied")
	}
	dc := s.DisplayConfig()
	if dc.Width != 640 || dc.Scale != 3 || dc.RefreshRate != 30 || !dc.Fullscreen {
		t.Fatalf("display config got=%+v", dc)
	}
	if sc := s.SourceConfig(); sc.Backend != "sequence" || sc.SequenceFPS != 12 {
		t.Fatalf("source config got=%+v", sc)
	}
}

func TestParseSettings_Rejects(t *testing.T) {
	for _, doc := range []string{
		"width: 0",
		"height: -5",
		"resampleFilter: lanczos",
		"videoBackend: ffmpeg",
		"commandQueueDepth: 0",
		"topicVideoSeek: /",
		"display: {refreshRate: 0}",
		"width: [1",
	} {
		if _, err := ParseSettings([]byte(doc), ""); err == nil {
			t.Fatalf("%q: expected error", doc)
		}
	}
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil || s.Width != 320 {
		t.Fatalf("no file got=%+v err=%v", s, err)
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "surface.yaml")
	os.WriteFile(path, []byte("width: 100\nheight: 50\nnamespace: x\n"), 0o644)
	s, err = LoadSettings(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Width != 100 || s.BaseDir != dir {
		t.Fatalf("got width=%d base=%s", s.Width, s.BaseDir)
	}
	if _, err := LoadSettings(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestResolveMediaPath(t *testing.T) {
	base := t.TempDir()
	media := filepath.Join(base, "media")
	os.Mkdir(media, 0o755)
	os.WriteFile(filepath.Join(base, "local.png"), nil, 0o644)
	os.WriteFile(filepath.Join(media, "shared.gif"), nil, 0o644)

	s := DefaultSettings()
	s.BaseDir = base
	s.MediaPaths = []string{"media"}

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"local.png", filepath.Join(base, "local.png"), true},
		{"file://local.png", filepath.Join(base, "local.png"), true},
		{"shared.gif", filepath.Join(media, "shared.gif"), true},
		{filepath.Join(media, "shared.gif"), filepath.Join(media, "shared.gif"), true},
		{"missing.mp4", "missing.mp4", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := s.ResolveMediaPath(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("%q: got=%q,%t want %q,%t", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
