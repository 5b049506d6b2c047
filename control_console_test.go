package main

import (
	"strings"
	"testing"
)

func TestConsole_ExecLine(t *testing.T) {
	surface := newRecordingSurface()
	c := NewControlConsole(surface, nil)

	lines := []string{
		"video /clips/a.mp4",
		`image "/stills/with space.png"`,
		"video -",
		"stop",
		"seek 0.25",
		"pause",
		"resume",
		`pub set_video_seek 1`,
	}
	for _, line := range lines {
		if _, quit, err := c.ExecLine(line); err != nil || quit {
			t.Fatalf("%q: quit=%t err=%v", line, quit, err)
		}
	}
	want := []Command{
		{Kind: CommandSetVideoPath, Path: "/clips/a.mp4"},
		{Kind: CommandSetImagePath, Path: "/stills/with space.png"},
		{Kind: CommandSetVideoPath},
		{Kind: CommandSetVideoPath},
		{Kind: CommandSetVideoSeek, Fraction: 0.25},
		{Kind: CommandSetVideoPaused, Paused: true},
		{Kind: CommandSetVideoPaused},
		{Kind: CommandSetVideoSeek, Fraction: 1},
	}
	got := surface.Commands()
	if len(got) != len(want) {
		t.Fatalf("got=%d commands, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Kind != want[i].Kind || got[i].Path != want[i].Path ||
			got[i].Fraction != want[i].Fraction || got[i].Paused != want[i].Paused {
			t.Fatalf("command %d got=%s, want %s", i, got[i], want[i])
		}
	}
	if got[0].Origin != "console" {
		t.Fatalf("origin got=%q", got[0].Origin)
	}
}

func TestConsole_StatusHelpQuit(t *testing.T) {
	c := NewControlConsole(newRecordingSurface(), nil)
	out, _, err := c.ExecLine("status")
	if err != nil || !strings.Contains(out, "state:    playing") || !strings.Contains(out, "/clips/a.mp4") {
		t.Fatalf("status got=%q err=%v", out, err)
	}
	if out, _, _ := c.ExecLine("help"); !strings.Contains(out, "seek <0..1>") {
		t.Fatalf("help got=%q", out)
	}
	if out, _, _ := c.ExecLine("topics"); !strings.Contains(out, "/set_video_path") {
		t.Fatalf("topics got=%q", out)
	}
	if _, quit, _ := c.ExecLine("quit"); !quit {
		t.Fatal("quit not reported")
	}
	if out, quit, err := c.ExecLine("   "); out != "" || quit || err != nil {
		t.Fatal("blank line should do nothing")
	}
}

func TestConsole_Errors(t *testing.T) {
	c := NewControlConsole(newRecordingSurface(), nil)
	for _, line := range []string{"seek", "seek half", "pub set_video_seek", "pub nope 1", "dance"} {
		if _, _, err := c.ExecLine(line); err == nil {
			t.Fatalf("%q: expected error", line)
		}
	}
}

func TestPathArg(t *testing.T) {
	tests := map[string]string{
		"-":           "",
		"":            "",
		"/a b.mp4":    "/a b.mp4",
		`"/a b.mp4"`:  "/a b.mp4",
		`'/c.png'`:    "/c.png",
		`"unbalanced`: `"unbalanced`,
	}
	for in, want := range tests {
		if got := pathArg(in); got != want {
			t.Fatalf("%q: got=%q, want %q", in, got, want)
		}
	}
}
