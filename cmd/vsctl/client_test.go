package main

import (
	"net"
	"path/filepath"
	"testing"
	"time"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		args  []string
		cmd   string
		topic string
		data  string
	}{
		{[]string{"status"}, "status", "", ""},
		{[]string{"stop"}, "publish", topicVideoPath, `""`},
		{[]string{"video", "-"}, "publish", topicVideoPath, `""`},
		{[]string{"image", "-"}, "publish", topicImagePath, `""`},
		{[]string{"seek", "0.25"}, "publish", topicVideoSeek, "0.25"},
		{[]string{"pause"}, "publish", topicVideoPaused, "true"},
		{[]string{"resume"}, "publish", topicVideoPaused, "false"},
		{[]string{"pub", "/cam/set_video_seek", "0.5"}, "publish", "/cam/set_video_seek", "0.5"},
	}
	for _, tt := range tests {
		req, err := buildRequest(tt.args)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if req.Cmd != tt.cmd || req.Topic != tt.topic || string(req.Data) != tt.data {
			t.Fatalf("%v: got=%s %s %s, want %s %s %s", tt.args, req.Cmd, req.Topic, req.Data, tt.cmd, tt.topic, tt.data)
		}
	}
}

func TestBuildRequestMakesPathsAbsolute(t *testing.T) {
	req, err := buildRequest([]string{"open", "clip.gif"})
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(req.Path) || filepath.Base(req.Path) != "clip.gif" {
		t.Fatalf("got=%q, want absolute clip.gif", req.Path)
	}
}

func TestBuildRequestErrors(t *testing.T) {
	for _, args := range [][]string{
		nil,
		{"bogus"},
		{"seek"},
		{"seek", "half"},
		{"pause", "now"},
		{"pub", "topic", "{not json"},
	} {
		if _, err := buildRequest(args); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestSendRoundTrip(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "s.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	got := make(chan request, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var req request
		wireJSON.NewDecoder(conn).Decode(&req)
		got <- req
		conn.Write([]byte(`{"status":"ok","playback":{"state":"playing","frame":3,"frame_count":10,"width":320,"height":240}}`))
	}()

	resp, err := send(sock, request{Cmd: "status"}, 2*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if req := <-got; req.Cmd != "status" {
		t.Fatalf("server got=%q, want status", req.Cmd)
	}
	if resp.Playback == nil || resp.Playback.FrameCount != 10 || resp.Playback.State != "playing" {
		t.Fatalf("got=%+v", resp.Playback)
	}
}

func TestSendRemoteError(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "s.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		var req request
		wireJSON.NewDecoder(conn).Decode(&req)
		conn.Write([]byte(`{"status":"err","message":"unknown topic"}`))
	}()
	if _, err := send(sock, request{Cmd: "publish", Topic: "nope"}, 2*time.Second); err == nil {
		t.Fatal("expected remote error")
	}
}
