package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
)

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTP_PublishStatusCodes(t *testing.T) {
	surface := newRecordingSurface()
	h := NewControlHTTPServer("127.0.0.1:0", surface).Handler()

	tests := []struct {
		path string
		body string
		code int
	}{
		{"/topics/set_video_path", `"/clips/a.mp4"`, http.StatusAccepted},
		{"/topics/set_video_seek", `0.5`, http.StatusAccepted},
		{"/topics/set_video_paused", `true`, http.StatusAccepted},
		{"/topics/nope", `1`, http.StatusNotFound},
		{"/topics/set_video_seek", `"half"`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		rec := doRequest(t, h, http.MethodPost, tt.path, tt.body)
		if rec.Code != tt.code {
			t.Fatalf("%s %s: got=%d, want %d (%s)", tt.path, tt.body, rec.Code, tt.code, rec.Body.String())
		}
	}
	cmds := surface.Commands()
	if len(cmds) != 3 || cmds[0].Path != "/clips/a.mp4" || cmds[1].Fraction != 0.5 || !cmds[2].Paused {
		t.Fatalf("got=%v", cmds)
	}
	if cmds[0].Origin != "http" {
		t.Fatalf("origin got=%q", cmds[0].Origin)
	}

	surface.rejectAll = ErrDispatcherStopped
	if rec := doRequest(t, h, http.MethodPost, "/topics/set_video_seek", "0.1"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("got=%d, want 503", rec.Code)
	}
}

func TestHTTP_StatusAndTopics(t *testing.T) {
	h := NewControlHTTPServer("127.0.0.1:0", newRecordingSurface()).Handler()

	rec := doRequest(t, h, http.MethodGet, "/status", "")
	var st PlaybackStatus
	if err := jsoniter.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusOK || st.State != "playing" || st.Width != 320 {
		t.Fatalf("got=%d %+v", rec.Code, st)
	}

	rec = doRequest(t, h, http.MethodGet, "/topics", "")
	if !strings.Contains(rec.Body.String(), "/set_image_path") {
		t.Fatalf("topics got=%s", rec.Body.String())
	}
	if rec := doRequest(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Fatalf("healthz got=%d", rec.Code)
	}
}

func TestHTTP_LiveWebsocket(t *testing.T) {
	surface := newRecordingSurface()
	srv := httptest.NewServer(NewControlHTTPServer("127.0.0.1:0", surface).Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	packed, err := msgpack.Marshal(&LiveImage{Width: 1, Height: 1, Encoding: "mono8", Data: []byte{9}})
	if err != nil {
		t.Fatal(err)
	}
	conn.WriteMessage(websocket.BinaryMessage, packed)
	conn.WriteMessage(websocket.TextMessage, []byte("{broken"))
	conn.WriteMessage(websocket.TextMessage, []byte(`{"width":2,"height":1,"encoding":"rgb8","data":"AQIDBAUG"}`))

	waitFor(t, "live frames", func() bool { return len(surface.Commands()) == 2 })
	cmds := surface.Commands()
	if cmds[0].Kind != CommandSetImage || cmds[0].Live.Data[0] != 9 || cmds[0].Origin != "websocket" {
		t.Fatalf("binary frame got=%+v", cmds[0])
	}
	if cmds[1].Live.Width != 2 || len(cmds[1].Live.Data) != 6 {
		t.Fatalf("text frame got=%+v", cmds[1].Live)
	}
}

func TestHTTP_StartStop(t *testing.T) {
	s := NewControlHTTPServer("127.0.0.1:0", newRecordingSurface())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("got=%d", resp.StatusCode)
	}
	s.Stop()
	if _, err := http.Get("http://" + s.Addr() + "/healthz"); err == nil {
		t.Fatal("server still answering after Stop")
	}
}
