package main

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var wireJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// request mirrors the surface's IPC request envelope.
type request struct {
	Cmd   string              `json:"cmd"`
	Topic string              `json:"topic,omitempty"`
	Data  jsoniter.RawMessage `json:"data,omitempty"`
	Path  string              `json:"path,omitempty"`
}

type playbackStatus struct {
	State          string  `json:"state"`
	Path           string  `json:"path,omitempty"`
	Image          string  `json:"image,omitempty"`
	SessionID      string  `json:"session_id,omitempty"`
	Paused         bool    `json:"paused"`
	Loop           bool    `json:"loop"`
	WallClock      bool    `json:"wall_clock"`
	SimPaused      bool    `json:"sim_paused"`
	Buffered       int     `json:"buffered"`
	Frame          int64   `json:"frame"`
	FrameCount     int64   `json:"frame_count"`
	Position       float64 `json:"position"`
	FPS            float64 `json:"fps"`
	FramesProduced uint64  `json:"frames_produced"`
	FramesDropped  uint64  `json:"frames_dropped"`
	FramesRendered uint64  `json:"frames_rendered"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type response struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Playback *playbackStatus `json:"playback,omitempty"`
}

// Default topic names; bare names resolve inside the surface's namespace.
const (
	topicImagePath   = "set_image_path"
	topicVideoPath   = "set_video_path"
	topicVideoSeek   = "set_video_seek"
	topicVideoPaused = "set_video_paused"
)

func defaultSocketPath(namespace string) string {
	name := "video-surface.sock"
	if namespace != "" {
		out := []byte(namespace)
		for i, c := range out {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
				out[i] = '_'
			}
		}
		name = "video-surface-" + string(out) + ".sock"
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

// absPath makes path absolute for the surface; "-" means clear.
func absPath(path string) (string, error) {
	if path == "-" || path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}

func publishString(topic, value string) (request, error) {
	data, err := wireJSON.Marshal(value)
	if err != nil {
		return request{}, err
	}
	return request{Cmd: "publish", Topic: topic, Data: data}, nil
}

// buildRequest turns a command line into an IPC request.
func buildRequest(args []string) (request, error) {
	if len(args) == 0 {
		return request{}, fmt.Errorf("missing command")
	}
	need := func(n int) error {
		if len(args) != n+1 {
			return fmt.Errorf("%s takes %d argument(s)", args[0], n)
		}
		return nil
	}
	switch args[0] {
	case "status":
		return request{Cmd: "status"}, need(0)
	case "open":
		if err := need(1); err != nil {
			return request{}, err
		}
		p, err := absPath(args[1])
		if err != nil {
			return request{}, err
		}
		return request{Cmd: "open", Path: p}, nil
	case "video", "image":
		if err := need(1); err != nil {
			return request{}, err
		}
		p, err := absPath(args[1])
		if err != nil {
			return request{}, err
		}
		topic := topicVideoPath
		if args[0] == "image" {
			topic = topicImagePath
		}
		return publishString(topic, p)
	case "stop":
		if err := need(0); err != nil {
			return request{}, err
		}
		return publishString(topicVideoPath, "")
	case "seek":
		if err := need(1); err != nil {
			return request{}, err
		}
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return request{}, fmt.Errorf("seek: %w", err)
		}
		return request{Cmd: "publish", Topic: topicVideoSeek, Data: []byte(strconv.FormatFloat(f, 'g', -1, 64))}, nil
	case "pause", "resume":
		if err := need(0); err != nil {
			return request{}, err
		}
		return request{Cmd: "publish", Topic: topicVideoPaused, Data: []byte(strconv.FormatBool(args[0] == "pause"))}, nil
	case "pub":
		if err := need(2); err != nil {
			return request{}, err
		}
		if !wireJSON.Valid([]byte(args[2])) {
			return request{}, fmt.Errorf("pub: payload is not valid JSON")
		}
		return request{Cmd: "publish", Topic: args[1], Data: []byte(args[2])}, nil
	}
	return request{}, fmt.Errorf("unknown command %q", args[0])
}

func send(sockPath string, req request, timeout time.Duration) (response, error) {
	var resp response
	conn, err := net.DialTimeout("unix", sockPath, timeout)
	if err != nil {
		return resp, fmt.Errorf("cannot connect to %s: %w", sockPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := wireJSON.Marshal(req)
	if err != nil {
		return resp, err
	}
	if _, err := conn.Write(data); err != nil {
		return resp, fmt.Errorf("send failed: %w", err)
	}
	if uc, ok := conn.(*net.UnixConn); ok {
		uc.CloseWrite()
	}
	if err := wireJSON.NewDecoder(conn).Decode(&resp); err != nil {
		return resp, fmt.Errorf("invalid response: %w", err)
	}
	if resp.Status != "ok" {
		return resp, fmt.Errorf("surface: %s", resp.Message)
	}
	return resp, nil
}

func formatStatus(st *playbackStatus) string {
	if st == nil {
		return "no status"
	}
	s := fmt.Sprintf("%s %dx%d", st.State, st.Width, st.Height)
	if st.Path != "" {
		s += fmt.Sprintf(" video=%s frame=%d/%d (%.1f%%) fps=%.2f", st.Path, st.Frame, st.FrameCount, st.Position*100, st.FPS)
	}
	if st.Image != "" {
		s += " image=" + st.Image
	}
	return s + fmt.Sprintf(" produced=%d dropped=%d rendered=%d", st.FramesProduced, st.FramesDropped, st.FramesRendered)
}
