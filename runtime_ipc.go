// runtime_ipc.go - Unix socket control channel

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/VideoSurface
License: GPLv3 or later
*/

package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"
)

const ipcMaxRequestSize = 1 << 20

type ipcRequest struct {
	Cmd   string              `json:"cmd"`
	Topic string              `json:"topic,omitempty"`
	Data  jsoniter.RawMessage `json:"data,omitempty"`
	Path  string              `json:"path,omitempty"`
}

type ipcResponse struct {
	Status   string          `json:"status"`
	Message  string          `json:"message,omitempty"`
	Playback *PlaybackStatus `json:"playback,omitempty"`
}

// IPCServer listens on a Unix socket and accepts one JSON request per
// connection: publish to a topic, open a media file, or report status.
type IPCServer struct {
	listener net.Listener
	surface  controlSurface
	done     chan struct{}
	sockPath string
}

func resolveSocketPath(namespace string) string {
	name := "video-surface.sock"
	if namespace != "" {
		name = "video-surface-" + sanitizeSocketName(namespace) + ".sock"
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, name)
	}
	return filepath.Join(os.TempDir(), name)
}

func sanitizeSocketName(ns string) string {
	out := []byte(ns)
	for i, c := range out {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_') {
			out[i] = '_'
		}
	}
	return string(out)
}

// NewIPCServer creates and binds the IPC Unix socket at the default path.
func NewIPCServer(namespace string, surface controlSurface) (*IPCServer, error) {
	return newIPCServerAt(resolveSocketPath(namespace), surface)
}

// newIPCServerAt creates and binds the IPC Unix socket at the given path.
func newIPCServerAt(sockPath string, surface controlSurface) (*IPCServer, error) {
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		// Stale socket cleanup: try connecting. If peer is dead, remove and retry.
		conn, dialErr := net.DialTimeout("unix", sockPath, 2*time.Second)
		if dialErr != nil {
			os.Remove(sockPath)
			ln, err = net.Listen("unix", sockPath)
			if err != nil {
				return nil, fmt.Errorf("ipc bind failed: %w", err)
			}
		} else {
			conn.Close()
			return nil, fmt.Errorf("another surface is already listening on %s", sockPath)
		}
	}
	return &IPCServer{listener: ln, surface: surface, done: make(chan struct{}), sockPath: sockPath}, nil
}

func (s *IPCServer) Name() string { return "ipc" }

// Start begins accepting IPC connections in a goroutine.
func (s *IPCServer) Start() error {
	ipcLog.Infof("listening on %s", s.sockPath)
	go s.acceptLoop()
	return nil
}

// Stop closes the listener and waits for the accept loop to exit.
func (s *IPCServer) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

func (s *IPCServer) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *IPCServer) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	var req ipcRequest
	if err := wireJSON.NewDecoder(io.LimitReader(conn, ipcMaxRequestSize)).Decode(&req); err != nil {
		s.writeResponse(conn, ipcResponse{Status: "err", Message: "invalid json"})
		return
	}
	s.writeResponse(conn, s.handle(req))
}

func (s *IPCServer) handle(req ipcRequest) ipcResponse {
	switch req.Cmd {
	case "status":
		st := s.surface.Status()
		return ipcResponse{Status: "ok", Playback: &st}

	case "open":
		if err := validateIPCPath(req.Path, false); err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		kind := CommandSetVideoPath
		if isStillImagePath(req.Path) {
			kind = CommandSetImagePath
		}
		if err := s.surface.Submit(Command{Kind: kind, Path: req.Path, Origin: "ipc"}); err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		return ipcResponse{Status: "ok"}

	case "publish", "":
		if req.Topic == "" {
			return ipcResponse{Status: "err", Message: "missing topic"}
		}
		kind, err := s.surface.Topics().Resolve(req.Topic)
		if err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		cmd, err := ParseCommandPayload(kind, req.Data)
		if err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		if kind == CommandSetImagePath || kind == CommandSetVideoPath {
			if err := validateIPCPath(cmd.Path, true); err != nil {
				return ipcResponse{Status: "err", Message: err.Error()}
			}
		}
		cmd.Origin = "ipc"
		if err := s.surface.Submit(cmd); err != nil {
			return ipcResponse{Status: "err", Message: err.Error()}
		}
		return ipcResponse{Status: "ok"}
	}
	return ipcResponse{Status: "err", Message: "unknown command"}
}

func (s *IPCServer) writeResponse(conn net.Conn, resp ipcResponse) {
	data, _ := wireJSON.Marshal(resp)
	conn.Write(data)
}

// validateIPCPath requires an absolute path to an existing file or
// directory. allowEmpty admits "" for the clear requests.
func validateIPCPath(path string, allowEmpty bool) error {
	if path == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("path required")
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("absolute path required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file not found: %s", path)
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return fmt.Errorf("not a regular file or directory: %s", path)
	}
	return nil
}

// sendIPCRequest sends req to the surface listening at sockPath.
func sendIPCRequest(sockPath string, req ipcRequest) (ipcResponse, error) {
	var resp ipcResponse
	conn, err := net.DialTimeout("unix", sockPath, 10*time.Second)
	if err != nil {
		return resp, fmt.Errorf("cannot connect to running surface: %w", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	data, _ := wireJSON.Marshal(req)
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
		return resp, fmt.Errorf("remote error: %s", resp.Message)
	}
	return resp, nil
}

// sendIPCOpenAt asks the surface at sockPath to show path.
func sendIPCOpenAt(sockPath, path string) error {
	_, err := sendIPCRequest(sockPath, ipcRequest{Cmd: "open", Path: path})
	return err
}

// sendIPCPublishAt publishes a JSON payload to topic.
func sendIPCPublishAt(sockPath, topic string, payload []byte) error {
	_, err := sendIPCRequest(sockPath, ipcRequest{Cmd: "publish", Topic: topic, Data: payload})
	return err
}
