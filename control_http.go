// control_http.go - HTTP and websocket control API

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
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

// ControlHTTPServer exposes topic publishing over HTTP and a websocket
// feed for live images.
//
//	POST /topics/*topic   JSON payload for the topic
//	GET  /status          playback status
//	GET  /healthz         liveness
//	GET  /live            websocket; binary messages are msgpack LiveImage,
//	                      text messages JSON LiveImage
type ControlHTTPServer struct {
	addr     string
	surface  controlSurface
	engine   *gin.Engine
	server   *http.Server
	listener net.Listener
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	done  chan struct{}
}

func NewControlHTTPServer(addr string, surface controlSurface) *ControlHTTPServer {
	gin.SetMode(gin.ReleaseMode)
	s := &ControlHTTPServer{
		addr:    addr,
		surface: surface,
		engine:  gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 4 << 10,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	s.engine.Use(gin.Recovery())
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/status", s.handleStatus)
	s.engine.GET("/topics", s.handleTopics)
	s.engine.POST("/topics/*topic", s.handlePublish)
	s.engine.GET("/live", s.handleLive)
	return s
}

func (s *ControlHTTPServer) Name() string { return "http" }

// Handler exposes the router for tests and embedding.
func (s *ControlHTTPServer) Handler() http.Handler { return s.engine }

// Addr returns the bound address once started.
func (s *ControlHTTPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

func (s *ControlHTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return &VideoError{Operation: "http listen", Details: s.addr, Err: err}
	}
	s.listener = ln
	s.server = &http.Server{Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpLog.Errorf("serve: %v", err)
		}
	}()
	httpLog.Infof("listening on http://%s", ln.Addr())
	return nil
}

func (s *ControlHTTPServer) Stop() {
	if s.server == nil {
		return
	}
	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		httpLog.Warnf("shutdown: %v", err)
	}
	<-s.done
}

func (s *ControlHTTPServer) handleHealth(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *ControlHTTPServer) handleStatus(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, s.surface.Status())
}

func (s *ControlHTTPServer) handleTopics(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"topics": s.surface.Topics().Topics()})
}

func (s *ControlHTTPServer) handlePublish(ctx *gin.Context) {
	topic := strings.TrimPrefix(ctx.Param("topic"), "/")
	body, err := ctx.GetRawData()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "err", "message": err.Error()})
		return
	}
	kind, err := s.surface.Topics().Resolve(topic)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"status": "err", "message": err.Error()})
		return
	}
	cmd, err := ParseCommandPayload(kind, body)
	if err != nil {
		httpLog.Warnf("malformed %s payload: %v", topic, err)
		ctx.JSON(http.StatusBadRequest, gin.H{"status": "err", "message": err.Error()})
		return
	}
	cmd.Origin = "http"
	if err := s.surface.Submit(cmd); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "err", "message": err.Error()})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"status": "ok"})
}

func (s *ControlHTTPServer) handleLive(ctx *gin.Context) {
	conn, err := s.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		httpLog.Warnf("websocket upgrade: %v", err)
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	httpLog.Debugf("live feed connected from %s", conn.RemoteAddr())
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				httpLog.Debugf("live feed closed: %v", err)
			}
			return
		}
		img, err := decodeLiveMessage(mt, data)
		if err != nil {
			httpLog.Warnf("malformed live image: %v", err)
			continue
		}
		if err := s.surface.Submit(Command{Kind: CommandSetImage, Live: img, Origin: "websocket"}); err != nil {
			return
		}
	}
}

func decodeLiveMessage(messageType int, data []byte) (*LiveImage, error) {
	var img LiveImage
	var err error
	if messageType == websocket.BinaryMessage {
		err = msgpack.Unmarshal(data, &img)
	} else {
		err = wireJSON.Unmarshal(data, &img)
	}
	if err != nil {
		return nil, err
	}
	return &img, nil
}
