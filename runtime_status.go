package main

import "sync"

// PlaybackStatus is the snapshot reported over IPC, HTTP, the console and scripts.
type PlaybackStatus struct {
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
	NativeFPS      float64 `json:"native_fps,omitempty"`
	FramesProduced uint64  `json:"frames_produced"`
	FramesDropped  uint64  `json:"frames_dropped"`
	FramesStale    uint64  `json:"frames_stale"`
	FramesRendered uint64  `json:"frames_rendered"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
}

type runtimeStatusSnapshot struct {
	playback *PlaybackController
	images   *ImageState
	renderer *Renderer
	clock    *SimClock
	router   *CommandRouter
}

type runtimeStatusStore struct {
	mu sync.RWMutex
	runtimeStatusSnapshot
}

func (s *runtimeStatusStore) setComponents(playback *PlaybackController, images *ImageState, renderer *Renderer, clock *SimClock, router *CommandRouter) {
	s.mu.Lock()
	s.playback = playback
	s.images = images
	s.renderer = renderer
	s.clock = clock
	s.router = router
	s.mu.Unlock()
}

func (s *runtimeStatusStore) snapshot() runtimeStatusSnapshot {
	s.mu.RLock()
	snap := s.runtimeStatusSnapshot
	s.mu.RUnlock()
	return snap
}

// status merges the per-component counters. Each component is locked on
// its own, never two at once.
func (s *runtimeStatusStore) status() PlaybackStatus {
	snap := s.snapshot()
	var st PlaybackStatus
	if snap.playback != nil {
		st = snap.playback.Status()
	} else {
		st.State = "stopped"
		st.Frame = -1
	}
	if snap.images != nil {
		stats := snap.images.Stats()
		st.FramesDropped = stats.Dropped
		st.FramesStale = stats.Stale
	}
	if snap.renderer != nil {
		st.FramesRendered = snap.renderer.Rendered()
		st.Width, st.Height = snap.renderer.Dimensions()
	}
	if snap.clock != nil {
		st.SimPaused = snap.clock.Paused()
	}
	if snap.router != nil {
		st.Image = snap.router.ImagePath()
	}
	return st
}
