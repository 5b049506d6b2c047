// image_state.go - Single-slot frame mailbox between producers and the render tick

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
	"sync"
)

// ImageState holds at most one pending frame. Publishing overwrites any
// unconsumed frame, so the renderer only ever sees the newest one.
//
// Producers Claim a generation before publishing. A new Claim invalidates
// every earlier generation, which keeps a slow decode tick from
// overwriting a still image or clear issued after it started.
type ImageState struct {
	mu         sync.Mutex
	frame      *Frame
	dirty      bool
	generation uint64

	published uint64
	consumed  uint64
	dropped   uint64
	stale     uint64
}

type ImageStateStats struct {
	Published uint64 `json:"published"`
	Consumed  uint64 `json:"consumed"`
	Dropped   uint64 `json:"dropped"`
	Stale     uint64 `json:"stale"`
}

func NewImageState() *ImageState {
	return &ImageState{}
}

// Claim starts a new producer generation and returns it.
func (s *ImageState) Claim() uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()
	return gen
}

func (s *ImageState) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Publish stores frame as the pending frame if gen is still current.
func (s *ImageState) Publish(gen uint64, frame *Frame) bool {
	if frame == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.stale++
		return false
	}
	if s.dirty {
		s.dropped++
	}
	s.frame = frame
	s.dirty = true
	s.published++
	return true
}

// ConsumeIfDirty hands out the pending frame once.
func (s *ImageState) ConsumeIfDirty() (*Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil, false
	}
	s.dirty = false
	s.consumed++
	return s.frame, true
}

func (s *ImageState) Stats() ImageStateStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ImageStateStats{
		Published: s.published,
		Consumed:  s.consumed,
		Dropped:   s.dropped,
		Stale:     s.stale,
	}
}
