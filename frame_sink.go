// frame_sink.go - Destination buffer for decoded frames

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
)

// FrameSink owns the pixel buffer handed to the display texture. It is only
// touched from the render tick.
type FrameSink struct {
	width  int
	height int
	buffer []byte
	filter ResampleFilter
	writes uint64
	clears uint64
}

func NewFrameSink(width, height int, filter ResampleFilter) (*FrameSink, error) {
	s := &FrameSink{filter: filter}
	if err := s.Resize(width, height); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize reallocates a zero-filled buffer of the given dimensions.
func (s *FrameSink) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return &VideoError{
			Operation: "sink resize",
			Details:   fmt.Sprintf("invalid dimensions %dx%d", width, height),
		}
	}
	s.width = width
	s.height = height
	s.buffer = make([]byte, width*height*BYTES_PER_PIXEL)
	return nil
}

// WriteFrame overwrites the whole buffer with pixels, rescaling when the
// source dimensions differ from the sink.
func (s *FrameSink) WriteFrame(pixels []byte, srcW, srcH int) error {
	need := srcW * srcH * BYTES_PER_PIXEL
	if srcW <= 0 || srcH <= 0 || len(pixels) < need {
		return &VideoError{
			Operation: "sink write",
			Details:   fmt.Sprintf("source %dx%d needs %d bytes, got %d", srcW, srcH, need, len(pixels)),
		}
	}
	if srcW == s.width && srcH == s.height {
		copy(s.buffer, pixels[:need])
	} else {
		copy(s.buffer, ResizePixels(pixels[:need], srcW, srcH, s.width, s.height, s.filter))
	}
	s.writes++
	return nil
}

func (s *FrameSink) Clear() {
	clear(s.buffer)
	s.clears++
}

// Pixels exposes the live buffer. Callers must not retain it past the tick.
func (s *FrameSink) Pixels() []byte {
	return s.buffer
}

func (s *FrameSink) Dimensions() (int, int) {
	return s.width, s.height
}

func (s *FrameSink) Writes() uint64 { return s.writes }
func (s *FrameSink) Clears() uint64 { return s.clears }
