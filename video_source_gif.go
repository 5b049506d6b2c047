// video_source_gif.go - Animated GIF decoder

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
	"image"
	"image/gif"
	"io"
	"os"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

func init() {
	registerVideoBackend("gif", func(SourceConfig) VideoSource { return &gifVideoSource{} })
}

// gifVideoSource composites every frame at open time. GIFs are small and
// disposal methods make random access impossible without the full history.
type gifVideoSource struct {
	path   string
	frames []*Frame
	fps    float64
	cursor int
	opened bool
}

func (s *gifVideoSource) Open(path string) error {
	s.Close()
	f, err := os.Open(path)
	if err != nil {
		return &VideoError{Operation: "gif open", Details: path, Err: err}
	}
	defer f.Close()

	g, err := gif.DecodeAll(f)
	if err != nil {
		return &VideoError{Operation: "gif decode", Details: path, Err: err}
	}
	if len(g.Image) == 0 {
		return &VideoError{Operation: "gif decode", Details: path + ": no frames"}
	}

	w, h := g.Config.Width, g.Config.Height
	if w == 0 || h == 0 {
		b := g.Image[0].Bounds()
		w, h = b.Max.X, b.Max.Y
	}
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	session := uuid.NewString()
	totalDelay := 0
	for i, img := range g.Image {
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var previous []byte
		if disposal == gif.DisposalPrevious {
			previous = append([]byte(nil), canvas.Pix...)
		}
		draw.Draw(canvas, img.Bounds(), img, img.Bounds().Min, draw.Over)

		pix := make([]byte, len(canvas.Pix))
		copy(pix, canvas.Pix)
		s.frames = append(s.frames, &Frame{
			Width:   w,
			Height:  h,
			Pix:     pix,
			Index:   int64(i),
			TraceID: fmt.Sprintf("%s/%d", session, i),
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, img.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, previous)
		}
		if i < len(g.Delay) {
			totalDelay += g.Delay[i]
		}
	}

	// Delays are in hundredths of a second; zero means the file gave no rate
	if totalDelay > 0 {
		s.fps = 100 * float64(len(g.Image)) / float64(totalDelay)
	}
	s.path = path
	s.opened = true
	return nil
}

func (s *gifVideoSource) IsOpened() bool { return s.opened }

func (s *gifVideoSource) ReadFrame() (*Frame, error) {
	if !s.opened {
		return nil, ErrSourceNotOpen
	}
	if s.cursor >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.cursor]
	s.cursor++
	return f, nil
}

func (s *gifVideoSource) SeekFrame(index int64) error {
	if !s.opened {
		return ErrSourceNotOpen
	}
	if index < 0 || index >= int64(len(s.frames)) {
		return &VideoError{Operation: "gif seek", Details: fmt.Sprintf("frame %d of %d", index, len(s.frames))}
	}
	s.cursor = int(index)
	return nil
}

func (s *gifVideoSource) FrameCount() int64 { return int64(len(s.frames)) }
func (s *gifVideoSource) FPS() float64      { return s.fps }

func (s *gifVideoSource) Close() error {
	s.frames = nil
	s.cursor = 0
	s.fps = 0
	s.opened = false
	return nil
}
