// video_source_sequence.go - Directory of still images played as a clip

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
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func init() {
	registerVideoBackend("sequence", func(cfg SourceConfig) VideoSource {
		return &sequenceVideoSource{fps: cfg.SequenceFPS}
	})
}

// sequenceVideoSource decodes one file per ReadFrame, in lexical order.
type sequenceVideoSource struct {
	dir    string
	files  []string
	fps    float64
	cursor int
	opened bool
}

func (s *sequenceVideoSource) Open(dir string) error {
	s.Close()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &VideoError{Operation: "sequence open", Details: dir, Err: err}
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if isStillImagePath(name) || strings.EqualFold(filepath.Ext(name), ".gif") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	if len(files) == 0 {
		return &VideoError{Operation: "sequence open", Details: dir + ": no image files"}
	}
	sort.Strings(files)
	s.dir = dir
	s.files = files
	s.opened = true
	return nil
}

func (s *sequenceVideoSource) IsOpened() bool { return s.opened }

func (s *sequenceVideoSource) ReadFrame() (*Frame, error) {
	if !s.opened {
		return nil, ErrSourceNotOpen
	}
	if s.cursor >= len(s.files) {
		return nil, io.EOF
	}
	f, err := LoadImageFile(s.files[s.cursor])
	if err != nil {
		return nil, err
	}
	f.Index = int64(s.cursor)
	s.cursor++
	return f, nil
}

func (s *sequenceVideoSource) SeekFrame(index int64) error {
	if !s.opened {
		return ErrSourceNotOpen
	}
	if index < 0 || index >= int64(len(s.files)) {
		return &VideoError{Operation: "sequence seek", Details: fmt.Sprintf("frame %d of %d", index, len(s.files))}
	}
	s.cursor = int(index)
	return nil
}

func (s *sequenceVideoSource) FrameCount() int64 { return int64(len(s.files)) }
func (s *sequenceVideoSource) FPS() float64      { return s.fps }

func (s *sequenceVideoSource) Close() error {
	s.files = nil
	s.cursor = 0
	s.opened = false
	return nil
}
