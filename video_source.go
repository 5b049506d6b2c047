// video_source.go - Video decoder abstraction and backend selection

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
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// VideoSource is a decoder positioned on one media file. ReadFrame returns
// io.EOF once the stream is exhausted.
type VideoSource interface {
	Open(path string) error
	IsOpened() bool
	ReadFrame() (*Frame, error)
	SeekFrame(index int64) error
	FrameCount() int64
	FPS() float64
	Close() error
}

type SourceConfig struct {
	Backend     string  // default decoder for files that are not gif or a directory
	SequenceFPS float64 // nominal rate for image sequences, 0 if unknown
}

type videoSourceFactory func(cfg SourceConfig) VideoSource

var videoBackends = map[string]videoSourceFactory{}

func registerVideoBackend(name string, factory videoSourceFactory) {
	videoBackends[name] = factory
	compiledFeatures = append(compiledFeatures, "video:"+name)
}

func videoBackendNames() []string {
	names := make([]string, 0, len(videoBackends))
	for name := range videoBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// backendForPath picks the decoder for path. Directories are image
// sequences and .gif files use the built-in decoder; everything else goes
// to the configured backend.
func backendForPath(path string, cfg SourceConfig) string {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return "sequence"
	}
	if strings.EqualFold(filepath.Ext(path), ".gif") {
		return "gif"
	}
	if cfg.Backend == "" {
		return "gstreamer"
	}
	return cfg.Backend
}

// openVideoSource returns an opened decoder for path.
func openVideoSource(path string, cfg SourceConfig) (VideoSource, error) {
	name := backendForPath(path, cfg)
	factory, ok := videoBackends[name]
	if !ok {
		return nil, &VideoError{
			Operation: "source open",
			Details:   fmt.Sprintf("backend %q not compiled in (have %s)", name, strings.Join(videoBackendNames(), ", ")),
		}
	}
	src := factory(cfg)
	if err := src.Open(path); err != nil {
		return nil, err
	}
	if !src.IsOpened() {
		return nil, &VideoError{Operation: "source open", Details: path, Err: ErrSourceNotOpen}
	}
	playbackLog.Debugf("opened %s with %s backend (%d frames, %.2f fps)", path, name, src.FrameCount(), src.FPS())
	return src, nil
}
