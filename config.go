// config.go - YAML configuration, defaults and media path resolution

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
	"strings"

	"gopkg.in/yaml.v3"
)

// Option names match the YAML keys. Pointer fields distinguish a missing
// key from a zero value.
type fileConfig struct {
	Namespace *string `yaml:"namespace"`

	TopicImage       *string `yaml:"topicImage"`
	TopicName        *string `yaml:"topicName"` // older spelling of topicImage
	TopicImagePath   *string `yaml:"topicImagePath"`
	TopicVideoPath   *string `yaml:"topicVideoPath"`
	TopicVideoSeek   *string `yaml:"topicVideoSeek"`
	TopicVideoPaused *string `yaml:"topicVideoPaused"`

	Height                     *int     `yaml:"height"`
	Width                      *int     `yaml:"width"`
	VideoFps                   *float64 `yaml:"videoFps"`
	LoopVideo                  *bool    `yaml:"loopVideo"`
	UseWallRate                *bool    `yaml:"useWallRate"`
	BufferAllFramesForFastSeek *bool    `yaml:"bufferAllFramesForFastSeek"`
	VideoPaused                *bool    `yaml:"videoPaused"`
	DefaultVideoPath           *string  `yaml:"defaultVideoPath"`
	DefaultImagePath           *string  `yaml:"defaultImagePath"`

	ResampleFilter    *string  `yaml:"resampleFilter"`
	VideoBackend      *string  `yaml:"videoBackend"`
	SequenceFps       *float64 `yaml:"sequenceFps"`
	CommandQueueDepth *int     `yaml:"commandQueueDepth"`
	MediaPaths        []string `yaml:"mediaPaths"`
	IPCSocket         *string  `yaml:"ipcSocket"`
	HTTPListen        *string  `yaml:"httpListen"`
	Script            *string  `yaml:"script"`
	Console           *bool    `yaml:"console"`
	LogLevel          *string  `yaml:"logLevel"`

	Display struct {
		Scale       *int  `yaml:"scale"`
		Fullscreen  *bool `yaml:"fullscreen"`
		Headless    *bool `yaml:"headless"`
		RefreshRate *int  `yaml:"refreshRate"`
	} `yaml:"display"`
}

// Settings is the resolved configuration.
type Settings struct {
	Namespace string

	TopicImage       string
	TopicImagePath   string
	TopicVideoPath   string
	TopicVideoSeek   string
	TopicVideoPaused string

	Width           int
	Height          int
	VideoFPS        float64
	LoopVideo       bool
	UseWallRate     bool
	BufferAllFrames bool
	VideoPaused     bool

	DefaultVideoPath string
	DefaultImagePath string

	ResampleFilter    ResampleFilter
	VideoBackend      string
	SequenceFPS       float64
	CommandQueueDepth int
	MediaPaths        []string

	IPCSocket  string
	HTTPListen string
	Script     string
	Console    bool
	LogLevel   string

	Scale       int
	Fullscreen  bool
	Headless    bool
	RefreshRate int

	// Directory relative default paths are tried against first
	BaseDir string
}

func DefaultSettings() *Settings {
	return &Settings{
		TopicImage:        "image_raw",
		TopicImagePath:    "set_image_path",
		TopicVideoPath:    "set_video_path",
		TopicVideoSeek:    "set_video_seek",
		TopicVideoPaused:  "set_video_paused",
		Width:             320,
		Height:            240,
		VideoFPS:          DEFAULT_FPS,
		LoopVideo:         true,
		UseWallRate:       true,
		ResampleFilter:    ResampleBilinear,
		VideoBackend:      "gstreamer",
		CommandQueueDepth: DEFAULT_COMMAND_QUEUE_DEPTH,
		LogLevel:          "info",
		Scale:             2,
		RefreshRate:       60,
	}
}

// LoadSettings reads path, or returns defaults when path is empty.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		s := DefaultSettings()
		s.BaseDir, _ = os.Getwd()
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	s, err := ParseSettings(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSettings decodes YAML and fills in defaults for missing options.
func ParseSettings(data []byte, baseDir string) (*Settings, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	s := DefaultSettings()
	s.BaseDir = baseDir

	if fc.Namespace != nil {
		s.Namespace = *fc.Namespace
	} else {
		configLog.Warnf("missing <namespace>, defaults to \"%s\"", s.Namespace)
	}
	if fc.TopicImage == nil && fc.TopicName != nil {
		fc.TopicImage = fc.TopicName
	}
	setString(&s.TopicImage, fc.TopicImage, "topicImage")
	setString(&s.TopicImagePath, fc.TopicImagePath, "topicImagePath")
	setString(&s.TopicVideoPath, fc.TopicVideoPath, "topicVideoPath")
	setString(&s.TopicVideoSeek, fc.TopicVideoSeek, "topicVideoSeek")
	setString(&s.TopicVideoPaused, fc.TopicVideoPaused, "topicVideoPaused")

	if fc.Height != nil {
		s.Height = *fc.Height
	} else {
		configLog.Warnf("missing <height>, defaults to %d", s.Height)
	}
	if fc.Width != nil {
		s.Width = *fc.Width
	} else {
		configLog.Warnf("missing <width>, defaults to %d", s.Width)
	}
	if fc.VideoFps != nil {
		s.VideoFPS = *fc.VideoFps
	} else {
		configLog.Warnf("missing <videoFps>, defaults to %.0f", s.VideoFPS)
	}
	setBool(&s.LoopVideo, fc.LoopVideo, "loopVideo")
	setBool(&s.UseWallRate, fc.UseWallRate, "useWallRate")
	setBool(&s.BufferAllFrames, fc.BufferAllFramesForFastSeek, "bufferAllFramesForFastSeek")
	setBool(&s.VideoPaused, fc.VideoPaused, "videoPaused")
	setString(&s.DefaultVideoPath, fc.DefaultVideoPath, "defaultVideoPath")
	setString(&s.DefaultImagePath, fc.DefaultImagePath, "defaultImagePath")

	if fc.ResampleFilter != nil {
		f, err := ParseResampleFilter(*fc.ResampleFilter)
		if err != nil {
			return nil, err
		}
		s.ResampleFilter = f
	}
	if fc.VideoBackend != nil {
		s.VideoBackend = *fc.VideoBackend
	}
	if fc.SequenceFps != nil {
		s.SequenceFPS = *fc.SequenceFps
	}
	if fc.CommandQueueDepth != nil {
		s.CommandQueueDepth = *fc.CommandQueueDepth
	}
	if fc.MediaPaths != nil {
		s.MediaPaths = fc.MediaPaths
	}
	// Transport and logging keys are opt-in and default silently.
	optString(&s.IPCSocket, fc.IPCSocket)
	optString(&s.HTTPListen, fc.HTTPListen)
	optString(&s.Script, fc.Script)
	optString(&s.LogLevel, fc.LogLevel)
	if fc.Console != nil {
		s.Console = *fc.Console
	}

	if fc.Display.Scale != nil {
		s.Scale = *fc.Display.Scale
	}
	if fc.Display.Fullscreen != nil {
		s.Fullscreen = *fc.Display.Fullscreen
	}
	if fc.Display.Headless != nil {
		s.Headless = *fc.Display.Headless
	}
	if fc.Display.RefreshRate != nil {
		s.RefreshRate = *fc.Display.RefreshRate
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func setString(dst *string, v *string, name string) {
	if v == nil {
		configLog.Warnf("missing <%s>, defaults to %q", name, *dst)
		return
	}
	*dst = *v
}

func optString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool, name string) {
	if v == nil {
		configLog.Warnf("missing <%s>, defaults to %t", name, *dst)
		return
	}
	*dst = *v
}

// Validate rejects values the surface cannot run with.
func (s *Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid texture size %dx%d", s.Width, s.Height)
	}
	switch s.VideoBackend {
	case "gstreamer", "gif", "sequence":
	default:
		return fmt.Errorf("unknown videoBackend %q", s.VideoBackend)
	}
	if s.CommandQueueDepth <= 0 {
		return fmt.Errorf("commandQueueDepth must be positive, got %d", s.CommandQueueDepth)
	}
	if s.SequenceFPS < 0 {
		return fmt.Errorf("sequenceFps must not be negative, got %v", s.SequenceFPS)
	}
	if s.RefreshRate <= 0 {
		return fmt.Errorf("display refreshRate must be positive, got %d", s.RefreshRate)
	}
	for _, topic := range []string{s.TopicImage, s.TopicImagePath, s.TopicVideoPath, s.TopicVideoSeek, s.TopicVideoPaused} {
		if strings.Trim(topic, "/") == "" {
			return fmt.Errorf("topic names must not be empty")
		}
	}
	return nil
}

// ResolveMediaPath locates a configured default path. It strips a file://
// prefix, keeps absolute paths and tries relative ones against the config
// directory and then every media path.
func (s *Settings) ResolveMediaPath(p string) (string, bool) {
	p = strings.TrimPrefix(p, "file://")
	if p == "" {
		return "", false
	}
	if filepath.IsAbs(p) {
		_, err := os.Stat(p)
		return p, err == nil
	}
	dirs := append([]string{s.BaseDir}, s.MediaPaths...)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) && s.BaseDir != "" {
			dir = filepath.Join(s.BaseDir, dir)
		}
		candidate := filepath.Join(dir, p)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return p, false
}

// SourceConfig returns the decoder settings.
func (s *Settings) SourceConfig() SourceConfig {
	return SourceConfig{Backend: s.VideoBackend, SequenceFPS: s.SequenceFPS}
}

// DisplayConfig returns the window settings for the texture size.
func (s *Settings) DisplayConfig() DisplayConfig {
	return DisplayConfig{
		Width:       s.Width,
		Height:      s.Height,
		Scale:       ClampScale(s.Scale),
		RefreshRate: s.RefreshRate,
		PixelFormat: PixelFormatRGBA,
		VSync:       true,
		Fullscreen:  s.Fullscreen,
		Title:       "Video Surface",
	}
}
