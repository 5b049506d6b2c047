// video_surface.go - Composition root wiring producers, router and render tick

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
	"sync"
	"time"
)

// controlSurface is what command transports need from the surface.
type controlSurface interface {
	Submit(cmd Command) error
	Publish(topic string, payload []byte, origin string) error
	Status() PlaybackStatus
	Topics() *TopicMap
}

// commandTransport is a background command source started after the
// surface and stopped before it.
type commandTransport interface {
	Name() string
	Start() error
	Stop()
}

type VideoSurface struct {
	settings *Settings
	output   VideoOutput

	clock      *SimClock
	images     *ImageState
	sink       *FrameSink
	renderer   *Renderer
	playback   *PlaybackController
	router     *CommandRouter
	dispatcher *CommandDispatcher
	topics     *TopicMap
	status     runtimeStatusStore

	mu         sync.Mutex
	transports []commandTransport
	started    bool
	stopped    bool
}

// NewVideoSurface builds the pipeline for settings. output may be nil when
// the caller drives OnRenderTick itself.
func NewVideoSurface(settings *Settings, output VideoOutput) (*VideoSurface, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	sink, err := NewFrameSink(settings.Width, settings.Height, settings.ResampleFilter)
	if err != nil {
		return nil, err
	}

	vs := &VideoSurface{
		settings: settings,
		output:   output,
		clock:    NewSimClock(),
		images:   NewImageState(),
		sink:     sink,
		topics:   NewTopicMap(settings),
	}
	var tex TextureSink
	if output != nil {
		tex = output
	}
	vs.renderer = NewRenderer(vs.images, sink, tex)

	srcCfg := settings.SourceConfig()
	vs.playback = NewPlaybackController(vs.images, PlaybackConfig{
		Width:           settings.Width,
		Height:          settings.Height,
		Filter:          settings.ResampleFilter,
		FPS:             settings.VideoFPS,
		Loop:            settings.LoopVideo,
		UseWallClock:    settings.UseWallRate,
		BufferAllFrames: settings.BufferAllFrames,
		Paused:          settings.VideoPaused,
		Clock:           vs.clock,
		OpenSource: func(path string) (VideoSource, error) {
			return openVideoSource(path, srcCfg)
		},
	})
	vs.router = NewCommandRouter(vs.images, vs.playback, settings.Width, settings.Height)
	vs.dispatcher = NewCommandDispatcher(vs.router, settings.CommandQueueDepth)
	vs.status.setComponents(vs.playback, vs.images, vs.renderer, vs.clock, vs.router)
	return vs, nil
}

// AddTransport registers a command source. Transports added after Start
// are started immediately.
func (vs *VideoSurface) AddTransport(t commandTransport) error {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.stopped {
		return ErrDispatcherStopped
	}
	if vs.started {
		if err := t.Start(); err != nil {
			return fmt.Errorf("%s: %w", t.Name(), err)
		}
	}
	vs.transports = append(vs.transports, t)
	return nil
}

// Start prepares the texture, applies the default media and launches the
// dispatcher and decode loop, then the transports.
func (vs *VideoSurface) Start() error {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if vs.started {
		return nil
	}

	if vs.output != nil {
		if err := vs.output.SetDisplayConfig(vs.settings.DisplayConfig()); err != nil {
			return err
		}
		if err := vs.output.Resize(vs.settings.Width, vs.settings.Height); err != nil {
			return err
		}
		if err := vs.output.Clear(); err != nil {
			return err
		}
		vs.output.SetHostHooks(vs.hooks())
	}
	vs.sink.Clear()
	vs.applyDefaults()

	vs.dispatcher.Start()
	vs.playback.Start()
	for _, t := range vs.transports {
		if err := t.Start(); err != nil {
			surfaceLog.Errorf("%s transport failed to start: %v", t.Name(), err)
		}
	}
	vs.started = true
	surfaceLog.Infof("surface %dx%d ready, topics %v", vs.settings.Width, vs.settings.Height, vs.topics.Topics())
	return nil
}

// applyDefaults runs the configured default video then image, so a
// default image wins.
func (vs *VideoSurface) applyDefaults() {
	if p := vs.settings.DefaultVideoPath; p != "" {
		if resolved, ok := vs.settings.ResolveMediaPath(p); ok {
			vs.router.SetVideoPath(resolved)
		} else {
			configLog.Warnf("default video %s not found", p)
		}
	}
	if p := vs.settings.DefaultImagePath; p != "" {
		if resolved, ok := vs.settings.ResolveMediaPath(p); ok {
			vs.router.SetImagePath(resolved)
		} else {
			configLog.Warnf("default image %s not found", p)
		}
	}
}

func (vs *VideoSurface) hooks() HostHooks {
	return HostHooks{
		Simulate:         vs.Simulate,
		Render:           func() { vs.OnRenderTick() },
		Submit:           vs.dispatcher.TrySubmit,
		Status:           vs.Status,
		ToggleSimulation: vs.clock.TogglePaused,
	}
}

// OnRenderTick runs the per-frame texture upload.
func (vs *VideoSurface) OnRenderTick() bool {
	return vs.renderer.OnRenderTick()
}

// Simulate advances simulation time by one host step.
func (vs *VideoSurface) Simulate(dt time.Duration) {
	vs.clock.Advance(dt)
}

func (vs *VideoSurface) Submit(cmd Command) error {
	return vs.dispatcher.Submit(cmd)
}

// Publish submits a JSON payload addressed by topic name.
func (vs *VideoSurface) Publish(topic string, payload []byte, origin string) error {
	kind, err := vs.topics.Resolve(topic)
	if err != nil {
		return err
	}
	cmd, err := ParseCommandPayload(kind, payload)
	if err != nil {
		return err
	}
	cmd.Origin = origin
	return vs.dispatcher.Submit(cmd)
}

func (vs *VideoSurface) Status() PlaybackStatus { return vs.status.status() }
func (vs *VideoSurface) Topics() *TopicMap      { return vs.topics }
func (vs *VideoSurface) Clock() *SimClock       { return vs.clock }

// Sink exposes the frame sink. Only safe from the render thread.
func (vs *VideoSurface) Sink() *FrameSink { return vs.sink }

// Stop tears down in order: transports, dispatcher, decode loop, media,
// then the display output.
func (vs *VideoSurface) Stop() {
	vs.mu.Lock()
	if vs.stopped {
		vs.mu.Unlock()
		return
	}
	vs.stopped = true
	var transports []commandTransport
	if vs.started {
		transports = vs.transports
	}
	vs.mu.Unlock()

	for i := len(transports) - 1; i >= 0; i-- {
		transports[i].Stop()
	}
	vs.dispatcher.Stop()
	vs.playback.Stop()
	vs.playback.Close()
	if vs.output != nil {
		if err := vs.output.Close(); err != nil {
			surfaceLog.Warnf("closing output: %v", err)
		}
	}
	surfaceLog.Infof("surface stopped")
}
