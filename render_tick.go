// render_tick.go - Per-frame hand-off from ImageState to the texture

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

import "sync/atomic"

// Renderer runs on the host render thread. It never touches the playback
// lock, so a slow decode cannot stall a rendered frame.
type Renderer struct {
	images *ImageState
	sink   *FrameSink
	output TextureSink
	width  int
	height int

	rendered atomic.Uint64
	failed   atomic.Uint64
}

func NewRenderer(images *ImageState, sink *FrameSink, output TextureSink) *Renderer {
	w, h := sink.Dimensions()
	return &Renderer{images: images, sink: sink, output: output, width: w, height: h}
}

// OnRenderTick uploads the pending frame, if any, and reports whether the
// texture changed.
func (r *Renderer) OnRenderTick() bool {
	frame, ok := r.images.ConsumeIfDirty()
	if !ok {
		return false
	}
	if frame.Blank {
		r.sink.Clear()
		if r.output != nil {
			if err := r.output.Clear(); err != nil {
				surfaceLog.Warnf("clearing texture: %v", err)
			}
		}
		r.rendered.Add(1)
		return true
	}
	if err := r.sink.WriteFrame(frame.Pix, frame.Width, frame.Height); err != nil {
		r.failed.Add(1)
		surfaceLog.Warnf("dropping %s: %v", frame, err)
		return false
	}
	if r.output != nil {
		if err := r.output.WriteFrame(r.sink.Pixels()); err != nil {
			surfaceLog.Warnf("uploading %s: %v", frame, err)
		}
	}
	r.rendered.Add(1)
	return true
}

func (r *Renderer) Rendered() uint64 { return r.rendered.Load() }

func (r *Renderer) Dimensions() (int, int) { return r.width, r.height }
