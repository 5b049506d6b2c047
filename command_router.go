// command_router.go - Applies control commands to image and playback state

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
	"math"
	"sync"
)

// CommandRouter is the only writer of control state. Its handlers take
// one lock at a time: the ImageState lock for publishing and the playback
// lock for video control.
type CommandRouter struct {
	images   *ImageState
	playback *PlaybackController
	width    int
	height   int

	loadImage  func(path string) (*Frame, error)
	decodeLive func(msg *LiveImage) (*Frame, error)

	mu        sync.Mutex
	imagePath string
}

func NewCommandRouter(images *ImageState, playback *PlaybackController, width, height int) *CommandRouter {
	return &CommandRouter{
		images:     images,
		playback:   playback,
		width:      width,
		height:     height,
		loadImage:  LoadImageFile,
		decodeLive: DecodeLiveImage,
	}
}

// SetImagePath shows a still image and stops any video. An empty path or a
// file that fails to decode clears the display.
func (r *CommandRouter) SetImagePath(path string) {
	var frame *Frame
	if path != "" {
		f, err := r.loadImage(path)
		if err != nil {
			routerLog.Errorf("cannot show image %s: %v", path, err)
		} else {
			frame = f
		}
	}
	if frame == nil {
		frame = NewBlankFrame(r.width, r.height)
	}

	gen := r.images.Claim()
	r.images.Publish(gen, frame)
	r.playback.forceStop()
	r.setImagePath(path)
	routerLog.Infof("image path set to %q", path)
}

// SetVideoPath queues path for playback. An empty path stops playback and
// clears the display.
func (r *CommandRouter) SetVideoPath(path string) {
	gen := r.images.Claim()
	if path == "" {
		r.images.Publish(gen, NewBlankFrame(r.width, r.height))
	}
	r.playback.setVideoPath(path, gen)
	r.setImagePath("")
	routerLog.Infof("video path set to %q", path)
}

// SetVideoSeek requests a seek to a fraction of the clip. NoSeek cancels a
// pending request; anything else outside [0,1] is ignored.
func (r *CommandRouter) SetVideoSeek(fraction float64) {
	if fraction == NoSeek {
		r.playback.requestSeek(NoSeek)
		return
	}
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		routerLog.Warnf("ignoring seek %v: %v", fraction, ErrBadSeek)
		return
	}
	r.playback.requestSeek(fraction)
	routerLog.Debugf("seek requested to %.3f", fraction)
}

func (r *CommandRouter) SetVideoPaused(paused bool) {
	if !r.playback.setPaused(paused) {
		routerLog.Debugf("ignoring pause=%t: no video playing", paused)
		return
	}
	routerLog.Infof("video paused=%t", paused)
}

// SetLiveFrame shows a frame pushed over the image topic and stops any video.
func (r *CommandRouter) SetLiveFrame(msg *LiveImage) {
	frame, err := r.decodeLive(msg)
	if err != nil {
		routerLog.Warnf("dropping live image: %v", err)
		return
	}
	gen := r.images.Claim()
	r.images.Publish(gen, frame)
	r.playback.forceStop()
	r.setImagePath("")
}

// Dispatch routes cmd to its handler.
func (r *CommandRouter) Dispatch(cmd Command) {
	switch cmd.Kind {
	case CommandSetImage:
		r.SetLiveFrame(cmd.Live)
	case CommandSetImagePath:
		r.SetImagePath(cmd.Path)
	case CommandSetVideoPath:
		r.SetVideoPath(cmd.Path)
	case CommandSetVideoSeek:
		r.SetVideoSeek(cmd.Fraction)
	case CommandSetVideoPaused:
		r.SetVideoPaused(cmd.Paused)
	default:
		routerLog.Warnf("unhandled command %s", cmd)
	}
}

func (r *CommandRouter) setImagePath(path string) {
	r.mu.Lock()
	r.imagePath = path
	r.mu.Unlock()
}

func (r *CommandRouter) ImagePath() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.imagePath
}
