// playback_controller.go - Decode loop for video playback

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
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoSeek marks the absence of a pending seek request.
const NoSeek = -1.0

// PlaybackState is the mutable video control state, guarded by the
// controller mutex.
type PlaybackState struct {
	VideoPath       string
	Paused          bool
	Stopped         bool
	Loop            bool
	FPS             float64 // configured rate, <= 0 adopts the file's native rate
	UseWallClock    bool
	SeekRequest     float64
	BufferAllFrames bool
}

func (s PlaybackState) HasSeek() bool {
	return s.SeekRequest >= 0 && s.SeekRequest <= 1
}

type PlaybackConfig struct {
	Width           int
	Height          int
	Filter          ResampleFilter
	FPS             float64
	Loop            bool
	UseWallClock    bool
	BufferAllFrames bool
	Paused          bool
	Clock           *SimClock
	OpenSource      func(path string) (VideoSource, error)
}

// PlaybackController owns the video source and turns it into frames on a
// fixed cadence. Frames are computed under the controller mutex and
// published to ImageState after it is released.
type PlaybackController struct {
	mu         sync.Mutex
	state      PlaybackState
	newVideo   bool
	generation uint64
	sessionID  string
	source     VideoSource
	buffer     FrameBuffer
	produced   uint64
	lastIndex  int64
	nativeFPS  float64
	activeFPS  float64

	images     *ImageState
	width      int
	height     int
	filter     ResampleFilter
	openSource func(path string) (VideoSource, error)

	wall *WallRate
	sim  *SimRate

	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

func NewPlaybackController(images *ImageState, cfg PlaybackConfig) *PlaybackController {
	clock := cfg.Clock
	if clock == nil {
		clock = NewSimClock()
	}
	open := cfg.OpenSource
	if open == nil {
		open = func(path string) (VideoSource, error) {
			return openVideoSource(path, SourceConfig{})
		}
	}
	active := cfg.FPS
	if active <= 0 {
		active = DEFAULT_FPS
	}
	return &PlaybackController{
		state: PlaybackState{
			Paused:          cfg.Paused,
			Stopped:         true,
			Loop:            cfg.Loop,
			FPS:             cfg.FPS,
			UseWallClock:    cfg.UseWallClock,
			SeekRequest:     NoSeek,
			BufferAllFrames: cfg.BufferAllFrames,
		},
		lastIndex:  -1,
		activeFPS:  active,
		images:     images,
		width:      cfg.Width,
		height:     cfg.Height,
		filter:     cfg.Filter,
		openSource: open,
		wall:       NewWallRate(active),
		sim:        NewSimRate(clock, active),
	}
}

// Advance runs one decode tick.
func (pc *PlaybackController) Advance() {
	frame, gen := pc.step()
	if frame != nil {
		pc.images.Publish(gen, frame)
	}
}

func (pc *PlaybackController) step() (*Frame, uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.state.Stopped {
		return nil, 0
	}
	gen := pc.generation

	var out *Frame
	if pc.newVideo && pc.state.VideoPath != "" {
		out = NewBlankFrame(pc.width, pc.height)
		pc.openLocked()
	}

	if pc.state.BufferAllFrames && pc.buffer.Len() > 0 {
		if f := pc.stepBufferedLocked(); f != nil {
			out = f
		}
	} else if pc.source != nil && pc.source.IsOpened() {
		if f := pc.stepLiveLocked(); f != nil {
			out = f
		}
	}
	return out, gen
}

func (pc *PlaybackController) openLocked() {
	pc.newVideo = false
	pc.closeSourceLocked()
	pc.buffer.Reset()
	pc.lastIndex = -1
	pc.nativeFPS = 0
	pc.sessionID = uuid.NewString()

	path := pc.state.VideoPath
	src, err := pc.openSource(path)
	if err != nil {
		playbackLog.Errorf("cannot open video %s: %v", path, err)
		return
	}
	pc.source = src
	pc.nativeFPS = src.FPS()
	if pc.state.FPS <= 0 {
		if pc.nativeFPS > 0 {
			pc.setRateLocked(pc.nativeFPS)
		} else {
			playbackLog.Warnf("%s reports no frame rate, keeping %.2f fps", path, pc.activeFPS)
		}
	}
	playbackLog.Infof("playing %s at %.2f fps (session %s)", path, pc.activeFPS, pc.sessionID)

	if pc.state.BufferAllFrames {
		pc.bufferAllLocked()
	}
}

func (pc *PlaybackController) bufferAllLocked() {
	start := time.Now()
	for {
		f, err := pc.source.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				playbackLog.Warnf("buffering stopped at frame %d: %v", pc.buffer.Len(), err)
			}
			break
		}
		if !f.valid() {
			continue
		}
		pc.buffer.Append(ResizeFrame(f, pc.width, pc.height, pc.filter))
	}
	playbackLog.Infof("buffered %d frames (%d MiB) in %v", pc.buffer.Len(), pc.buffer.Bytes()>>20, time.Since(start).Round(time.Millisecond))
}

func (pc *PlaybackController) stepBufferedLocked() *Frame {
	seeked := false
	if pc.state.HasSeek() {
		idx := pc.buffer.SeekFraction(pc.state.SeekRequest)
		playbackLog.Debugf("seek %.3f -> buffered frame %d/%d", pc.state.SeekRequest, idx, pc.buffer.Len())
		pc.state.SeekRequest = NoSeek
		seeked = true
	}
	if pc.buffer.AtEnd() {
		pc.buffer.Rewind()
		if !pc.state.Loop {
			pc.stopLocked("end of buffered video")
			pc.buffer.Reset()
			return NewBlankFrame(pc.width, pc.height)
		}
	}
	if seeked || !pc.state.Paused {
		f := pc.buffer.Next()
		pc.lastIndex = int64(pc.buffer.Cursor() - 1)
		pc.produced++
		return f
	}
	return nil
}

func (pc *PlaybackController) stepLiveLocked() *Frame {
	seeked := false
	if pc.state.HasSeek() {
		count := pc.source.FrameCount()
		target := int64(pc.state.SeekRequest * float64(count))
		if count > 0 && target >= count {
			target = count - 1
		}
		if err := pc.source.SeekFrame(target); err != nil {
			playbackLog.Warnf("seek to frame %d failed: %v", target, err)
		} else {
			playbackLog.Debugf("seek %.3f -> frame %d/%d", pc.state.SeekRequest, target, count)
		}
		pc.state.SeekRequest = NoSeek
		seeked = true
	}
	if !seeked && pc.state.Paused {
		return nil
	}

	f, err := pc.source.ReadFrame()
	if err == nil && f.valid() {
		pc.lastIndex = f.Index
		pc.produced++
		return f
	}
	if err == nil || errors.Is(err, io.EOF) {
		playbackLog.Debugf("end of %s", pc.state.VideoPath)
	} else {
		playbackLog.Warnf("decode failed on %s: %v", pc.state.VideoPath, err)
	}

	if pc.state.Loop {
		pc.reopenLocked()
		return nil
	}
	pc.stopLocked("end of video")
	return NewBlankFrame(pc.width, pc.height)
}

func (pc *PlaybackController) reopenLocked() {
	pc.closeSourceLocked()
	src, err := pc.openSource(pc.state.VideoPath)
	if err != nil {
		playbackLog.Errorf("cannot reopen %s for loop: %v", pc.state.VideoPath, err)
		return
	}
	pc.source = src
	pc.lastIndex = -1
}

func (pc *PlaybackController) stopLocked(reason string) {
	pc.state.Stopped = true
	playbackLog.Infof("stopped %s: %s", pc.state.VideoPath, reason)
}

func (pc *PlaybackController) closeSourceLocked() {
	if pc.source == nil {
		return
	}
	if err := pc.source.Close(); err != nil {
		playbackLog.Warnf("closing source: %v", err)
	}
	pc.source = nil
}

func (pc *PlaybackController) setRateLocked(fps float64) {
	pc.activeFPS = fps
	pc.wall.SetFPS(fps)
	pc.sim.SetFPS(fps)
}

func (pc *PlaybackController) rate() Rate {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.state.UseWallClock {
		return pc.wall
	}
	return pc.sim
}

// setVideoPath schedules path to be opened on the next tick. An empty path
// stops playback. gen is the ImageState generation that frames from this
// controller must carry.
func (pc *PlaybackController) setVideoPath(path string, gen uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.state.VideoPath = path
	pc.generation = gen
	if path == "" {
		pc.state.Stopped = true
		pc.newVideo = false
		return
	}
	pc.state.Stopped = false
	pc.newVideo = true
}

func (pc *PlaybackController) forceStop() {
	pc.mu.Lock()
	pc.state.Stopped = true
	pc.mu.Unlock()
}

func (pc *PlaybackController) requestSeek(fraction float64) {
	pc.mu.Lock()
	pc.state.SeekRequest = fraction
	pc.mu.Unlock()
}

// setPaused applies the pause flag only while a video is active.
func (pc *PlaybackController) setPaused(paused bool) bool {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if pc.state.Stopped {
		return false
	}
	pc.state.Paused = paused
	return true
}

// State returns a copy of the control state.
func (pc *PlaybackController) State() PlaybackState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.state
}

func (pc *PlaybackController) Status() PlaybackStatus {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	st := PlaybackStatus{
		Path:           pc.state.VideoPath,
		SessionID:      pc.sessionID,
		Paused:         pc.state.Paused,
		Loop:           pc.state.Loop,
		WallClock:      pc.state.UseWallClock,
		Buffered:       pc.buffer.Len(),
		Frame:          pc.lastIndex,
		FPS:            pc.activeFPS,
		NativeFPS:      pc.nativeFPS,
		FramesProduced: pc.produced,
	}
	switch {
	case pc.state.Stopped:
		st.State = "stopped"
	case pc.state.Paused:
		st.State = "paused"
	default:
		st.State = "playing"
	}
	if pc.buffer.Len() > 0 {
		st.FrameCount = int64(pc.buffer.Len())
	} else if pc.source != nil {
		st.FrameCount = pc.source.FrameCount()
	}
	if st.FrameCount > 1 && st.Frame >= 0 {
		st.Position = math.Min(1, float64(st.Frame)/float64(st.FrameCount-1))
	}
	return st
}

// Start launches the decode loop.
func (pc *PlaybackController) Start() {
	pc.mu.Lock()
	if pc.running {
		pc.mu.Unlock()
		return
	}
	pc.running = true
	pc.stopCh = make(chan struct{})
	pc.done = make(chan struct{})
	stop, done := pc.stopCh, pc.done
	pc.mu.Unlock()

	go pc.run(stop, done)
}

func (pc *PlaybackController) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}
		pc.Advance()
		if !pc.rate().Sleep(stop) {
			return
		}
	}
}

// Stop signals the decode loop and waits for it to exit.
func (pc *PlaybackController) Stop() {
	pc.mu.Lock()
	if !pc.running {
		pc.mu.Unlock()
		return
	}
	pc.running = false
	close(pc.stopCh)
	done := pc.done
	pc.mu.Unlock()
	<-done
}

// Close releases the media handle. Call after Stop.
func (pc *PlaybackController) Close() {
	pc.mu.Lock()
	pc.closeSourceLocked()
	pc.buffer.Reset()
	pc.mu.Unlock()
}
