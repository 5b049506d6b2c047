//go:build !headless

// video_source_gst.go - GStreamer decoder for container formats

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
	"path/filepath"
	"regexp"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"
)

const gstPrerollTimeout = 5 * time.Second

var gstInitOnce sync.Once

func init() {
	registerVideoBackend("gstreamer", func(SourceConfig) VideoSource { return &gstVideoSource{} })
}

// gstVideoSource pulls RGBA samples from filesrc ! decodebin ! videoconvert ! appsink.
type gstVideoSource struct {
	path     string
	session  string
	pipeline *gst.Pipeline
	sink     *app.Sink
	width    int
	height   int
	fps      float64
	frames   int64
	next     int64
	opened   bool
}

func (s *gstVideoSource) Open(path string) error {
	s.Close()
	gstInitOnce.Do(func() { gst.Init(nil) })

	abs, err := filepath.Abs(path)
	if err != nil {
		return &VideoError{Operation: "gst open", Details: path, Err: err}
	}
	if err := s.buildPipeline(abs); err != nil {
		return err
	}
	if err := s.preroll(); err != nil {
		s.pipeline.SetState(gst.StateNull)
		s.pipeline = nil
		return &VideoError{Operation: "gst open", Details: path, Err: err}
	}
	if err := s.pipeline.SetState(gst.StatePlaying); err != nil {
		s.pipeline.SetState(gst.StateNull)
		s.pipeline = nil
		return &VideoError{Operation: "gst play", Details: path, Err: err}
	}
	s.path = path
	s.session = uuid.NewString()
	s.opened = true
	gstLog.Infof("opened %s: %dx%d, %.3f fps, %d frames", path, s.width, s.height, s.fps, s.frames)
	return nil
}

func (s *gstVideoSource) buildPipeline(path string) error {
	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "create", Err: err}
	}
	filesrc, err := gst.NewElement("filesrc")
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "filesrc", Err: err}
	}
	filesrc.SetProperty("location", path)
	decodebin, err := gst.NewElement("decodebin")
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "decodebin", Err: err}
	}
	converter, err := gst.NewElement("videoconvert")
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "videoconvert", Err: err}
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "capsfilter", Err: err}
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString("video/x-raw,format=RGBA"))

	sink, err := app.NewAppSink()
	if err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "appsink", Err: err}
	}
	// Pull model: the decode loop sets the pace, so no clock sync and no dropping
	sink.SetProperty("sync", false)
	sink.SetProperty("max-buffers", 2)
	sink.SetProperty("drop", false)

	pipeline.AddMany(filesrc, decodebin, converter, capsfilter, sink.Element)
	if err := filesrc.Link(decodebin); err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "link filesrc", Err: err}
	}
	if err := gst.ElementLinkMany(converter, capsfilter, sink.Element); err != nil {
		return &VideoError{Operation: "gst pipeline", Details: "link converter", Err: err}
	}

	// decodebin exposes pads once the container is parsed; take the first video one
	decodebin.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		sinkPad := converter.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			gstLog.Debugf("skipping decodebin pad %s: %v", srcPad.GetName(), ret)
		}
	})

	s.pipeline = pipeline
	s.sink = sink
	return nil
}

// preroll pauses the pipeline until the first frame is negotiated and
// reads geometry and rate from its caps.
func (s *gstVideoSource) preroll() error {
	if err := s.pipeline.SetState(gst.StatePaused); err != nil {
		return err
	}
	bus := s.pipeline.GetPipelineBus()
	deadline := time.Now().Add(gstPrerollTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("preroll timed out after %v", gstPrerollTimeout)
		}
		msg := bus.TimedPop(remaining)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageError:
			gerr := msg.ParseError()
			return fmt.Errorf("%s (%s)", gerr.Error(), gerr.DebugString())
		case gst.MessageEOS:
			return fmt.Errorf("stream has no video frames")
		case gst.MessageAsyncDone:
			sample := s.sink.PullPreroll()
			if sample == nil {
				return fmt.Errorf("no preroll sample")
			}
			w, h, fps, err := parseVideoCaps(sample.GetCaps().String())
			if err != nil {
				return err
			}
			s.width, s.height, s.fps = w, h, fps
			if ok, dur := s.pipeline.QueryDuration(gst.FormatTime); ok && dur > 0 && fps > 0 {
				s.frames = int64(float64(dur) / float64(time.Second) * fps)
			}
			return nil
		}
	}
}

var (
	capsWidthRe     = regexp.MustCompile(`width=\(int\)(\d+)`)
	capsHeightRe    = regexp.MustCompile(`height=\(int\)(\d+)`)
	capsFramerateRe = regexp.MustCompile(`framerate=\(fraction\)(\d+)/(\d+)`)
)

// parseVideoCaps extracts geometry and frame rate from a serialized caps string.
func parseVideoCaps(caps string) (width, height int, fps float64, err error) {
	wm := capsWidthRe.FindStringSubmatch(caps)
	hm := capsHeightRe.FindStringSubmatch(caps)
	if wm == nil || hm == nil {
		return 0, 0, 0, fmt.Errorf("caps without geometry: %s", caps)
	}
	width, _ = strconv.Atoi(wm[1])
	height, _ = strconv.Atoi(hm[1])
	if fm := capsFramerateRe.FindStringSubmatch(caps); fm != nil {
		num, _ := strconv.ParseFloat(fm[1], 64)
		den, _ := strconv.ParseFloat(fm[2], 64)
		if den > 0 {
			fps = num / den
		}
	}
	return width, height, fps, nil
}

func (s *gstVideoSource) IsOpened() bool { return s.opened }

func (s *gstVideoSource) ReadFrame() (*Frame, error) {
	if !s.opened {
		return nil, ErrSourceNotOpen
	}
	sample := s.sink.PullSample()
	if sample == nil {
		if s.sink.IsEOS() {
			return nil, io.EOF
		}
		return nil, &VideoError{Operation: "gst read", Details: s.path + ": no sample"}
	}
	buffer := sample.GetBuffer()
	if buffer == nil {
		return nil, &VideoError{Operation: "gst read", Details: s.path + ": empty sample"}
	}

	mapInfo := buffer.Map(gst.MapRead)
	data := mapInfo.Bytes()
	need := s.width * s.height * BYTES_PER_PIXEL
	if len(data) < need {
		buffer.Unmap()
		return nil, &VideoError{Operation: "gst read", Details: fmt.Sprintf("short buffer %d < %d", len(data), need)}
	}
	pix := make([]byte, need)
	copy(pix, data)
	buffer.Unmap()

	idx := s.next
	s.next++
	return &Frame{
		Width:   s.width,
		Height:  s.height,
		Pix:     pix,
		Index:   idx,
		TraceID: fmt.Sprintf("%s/%d", s.session, idx),
	}, nil
}

func (s *gstVideoSource) SeekFrame(index int64) error {
	if !s.opened {
		return ErrSourceNotOpen
	}
	if index < 0 || s.fps <= 0 {
		return &VideoError{Operation: "gst seek", Details: fmt.Sprintf("frame %d at %.3f fps", index, s.fps)}
	}
	pos := time.Duration(float64(index) / s.fps * float64(time.Second))
	if !s.pipeline.SeekSimple(int64(pos), gst.FormatTime, gst.SeekFlagFlush|gst.SeekFlagAccurate) {
		return &VideoError{Operation: "gst seek", Details: fmt.Sprintf("frame %d (%v)", index, pos)}
	}
	s.next = index
	return nil
}

func (s *gstVideoSource) FrameCount() int64 { return s.frames }
func (s *gstVideoSource) FPS() float64      { return s.fps }

func (s *gstVideoSource) Close() error {
	if s.pipeline != nil {
		if err := s.pipeline.SetState(gst.StateNull); err != nil {
			gstLog.Warnf("stopping pipeline for %s: %v", s.path, err)
		}
	}
	s.pipeline = nil
	s.sink = nil
	s.frames = 0
	s.next = 0
	s.fps = 0
	s.opened = false
	return nil
}
