// image_loader.go - Still image and live image decoding

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
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// LoadImageFile decodes a still image from disk into a packed RGBA frame.
func LoadImageFile(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &VideoError{Operation: "image load", Details: path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &VideoError{Operation: "image decode", Details: path, Err: err}
	}
	frame := FrameFromImage(img)
	frame.TraceID = uuid.NewString()
	surfaceLog.Debugf("decoded %s image %s (%dx%d)", format, path, frame.Width, frame.Height)
	return frame, nil
}

var stillImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// isStillImagePath reports whether path names a single-picture format.
// GIF is treated as video since it may be animated.
func isStillImagePath(path string) bool {
	return stillImageExts[strings.ToLower(filepath.Ext(path))]
}

// LiveImage is a raw image message pushed onto the image topic.
type LiveImage struct {
	Width    int    `json:"width" msgpack:"width"`
	Height   int    `json:"height" msgpack:"height"`
	Encoding string `json:"encoding" msgpack:"encoding"`
	Step     int    `json:"step,omitempty" msgpack:"step,omitempty"`
	Data     []byte `json:"data" msgpack:"data"`
	FrameID  string `json:"frame_id,omitempty" msgpack:"frame_id,omitempty"`
}

// Raw encodings and their bytes per pixel
// MAX_LIVE_DIMENSION bounds live image width and height.
const MAX_LIVE_DIMENSION = 1 << 14

var liveEncodings = map[string]int{
	"rgb8":  3,
	"bgr8":  3,
	"rgba8": 4,
	"bgra8": 4,
	"mono8": 1,
}

// DecodeLiveImage converts a live image message into a packed RGBA frame.
func DecodeLiveImage(msg *LiveImage) (*Frame, error) {
	if msg == nil {
		return nil, &VideoError{Operation: "live image decode", Details: "nil message"}
	}
	enc := strings.ToLower(msg.Encoding)
	switch enc {
	case "png", "jpeg", "jpg":
		img, _, err := image.Decode(bytes.NewReader(msg.Data))
		if err != nil {
			return nil, &VideoError{Operation: "live image decode", Details: enc, Err: err}
		}
		return withTrace(FrameFromImage(img), msg.FrameID), nil
	}

	bpp, ok := liveEncodings[enc]
	if !ok {
		return nil, &VideoError{Operation: "live image decode", Details: msg.Encoding, Err: ErrUnsupportedEncoding}
	}
	w, h := msg.Width, msg.Height
	if w <= 0 || h <= 0 || w > MAX_LIVE_DIMENSION || h > MAX_LIVE_DIMENSION {
		return nil, &VideoError{Operation: "live image decode", Details: fmt.Sprintf("invalid dimensions %dx%d", w, h)}
	}
	step := msg.Step
	if step == 0 {
		step = w * bpp
	}
	if step < w*bpp {
		return nil, &VideoError{Operation: "live image decode", Details: fmt.Sprintf("step %d shorter than row %d", step, w*bpp)}
	}
	if h > 1 && step > (math.MaxInt-w*bpp)/(h-1) {
		return nil, &VideoError{Operation: "live image decode", Details: fmt.Sprintf("step %d too large for %d rows", step, h)}
	}
	if need := step*(h-1) + w*bpp; len(msg.Data) < need {
		return nil, &VideoError{Operation: "live image decode", Details: fmt.Sprintf("need %d bytes, got %d", need, len(msg.Data))}
	}

	pix := make([]byte, w*h*BYTES_PER_PIXEL)
	for y := 0; y < h; y++ {
		row := msg.Data[y*step:]
		out := pix[y*w*BYTES_PER_PIXEL:]
		for x := 0; x < w; x++ {
			in := row[x*bpp:]
			o := out[x*BYTES_PER_PIXEL : x*BYTES_PER_PIXEL+4]
			switch enc {
			case "rgb8":
				o[0], o[1], o[2], o[3] = in[0], in[1], in[2], 0xFF
			case "bgr8":
				o[0], o[1], o[2], o[3] = in[2], in[1], in[0], 0xFF
			case "rgba8":
				o[0], o[1], o[2], o[3] = in[0], in[1], in[2], in[3]
			case "bgra8":
				o[0], o[1], o[2], o[3] = in[2], in[1], in[0], in[3]
			case "mono8":
				o[0], o[1], o[2], o[3] = in[0], in[0], in[0], 0xFF
			}
		}
	}
	return withTrace(&Frame{Width: w, Height: h, Pix: pix, Index: -1}, msg.FrameID), nil
}

func withTrace(f *Frame, id string) *Frame {
	if id == "" {
		id = uuid.NewString()
	}
	f.TraceID = id
	return f
}
