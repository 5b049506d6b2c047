// frame.go - RGBA frame type and resampling helpers

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
	"strings"

	"golang.org/x/image/draw"
)

const BYTES_PER_PIXEL = 4

// Frame is one decoded picture in the sink pixel format (packed RGBA).
// A Blank frame asks the render tick to clear the sink.
type Frame struct {
	Width   int
	Height  int
	Pix     []byte
	Index   int64 // source frame index, -1 for stills and live images
	Blank   bool
	TraceID string
}

// NewBlankFrame returns a clear request sized to the sink.
func NewBlankFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Index: -1, Blank: true}
}

func (f *Frame) String() string {
	if f == nil {
		return "<nil frame>"
	}
	if f.Blank {
		return fmt.Sprintf("blank %dx%d", f.Width, f.Height)
	}
	return fmt.Sprintf("frame #%d %dx%d", f.Index, f.Width, f.Height)
}

// valid reports whether Pix holds at least Width*Height pixels.
func (f *Frame) valid() bool {
	return f != nil && f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height*BYTES_PER_PIXEL
}

// FrameFromImage converts any decoded image into a packed RGBA frame.
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*BYTES_PER_PIXEL && b.Min == (image.Point{}) {
		pix := make([]byte, len(rgba.Pix))
		copy(pix, rgba.Pix)
		return &Frame{Width: w, Height: h, Pix: pix, Index: -1}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return &Frame{Width: w, Height: h, Pix: dst.Pix, Index: -1}
}

type ResampleFilter int

const (
	ResampleBilinear ResampleFilter = iota
	ResampleNearest
)

func ParseResampleFilter(name string) (ResampleFilter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bilinear", "linear":
		return ResampleBilinear, nil
	case "nearest", "nearestneighbor":
		return ResampleNearest, nil
	}
	return ResampleBilinear, fmt.Errorf("unknown resample filter %q", name)
}

func (f ResampleFilter) String() string {
	if f == ResampleNearest {
		return "nearest"
	}
	return "bilinear"
}

func (f ResampleFilter) interpolator() draw.Interpolator {
	if f == ResampleNearest {
		return draw.NearestNeighbor
	}
	return draw.BiLinear
}

// ResizePixels rescales a packed RGBA buffer to dstW x dstH.
func ResizePixels(pix []byte, srcW, srcH, dstW, dstH int, filter ResampleFilter) []byte {
	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	if srcW <= 0 || srcH <= 0 {
		return dst.Pix
	}
	src := &image.RGBA{
		Pix:    pix,
		Stride: srcW * BYTES_PER_PIXEL,
		Rect:   image.Rect(0, 0, srcW, srcH),
	}
	filter.interpolator().Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst.Pix
}

// ResizeFrame returns f at the requested size, sharing f when no scaling is needed.
func ResizeFrame(f *Frame, width, height int, filter ResampleFilter) *Frame {
	if f.Blank || (f.Width == width && f.Height == height) {
		return f
	}
	return &Frame{
		Width:   width,
		Height:  height,
		Pix:     ResizePixels(f.Pix, f.Width, f.Height, width, height, filter),
		Index:   f.Index,
		TraceID: f.TraceID,
	}
}
