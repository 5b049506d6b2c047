// frame_buffer.go - Pre-decoded frames for random-access playback

package main

import "math"

// FrameBuffer holds every frame of a clip at sink resolution plus a
// playback cursor. Memory grows with clip length; there is no cap.
type FrameBuffer struct {
	frames []*Frame
	cursor int
	bytes  int
}

func (b *FrameBuffer) Reset() {
	b.frames = nil
	b.cursor = 0
	b.bytes = 0
}

func (b *FrameBuffer) Append(f *Frame) {
	b.frames = append(b.frames, f)
	b.bytes += len(f.Pix)
}

func (b *FrameBuffer) Len() int    { return len(b.frames) }
func (b *FrameBuffer) Cursor() int { return b.cursor }
func (b *FrameBuffer) Bytes() int  { return b.bytes }

// IndexForFraction maps a seek fraction to round(f*(n-1)).
func (b *FrameBuffer) IndexForFraction(f float64) int {
	n := len(b.frames)
	if n == 0 {
		return 0
	}
	idx := int(math.Round(f * float64(n-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

func (b *FrameBuffer) SeekFraction(f float64) int {
	b.cursor = b.IndexForFraction(f)
	return b.cursor
}

func (b *FrameBuffer) AtEnd() bool { return b.cursor >= len(b.frames) }
func (b *FrameBuffer) Rewind()     { b.cursor = 0 }

// Next returns the frame under the cursor and advances it.
func (b *FrameBuffer) Next() *Frame {
	if b.AtEnd() {
		return nil
	}
	f := b.frames[b.cursor]
	b.cursor++
	return f
}
