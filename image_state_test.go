package main

import "testing"

func TestImageState_LastPublishWins(t *testing.T) {
	s := NewImageState()
	gen := s.Claim()
	s.Publish(gen, solidFrame(1, 1, 1, 0, 0))
	s.Publish(gen, solidFrame(1, 1, 2, 0, 0))

	f, ok := s.ConsumeIfDirty()
	if !ok || f.Pix[0] != 2 {
		t.Fatalf("got=%v ok=%t, want second frame", f, ok)
	}
	if _, ok := s.ConsumeIfDirty(); ok {
		t.Fatal("frame consumed twice")
	}
	st := s.Stats()
	if st.Published != 2 || st.Dropped != 1 || st.Consumed != 1 {
		t.Fatalf("stats got=%+v", st)
	}
}

func TestImageState_StaleGenerationRejected(t *testing.T) {
	s := NewImageState()
	old := s.Claim()
	cur := s.Claim()
	if g := s.Generation(); g != cur {
		t.Fatalf("generation got=%d, want %d", g, cur)
	}
	if s.Publish(old, solidFrame(1, 1, 1, 0, 0)) {
		t.Fatal("stale publish accepted")
	}
	if _, ok := s.ConsumeIfDirty(); ok {
		t.Fatal("stale frame became visible")
	}
	if !s.Publish(cur, solidFrame(1, 1, 2, 0, 0)) {
		t.Fatal("current publish rejected")
	}
	if st := s.Stats(); st.Stale != 1 {
		t.Fatalf("stale got=%d, want 1", st.Stale)
	}
	if s.Publish(cur, nil) {
		t.Fatal("nil frame accepted")
	}
}

func TestFrameBuffer_IndexForFraction(t *testing.T) {
	var b FrameBuffer
	if b.IndexForFraction(0.5) != 0 {
		t.Fatal("empty buffer index should be 0")
	}
	for i := 0; i < 10; i++ {
		b.Append(solidFrame(1, 1, byte(i), 0, 0))
	}
	tests := []struct {
		f    float64
		want int
	}{
		{0, 0},
		{1, 9},
		{0.5, 5}, // rounds 4.5 away from zero
		{0.34, 3},
		{-1, 0},
		{2, 9},
	}
	for _, tt := range tests {
		if got := b.IndexForFraction(tt.f); got != tt.want {
			t.Fatalf("fraction %v: got=%d, want %d", tt.f, got, tt.want)
		}
	}
}

func TestFrameBuffer_CursorAndReset(t *testing.T) {
	var b FrameBuffer
	for i := 0; i < 3; i++ {
		b.Append(solidFrame(2, 2, byte(i), 0, 0))
	}
	if b.Bytes() != 3*2*2*BYTES_PER_PIXEL {
		t.Fatalf("bytes got=%d", b.Bytes())
	}
	for i := 0; i < 3; i++ {
		if f := b.Next(); f.Pix[0] != byte(i) {
			t.Fatalf("frame %d got=%d", i, f.Pix[0])
		}
	}
	if !b.AtEnd() {
		t.Fatal("expected end of buffer")
	}
	b.Rewind()
	if b.Cursor() != 0 || b.AtEnd() {
		t.Fatal("rewind should return to frame 0")
	}
	b.SeekFraction(1)
	if b.Cursor() != 2 {
		t.Fatalf("cursor got=%d, want 2", b.Cursor())
	}
	b.Reset()
	if b.Len() != 0 || b.Bytes() != 0 || b.Cursor() != 0 {
		t.Fatal("reset should empty the buffer")
	}
}
