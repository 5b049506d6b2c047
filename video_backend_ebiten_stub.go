//go:build headless

package main

func NewEbitenOutput() (VideoOutput, error) {
	return nil, &VideoError{Operation: "backend creation", Details: "ebiten display not compiled in (built with -tags headless)"}
}
