//go:build windows

package main

import (
	"io"
	"os"

	"golang.org/x/term"
)

// consoleStdin uses blocking reads; Stop takes effect after the next line.
type consoleStdin struct {
	fd       int
	stop     <-chan struct{}
	oldState *term.State
}

func openConsoleStdin(stop <-chan struct{}) (*consoleStdin, error) {
	s := &consoleStdin{fd: int(os.Stdin.Fd()), stop: stop}
	if term.IsTerminal(s.fd) {
		oldState, err := term.MakeRaw(s.fd)
		if err != nil {
			return nil, err
		}
		s.oldState = oldState
	}
	return s, nil
}

func (s *consoleStdin) Read(p []byte) (int, error) {
	select {
	case <-s.stop:
		return 0, io.EOF
	default:
	}
	return os.Stdin.Read(p)
}

func (s *consoleStdin) restore() {
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}
