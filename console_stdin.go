//go:build !windows

package main

import (
	"io"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"
)

// consoleStdin reads stdin without blocking so the console can stop
// while a line is half typed.
type consoleStdin struct {
	fd          int
	stop        <-chan struct{}
	oldState    *term.State
	nonblockSet bool
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
	if err := syscall.SetNonblock(s.fd, true); err != nil {
		s.restore()
		return nil, err
	}
	s.nonblockSet = true
	return s, nil
}

func (s *consoleStdin) Read(p []byte) (int, error) {
	for {
		select {
		case <-s.stop:
			return 0, io.EOF
		default:
		}
		n, err := syscall.Read(s.fd, p)
		if n > 0 {
			return n, nil
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK || (err == nil && n == 0 && s.oldState != nil) {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
}

func (s *consoleStdin) restore() {
	if s.nonblockSet {
		_ = syscall.SetNonblock(s.fd, false)
		s.nonblockSet = false
	}
	if s.oldState != nil {
		_ = term.Restore(s.fd, s.oldState)
		s.oldState = nil
	}
}
