// sim_clock.go - Simulation time driven by the host update loop

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
	"sync"
	"time"
)

// SimClock is advanced by the host once per simulation step. While paused
// Advance is ignored, so anything waiting on simulation time stalls.
type SimClock struct {
	mu      sync.Mutex
	now     time.Duration
	paused  bool
	changed chan struct{} // closed and replaced on every change
}

func NewSimClock() *SimClock {
	return &SimClock{changed: make(chan struct{})}
}

func (c *SimClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *SimClock) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	if c.paused {
		c.mu.Unlock()
		return
	}
	c.now += d
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *SimClock) SetPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *SimClock) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// TogglePaused flips the pause state and returns the new value.
func (c *SimClock) TogglePaused() bool {
	c.mu.Lock()
	c.paused = !c.paused
	p := c.paused
	c.notifyLocked()
	c.mu.Unlock()
	return p
}

func (c *SimClock) notifyLocked() {
	close(c.changed)
	c.changed = make(chan struct{})
}

// WaitUntil blocks until simulation time reaches t. It returns false if
// stop closes first.
func (c *SimClock) WaitUntil(t time.Duration, stop <-chan struct{}) bool {
	for {
		c.mu.Lock()
		if c.now >= t {
			c.mu.Unlock()
			return true
		}
		ch := c.changed
		c.mu.Unlock()

		select {
		case <-ch:
		case <-stop:
			return false
		}
	}
}
