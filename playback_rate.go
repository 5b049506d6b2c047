// playback_rate.go - Fixed-rate cadence for the decode loop

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

const DEFAULT_FPS = 24.0

// Rate paces a loop at a fixed frequency. Sleep returns false when stop
// closes during the wait.
type Rate interface {
	Sleep(stop <-chan struct{}) bool
	SetFPS(fps float64)
	Period() time.Duration
}

func periodForFPS(fps float64) time.Duration {
	if fps <= 0 {
		fps = DEFAULT_FPS
	}
	return time.Duration(float64(time.Second) / fps)
}

// WallRate keeps a fixed schedule against the monotonic clock. If a cycle
// overruns by more than a full period the schedule restarts from now
// instead of bursting to catch up.
type WallRate struct {
	mu     sync.Mutex
	period time.Duration
	next   time.Time
}

func NewWallRate(fps float64) *WallRate {
	return &WallRate{period: periodForFPS(fps), next: time.Now()}
}

func (r *WallRate) SetFPS(fps float64) {
	r.mu.Lock()
	r.period = periodForFPS(fps)
	r.mu.Unlock()
}

func (r *WallRate) Period() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.period
}

func (r *WallRate) Sleep(stop <-chan struct{}) bool {
	r.mu.Lock()
	now := time.Now()
	r.next = r.next.Add(r.period)
	wait := r.next.Sub(now)
	if wait < -r.period {
		r.next = now
	}
	r.mu.Unlock()

	if wait <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

// SimRate is the same schedule measured in simulation time.
type SimRate struct {
	mu     sync.Mutex
	clock  *SimClock
	period time.Duration
	next   time.Duration
}

func NewSimRate(clock *SimClock, fps float64) *SimRate {
	return &SimRate{clock: clock, period: periodForFPS(fps), next: clock.Now()}
}

func (r *SimRate) SetFPS(fps float64) {
	r.mu.Lock()
	r.period = periodForFPS(fps)
	r.mu.Unlock()
}

func (r *SimRate) Period() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.period
}

func (r *SimRate) Sleep(stop <-chan struct{}) bool {
	r.mu.Lock()
	now := r.clock.Now()
	r.next += r.period
	if r.next-now < -r.period {
		r.next = now
	}
	target := r.next
	r.mu.Unlock()
	return r.clock.WaitUntil(target, stop)
}
