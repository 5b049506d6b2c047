// control_script.go - Lua automation scripts driving the surface

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
	"context"
	"errors"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ScriptRunner executes one Lua file against the surface. Globals:
//
//	video(path)  image(path)  seek(f)  pause()  resume()  stop()
//	publish(topic, json)  sleep(seconds)  status() -> table  log(msg)
type ScriptRunner struct {
	path    string
	source  string
	surface controlSurface
	onDone  func(err error)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewScriptRunner runs the script at path.
func NewScriptRunner(path string, surface controlSurface, onDone func(error)) *ScriptRunner {
	return &ScriptRunner{path: path, surface: surface, onDone: onDone}
}

// newScriptRunnerString runs inline source, used by tests.
func newScriptRunnerString(source string, surface controlSurface) *ScriptRunner {
	return &ScriptRunner{path: "<inline>", source: source, surface: surface}
}

func (r *ScriptRunner) Name() string { return "script" }

func (r *ScriptRunner) Start() error {
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.done = make(chan struct{})
	go r.run()
	return nil
}

// Stop cancels the script and waits for the interpreter to unwind.
func (r *ScriptRunner) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

// Wait blocks until the script finishes and returns its error.
func (r *ScriptRunner) Wait() error {
	<-r.done
	return r.err
}

func (r *ScriptRunner) run() {
	defer close(r.done)
	L := lua.NewState()
	defer L.Close()
	L.SetContext(r.ctx)
	r.install(L)

	scriptLog.Infof("running %s", r.path)
	var err error
	if r.source != "" {
		err = L.DoString(r.source)
	} else {
		err = L.DoFile(r.path)
	}
	if err != nil && errors.Is(r.ctx.Err(), context.Canceled) {
		err = nil
	}
	if err != nil {
		scriptLog.Errorf("%s: %v", r.path, err)
	} else {
		scriptLog.Infof("%s finished", r.path)
	}
	r.err = err
	if r.onDone != nil {
		r.onDone(err)
	}
}

func (r *ScriptRunner) install(L *lua.LState) {
	submit := func(L *lua.LState, cmd Command) int {
		cmd.Origin = "script"
		if err := r.surface.Submit(cmd); err != nil {
			L.RaiseError("%s: %v", cmd.Kind, err)
		}
		return 0
	}
	L.SetGlobal("video", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetVideoPath, Path: L.OptString(1, "")})
	}))
	L.SetGlobal("image", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetImagePath, Path: L.OptString(1, "")})
	}))
	L.SetGlobal("stop", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetVideoPath})
	}))
	L.SetGlobal("seek", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetVideoSeek, Fraction: float64(L.CheckNumber(1))})
	}))
	L.SetGlobal("pause", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetVideoPaused, Paused: true})
	}))
	L.SetGlobal("resume", L.NewFunction(func(L *lua.LState) int {
		return submit(L, Command{Kind: CommandSetVideoPaused, Paused: false})
	}))
	L.SetGlobal("publish", L.NewFunction(func(L *lua.LState) int {
		topic, payload := L.CheckString(1), L.CheckString(2)
		if err := r.surface.Publish(topic, []byte(payload), "script"); err != nil {
			L.RaiseError("publish %s: %v", topic, err)
		}
		return 0
	}))
	L.SetGlobal("sleep", L.NewFunction(func(L *lua.LState) int {
		d := time.Duration(float64(L.CheckNumber(1)) * float64(time.Second))
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-r.ctx.Done():
			L.RaiseError("script cancelled")
		}
		return 0
	}))
	L.SetGlobal("status", L.NewFunction(func(L *lua.LState) int {
		L.Push(statusTable(L, r.surface.Status()))
		return 1
	}))
	L.SetGlobal("log", L.NewFunction(func(L *lua.LState) int {
		scriptLog.Infof("%s", L.CheckString(1))
		return 0
	}))
}

func statusTable(L *lua.LState, st PlaybackStatus) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("state", lua.LString(st.State))
	t.RawSetString("path", lua.LString(st.Path))
	t.RawSetString("image", lua.LString(st.Image))
	t.RawSetString("paused", lua.LBool(st.Paused))
	t.RawSetString("loop", lua.LBool(st.Loop))
	t.RawSetString("frame", lua.LNumber(st.Frame))
	t.RawSetString("frame_count", lua.LNumber(st.FrameCount))
	t.RawSetString("position", lua.LNumber(st.Position))
	t.RawSetString("fps", lua.LNumber(st.FPS))
	t.RawSetString("rendered", lua.LNumber(st.FramesRendered))
	return t
}
