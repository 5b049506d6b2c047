package main

import (
	"strings"

	"github.com/kataras/golog"
)

var (
	surfaceLog  = golog.Child("[surface]")
	playbackLog = golog.Child("[playback]")
	routerLog   = golog.Child("[router]")
	dispatchLog = golog.Child("[dispatch]")
	configLog   = golog.Child("[config]")
	ipcLog      = golog.Child("[ipc]")
	httpLog     = golog.Child("[http]")
	consoleLog  = golog.Child("[console]")
	scriptLog   = golog.Child("[script]")
	gstLog      = golog.Child("[gst]")
	displayLog  = golog.Child("[display]")
)

// Children copy the parent level when created, so level changes are
// applied to each of them as well.
var componentLoggers = []*golog.Logger{
	surfaceLog, playbackLog, routerLog, dispatchLog, configLog, ipcLog,
	httpLog, consoleLog, scriptLog, gstLog, displayLog,
}

// configureLogging sets the level for every component: debug, info, warn,
// error or disable.
func configureLogging(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	golog.SetLevel(level)
	golog.SetTimeFormat("15:04:05.000")
	for _, l := range componentLoggers {
		l.SetLevel(level)
		l.SetTimeFormat("15:04:05.000")
	}
}
