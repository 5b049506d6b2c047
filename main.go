// main.go - Entry point for the Video Surface frame pipeline

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
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func boilerPlate() {
	fmt.Println("\n\033[38;2;255;20;147mVideo Surface\033[0m \033[38;2;255;200;147m" + Version + "\033[0m")
	fmt.Println("Video and still-image frames onto a fixed-size texture.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/VideoSurface")
	fmt.Println("License: GPLv3 or later")
}

// ipcDisabled turns the IPC socket off when given to -ipc or ipcSocket.
const ipcDisabled = "off"

type cliOptions struct {
	configPath string
	video      string
	image      string
	width      int
	height     int
	fps        float64
	bufferAll  bool
	noLoop     bool
	simRate    bool
	paused     bool
	headless   bool
	ipc        string
	http       string
	script     string
	console    bool
	logLevel   string
	features   bool
}

func parseFlags(args []string) (*cliOptions, map[string]bool, error) {
	opts := &cliOptions{}
	flagSet := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	flagSet.StringVar(&opts.video, "video", "", "Video to play at startup")
	flagSet.StringVar(&opts.image, "image", "", "Still image to show at startup (wins over -video)")
	flagSet.IntVar(&opts.width, "width", 0, "Texture width in pixels")
	flagSet.IntVar(&opts.height, "height", 0, "Texture height in pixels")
	flagSet.Float64Var(&opts.fps, "fps", 0, "Playback rate (0 uses the file rate)")
	flagSet.BoolVar(&opts.bufferAll, "buffer-all", false, "Decode whole videos up front for fast seeking")
	flagSet.BoolVar(&opts.noLoop, "no-loop", false, "Stop and clear at end of video")
	flagSet.BoolVar(&opts.simRate, "sim-rate", false, "Pace playback on simulation time instead of wall time")
	flagSet.BoolVar(&opts.paused, "paused", false, "Start videos paused")
	flagSet.BoolVar(&opts.headless, "headless", false, "Run without a window")
	flagSet.StringVar(&opts.ipc, "ipc", "", "IPC socket path, or \"off\"")
	flagSet.StringVar(&opts.http, "http", "", "HTTP control listen address, e.g. 127.0.0.1:8090")
	flagSet.StringVar(&opts.script, "script", "", "Lua control script")
	flagSet.BoolVar(&opts.console, "console", false, "Interactive command console on stdin")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn, error or disable")
	flagSet.BoolVar(&opts.features, "features", false, "Print compiled features and exit")

	flagSet.Usage = func() {
		fmt.Println("Usage: video_surface [options]")
		fmt.Println()
		fmt.Println("Options:")
		flagSet.SetOutput(os.Stdout)
		flagSet.PrintDefaults()
		flagSet.SetOutput(io.Discard)
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  video_surface -config surface.yaml")
		fmt.Println("  video_surface -video clip.mp4 -width 640 -height 480")
		fmt.Println("  video_surface -headless -http 127.0.0.1:8090 -image splash.png")
	}

	if err := flagSet.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			flagSet.Usage()
		}
		return nil, nil, err
	}
	if flagSet.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}
	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// apply overrides file settings with the flags given on the command line.
func (o *cliOptions) apply(s *Settings, set map[string]bool) {
	if set["video"] {
		s.DefaultVideoPath = o.video
	}
	if set["image"] {
		s.DefaultImagePath = o.image
	}
	if set["width"] {
		s.Width = o.width
	}
	if set["height"] {
		s.Height = o.height
	}
	if set["fps"] {
		s.VideoFPS = o.fps
	}
	if set["buffer-all"] {
		s.BufferAllFrames = o.bufferAll
	}
	if set["no-loop"] {
		s.LoopVideo = !o.noLoop
	}
	if set["sim-rate"] {
		s.UseWallRate = !o.simRate
	}
	if set["paused"] {
		s.VideoPaused = o.paused
	}
	if set["headless"] {
		s.Headless = o.headless
	}
	if set["ipc"] {
		s.IPCSocket = o.ipc
	}
	if set["http"] {
		s.HTTPListen = o.http
	}
	if set["script"] {
		s.Script = o.script
	}
	if set["console"] {
		s.Console = o.console
	}
	if set["log-level"] {
		s.LogLevel = o.logLevel
	}
}

func main() {
	opts, set, err := parseFlags(os.Args)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if opts.features {
		printFeatures()
		return
	}
	boilerPlate()

	// Config loading logs, so honour -log-level before the file is read.
	if opts.logLevel != "" {
		configureLogging(opts.logLevel)
	}
	settings, err := LoadSettings(opts.configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	opts.apply(settings, set)
	configureLogging(settings.LogLevel)

	if err := run(settings); err != nil {
		surfaceLog.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(settings *Settings) error {
	backend := VIDEO_BACKEND_EBITEN
	if settings.Headless {
		backend = VIDEO_BACKEND_HEADLESS
	}
	output, err := NewVideoOutput(backend)
	if err != nil {
		return err
	}

	surface, err := NewVideoSurface(settings, output)
	if err != nil {
		return err
	}
	defer surface.Stop()

	quit := make(chan struct{}, 1)
	requestQuit := func() {
		select {
		case quit <- struct{}{}:
		default:
		}
	}

	if err := addTransports(surface, settings, requestQuit); err != nil {
		return err
	}
	if err := surface.Start(); err != nil {
		return err
	}
	if err := output.Start(); err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	select {
	case sig := <-sigs:
		surfaceLog.Infof("received %s, shutting down", sig)
	case <-output.Done():
		surfaceLog.Infof("display closed")
	case <-quit:
	}
	return nil
}

func addTransports(surface *VideoSurface, settings *Settings, requestQuit func()) error {
	if settings.IPCSocket != ipcDisabled {
		var (
			srv *IPCServer
			err error
		)
		if settings.IPCSocket != "" {
			srv, err = newIPCServerAt(settings.IPCSocket, surface)
		} else {
			srv, err = NewIPCServer(settings.Namespace, surface)
		}
		if err != nil {
			// A second surface on the same namespace still runs, just without IPC.
			ipcLog.Warnf("ipc disabled: %v", err)
		} else if err := surface.AddTransport(srv); err != nil {
			return err
		}
	}
	if settings.HTTPListen != "" {
		if err := surface.AddTransport(NewControlHTTPServer(settings.HTTPListen, surface)); err != nil {
			return err
		}
	}
	if settings.Console {
		if err := surface.AddTransport(NewControlConsole(surface, requestQuit)); err != nil {
			return err
		}
	}
	if settings.Script != "" {
		script := settings.Script
		if resolved, ok := settings.ResolveMediaPath(script); ok {
			script = resolved
		}
		runner := NewScriptRunner(script, surface, func(err error) {
			if err != nil {
				scriptLog.Errorf("%s: %v", script, err)
			}
		})
		if err := surface.AddTransport(runner); err != nil {
			return err
		}
	}
	return nil
}
