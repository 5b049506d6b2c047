// control_console.go - Interactive operator console on the controlling terminal

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
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"
)

const consolePrompt = "surface> "

// ControlConsole reads operator commands from stdin. When stdin is a
// terminal it runs in raw mode with line editing and history.
type ControlConsole struct {
	surface controlSurface
	onQuit  func()

	stopCh  chan struct{}
	done    chan struct{}
	stopped sync.Once
	stdin   *consoleStdin
}

func NewControlConsole(surface controlSurface, onQuit func()) *ControlConsole {
	return &ControlConsole{
		surface: surface,
		onQuit:  onQuit,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (c *ControlConsole) Name() string { return "console" }

func (c *ControlConsole) Start() error {
	in, err := openConsoleStdin(c.stopCh)
	if err != nil {
		close(c.done)
		return &VideoError{Operation: "console start", Details: "stdin", Err: err}
	}
	c.stdin = in

	var rw io.ReadWriter = struct {
		io.Reader
		io.Writer
	}{in, os.Stdout}
	t := term.NewTerminal(rw, consolePrompt)
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		t.SetSize(w, h)
	}
	go c.run(t)
	return nil
}

func (c *ControlConsole) run(t *term.Terminal) {
	defer close(c.done)
	for {
		line, err := t.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				consoleLog.Debugf("read: %v", err)
			}
			return
		}
		out, quit, err := c.ExecLine(line)
		if err != nil {
			fmt.Fprintf(t, "error: %v\n", err)
		} else if out != "" {
			fmt.Fprint(t, out)
		}
		if quit {
			if c.onQuit != nil {
				c.onQuit()
			}
			return
		}
	}
}

// Stop ends the read loop and restores the terminal.
func (c *ControlConsole) Stop() {
	c.stopped.Do(func() {
		close(c.stopCh)
	})
	select {
	case <-c.done:
	case <-time.After(time.Second):
		consoleLog.Debugf("reader still blocked on stdin")
	}
	if c.stdin != nil {
		c.stdin.restore()
	}
}

// ExecLine runs one console command and returns its output. quit reports
// that the operator asked to exit.
func (c *ControlConsole) ExecLine(line string) (out string, quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))

	switch cmd {
	case "help", "?":
		return consoleHelp, false, nil
	case "quit", "exit", "q":
		return "bye\n", true, nil
	case "status", "st":
		return formatStatus(c.surface.Status()), false, nil
	case "video", "v":
		return "", false, c.submit(Command{Kind: CommandSetVideoPath, Path: pathArg(rest)})
	case "image", "i":
		return "", false, c.submit(Command{Kind: CommandSetImagePath, Path: pathArg(rest)})
	case "stop":
		return "", false, c.submit(Command{Kind: CommandSetVideoPath})
	case "seek":
		if len(args) != 1 {
			return "", false, fmt.Errorf("usage: seek <0..1>")
		}
		f, perr := strconv.ParseFloat(args[0], 64)
		if perr != nil {
			return "", false, fmt.Errorf("bad fraction %q", args[0])
		}
		return "", false, c.submit(Command{Kind: CommandSetVideoSeek, Fraction: f})
	case "pause":
		return "", false, c.submit(Command{Kind: CommandSetVideoPaused, Paused: true})
	case "resume", "play":
		return "", false, c.submit(Command{Kind: CommandSetVideoPaused, Paused: false})
	case "pub", "publish":
		if len(args) < 2 {
			return "", false, fmt.Errorf("usage: pub <topic> <json>")
		}
		payload := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		return "", false, c.surface.Publish(args[0], []byte(payload), "console")
	case "topics":
		return strings.Join(c.surface.Topics().Topics(), "\n") + "\n", false, nil
	}
	return "", false, fmt.Errorf("unknown command %q (try help)", cmd)
}

func (c *ControlConsole) submit(cmd Command) error {
	cmd.Origin = "console"
	return c.surface.Submit(cmd)
}

// pathArg treats "-" as the empty path and strips shell-style quotes.
func pathArg(s string) string {
	if s == "-" {
		return ""
	}
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func formatStatus(st PlaybackStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "state:    %s\n", st.State)
	if st.Path != "" {
		fmt.Fprintf(&b, "video:    %s\n", st.Path)
	}
	if st.Image != "" {
		fmt.Fprintf(&b, "image:    %s\n", st.Image)
	}
	fmt.Fprintf(&b, "frame:    %d/%d (%.1f%%)\n", st.Frame, st.FrameCount, st.Position*100)
	fmt.Fprintf(&b, "rate:     %.2f fps", st.FPS)
	if st.WallClock {
		b.WriteString(" wall\n")
	} else {
		fmt.Fprintf(&b, " sim (paused=%t)\n", st.SimPaused)
	}
	fmt.Fprintf(&b, "loop:     %t  buffered: %d\n", st.Loop, st.Buffered)
	fmt.Fprintf(&b, "frames:   produced=%d rendered=%d dropped=%d stale=%d\n",
		st.FramesProduced, st.FramesRendered, st.FramesDropped, st.FramesStale)
	return b.String()
}

const consoleHelp = `commands:
  video <path>|-     play a video, - stops
  image <path>|-     show a still image, - clears
  stop               stop video and clear
  seek <0..1>        seek to a fraction of the clip
  pause | resume     pause or resume playback
  pub <topic> <json> publish a raw payload to a topic
  topics             list topic names
  status             show playback status
  quit               exit
`
