// vsctl sends commands to a running video surface over its IPC socket.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"
)

func usage(fs *flag.FlagSet) {
	fmt.Println("Usage: vsctl [options] <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  status               show playback state")
	fmt.Println("  open <path>          show an image or play a video")
	fmt.Println("  video <path|->       play a video (- stops)")
	fmt.Println("  image <path|->       show a still image (- clears)")
	fmt.Println("  stop                 stop the video and clear")
	fmt.Println("  seek <0..1>          seek to a fraction of the video")
	fmt.Println("  pause | resume       pause or resume playback")
	fmt.Println("  pub <topic> <json>   publish a raw payload")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fs.SetOutput(io.Discard)
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	socket := fs.String("socket", "", "IPC socket path (default from namespace)")
	namespace := fs.String("ns", "", "Surface namespace")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	asJSON := fs.Bool("json", false, "Print status as JSON")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			fs.Usage()
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	req, err := buildRequest(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(2)
	}
	sockPath := *socket
	if sockPath == "" {
		sockPath = defaultSocketPath(*namespace)
	}
	resp, err := send(sockPath, req, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if req.Cmd == "status" {
		if *asJSON {
			out, _ := wireJSON.MarshalIndent(resp.Playback, "", "  ")
			fmt.Println(string(out))
			return
		}
		fmt.Println(formatStatus(resp.Playback))
	}
}
