// command.go - Control commands, topic names and payload decoding

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
	"fmt"
	"math"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var wireJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type CommandKind int

const (
	CommandSetImage CommandKind = iota // live image frame
	CommandSetImagePath
	CommandSetVideoPath
	CommandSetVideoSeek
	CommandSetVideoPaused
)

func (k CommandKind) String() string {
	switch k {
	case CommandSetImage:
		return "set_image"
	case CommandSetImagePath:
		return "set_image_path"
	case CommandSetVideoPath:
		return "set_video_path"
	case CommandSetVideoSeek:
		return "set_video_seek"
	case CommandSetVideoPaused:
		return "set_video_paused"
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one control request, routed by Kind.
type Command struct {
	Kind     CommandKind
	Path     string
	Fraction float64
	Paused   bool
	Live     *LiveImage
	Origin   string // transport name, for logs
}

func (c Command) String() string {
	switch c.Kind {
	case CommandSetImagePath, CommandSetVideoPath:
		return fmt.Sprintf("%s(%q)", c.Kind, c.Path)
	case CommandSetVideoSeek:
		return fmt.Sprintf("%s(%.3f)", c.Kind, c.Fraction)
	case CommandSetVideoPaused:
		return fmt.Sprintf("%s(%t)", c.Kind, c.Paused)
	}
	return c.Kind.String()
}

// TopicMap resolves topic names, relative or absolute, to command kinds.
type TopicMap struct {
	namespace string
	kinds     map[string]CommandKind
	names     map[CommandKind]string
}

func NewTopicMap(s *Settings) *TopicMap {
	t := &TopicMap{
		namespace: strings.Trim(s.Namespace, "/"),
		kinds:     make(map[string]CommandKind),
		names:     make(map[CommandKind]string),
	}
	t.add(CommandSetImage, s.TopicImage)
	t.add(CommandSetImagePath, s.TopicImagePath)
	t.add(CommandSetVideoPath, s.TopicVideoPath)
	t.add(CommandSetVideoSeek, s.TopicVideoSeek)
	t.add(CommandSetVideoPaused, s.TopicVideoPaused)
	return t
}

func (t *TopicMap) add(kind CommandKind, name string) {
	full := t.qualify(name)
	t.kinds[full] = kind
	t.names[kind] = full
}

// qualify prefixes relative names with the namespace.
func (t *TopicMap) qualify(name string) string {
	if strings.HasPrefix(name, "/") {
		return "/" + strings.Trim(name, "/")
	}
	if t.namespace == "" {
		return "/" + strings.Trim(name, "/")
	}
	return "/" + t.namespace + "/" + strings.Trim(name, "/")
}

// Resolve accepts "topic", "ns/topic" and "/ns/topic".
func (t *TopicMap) Resolve(topic string) (CommandKind, error) {
	if kind, ok := t.kinds[t.qualify(topic)]; ok {
		return kind, nil
	}
	if kind, ok := t.kinds["/"+strings.Trim(topic, "/")]; ok {
		return kind, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
}

func (t *TopicMap) Name(kind CommandKind) string {
	return t.names[kind]
}

// Topics lists the fully qualified topic names in command order.
func (t *TopicMap) Topics() []string {
	out := make([]string, 0, len(t.names))
	for k := CommandSetImage; k <= CommandSetVideoPaused; k++ {
		out = append(out, t.names[k])
	}
	return out
}

// ParseCommandPayload decodes a JSON payload for kind. Path topics take a
// string, seek a number, paused a bool and the image topic a LiveImage object.
func ParseCommandPayload(kind CommandKind, raw []byte) (Command, error) {
	cmd := Command{Kind: kind}
	var err error
	switch kind {
	case CommandSetImagePath, CommandSetVideoPath:
		err = wireJSON.Unmarshal(raw, &cmd.Path)
	case CommandSetVideoSeek:
		err = wireJSON.Unmarshal(raw, &cmd.Fraction)
		if err == nil && math.IsNaN(cmd.Fraction) {
			err = ErrBadSeek
		}
	case CommandSetVideoPaused:
		err = wireJSON.Unmarshal(raw, &cmd.Paused)
	case CommandSetImage:
		var img LiveImage
		if err = wireJSON.Unmarshal(raw, &img); err == nil {
			cmd.Live = &img
		}
	default:
		err = fmt.Errorf("unknown command kind %d", int(kind))
	}
	if err != nil {
		return Command{}, fmt.Errorf("%s payload: %w", kind, err)
	}
	return cmd, nil
}
