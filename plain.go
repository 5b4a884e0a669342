package main

import (
	"fmt"
	"io"

	"livecap/log"
	"livecap/transcriber"
)

// plainSink keeps the latest projection and prints it once the session
// ends. It is used when stdout is not a terminal.
type plainSink struct {
	out    io.Writer
	markup bool

	render string
	plain  string
}

func (s *plainSink) Transcript(render, plain string) {
	s.render = render
	s.plain = plain
}

func (s *plainSink) ModeLine(text string) { log.Info("mode: " + text) }

func (s *plainSink) SessionDone(res transcriber.SessionResult, err error) {
	if err != nil {
		log.Errorf("session error: %v", err)
	}
	text := s.plain
	if s.markup {
		text = s.render
	}
	fmt.Fprintln(s.out, text)
}
