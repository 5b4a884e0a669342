package main

import "livecap/transcriber"

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and the plain printer receive the same transcript events.
type EventSink interface {
	Transcript(render, plain string)
	ModeLine(text string)
	SessionDone(res transcriber.SessionResult, err error)
}
