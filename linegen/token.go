// Package linegen lays a live stream of recognition tokens out into a fixed
// number of word-wrapped caption lines.
//
// The full token sequence of the current utterance is passed on every
// Update and the visible window is derived from scratch each time. Lines
// that have scrolled up or been finalized are never rewrapped.
package linegen

import "fmt"

// Flags describe the role a token plays in the transcript.
type Flags uint8

const (
	// WordBoundary marks a token that starts a new word, typically one with
	// a leading space or a bare space.
	WordBoundary Flags = 1 << iota
	// SentenceEnd marks terminal punctuation.
	SentenceEnd
)

// Token is one recognizer output unit. LogProb is the recognizer's log
// probability for the token and drives the fade encoding.
type Token struct {
	Text    string
	Flags   Flags
	LogProb float64
}

func (t Token) Is(f Flags) bool { return t.Flags&f != 0 }

// FilterMode selects which lexicon a Filter consults. Modes are ordered:
// a higher mode includes every check of the lower ones.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterSlurs
	FilterProfanity
)

func (m FilterMode) String() string {
	switch m {
	case FilterNone:
		return "none"
	case FilterSlurs:
		return "slurs"
	case FilterProfanity:
		return "profanity"
	}
	return fmt.Sprintf("FilterMode(%d)", int(m))
}

func ParseFilterMode(s string) (FilterMode, error) {
	switch s {
	case "", "none":
		return FilterNone, nil
	case "slurs":
		return FilterSlurs, nil
	case "profanity":
		return FilterProfanity, nil
	}
	return FilterNone, fmt.Errorf("unknown filter mode %q (use none, slurs, or profanity)", s)
}

// Filter reports how many tokens starting at pos form a word that must be
// masked. Zero means no match.
type Filter interface {
	Skip(tokens []Token, pos int, mode FilterMode) int
}

// Metrics measures the rendered width of a string. It must return the same
// width for the same string within one Update.
type Metrics interface {
	Width(s string) float64
}

// Settings are the per-update display switches.
type Settings struct {
	Fade      bool
	Filter    FilterMode
	Uppercase bool // render tokens in the recognizer's own case
}
