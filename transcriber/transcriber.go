package transcriber

import (
	"context"

	"livecap/linegen"
)

// Hypothesis is the recognizer's current reading of the utterance in
// progress. Tokens is always the complete sequence, not a delta.
type Hypothesis struct {
	Tokens []linegen.Token
	Final  bool // the utterance is over; the next hypothesis starts afresh
	Break  bool // start a new display line before laying out Tokens
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

type baseTranscriber struct {
	lang string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }
