package transcriber

import (
	"context"

	"livecap/linegen"
)

const (
	settledLogProb   = -0.4
	tentativeLogProb = -4.5
	finalLogProb     = -0.1
)

// TextTranscriber plays plain text back as if it were being recognized
// live: every sentence grows token by token, the newest word shown as
// tentative, and ends with a final hypothesis.
type TextTranscriber struct {
	baseTranscriber
	text string
}

func NewText(text string) *TextTranscriber {
	return &TextTranscriber{text: text}
}

func (t *TextTranscriber) Name() string { return "text" }

func (t *TextTranscriber) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	return newReplaySession(ctx, Simulate(Tokenize(t.text)), cfg.Interval), nil
}

// Simulate turns a token stream into the hypotheses a streaming recognizer
// would produce for it, one utterance per sentence.
func Simulate(tokens []linegen.Token) []Hypothesis {
	var hyps []Hypothesis
	for len(tokens) > 0 {
		end := len(tokens)
		for i, tok := range tokens {
			if tok.Is(linegen.SentenceEnd) {
				end = i + 1
				break
			}
		}
		utt := tokens[:end]
		tokens = tokens[end:]

		for k := 1; k < len(utt); k++ {
			hyps = append(hyps, Hypothesis{Tokens: partial(utt[:k])})
		}
		hyps = append(hyps, Hypothesis{Tokens: withLogProb(utt, finalLogProb), Final: true})
	}
	return hyps
}

func partial(tokens []linegen.Token) []linegen.Token {
	out := withLogProb(tokens, settledLogProb)
	last := len(out) - 1
	for last > 0 && !out[last].Is(linegen.WordBoundary) {
		last--
	}
	for i := last; i < len(out); i++ {
		out[i].LogProb = tentativeLogProb
	}
	return out
}

func withLogProb(tokens []linegen.Token, lp float64) []linegen.Token {
	out := make([]linegen.Token, len(tokens))
	for i, tok := range tokens {
		tok.LogProb = lp
		out[i] = tok
	}
	return out
}
