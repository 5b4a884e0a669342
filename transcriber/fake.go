package transcriber

import (
	"context"
	"fmt"
)

type FakeTranscriber struct {
	baseTranscriber
	hyps []Hypothesis
	err  error
}

func NewFake(hyps []Hypothesis, err error) *FakeTranscriber {
	return &FakeTranscriber{hyps: hyps, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if f.err != nil {
		return nil, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return newReplaySession(ctx, f.hyps, cfg.Interval), nil
}
