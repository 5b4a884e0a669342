package main

import (
	"context"
	"fmt"

	"livecap/config"
	"livecap/linegen"
	"livecap/log"
	"livecap/transcriber"
)

// pipeline feeds recognizer hypotheses into the layout engine. The
// generator is only touched from the goroutine running run; other
// goroutines talk to it through RequestBreak and Resize.
type pipeline struct {
	gen    *linegen.Generator
	store  *config.Store
	sink   EventSink
	breaks chan struct{}
	widths chan int

	lang         string
	last         []linegen.Token // hypothesis in progress, nil after a final
	pendingBreak bool
}

func newPipeline(gen *linegen.Generator, store *config.Store, sink EventSink) *pipeline {
	return &pipeline{
		gen:    gen,
		store:  store,
		sink:   sink,
		breaks: make(chan struct{}, 1),
		widths: make(chan int, 1),
	}
}

// RequestBreak asks for a new display line. While an utterance is in
// progress the break waits for it to finish so its text is not repeated.
func (p *pipeline) RequestBreak() {
	select {
	case p.breaks <- struct{}{}:
	default:
	}
}

// Resize sets the wrap width in terminal cells. Only the latest pending
// width is kept.
func (p *pipeline) Resize(width int) {
	for {
		select {
		case p.widths <- width:
			return
		default:
		}
		select {
		case <-p.widths:
		default:
		}
	}
}

func (p *pipeline) run(ctx context.Context, s transcriber.Session) (transcriber.SessionResult, error) {
	updates := s.Updates()
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-p.breaks:
			p.forceBreak()
		case w := <-p.widths:
			p.setWidth(w)
		case h, ok := <-updates:
			if !ok {
				break loop
			}
			p.apply(h)
		}
	}

	res, err := s.Close()
	p.sink.SessionDone(res, err)
	return res, err
}

func (p *pipeline) apply(h transcriber.Hypothesis) {
	if h.Break || (p.pendingBreak && len(p.last) == 0) {
		p.gen.Break()
		p.pendingBreak = false
	}

	p.layout(h.Tokens)
	if h.Final {
		p.gen.Finalize()
		p.last = nil
	} else {
		p.last = h.Tokens
	}
	p.emit()
}

func (p *pipeline) forceBreak() {
	if len(p.last) > 0 {
		p.pendingBreak = true
		return
	}
	p.gen.Break()
	p.emit()
}

func (p *pipeline) setWidth(w int) {
	if w <= 0 {
		return
	}
	p.gen.SetMaxWidth(float64(w))
	p.layout(p.last)
	p.emit()
}

// layout reads the current settings snapshot so edits to the config file
// apply from the next hypothesis on.
func (p *pipeline) layout(tokens []linegen.Token) {
	s := p.store.Settings()
	if s.Language != p.lang {
		p.gen.SetLanguage(s.Language)
		p.lang = s.Language
	}
	p.gen.Update(tokens, s.Layout())
}

func (p *pipeline) emit() {
	p.sink.Transcript(p.gen.Render(), p.gen.Plain())
}

// Reconfigure reacts to a reloaded config file. Switches read on every
// update take effect by themselves; a fixed wrap width is pushed to the
// layout loop; whatever was fixed at startup is reported and returned.
// It is safe to call from the config watcher goroutine.
func (p *pipeline) Reconfigure(prev, next config.Settings) []string {
	var notes []string
	if next.Lines != p.gen.Lines() {
		notes = append(notes, fmt.Sprintf("lines changed to %d, restart to apply", next.Lines))
	}
	if next.Lexicon != prev.Lexicon {
		notes = append(notes, fmt.Sprintf("lexicon changed to %q, restart to apply", next.Lexicon))
	}
	if next.FilterMode() != prev.FilterMode() && next.FilterMode() != linegen.FilterNone && next.Lexicon == "" {
		notes = append(notes, fmt.Sprintf("%s filter enabled without a lexicon, nothing will be masked", next.FilterMode()))
	}
	if next.MaxWidth != prev.MaxWidth {
		if prev.MaxWidth > 0 && next.MaxWidth > 0 {
			p.Resize(next.MaxWidth)
		} else {
			notes = append(notes, fmt.Sprintf("max_width changed to %d, restart to apply", next.MaxWidth))
		}
	}
	for _, n := range notes {
		log.Warn(n)
	}
	return notes
}
