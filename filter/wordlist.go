// Package filter masks words from a slur and profanity lexicon.
package filter

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"

	"livecap/linegen"
)

// Lexicon is the on-disk word list format.
type Lexicon struct {
	Slurs     []string `toml:"slurs"`
	Profanity []string `toml:"profanity"`
}

// WordList matches whole words, case-insensitively, against a lexicon. A
// word is a word-boundary token plus the non-boundary tokens that follow it.
type WordList struct {
	slurs     map[string]struct{}
	profanity map[string]struct{}
	fold      cases.Caser
}

func New(lex Lexicon) *WordList {
	w := &WordList{
		slurs:     make(map[string]struct{}, len(lex.Slurs)),
		profanity: make(map[string]struct{}, len(lex.Profanity)),
		fold:      cases.Fold(),
	}
	for _, s := range lex.Slurs {
		if k := w.key(s); k != "" {
			w.slurs[k] = struct{}{}
		}
	}
	for _, s := range lex.Profanity {
		if k := w.key(s); k != "" {
			w.profanity[k] = struct{}{}
		}
	}
	return w
}

func Load(path string) (*WordList, error) {
	var lex Lexicon
	if _, err := toml.DecodeFile(path, &lex); err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}
	return New(lex), nil
}

func (w *WordList) Len() int { return len(w.slurs) + len(w.profanity) }

func (w *WordList) key(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return w.fold.String(s)
}

// Skip implements linegen.Filter.
func (w *WordList) Skip(tokens []linegen.Token, pos int, mode linegen.FilterMode) int {
	if mode == linegen.FilterNone || pos >= len(tokens) {
		return 0
	}

	var b strings.Builder
	b.WriteString(tokens[pos].Text)
	end := pos + 1
	for ; end < len(tokens); end++ {
		t := tokens[end]
		if t.Is(linegen.SentenceEnd) {
			break
		}
		// a bare separator is followed by the word it introduces
		if t.Is(linegen.WordBoundary) && strings.TrimSpace(b.String()) != "" {
			break
		}
		b.WriteString(t.Text)
	}

	k := w.key(b.String())
	if k == "" {
		return 0
	}
	if _, ok := w.slurs[k]; ok {
		return end - pos
	}
	if mode >= linegen.FilterProfanity {
		if _, ok := w.profanity[k]; ok {
			return end - pos
		}
	}
	return 0
}
