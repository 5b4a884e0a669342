package transcriber

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"livecap/linegen"
)

// ScriptTranscriber replays recorded recognizer output. The file holds one
// JSON hypothesis per line:
//
//	{"tokens":[{"text":" hello","flags":["word"],"logprob":-0.3}],"final":false}
//
// Blank lines and lines starting with # are ignored.
type ScriptTranscriber struct {
	baseTranscriber
	path string
}

func NewScript(path string) *ScriptTranscriber {
	return &ScriptTranscriber{path: path}
}

func (s *ScriptTranscriber) Name() string { return "script" }

func (s *ScriptTranscriber) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()

	hyps, err := ParseScript(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return newReplaySession(ctx, hyps, cfg.Interval), nil
}

type scriptToken struct {
	Text    string   `json:"text"`
	Flags   []string `json:"flags,omitempty"`
	LogProb float64  `json:"logprob"`
}

type scriptLine struct {
	Tokens []scriptToken `json:"tokens"`
	Final  bool          `json:"final,omitempty"`
	Break  bool          `json:"break,omitempty"`
}

func parseFlag(name string) (linegen.Flags, error) {
	switch name {
	case "word", "word_boundary":
		return linegen.WordBoundary, nil
	case "end", "sentence_end":
		return linegen.SentenceEnd, nil
	}
	return 0, fmt.Errorf("unknown token flag %q", name)
}

func ParseScript(r io.Reader) ([]Hypothesis, error) {
	var hyps []Hypothesis
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var sl scriptLine
		if err := json.Unmarshal([]byte(raw), &sl); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		h := Hypothesis{Final: sl.Final, Break: sl.Break, Tokens: make([]linegen.Token, len(sl.Tokens))}
		for i, st := range sl.Tokens {
			tok := linegen.Token{Text: st.Text, LogProb: st.LogProb}
			for _, name := range st.Flags {
				f, err := parseFlag(name)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				tok.Flags |= f
			}
			h.Tokens[i] = tok
		}
		hyps = append(hyps, h)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return hyps, nil
}
