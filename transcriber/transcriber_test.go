package transcriber

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecap/linegen"
)

func texts(tokens []linegen.Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

func TestTokenize(t *testing.T) {
	for _, tt := range []struct {
		in        string
		want      []string
		wantFlags []linegen.Flags
	}{
		{
			in:        "Hello, I'll go.",
			want:      []string{" Hello", ",", " I", "'ll", " go", "."},
			wantFlags: []linegen.Flags{linegen.WordBoundary, 0, linegen.WordBoundary, 0, linegen.WordBoundary, linegen.SentenceEnd},
		},
		{
			in:        "transcription",
			want:      []string{" tran", "scri", "ptio", "n"},
			wantFlags: []linegen.Flags{linegen.WordBoundary, 0, 0, 0},
		},
		{
			in:        "  multiple   spaces ",
			want:      []string{" mult", "iple", " spaces"},
			wantFlags: []linegen.Flags{linegen.WordBoundary, 0, linegen.WordBoundary},
		},
		{
			in:   "",
			want: []string{},
		},
	} {
		t.Run(tt.in, func(t *testing.T) {
			got := Tokenize(tt.in)
			assert.Equal(t, tt.want, texts(got))
			for i, f := range tt.wantFlags {
				assert.Equal(t, f, got[i].Flags, "token %d", i)
			}
		})
	}
}

func TestSimulate(t *testing.T) {
	hyps := Simulate(Tokenize("Hi there. Bye."))
	require.Len(t, hyps, 5)

	assert.Equal(t, []string{" Hi"}, texts(hyps[0].Tokens))
	assert.Equal(t, []string{" Hi", " there"}, texts(hyps[1].Tokens))
	assert.Less(t, hyps[1].Tokens[1].LogProb, hyps[1].Tokens[0].LogProb, "newest word is tentative")
	assert.Equal(t, []string{" Hi", " there", "."}, texts(hyps[2].Tokens))
	assert.True(t, hyps[2].Final)
	assert.False(t, hyps[1].Final)
	assert.Equal(t, []string{" Bye"}, texts(hyps[3].Tokens))
	assert.True(t, hyps[4].Final)
}

func TestSimulateTentativeCoversWordPieces(t *testing.T) {
	hyps := Simulate(Tokenize("so transcription"))
	last := hyps[len(hyps)-2].Tokens
	require.Equal(t, []string{" so", " tran", "scri", "ptio"}, texts(last))
	assert.Equal(t, settledLogProb, last[0].LogProb)
	for _, tok := range last[1:] {
		assert.Equal(t, tentativeLogProb, tok.LogProb)
	}
}

func drain(t *testing.T, s Session) []Hypothesis {
	t.Helper()
	var got []Hypothesis
	for h := range s.Updates() {
		got = append(got, h)
	}
	return got
}

func TestFakeSession(t *testing.T) {
	hyps := []Hypothesis{
		{Tokens: Tokenize("one")},
		{Tokens: Tokenize("one two"), Final: true},
		{Tokens: Tokenize("three"), Break: true},
	}
	f := NewFake(hyps, nil)
	f.SetLanguage("fr")
	assert.Equal(t, "fr", f.GetLanguage())

	s, err := f.NewSession(context.Background(), SessionConfig{})
	require.NoError(t, err)

	got := drain(t, s)
	assert.Equal(t, hyps, got)

	res, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, 3, res.Hypotheses)
	assert.Equal(t, 1, res.Finals)
	assert.Equal(t, 2, res.Tokens)
}

func TestFakeSessionError(t *testing.T) {
	_, err := NewFake(nil, errors.New("boom")).NewSession(context.Background(), SessionConfig{})
	assert.ErrorContains(t, err, "boom")
}

func TestCloseBeforeDrain(t *testing.T) {
	s, err := NewText("a b c d e f").NewSession(context.Background(), SessionConfig{})
	require.NoError(t, err)

	<-s.Updates()
	res, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, 1, res.Hypotheses)

	_, open := <-s.Updates()
	assert.False(t, open)
}

const script = `# recorded session
{"tokens":[{"text":" hel","flags":["word"],"logprob":-3}]}

{"tokens":[{"text":" hel","flags":["word"],"logprob":-1},{"text":"lo","logprob":-0.5},{"text":".","flags":["end"]}],"final":true}
{"tokens":[],"break":true}
`

func TestParseScript(t *testing.T) {
	hyps, err := ParseScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, hyps, 3)

	assert.Equal(t, linegen.Token{Text: " hel", Flags: linegen.WordBoundary, LogProb: -3}, hyps[0].Tokens[0])
	assert.True(t, hyps[1].Final)
	assert.Equal(t, linegen.SentenceEnd, hyps[1].Tokens[2].Flags)
	assert.Equal(t, -0.5, hyps[1].Tokens[1].LogProb)
	assert.True(t, hyps[2].Break)
	assert.Empty(t, hyps[2].Tokens)
}

func TestParseScriptErrors(t *testing.T) {
	_, err := ParseScript(strings.NewReader(`{"tokens":[{"text":"x","flags":["loud"]}]}`))
	assert.ErrorContains(t, err, "line 1")

	_, err = ParseScript(strings.NewReader("\n{not json"))
	assert.ErrorContains(t, err, "line 2")
}

func TestScriptSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))

	tr := NewScript(path)
	assert.Equal(t, "script", tr.Name())
	s, err := tr.NewSession(context.Background(), SessionConfig{})
	require.NoError(t, err)
	assert.Len(t, drain(t, s), 3)
	_, err = s.Close()
	require.NoError(t, err)

	_, err = NewScript(filepath.Join(t.TempDir(), "missing")).NewSession(context.Background(), SessionConfig{})
	assert.Error(t, err)
}
