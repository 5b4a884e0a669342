package filter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecap/linegen"
)

func tok(text string, flags linegen.Flags) linegen.Token {
	return linegen.Token{Text: text, Flags: flags}
}

var testLexicon = Lexicon{
	Slurs:     []string{"Badword"},
	Profanity: []string{"darn", "heck!"},
}

func TestSkip(t *testing.T) {
	wb := linegen.WordBoundary
	tokens := []linegen.Token{
		tok(" oh", wb),
		tok(" DAR", wb),
		tok("N", 0),
		tok(" bad", wb),
		tok("word", 0),
		tok(",", 0),
		tok(" ", wb),
		tok("heck", 0),
		tok(".", linegen.SentenceEnd),
	}

	for _, tt := range []struct {
		name string
		pos  int
		mode linegen.FilterMode
		want int
	}{
		{"clean word", 0, linegen.FilterProfanity, 0},
		{"profanity in profanity mode", 1, linegen.FilterProfanity, 2},
		{"profanity in slur mode", 1, linegen.FilterSlurs, 0},
		{"slur with trailing punctuation", 3, linegen.FilterSlurs, 3},
		{"slur in profanity mode", 3, linegen.FilterProfanity, 3},
		{"bare separator joins next piece", 6, linegen.FilterProfanity, 2},
		{"mode none", 1, linegen.FilterNone, 0},
		{"out of range", 42, linegen.FilterProfanity, 0},
	} {
		t.Run(tt.name, func(t *testing.T) {
			w := New(testLexicon)
			assert.Equal(t, tt.want, w.Skip(tokens, tt.pos, tt.mode))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(path, []byte("slurs = [\"one\"]\nprofanity = [\"two\", \"three\"]\n"), 0644))

	w, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, w.Len())
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestWordListInGenerator(t *testing.T) {
	wb := linegen.WordBoundary
	g := linegen.New(1, 100, constWidth{}, linegen.WithFilter(New(testLexicon)))
	tokens := []linegen.Token{tok(" oh", wb), tok(" dar", wb), tok("n", 0), tok(" it", wb)}

	g.Update(tokens, linegen.Settings{Filter: linegen.FilterProfanity, Uppercase: true})
	assert.Equal(t, " oh"+linegen.Replacement+" it", g.Render())
}

type constWidth struct{}

func (constWidth) Width(string) float64 { return 1 }
