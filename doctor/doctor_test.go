package doctor

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClipboard struct {
	available bool
	text      string
	copyErr   error
}

func (f *fakeClipboard) Available() bool { return f.available }

func (f *fakeClipboard) Read() (string, error) { return f.text, nil }

func (f *fakeClipboard) Copy(text string) error {
	if f.copyErr != nil {
		return f.copyErr
	}
	f.text = text
	return nil
}

func writeSetup(t *testing.T) (cfgPath, logDir string) {
	t.Helper()
	dir := t.TempDir()
	lex := filepath.Join(dir, "words.toml")
	require.NoError(t, os.WriteFile(lex, []byte("slurs = [\"foo\"]\nprofanity = [\"bar\"]\n"), 0644))
	cfgPath = filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("lines = 3\nlexicon = \""+filepath.ToSlash(lex)+"\"\n"), 0644))
	return cfgPath, filepath.Join(dir, "logs")
}

func TestRunAllPass(t *testing.T) {
	cfgPath, logDir := writeSetup(t)
	cb := &fakeClipboard{available: true, text: "keep me"}

	var out bytes.Buffer
	code := Run(&out, Options{
		ConfigPath: cfgPath,
		LogPath:    logDir,
		Clipboard:  cb,
		Terminal:   func() (int, bool) { return 100, true },
	})

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "3 lines, en, slurs filter")
	assert.Contains(t, out.String(), "(2 words)")
	assert.Contains(t, out.String(), "PASS: 100 columns")
	assert.Contains(t, out.String(), "PASS: copy and read verified")
	assert.Contains(t, out.String(), "jumps over the | lazy dog.")
	assert.Contains(t, out.String(), "All checks passed!")
	assert.Equal(t, "keep me", cb.text)
	assert.DirExists(t, logDir)
}

func TestRunMissingConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	code := Run(&out, Options{
		ConfigPath: filepath.Join(dir, "none.toml"),
		LogPath:    dir,
		Clipboard:  &fakeClipboard{available: true},
	})

	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "not found, using defaults")
	assert.Contains(t, out.String(), "SKIP: no lexicon configured")
	assert.Contains(t, out.String(), "SKIP: no terminal check configured")
}

func TestRunClipboardFailures(t *testing.T) {
	dir := t.TempDir()
	base := Options{ConfigPath: filepath.Join(dir, "none.toml"), LogPath: dir}

	for _, tt := range []struct {
		name string
		cb   Clipboard
		want string
	}{
		{"missing", nil, "FAIL: no clipboard utility found"},
		{"unavailable", &fakeClipboard{}, "FAIL: no clipboard utility found"},
		{"copy error", &fakeClipboard{available: true, copyErr: errors.New("denied")}, "FAIL: copy failed: denied"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			o := base
			o.Clipboard = tt.cb
			var out bytes.Buffer
			assert.Equal(t, 1, Run(&out, o))
			assert.Contains(t, out.String(), tt.want)
			assert.Contains(t, out.String(), "Some checks failed.")
		})
	}
}

func TestRunBadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("lines = 0\n"), 0644))

	var out bytes.Buffer
	assert.Equal(t, 1, Run(&out, Options{ConfigPath: path, LogPath: dir, Clipboard: &fakeClipboard{available: true}}))
	assert.Contains(t, out.String(), "FAIL: invalid config")
}
