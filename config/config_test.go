package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"livecap/linegen"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadEmptyPath(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `
fade_text = false
filter_profanity = true
text_uppercase = true
language = "de"
lines = 4
max_width = 60
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.False(t, s.Fade)
	assert.True(t, s.FilterSlurs, "unset keys keep defaults")
	assert.True(t, s.Uppercase)
	assert.Equal(t, "de", s.Language)
	assert.Equal(t, 4, s.Lines)
	assert.Equal(t, 60, s.MaxWidth)
	assert.Equal(t, linegen.Settings{Fade: false, Filter: linegen.FilterProfanity, Uppercase: true}, s.Layout())
}

func TestLoadRejectsBadFiles(t *testing.T) {
	for name, body := range map[string]string{
		"syntax":   "lines = [",
		"lines":    "lines = 0",
		"width":    "max_width = -3",
		"too many": "lines = 99",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, body)
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestFilterMode(t *testing.T) {
	for _, tt := range []struct {
		slurs, profanity bool
		want             linegen.FilterMode
	}{
		{false, false, linegen.FilterNone},
		{true, false, linegen.FilterSlurs},
		{false, true, linegen.FilterProfanity},
		{true, true, linegen.FilterProfanity},
	} {
		s := Settings{FilterSlurs: tt.slurs, FilterProfanity: tt.profanity}
		assert.Equal(t, tt.want, s.FilterMode())
	}
}

func TestResolvePath(t *testing.T) {
	got, err := ResolvePath("/etc/livecap.toml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/livecap.toml", got)

	t.Setenv("LIVECAP_CONFIG", "/tmp/env.toml")
	got, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.toml", got)

	t.Setenv("LIVECAP_CONFIG", "")
	got, err = ResolvePath("")
	require.NoError(t, err)
	assert.Equal(t, "config.toml", filepath.Base(got))
}

func TestStoreOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "lines = 3\n")

	st, err := NewStore(path, func(s *Settings) { s.Fade = false })
	require.NoError(t, err)
	assert.Equal(t, 3, st.Settings().Lines)
	assert.False(t, st.Settings().Fade)

	_, err = NewStore(path, func(s *Settings) { s.Lines = 0 })
	assert.Error(t, err)
}

func TestStoreWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "lines = 2\n")

	st, err := NewStore(path, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan Settings, 8)
	require.NoError(t, st.Watch(ctx, func(s Settings) { changed <- s }))

	writeConfig(t, path, "lines = 5\n")

	// a write can surface as several events, the first maybe seeing a
	// truncated file
	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-changed:
			if s.Lines == 5 {
				assert.Equal(t, 5, st.Settings().Lines)
				return
			}
		case <-deadline:
			t.Fatal("no reload after write")
		}
	}
}
