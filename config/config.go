// Package config holds the caption display settings and reloads them when
// the settings file changes.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"

	"livecap/linegen"
	"livecap/log"
)

const MaxLines = 32

type Settings struct {
	Fade            bool   `toml:"fade_text"`
	FilterSlurs     bool   `toml:"filter_slurs"`
	FilterProfanity bool   `toml:"filter_profanity"`
	Uppercase       bool   `toml:"text_uppercase"`
	Language        string `toml:"language"`
	Lines           int    `toml:"lines"`
	MaxWidth        int    `toml:"max_width"` // 0 = fit the terminal
	Lexicon         string `toml:"lexicon"`
}

func Default() Settings {
	return Settings{
		Fade:        true,
		FilterSlurs: true,
		Language:    "en",
		Lines:       2,
	}
}

// FilterMode folds the two filter switches into the ordered mode;
// profanity includes slurs.
func (s Settings) FilterMode() linegen.FilterMode {
	switch {
	case s.FilterProfanity:
		return linegen.FilterProfanity
	case s.FilterSlurs:
		return linegen.FilterSlurs
	}
	return linegen.FilterNone
}

// Layout is the part of the settings a layout update reads.
func (s Settings) Layout() linegen.Settings {
	return linegen.Settings{
		Fade:      s.Fade,
		Filter:    s.FilterMode(),
		Uppercase: s.Uppercase,
	}
}

func (s Settings) Validate() error {
	if s.Lines < 1 || s.Lines > MaxLines {
		return fmt.Errorf("lines must be between 1 and %d, got %d", MaxLines, s.Lines)
	}
	if s.MaxWidth < 0 {
		return fmt.Errorf("max_width must not be negative, got %d", s.MaxWidth)
	}
	return nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Default(), fmt.Errorf("invalid config %s: %w", path, err)
	}
	return s, nil
}

func ResolvePath(flagPath string) (string, error) {
	// Priority 1: --config flag
	if flagPath != "" {
		return filepath.Abs(flagPath)
	}

	// Priority 2: LIVECAP_CONFIG environment variable
	if envPath := os.Getenv("LIVECAP_CONFIG"); envPath != "" {
		return filepath.Abs(envPath)
	}

	// Priority 3: user config directory
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "livecap", "config.toml"), nil
}

// Store serves the current settings to the layout loop. Reads are
// lock-free; a reload swaps in a new snapshot.
type Store struct {
	path     string
	override func(*Settings)
	cur      atomic.Pointer[Settings]
}

// NewStore loads path and applies override (command-line flags) on top of
// it, now and after every reload.
func NewStore(path string, override func(*Settings)) (*Store, error) {
	s := &Store{path: path, override: override}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Settings() Settings { return *s.cur.Load() }

func (s *Store) Reload() error {
	cfg, err := Load(s.path)
	if err != nil {
		return err
	}
	if s.override != nil {
		s.override(&cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	s.cur.Store(&cfg)
	return nil
}

// Watch reloads the settings whenever the file changes, until ctx is done.
// onChange runs on the watcher goroutine after each successful reload.
func (s *Store) Watch(ctx context.Context, onChange func(Settings)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	// editors replace the file, so watch the directory
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	go s.watch(ctx, w, onChange)
	return nil
}

func (s *Store) watch(ctx context.Context, w *fsnotify.Watcher, onChange func(Settings)) {
	defer w.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			if err := s.Reload(); err != nil {
				log.Warnf("config reload failed: %v", err)
				continue
			}
			log.Info("config_reloaded")
			if onChange != nil {
				onChange(s.Settings())
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warnf("config watcher: %v", err)
		}
	}
}
