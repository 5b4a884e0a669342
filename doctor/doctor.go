package doctor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"livecap/config"
	"livecap/filter"
	"livecap/linegen"
	"livecap/log"
	"livecap/textwidth"
	"livecap/transcriber"
)

// Clipboard is the system clipboard as the doctor sees it.
type Clipboard interface {
	Available() bool
	Read() (string, error)
	Copy(text string) error
}

type Options struct {
	ConfigPath string // --config flag value
	LogPath    string // --logpath flag value
	Clipboard  Clipboard
	Terminal   func() (width int, ok bool)
}

type check struct {
	name string
	run  func(o Options) (string, error)
}

var checks = []check{
	{"Config file", checkConfig},
	{"Diagnostics log", checkLogDir},
	{"Word list", checkLexicon},
	{"Terminal", checkTerminal},
	{"Clipboard", checkClipboard},
	{"Layout engine", checkLayout},
}

// errSkip marks a check that does not apply to this setup.
var errSkip = errors.New("skipped")

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(w io.Writer, o Options) int {
	fmt.Fprintln(w, "livecap doctor - system diagnostics")
	fmt.Fprintln(w, "===================================")

	allPass := true
	for i, c := range checks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(checks), c.name)
		msg, err := c.run(o)
		switch {
		case errors.Is(err, errSkip):
			fmt.Fprintf(w, "  SKIP: %s\n", msg)
		case err != nil:
			fmt.Fprintf(w, "  FAIL: %v\n", err)
			allPass = false
		default:
			fmt.Fprintf(w, "  PASS: %s\n", msg)
		}
	}

	fmt.Fprintln(w)
	if allPass {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintln(w, "Some checks failed. See details above.")
	return 1
}

func loadSettings(o Options) (string, config.Settings, error) {
	path, err := config.ResolvePath(o.ConfigPath)
	if err != nil {
		return "", config.Default(), err
	}
	s, err := config.Load(path)
	return path, s, err
}

func checkConfig(o Options) (string, error) {
	path, s, err := loadSettings(o)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("%s not found, using defaults", path), nil
	}
	return fmt.Sprintf("%s (%d lines, %s, %s filter)", path, s.Lines, s.Language, s.FilterMode()), nil
}

func checkLogDir(o Options) (string, error) {
	dir, err := log.ResolveDir(o.LogPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create %s: %w", dir, err)
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return "", fmt.Errorf("%s is not writable: %w", dir, err)
	}
	f.Close()
	os.Remove(f.Name())
	return filepath.Join(dir, "diagnostics_log.txt"), nil
}

func checkLexicon(o Options) (string, error) {
	_, s, err := loadSettings(o)
	if err != nil {
		return "", err
	}
	if s.Lexicon == "" {
		return "no lexicon configured, filters match nothing", errSkip
	}
	wl, err := filter.Load(s.Lexicon)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%d words)", s.Lexicon, wl.Len()), nil
}

func checkTerminal(o Options) (string, error) {
	if o.Terminal == nil {
		return "no terminal check configured", errSkip
	}
	w, ok := o.Terminal()
	if !ok {
		return "stdout is not a terminal, plain output will be used", errSkip
	}
	return fmt.Sprintf("%d columns", w), nil
}

func checkClipboard(o Options) (string, error) {
	cb := o.Clipboard
	if cb == nil || !cb.Available() {
		return "", errors.New("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}

	prev, readErr := cb.Read()
	const sample = "livecap-doctor-test"
	if err := cb.Copy(sample); err != nil {
		return "", fmt.Errorf("copy failed: %w", err)
	}
	got, err := cb.Read()
	if readErr == nil {
		cb.Copy(prev)
	}
	if err != nil {
		return "", fmt.Errorf("read failed: %w", err)
	}
	if got != sample {
		return "", fmt.Errorf("clipboard round trip got %q, want %q", got, sample)
	}
	return "copy and read verified", nil
}

// checkLayout runs a short recorded sentence through the layout engine
// and checks the caption lines it settles on.
func checkLayout(Options) (string, error) {
	const lines = 2
	gen := linegen.New(lines, 16, textwidth.Cells{})
	settings := linegen.Settings{}
	for _, h := range transcriber.Simulate(transcriber.Tokenize("the quick brown fox jumps over the lazy dog.")) {
		gen.Update(h.Tokens, settings)
		if h.Final {
			gen.Finalize()
		}
	}

	const want = " jumps over the\n lazy dog."
	got := gen.Plain()
	if got != want {
		return "", fmt.Errorf("layout mismatch: got %q, want %q", got, want)
	}
	return fmt.Sprintf("%d lines, %s", lines, strings.ReplaceAll(strings.TrimSpace(got), "\n ", " | ")), nil
}
