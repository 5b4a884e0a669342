package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"livecap/clipboard"
	"livecap/config"
	"livecap/doctor"
	"livecap/filter"
	"livecap/linegen"
	"livecap/log"
	"livecap/shutdown"
	"livecap/textwidth"
	"livecap/transcriber"
)

var version = "dev"

const (
	defaultWidth   = 80
	widthCacheSize = 4096
)

// Config holds the command-line configuration. Flags that are set
// override the config file.
type Config struct {
	ConfigPath string
	Lines      int
	Width      int
	Lang       string
	Fade       bool
	Plain      bool
	Markup     bool
	Interval   time.Duration
	Script     bool
	LogPath    string
	Lexicon    string
	Debug      bool
	File       string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "livecap [flags] [file]",
		Short: "Live caption lines from a streaming transcript",
		Long: `livecap lays out a live transcript as a fixed number of word-wrapped
caption lines, redrawing them as the recognizer revises its hypothesis.

Input is plain text played back word by word, or with --script a JSON-lines
recording of recognizer hypotheses. Without a file, text is read from stdin.`,
		Example: `  # Watch a text file being captioned
  livecap speech.txt

  # Replay a recorded session at 150ms per update
  livecap --script --interval 150ms session.jsonl

  # Print the final Pango markup
  echo "hello there. general kenobi." | livecap --markup`,
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.File = args[0]
			}
			return run(cmd, cfg)
		},
	}

	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&cfg.ConfigPath, "config", "", "Config file (default $LIVECAP_CONFIG or the user config dir)")
	persistent.StringVar(&cfg.LogPath, "logpath", "", "Diagnostics log directory (default $LIVECAP_LOG_PATH or the OS log dir)")

	flags := rootCmd.Flags()
	flags.IntVarP(&cfg.Lines, "lines", "n", 2, "Number of caption lines")
	flags.IntVarP(&cfg.Width, "width", "w", 0, "Wrap width in cells (0 = fit the terminal)")
	flags.StringVar(&cfg.Lang, "lang", "en", "Transcript language code")
	flags.BoolVar(&cfg.Fade, "fade", true, "Fade low-confidence words")
	flags.BoolVar(&cfg.Plain, "plain", false, "Print the final lines instead of running the TUI")
	flags.BoolVar(&cfg.Markup, "markup", false, "In plain mode print Pango markup instead of text")
	flags.DurationVar(&cfg.Interval, "interval", 80*time.Millisecond, "Delay between transcript updates")
	flags.BoolVar(&cfg.Script, "script", false, "Input is a JSON-lines hypothesis recording")
	flags.StringVar(&cfg.Lexicon, "lexicon", "", "TOML word list for the slur and profanity filters")
	flags.BoolVarP(&cfg.Debug, "debug", "d", false, "Log every layout pass")

	rootCmd.AddCommand(doctorCmd(&cfg))

	ctx, stop := shutdown.Context(context.Background())
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func doctorCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, log directory, clipboard and the layout engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code := doctor.Run(cmd.OutOrStdout(), doctor.Options{
				ConfigPath: cfg.ConfigPath,
				LogPath:    cfg.LogPath,
				Clipboard:  clipboard.System{},
				Terminal: func() (int, bool) {
					if !term.IsTerminal(int(os.Stdout.Fd())) {
						return 0, false
					}
					return terminalWidth() + 2*hPad, true
				},
			})
			if code != 0 {
				return errors.New("doctor found problems")
			}
			return nil
		},
	}
}

// flagOverrides applies the flags the user set on top of the file settings.
func flagOverrides(cfg Config, changed func(string) bool) func(*config.Settings) {
	return func(s *config.Settings) {
		if changed("lines") {
			s.Lines = cfg.Lines
		}
		if changed("width") {
			s.MaxWidth = cfg.Width
		}
		if changed("lang") {
			s.Language = cfg.Lang
		}
		if changed("fade") {
			s.Fade = cfg.Fade
		}
		if changed("lexicon") {
			s.Lexicon = cfg.Lexicon
		}
	}
}

func newTranscriber(cfg Config, stdin io.Reader) (transcriber.Transcriber, error) {
	if cfg.Script {
		if cfg.File == "" || cfg.File == "-" {
			return nil, errors.New("--script needs a file argument")
		}
		return transcriber.NewScript(cfg.File), nil
	}

	var data []byte
	var err error
	if cfg.File == "" || cfg.File == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(cfg.File)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return transcriber.NewText(string(data)), nil
}

func modeLine(tr transcriber.Transcriber, s config.Settings) string {
	return fmt.Sprintf("[%s | %s | %s filter | %d lines]", tr.Name(), s.Language, s.FilterMode(), s.Lines)
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 2*hPad {
		return defaultWidth
	}
	return w - 2*hPad
}

func run(cmd *cobra.Command, cfg Config) error {
	ctx := cmd.Context()

	logDir, err := log.ResolveDir(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to resolve log directory: %w", err)
	}
	log.SetDir(logDir)
	log.SetDebug(cfg.Debug)
	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: diagnostics log unavailable in %s: %v\n", log.Dir(), err)
	}
	defer log.Close()

	cfgPath, err := config.ResolvePath(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	store, err := config.NewStore(cfgPath, flagOverrides(cfg, cmd.Flags().Changed))
	if err != nil {
		return err
	}
	settings := store.Settings()

	interactive := !cfg.Plain && term.IsTerminal(int(os.Stdout.Fd()))

	var styler linegen.Styler = linegen.Pango{}
	if interactive {
		styler = linegen.Terminal{}
	}
	opts := []linegen.Option{linegen.WithStyler(styler)}
	if settings.Lexicon != "" {
		wl, err := filter.Load(settings.Lexicon)
		if err != nil {
			return err
		}
		log.Info(fmt.Sprintf("lexicon loaded: %d words", wl.Len()))
		opts = append(opts, linegen.WithFilter(wl))
	}

	tr, err := newTranscriber(cfg, os.Stdin)
	if err != nil {
		return err
	}
	tr.SetLanguage(settings.Language)

	width := settings.MaxWidth
	if width == 0 {
		width = defaultWidth
		if interactive {
			width = terminalWidth()
		}
	}
	gen := linegen.New(settings.Lines, float64(width), textwidth.NewCache(textwidth.Cells{}, widthCacheSize), opts...)

	var sink EventSink = &plainSink{out: cmd.OutOrStdout(), markup: cfg.Markup}
	if interactive {
		sink = tuiSink{}
	}
	p := newPipeline(gen, store, sink)

	applied := settings
	if err := store.Watch(ctx, func(s config.Settings) {
		p.Reconfigure(applied, s)
		applied = s
		sink.ModeLine(modeLine(tr, s))
	}); err != nil {
		log.Warnf("config watch disabled: %v", err)
	}

	sess, err := tr.NewSession(ctx, transcriber.SessionConfig{Interval: cfg.Interval})
	if err != nil {
		return fmt.Errorf("failed to start %s session: %w", tr.Name(), err)
	}
	log.SessionStart(tr.Name(), settings.Language, settings.Lines)

	var res transcriber.SessionResult
	if interactive {
		res, err = runTUI(ctx, p, sess, modeLine(tr, settings), settings.MaxWidth > 0)
	} else {
		sink.ModeLine(modeLine(tr, settings))
		res, err = p.run(ctx, sess)
	}
	log.SessionEnd(res.Hypotheses, res.Finals)
	return err
}

func runTUI(ctx context.Context, p *pipeline, sess transcriber.Session, mode string, fixedWidth bool) (transcriber.SessionResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// stdin carried the transcript, read keys from the terminal
		progOpts = append(progOpts, tea.WithInputTTY())
	}

	tuiMu.Lock()
	tuiProgram = tea.NewProgram(newTUIModel(p, clipboard.Copy, fixedWidth), progOpts...)
	prog := tuiProgram
	tuiMu.Unlock()

	var res transcriber.SessionResult
	var sessErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.sink.ModeLine(mode)
		res, sessErr = p.run(ctx, sess)
	}()

	_, err := prog.Run()
	cancel()
	<-done

	tuiMu.Lock()
	tuiProgram = nil
	tuiMu.Unlock()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Error("TUI error: " + err.Error())
		return res, err
	}
	return res, sessErr
}
