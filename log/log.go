package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
	level    = zerolog.InfoLevel
)

// LayoutStats mirrors the counters a layout update reports.
type LayoutStats struct {
	Tokens     int
	Passes     int
	Wraps      int
	Backtracks int
	Truncated  int
}

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: --logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: LIVECAP_LOG_PATH environment variable
	envPath := os.Getenv("LIVECAP_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

// SetDebug switches the diagnostics log to debug level. Must be called
// before Init.
func SetDebug(on bool) {
	if on {
		level = zerolog.DebugLevel
	} else {
		level = zerolog.InfoLevel
	}
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).Level(level).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Debugf(format string, args ...any) {
	if logReady {
		diagLog.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func LayoutPass(s LayoutStats) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Int("tokens", s.Tokens).
		Int("passes", s.Passes).
		Int("wraps", s.Wraps).
		Int("backtracks", s.Backtracks).
		Int("truncated", s.Truncated).
		Msg("layout")
}

func LineTruncated(slot, token, size int) {
	if !logReady {
		return
	}
	diagLog.Warn().
		Int("slot", slot).
		Int("token", token).
		Int("bytes", size).
		Msg("line_truncated")
}

func SessionStart(source, lang string, lines int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("source", source).
		Str("lang", lang).
		Int("lines", lines).
		Msg("session_start")
}

func SessionEnd(hypotheses, finals int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("hypotheses", hypotheses).
		Int("finals", finals).
		Msg("session_end")
}
