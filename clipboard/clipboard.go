package clipboard

import (
	"errors"

	cb "github.com/atotto/clipboard"
)

var ErrUnavailable = errors.New("no clipboard utility available")

func Available() bool { return !cb.Unsupported }

// Copy replaces the system clipboard contents with text.
func Copy(text string) error {
	if cb.Unsupported {
		return ErrUnavailable
	}
	return cb.WriteAll(text)
}

func Read() (string, error) {
	if cb.Unsupported {
		return "", ErrUnavailable
	}
	return cb.ReadAll()
}

// System is the system clipboard as a value, for callers that take an
// interface.
type System struct{}

func (System) Available() bool { return Available() }

func (System) Copy(text string) error { return Copy(text) }

func (System) Read() (string, error) { return Read() }
