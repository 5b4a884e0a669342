package linegen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Styler turns one token into the markup stored in a line buffer.
type Styler interface {
	// Style renders text; alpha is only meaningful when fade is set.
	Style(text string, alpha int, fade bool) string
	// Strip removes the markup Style added.
	Strip(markup string) string
}

var (
	pangoEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	pangoUnescaper = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")
	pangoTag       = regexp.MustCompile(`<[^>]*>`)
)

// Pango emits Pango markup: one span per token carrying an fgalpha
// attribute when fading.
type Pango struct{}

func (Pango) Style(text string, alpha int, fade bool) string {
	text = pangoEscaper.Replace(text)
	if !fade {
		return text
	}
	return fmt.Sprintf(`<span fgalpha="%d">%s</span>`, alpha, text)
}

func (Pango) Strip(markup string) string {
	return pangoUnescaper.Replace(pangoTag.ReplaceAllString(markup, ""))
}

// Terminal emits ANSI colour sequences, approximating opacity with the
// 256-colour grey ramp.
type Terminal struct{}

const greyBase = 240

var greyStyles [16]lipgloss.Style

func init() {
	for i := range greyStyles {
		greyStyles[i] = lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(greyBase + i)))
	}
}

func greyIndex(alpha int) int {
	alpha = max(MinAlpha, min(MaxAlpha, alpha))
	return (alpha - MinAlpha) * (len(greyStyles) - 1) / (MaxAlpha - MinAlpha)
}

func (Terminal) Style(text string, alpha int, fade bool) string {
	if !fade {
		return text
	}
	return greyStyles[greyIndex(alpha)].Render(text)
}

func (Terminal) Strip(markup string) string {
	return ansi.Strip(markup)
}
