package linegen

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"livecap/log"
)

const (
	// LineCapacity is the default size of one line buffer in bytes.
	LineCapacity = 4096
	// SafetyMargin is the headroom below capacity at which a line stops
	// accepting tokens for the rest of the pass.
	SafetyMargin = 256
	// Replacement is written in place of a filtered word.
	Replacement = " [__]"
)

// Stats counts what the last Update did.
type Stats struct {
	Passes     int
	Wraps      int
	Backtracks int
	Truncated  int
}

// Generator is the layout engine. It is not safe for concurrent use; one
// goroutine owns it along with the token stream that feeds it.
type Generator struct {
	ring     ring
	caps     *Capitalizer
	capFlags []bool
	metrics  Metrics
	filter   Filter
	styler   Styler
	maxWidth float64
	capacity int
	stats    Stats
}

type Option func(*Generator)

func WithFilter(f Filter) Option { return func(g *Generator) { g.filter = f } }

func WithStyler(s Styler) Option { return func(g *Generator) { g.styler = s } }

// WithLineCapacity overrides the per-line buffer size. Values below twice
// the safety margin are raised to it.
func WithLineCapacity(n int) Option {
	return func(g *Generator) { g.capacity = max(n, 2*SafetyMargin) }
}

// New returns a generator with n display lines (at least one) that wraps
// the growing line once its measured width reaches maxWidth.
func New(n int, maxWidth float64, metrics Metrics, opts ...Option) *Generator {
	g := &Generator{
		caps:     NewCapitalizer(),
		metrics:  metrics,
		styler:   Pango{},
		maxWidth: maxWidth,
		capacity: LineCapacity,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.ring = newRing(max(n, 1), g.capacity)
	return g
}

func (g *Generator) Lines() int { return len(g.ring.lines) }

func (g *Generator) Stats() Stats { return g.stats }

// SetMaxWidth changes the wrap width. Lines already scrolled up keep their
// layout; the growing line is rewrapped on the next Update.
func (g *Generator) SetMaxWidth(w float64) { g.maxWidth = w }

// SetLanguage enables the English-only capitalization rules when code is
// an English language code.
func (g *Generator) SetLanguage(code string) {
	g.caps.SetEnglish(strings.HasPrefix(code, "en"))
}

// Update lays out tokens, the complete current hypothesis, into the line
// store. Calling it again with the same tokens and settings produces the
// same lines.
func (g *Generator) Update(tokens []Token, s Settings) {
	g.stats = Stats{}

	g.caps.Rewind()
	g.capFlags = g.caps.Scan(tokens, g.capFlags)

	// every retry either deactivates a line or moves a line start forward
	limit := len(g.ring.lines) + len(tokens) + 2
	for g.stats.Passes < limit {
		g.stats.Passes++
		if g.pass(tokens, s) {
			log.LayoutPass(log.LayoutStats{
				Tokens:     len(tokens),
				Passes:     g.stats.Passes,
				Wraps:      g.stats.Wraps,
				Backtracks: g.stats.Backtracks,
				Truncated:  g.stats.Truncated,
			})
			return
		}
	}
	log.Errorf("linegen: layout did not settle after %d passes (%d tokens)", g.stats.Passes, len(tokens))
	log.Debugf("linegen: stats at pass limit %+v, current slot %d", g.stats, g.ring.current)
}

// pass renders every active line once. It returns false when it changed
// the line layout and the whole pass must be redone.
func (g *Generator) pass(tokens []Token, s Settings) bool {
	r := &g.ring
	for i := range r.lines {
		start := r.start[i]
		if start == inactive {
			continue
		}
		r.lines[i].reset()

		if len(tokens) == 0 {
			continue
		}

		growing := i == r.current
		if start >= len(tokens) {
			if !growing {
				continue
			}
			// the hypothesis shrank below this line, fall back a line
			g.backtrack()
			return false
		}

		end := r.start[r.next(i)]
		if end == inactive || growing {
			end = len(tokens)
		}
		// the hypothesis may now end inside this line
		end = min(end, len(tokens))

		if !g.layLine(i, tokens, start, end, s) {
			return false
		}
	}
	return true
}

func (g *Generator) backtrack() {
	r := &g.ring
	g.stats.Backtracks++
	prev := r.rel(r.current, -1)
	if prev == r.current || r.start[prev] == inactive {
		// the previous line was evicted; re-anchor on the stream start
		r.start[r.current] = 0
		return
	}
	r.start[r.current] = inactive
	r.lines[r.current].clear()
	r.current = prev
}

// layLine appends tokens [start, end) to slot i. It returns false after
// wrapping the growing line.
func (g *Generator) layLine(i int, tokens []Token, start, end int, s Settings) bool {
	ln := &g.ring.lines[i]
	growing := i == g.ring.current

	for j := start; j < end; {
		skip := 1
		text := g.tokenText(tokens, j, s)

		if s.Filter > FilterNone && g.filter != nil && tokens[j].Is(WordBoundary) {
			if n := g.filter.Skip(tokens, j, s.Filter); n > 0 {
				skip = n
				text = Replacement
			}
		}

		piece := g.styler.Style(text, Alpha(tokens[j].LogProb), s.Fade)
		if len(ln.buf) > g.capacity-SafetyMargin || len(ln.buf)+len(piece) > g.capacity {
			if growing && ln.frozenLen > 0 {
				// frozen text has filled the line; carry the live segment
				// to a fresh one so it can keep growing
				g.stats.Wraps++
				g.ring.advance(start)
				return false
			}
			g.stats.Truncated++
			if g.stats.Truncated == 1 {
				log.LineTruncated(i, j, len(ln.buf))
			}
			break
		}

		if growing {
			ln.width += g.metrics.Width(text)
			if ln.width >= g.maxWidth {
				if brk, ok := wrapPoint(tokens, start, j, ln.frozenLen > 0); ok {
					g.stats.Wraps++
					g.ring.advance(brk)
					return false
				}
			}
		}

		ln.buf = append(ln.buf, piece...)
		j += skip
	}
	return true
}

// wrapPoint picks the token the next line starts at after token j pushed
// the growing line past its width: the closest word boundary at or before
// j, but after start. With no such boundary the break goes at j, unless the
// line has frozen content to give up, in which case the whole segment
// moves down. ok is false when a single token is wider than the line and
// nothing can move.
func wrapPoint(tokens []Token, start, j int, frozen bool) (brk int, ok bool) {
	brk = j
	for brk > start && !tokens[brk].Is(WordBoundary) {
		brk--
	}
	if brk == start && !frozen {
		brk = j
	}
	if brk == start && !frozen {
		return 0, false
	}
	return brk, true
}

// tokenText applies the case policy to token j.
func (g *Generator) tokenText(tokens []Token, j int, s Settings) string {
	text := tokens[j].Text
	if s.Uppercase {
		return text
	}
	out, ok := recase(make([]byte, 0, len(text)), text, g.capFlags[j])
	if !ok {
		log.Warnf("linegen: invalid UTF-8 in token %d %q", j, text)
	}
	return string(out)
}

// recase lowercases text and, when capitalize is set, uppercases the first
// code point that changes under uppercasing. On invalid UTF-8 it stops and
// returns what it converted so far with ok false.
func recase(dst []byte, text string, capitalize bool) ([]byte, bool) {
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			return dst, false
		}
		r = unicode.ToLower(r)
		if capitalize {
			if u := unicode.ToUpper(r); u != r {
				r = u
				capitalize = false
			}
		}
		dst = utf8.AppendRune(dst, r)
		i += size
	}
	return dst, true
}

// Finalize freezes what the growing line shows so far. The next token
// stream starts over at index 0 and continues on the same line.
func (g *Generator) Finalize() {
	r := &g.ring
	r.deactivateAll()
	r.lines[r.current].freeze()
	g.caps.Finish()
	r.start[r.current] = 0
}

// Break starts a fresh line, scrolling the others up and dropping the
// oldest when every slot is in use.
func (g *Generator) Break() {
	r := &g.ring
	r.deactivateAll()
	r.advance(0)
}

// Render returns the N lines, oldest first, joined by newlines. Empty
// slots render as empty lines.
func (g *Generator) Render() string {
	r := &g.ring
	var b strings.Builder
	n := len(r.lines)
	for k := n - 1; k >= 0; k-- {
		b.Write(r.lines[r.rel(r.current, -k)].buf)
		if k != 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Plain is Render with the styler's markup removed.
func (g *Generator) Plain() string {
	return g.styler.Strip(g.Render())
}
