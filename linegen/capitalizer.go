package linegen

import "strings"

// Capitalizer decides, token by token, whether a token's first letter
// should be uppercased. It is fed strictly left to right; Rewind restores
// the state recorded by the last Finish so a replayed stream yields the same
// decisions.
type Capitalizer struct {
	previousWasPeriod bool
	forceNextCap      bool
	finishedAtPeriod  bool
	wordStart         bool
	english           bool
}

// NewCapitalizer starts as if a sentence had just ended, so the first word
// of a session is capitalized.
func NewCapitalizer() *Capitalizer {
	return &Capitalizer{
		previousWasPeriod: true,
		finishedAtPeriod:  true,
		wordStart:         true,
		english:           true,
	}
}

// SetEnglish toggles the pronoun "I" rule.
func (c *Capitalizer) SetEnglish(on bool) { c.english = on }

func (c *Capitalizer) English() bool { return c.english }

// Next consumes tok and reports whether it should be capitalized. next is
// the following token, or nil at the end of the stream.
func (c *Capitalizer) Next(tok Token, next *Token) bool {
	wordStart := c.wordStart
	c.wordStart = strings.HasSuffix(tok.Text, " ")

	if tok.Is(SentenceEnd) {
		c.previousWasPeriod = true
		return false
	}

	if c.forceNextCap {
		c.forceNextCap = false
		return true
	}

	if c.previousWasPeriod && tok.Is(WordBoundary) {
		// a bare space has nothing to capitalize, pass it on
		if tok.Text == " " {
			c.forceNextCap = true
		}
		c.previousWasPeriod = false
		return true
	}

	if c.english && (tok.Text == " I" || (tok.Text == "I" && wordStart)) {
		if next == nil || next.Is(WordBoundary|SentenceEnd) || strings.HasPrefix(next.Text, "'") {
			return true
		}
	}

	return false
}

// Scan runs Next over the whole sequence and stores the decisions in dst,
// which is grown as needed and returned.
func (c *Capitalizer) Scan(tokens []Token, dst []bool) []bool {
	dst = dst[:0]
	for i := range tokens {
		var next *Token
		if i+1 < len(tokens) {
			next = &tokens[i+1]
		}
		dst = append(dst, c.Next(tokens[i], next))
	}
	return dst
}

// Finish records where the current segment ended and clears the running
// state for the next one.
func (c *Capitalizer) Finish() {
	c.finishedAtPeriod = c.previousWasPeriod
	c.previousWasPeriod = false
	c.forceNextCap = false
	c.wordStart = true
}

// Rewind returns to the state recorded by the last Finish.
func (c *Capitalizer) Rewind() {
	c.previousWasPeriod = c.finishedAtPeriod
	c.forceNextCap = false
	c.wordStart = true
}
