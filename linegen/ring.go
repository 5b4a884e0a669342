package linegen

const inactive = -1

// line is one display slot. Everything before frozenLen survives the
// truncation every layout pass starts with.
type line struct {
	buf         []byte
	width       float64
	frozenLen   int
	frozenWidth float64
}

func (l *line) reset() {
	l.buf = l.buf[:l.frozenLen]
	l.width = l.frozenWidth
}

func (l *line) freeze() {
	l.frozenLen = len(l.buf)
	l.frozenWidth = l.width
}

func (l *line) clear() {
	l.buf = l.buf[:0]
	l.width = 0
	l.frozenLen = 0
	l.frozenWidth = 0
}

// ring is the circular store of display lines. start[i] is the first token
// rendered into slot i, or inactive. Only lines[current] grows; any other
// active slot i shows tokens [start[i], start[next(i)]).
type ring struct {
	lines   []line
	start   []int
	current int
}

func newRing(n, capacity int) ring {
	r := ring{
		lines: make([]line, n),
		start: make([]int, n),
	}
	for i := range r.lines {
		r.lines[i].buf = make([]byte, 0, capacity)
		r.start[i] = inactive
	}
	r.start[0] = 0
	return r
}

func (r *ring) rel(head, delta int) int {
	n := len(r.lines)
	return ((head+delta)%n + n) % n
}

func (r *ring) next(i int) int { return r.rel(i, 1) }

func (r *ring) deactivateAll() {
	for i := range r.start {
		r.start[i] = inactive
	}
}

// advance makes the slot after current the new growing line starting at
// token, evicting whatever it held.
func (r *ring) advance(token int) {
	r.current = r.next(r.current)
	r.start[r.current] = token
	r.lines[r.current].clear()
}
