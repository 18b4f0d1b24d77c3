package ui

// Selector cycles a highlight over button ids [start, end). Stepping past
// the last button lands on the command line boundary and wraps to start
type Selector struct {
	start, end int
	sel        int
}

// NewSelector starts with nothing highlighted
func NewSelector(start, end int) *Selector {
	return &Selector{start: start, end: end, sel: start - 1}
}

// Selected returns the highlighted button, if any
func (s *Selector) Selected() (int, bool) {
	return s.sel, s.start <= s.sel && s.sel < s.end
}

// Next advances the highlight and returns the new one. boundary is true when
// the step passed the last button; the highlight is then back on start
func (s *Selector) Next() (sel int, boundary bool) {
	s.sel++
	if s.sel >= s.end {
		s.sel = s.start
		return s.sel, true
	}
	return s.sel, false
}
