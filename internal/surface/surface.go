// Package surface serializes every paint to the terminal. Notifications from
// the dispatcher and drawing from the UI share one lock, so a reader never
// sees a status row that is cleared but not yet rewritten
package surface

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/omochice/netbattle/internal/ansi"
)

var (
	serverTag = color.New(color.Bold, color.FgWhite)
	debugTag  = color.New(color.Bold, color.FgBlue)
	errorTag  = color.New(color.Bold, color.FgRed)
)

func init() {
	// The client always paints to a raw mode terminal
	for _, c := range []*color.Color{serverTag, debugTag, errorTag} {
		c.EnableColor()
	}
}

// Surface is the shared output region. Row offset 0 is the status line at
// the bottom of the screen, negative offsets are the rows above it
type Surface struct {
	mu      sync.Mutex
	out     io.Writer
	baseRow int
	width   int
}

// New creates a surface for a terminal of the given size
func New(out io.Writer, width, height int) *Surface {
	return &Surface{
		out:     out,
		baseRow: max(height-1, 1),
		width:   max(width, 1),
	}
}

// BaseRow returns the 1-based terminal row of the status line
func (s *Surface) BaseRow() int { return s.baseRow }

// Width returns the terminal width
func (s *Surface) Width() int { return s.width }

// Write clears the row at BaseRow()+offset and writes the formatted text
// there, truncated to the terminal width. Positive offsets are treated as 0
func (s *Surface) Write(offset int, format string, args ...any) {
	text := fmt.Sprintf(format, args...)
	s.writeRow(offset, runewidth.Truncate(text, s.width, ""))
}

// Server writes a message received from the server on the status line
func (s *Surface) Server(msg string) {
	s.tagged(serverTag, "server", msg)
}

// Debug writes a debug message on the status line
func (s *Surface) Debug(msg string) {
	s.tagged(debugTag, "DEBUG", msg)
}

// Error writes an error message on the status line
func (s *Surface) Error(msg string) {
	s.tagged(errorTag, "ERROR", msg)
}

// Status paints the user state row just above the status line
func (s *Surface) Status(name, state string) {
	s.Write(-1, "name: %s  state: %s", name, state)
}

// Paint runs fn with exclusive access to the terminal
func (s *Surface) Paint(fn func(w io.Writer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.out)
}

func (s *Surface) tagged(tag *color.Color, label, msg string) {
	room := max(s.width-runewidth.StringWidth(label)-3, 0)
	s.writeRow(0, tag.Sprintf("[%s]", label)+" "+runewidth.Truncate(msg, room, ""))
}

func (s *Surface) writeRow(offset int, text string) {
	row := s.baseRow + min(offset, 0)

	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.out, ansi.MoveTo(1, row))
	io.WriteString(s.out, strings.Repeat(" ", s.width))
	io.WriteString(s.out, ansi.MoveTo(1, row))
	io.WriteString(s.out, text)
}
