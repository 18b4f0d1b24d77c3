package ui

import (
	"context"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/omochice/netbattle/internal/ansi"
)

// Signal tells the navigation loop what to do after an action
type Signal int

const (
	// Continue stays on the current screen
	Continue Signal = iota
	// PopScreen returns to the previous screen
	PopScreen
	// Exit leaves the UI
	Exit
)

// Action runs when a button is activated
type Action func(ctx context.Context) (Signal, error)

// Button is a framed label at a fixed screen position
type Button struct {
	Col, Row int
	Label    string
	Action   Action
}

type frameGlyphs struct {
	topLeft, topRight, bottomLeft, bottomRight, horizontal, vertical string
}

var (
	lightFrame = frameGlyphs{"┌", "┐", "└", "┘", "─", "│"}
	heavyFrame = frameGlyphs{"┏", "┓", "┗", "┛", "━", "┃"}
)

// Draw paints the button. A selected button is bold with a heavy frame
func (b Button) Draw(w io.Writer, selected bool) {
	g := lightFrame
	if selected {
		g = heavyFrame
		io.WriteString(w, ansi.Bold)
	}

	bar := strings.Repeat(g.horizontal, runewidth.StringWidth(b.Label))
	io.WriteString(w, ansi.MoveTo(b.Col, b.Row))
	io.WriteString(w, g.topLeft+bar+g.topRight)
	io.WriteString(w, ansi.MoveTo(b.Col, b.Row+1))
	io.WriteString(w, g.vertical+b.Label+g.vertical)
	io.WriteString(w, ansi.MoveTo(b.Col, b.Row+2))
	io.WriteString(w, g.bottomLeft+bar+g.bottomRight)

	if selected {
		io.WriteString(w, ansi.Reset)
	}
}
