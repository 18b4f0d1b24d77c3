// Package ansi holds the escape sequences the client paints with
package ansi

import "fmt"

// Control sequences written verbatim to the terminal
const (
	HideCursor = "\033[?25l" // hide the text cursor
	ShowCursor = "\033[?25h" // show the text cursor
	Bold       = "\033[1m"   // start bold text
	Reset      = "\033[0m"   // clear every text attribute
	ClearAll   = "\033[2J"   // blank the whole screen
)

// MoveTo positions the cursor at 1-based column col and row row
func MoveTo(col, row int) string {
	return fmt.Sprintf("\033[%d;%df", row, col)
}
