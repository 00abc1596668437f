package surface

import (
	"github.com/mattn/go-runewidth"
)

// DrawText writes s starting at (x, y) and returns the column after the last cell drawn
// Wide runes take two columns, zero-width runes are skipped, text is clipped at the right edge
func DrawText(s Surface, x, y int, text string, style Style) int {
	width, height := s.Size()
	if y < 0 || y >= height {
		return x
	}
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		if x >= 0 {
			s.SetCell(x, y, r, style)
			if w == 2 {
				s.SetCell(x+1, y, 0, style)
			}
		}
		x += w
	}
	return x
}

// TextWidth returns the number of columns text occupies
func TextWidth(text string) int {
	return runewidth.StringWidth(text)
}

// Truncate shortens text to at most width columns, appending tail when cut
func Truncate(text string, width int, tail string) string {
	return runewidth.Truncate(text, width, tail)
}

func isWide(r rune) bool {
	return runewidth.RuneWidth(r) == 2
}

// Fill sets every cell of the row range [x, x+w) to r
func Fill(s Surface, x, y, w int, r rune, style Style) {
	for i := 0; i < w; i++ {
		s.SetCell(x+i, y, r, style)
	}
}
