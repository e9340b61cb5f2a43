package review

import "unicode/utf8"

const ellipsis = "…"

// truncate shortens text to at most width runes, ending in an ellipsis when
// anything was cut. A width of zero or less means unlimited.
func truncate(text string, width int) string {
	if width <= 0 || utf8.RuneCountInString(text) <= width {
		return text
	}
	if width <= utf8.RuneCountInString(ellipsis) {
		return string([]rune(ellipsis)[:width])
	}
	runes := []rune(text)
	return string(runes[:width-utf8.RuneCountInString(ellipsis)]) + ellipsis
}

// window returns the [start, end) range of at most size items that keeps
// cursor visible. A size of zero or less shows everything.
func window(cursor, total, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := cursor - size/2
	start = max(0, min(start, total-size))
	return start, start + size
}
