package layout

import (
	"golang.org/x/image/font"
)

// Wrap packs text into lines that fit maxWidth pixels, one rune at a time.
// Narration text is dense and unspaced, so there is no word-boundary
// breaking: the first rune that would overflow the budget starts a new line.
// Pure function of the text and font metrics.
func Wrap(face font.Face, text string, maxWidth float64) []string {
	if text == "" {
		return nil
	}

	var lines []string
	var line []rune

	for _, r := range text {
		line = append(line, r)
		if len(line) == 1 {
			continue
		}
		if measure(face, string(line)) > maxWidth {
			lines = append(lines, string(line[:len(line)-1]))
			line = []rune{r}
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}

	return lines
}

// measure возвращает ширину строки в пикселях для данного шрифта.
func measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64.0
}
