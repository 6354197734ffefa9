package layout

import (
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Face7x13 имеет фиксированный аванс 7px — метрики детерминированы.
var face = basicfont.Face7x13

func TestWrapExactColumns(t *testing.T) {
	// 10 одинаковых символов при бюджете ровно в 4 символа
	lines := Wrap(face, "AAAAAAAAAA", 28)

	expected := []int{4, 4, 2}
	if len(lines) != len(expected) {
		t.Fatalf("Expected %d lines, got %d: %v", len(expected), len(lines), lines)
	}
	for i, n := range expected {
		if len([]rune(lines[i])) != n {
			t.Errorf("Line %d: expected %d runes, got %d (%q)", i, n, len([]rune(lines[i])), lines[i])
		}
	}
}

func TestWrapWidthBudget(t *testing.T) {
	texts := []string{
		"The quick brown fox jumps over the lazy dog",
		"abcdefghijklmnopqrstuvwxyz0123456789",
		"x",
		"",
	}
	budgets := []float64{28, 35, 70, 7, 3}

	for _, text := range texts {
		for _, budget := range budgets {
			lines := Wrap(face, text, budget)

			// Конкатенация строк восстанавливает исходный текст
			if got := strings.Join(lines, ""); got != text {
				t.Errorf("budget %.0f: concat mismatch: %q != %q", budget, got, text)
			}

			// Ни одна строка не шире бюджета, кроме одиночного символа
			for _, line := range lines {
				w := float64(font.MeasureString(face, line)) / 64.0
				if w > budget && len([]rune(line)) > 1 {
					t.Errorf("budget %.0f: line %q is %.0fpx wide", budget, line, w)
				}
			}

			// Пустых строк не бывает
			for _, line := range lines {
				if line == "" {
					t.Errorf("budget %.0f: empty line in %v", budget, lines)
				}
			}
		}
	}
}

func TestWrapEmpty(t *testing.T) {
	if lines := Wrap(face, "", 100); lines != nil {
		t.Errorf("Expected nil for empty input, got %v", lines)
	}
}

func TestWrapDeterministic(t *testing.T) {
	// Одинаковый вход дает одинаковый результат
	text := "same input must always produce the same lines"
	a := Wrap(face, text, 60)
	b := Wrap(face, text, 60)

	if len(a) != len(b) {
		t.Fatalf("Line count differs between calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Line %d differs: %q vs %q", i, a[i], b[i])
		}
	}
}
