package words

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule связывает набор подстрок с цветом заливки строки субтитра.
// Правила проверяются по порядку, побеждает первое совпадение.
type Rule struct {
	Any   []string `yaml:"any"`
	Color string   `yaml:"color"`
}

type compiled struct {
	any []string
	col color.RGBA
}

// List — скомпилированный упорядоченный список правил подсветки.
type List struct {
	rules []compiled
}

// Compile парсит цвета правил и сохраняет порядок.
func Compile(rules []Rule) (*List, error) {
	l := &List{}
	for i, r := range rules {
		c, err := parseHexColor(r.Color)
		if err != nil {
			return nil, fmt.Errorf("правило %d: %w", i+1, err)
		}
		l.rules = append(l.rules, compiled{any: r.Any, col: c})
	}
	return l, nil
}

// Load читает правила из YAML-файла.
func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, err
	}
	return Compile(rules)
}

// Match возвращает цвет первого правила, чья подстрока встречается в строке.
func (l *List) Match(line string) (color.Color, bool) {
	if l == nil {
		return nil, false
	}
	for _, r := range l.rules {
		for _, w := range r.any {
			if w != "" && strings.Contains(line, w) {
				return r.col, true
			}
		}
	}
	return nil, false
}

// Default возвращает встроенный набор: тревожные слова красным,
// шоковые/восторженные — желтым.
func Default() *List {
	l, _ := Compile([]Rule{
		{
			Any:   []string{"危険", "警告", "禁止", "暴落", "炎上", "最悪", "崩壊", "死", "danger", "warning", "crisis"},
			Color: "#FF3B30",
		},
		{
			Any:   []string{"衝撃", "驚愕", "必見", "爆益", "神回", "最強", "shock", "insane", "amazing"},
			Color: "#FFD60A",
		},
	})
	return l
}

func parseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("ожидается цвет #RRGGBB, получено %q", s)
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("некорректный hex-цвет %q", s)
	}
	return color.RGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}, nil
}
