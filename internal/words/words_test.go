package words

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestMatchFirstRuleWins(t *testing.T) {
	l, err := Compile([]Rule{
		{Any: []string{"危険", "alert"}, Color: "#FF0000"},
		{Any: []string{"危険な状況"}, Color: "#00FF00"}, // перекрывается первым правилом
		{Any: []string{"зеленый"}, Color: "#00FF00"},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	c, ok := l.Match("これは危険な状況です")
	if !ok {
		t.Fatal("Expected a match")
	}
	if c != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("Expected first rule color, got %v", c)
	}

	if c, ok := l.Match("совершенно зеленый текст"); !ok || c != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("Third rule: ok=%v color=%v", ok, c)
	}

	if _, ok := l.Match("нейтральная строка"); ok {
		t.Error("Unexpected match for neutral line")
	}
}

func TestMatchNilList(t *testing.T) {
	var l *List
	if _, ok := l.Match("危険"); ok {
		t.Error("Nil list must never match")
	}
}

func TestDefaultRules(t *testing.T) {
	l := Default()

	c, ok := l.Match("この投資は危険です")
	if !ok || c != (color.RGBA{R: 0xFF, G: 0x3B, B: 0x30, A: 255}) {
		t.Errorf("Danger word: ok=%v color=%v", ok, c)
	}

	c, ok = l.Match("衝撃の事実")
	if !ok || c != (color.RGBA{R: 0xFF, G: 0xD6, B: 0x0A, A: 255}) {
		t.Errorf("Shock word: ok=%v color=%v", ok, c)
	}
}

func TestCompileRejectsBadColor(t *testing.T) {
	bad := []string{"", "FF00", "#12345G", "red", "#1234567"}
	for _, c := range bad {
		if _, err := Compile([]Rule{{Any: []string{"x"}, Color: c}}); err == nil {
			t.Errorf("Expected error for color %q", c)
		}
	}

	// Допустимы формы с # и без, с пробелами по краям
	for _, c := range []string{"#FF3B30", "ff3b30", " #FF3B30 "} {
		if _, err := Compile([]Rule{{Any: []string{"x"}, Color: c}}); err != nil {
			t.Errorf("Valid color %q rejected: %v", c, err)
		}
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.yaml")
	data := `- any: ["暴落", "crash"]
  color: "#FF3B30"
- any: ["最強"]
  color: "#FFD60A"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := l.Match("市場がcrashした"); !ok {
		t.Error("Expected match from loaded rules")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
