package script

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ivlev/topic2video/internal/audio"
)

// Scene — один озвученный бит сценария. Порядок сцен в Script
// является порядком рендера и никогда не переупорядочивается.
type Scene struct {
	ImagePrompt   string  `yaml:"image_prompt,omitempty"`
	NarrationText string  `yaml:"narration"`
	DisplayText   string  `yaml:"display,omitempty"`
	ImageURL      string  `yaml:"image_url,omitempty"`
	VideoURL      string  `yaml:"video_url,omitempty"`
	AudioPath     string  `yaml:"audio,omitempty"`
	DurationHint  float64 `yaml:"duration,omitempty"`

	// Декодированная озвучка сцены. Живет один прогон рендера,
	// заполняется драйвером перед стартом записи.
	Audio *audio.Buffer `yaml:"-"`
}

// Script — упорядоченная последовательность сцен плюс данные интро/аутро.
type Script struct {
	Title          string  `yaml:"title"`
	TitleNarration string  `yaml:"title_narration,omitempty"`
	TitleAudioPath string  `yaml:"title_audio,omitempty"`
	TopicName      string  `yaml:"topic"`
	Description    string  `yaml:"description,omitempty"`
	ChannelURL     string  `yaml:"channel_url,omitempty"`
	Scenes         []Scene `yaml:"scenes"`

	// Декодированная озвучка заголовка, по аналогии со сценами.
	TitleAudio *audio.Buffer `yaml:"-"`
}

// Display возвращает текст субтитра: явный display, иначе narration
// с вырезанными аннотациями произношения.
func (s *Scene) Display() string {
	if s.DisplayText != "" {
		return s.DisplayText
	}
	return StripReadings(s.NarrationText)
}

// Duration возвращает длительность сцены в секундах: длина озвучки,
// если она есть, иначе подсказка из сценария, иначе fallback.
func (s *Scene) Duration(fallback float64) float64 {
	if s.Audio != nil && s.Audio.Duration() > 0 {
		return s.Audio.Duration()
	}
	if s.DurationHint > 0 {
		return s.DurationHint
	}
	return fallback
}

// Validate проверяет, что сценарий пригоден для рендера:
// есть сцены и у каждой указан хотя бы один визуальный источник.
func (sc *Script) Validate() error {
	if len(sc.Scenes) == 0 {
		return fmt.Errorf("сценарий не содержит сцен")
	}
	for i, s := range sc.Scenes {
		if s.ImageURL == "" && s.VideoURL == "" {
			return fmt.Errorf("сцена %d: не указан image_url или video_url", i+1)
		}
	}
	return nil
}

// StripReadings removes pronunciation annotations: a parenthesized group is
// dropped when its content is entirely kana (readings attached to kanji in
// narration text). Any other parenthesized text is kept as-is.
func StripReadings(s string) string {
	var out strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '(' && r != '（' {
			out.WriteRune(r)
			continue
		}

		close := matchingClose(r)
		j := i + 1
		for j < len(runes) && runes[j] != close {
			j++
		}
		if j >= len(runes) || !allKana(runes[i+1:j]) {
			out.WriteRune(r)
			continue
		}
		i = j // пропускаем группу вместе со скобками
	}

	return out.String()
}

func matchingClose(open rune) rune {
	if open == '（' {
		return '）'
	}
	return ')'
}

func allKana(rs []rune) bool {
	if len(rs) == 0 {
		return false
	}
	for _, r := range rs {
		if r == 'ー' || r == '・' {
			continue
		}
		if !unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return false
		}
	}
	return true
}
