package config

// Config — неизменяемые параметры одного прогона рендера.
type Config struct {
	ScriptPath  string
	OutputVideo string
	Width       int
	Height      int
	FPS         int
	Preset      string

	MusicPath   string
	MusicVolume float64 // 0.0-1.0

	SceneFallback float64 // секунд на сцену без озвучки
	FadeDuration  float64 // окно фейда музыки перед финализацией
	IntroPad      float64 // добавка к длине озвучки заголовка
	IntroFallback float64 // длина интро без озвучки заголовка

	ChannelURL    string
	WordRulesPath string

	VideoEncoder string
	Quality      int
	ShowStats    bool
	BuildVersion string
}

// RenderConfig — производная геометрия кадра, фиксируется на старте прогона.
type RenderConfig struct {
	Width, Height int
	FPS           int

	// Вертикальные границы текстовой зоны субтитров
	SafeTop    float64
	SafeBottom float64
	TextMargin float64
	LineHeight float64

	SubtitleSize float64
	TitleSize    float64
	TaglineSize  float64
}

// Render выводит геометрию текстовых зон из размера холста.
func (c *Config) Render() RenderConfig {
	h := float64(c.Height)
	w := float64(c.Width)

	sub := h * 0.034
	return RenderConfig{
		Width:        c.Width,
		Height:       c.Height,
		FPS:          c.FPS,
		SafeTop:      h * 0.62,
		SafeBottom:   h * 0.86,
		TextMargin:   w * 0.08,
		LineHeight:   sub * 1.45,
		SubtitleSize: sub,
		TitleSize:    w * 0.085,
		TaglineSize:  w * 0.042,
	}
}

// TextWidth — пиксельный бюджет строки субтитра.
func (r RenderConfig) TextWidth() float64 {
	return float64(r.Width) - 2*r.TextMargin
}

// WindowHeight — высота видимого окна субтитров.
func (r RenderConfig) WindowHeight() float64 {
	return r.SafeBottom - r.SafeTop
}

// IntroDuration возвращает длительность интро: озвучка заголовка плюс пауза,
// либо фиксированный fallback, если заголовок не озвучен.
func (c *Config) IntroDuration(titleAudioSeconds float64) float64 {
	if titleAudioSeconds > 0 {
		return titleAudioSeconds + c.IntroPad
	}
	return c.IntroFallback
}

// Defaults заполняет незаданные тайминги стандартными значениями.
func (c *Config) Defaults() {
	if c.FPS == 0 {
		c.FPS = 30
	}
	if c.SceneFallback == 0 {
		c.SceneFallback = 5.0
	}
	if c.FadeDuration == 0 {
		c.FadeDuration = 2.0
	}
	if c.IntroPad == 0 {
		c.IntroPad = 0.5
	}
	if c.IntroFallback == 0 {
		c.IntroFallback = 3.0
	}
	if c.MusicVolume == 0 {
		c.MusicVolume = 0.15
	}
}

// PresetSize возвращает размеры холста для пресета формата.
func PresetSize(preset string) (int, int, bool) {
	switch preset {
	case "9:16":
		return 720, 1280, true
	case "16:9":
		return 1280, 720, true
	case "4:5":
		return 1080, 1350, true
	}
	return 0, 0, false
}
