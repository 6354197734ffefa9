package renderer

import (
	"fmt"
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivlev/topic2video/internal/assets"
	"github.com/ivlev/topic2video/internal/config"
	"github.com/ivlev/topic2video/internal/layout"
	"github.com/ivlev/topic2video/internal/system"
	"github.com/ivlev/topic2video/internal/words"
)

// SegmentKind определяет вариант композиции кадра.
type SegmentKind int

const (
	KindIntro SegmentKind = iota // титульная карточка
	KindScene                    // обычная сцена с субтитрами
	KindOutro                    // финальная карточка с фейдом музыки
)

// FrameSpec — вход одного вызова отрисовки.
type FrameSpec struct {
	Visual   assets.Visual
	Kind     SegmentKind
	Text     string  // субтитр сцены либо заголовок/топик карточки
	Tagline  string  // подзаголовок, только для интро
	Progress float64 // 0..1 внутри сегмента
}

var (
	fillDefault   = color.RGBA{245, 245, 245, 255}
	strokeDefault = color.RGBA{12, 12, 18, 255}
	taglineColor  = color.RGBA{200, 200, 205, 255}
)

// Renderer компонует кадры одного прогона. Держит собственный холст
// и шрифты; каждый вызов Frame перерисовывает холст целиком, поэтому
// повторный вызов с другим прогрессом не накапливает состояния.
type Renderer struct {
	cfg   config.RenderConfig
	rules *words.List
	dc    *gg.Context

	subtitleFace font.Face
	titleFace    font.Face
	taglineFace  font.Face

	qr image.Image // код для аутро, nil если ссылка не задана
}

func New(cfg config.RenderConfig, rules *words.List, channelURL string) (*Renderer, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("некорректный размер холста %dx%d", cfg.Width, cfg.Height)
	}

	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := func(size float64) font.Face {
		return truetype.NewFace(f, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingNone})
	}

	r := &Renderer{
		cfg:          cfg,
		rules:        rules,
		dc:           gg.NewContext(cfg.Width, cfg.Height),
		subtitleFace: face(cfg.SubtitleSize),
		titleFace:    face(cfg.TitleSize),
		taglineFace:  face(cfg.TaglineSize),
	}

	if channelURL != "" {
		q, err := qrcode.New(channelURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("qr: %w", err)
		}
		r.qr = q.Image(cfg.Width / 4)
	}

	return r, nil
}

// SubtitleFace отдает шрифт субтитров (нужен драйверу для предрасчетов).
func (r *Renderer) SubtitleFace() font.Face { return r.subtitleFace }

// Frame отрисовывает один скомпонованный кадр. Возвращаемый буфер живет
// до следующего вызова Frame — драйвер записывает его сразу же.
func (r *Renderer) Frame(fs FrameSpec) (*image.RGBA, error) {
	p := fs.Progress
	if p != p { // NaN
		return nil, fmt.Errorf("прогресс не является числом")
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	// 1. Фон почти черный
	r.dc.SetRGB(0.03, 0.03, 0.04)
	r.dc.Clear()

	// 2. Визуал сцены cover-fit с зумом и затемнением
	r.drawVisual(fs.Visual, fs.Kind, p)

	switch fs.Kind {
	case KindScene:
		// 3-5. Плашка и скроллируемый блок субтитров
		r.drawPlate()
		r.drawSubtitles(fs.Text, p)
	case KindIntro:
		r.drawTitleBlock(fs.Text, fs.Tagline)
	case KindOutro:
		r.drawOutro(fs.Text)
	}

	return r.dc.Image().(*image.RGBA), nil
}

// drawVisual рисует картинку или текущий кадр клипа. Источник с нулевыми
// размерами (например, еще не декодированный клип) слой не рисует и
// не считается ошибкой.
func (r *Renderer) drawVisual(v assets.Visual, kind SegmentKind, progress float64) {
	if v == nil || v.Width() <= 0 || v.Height() <= 0 {
		return
	}
	img := v.Frame()
	if img == nil {
		return
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return
	}

	crop := CoverCrop(b.Dx(), b.Dy(), r.cfg.Width, r.cfg.Height)
	crop = zoomCrop(crop, zoomFor(kind, progress)).Add(b.Min)
	if crop.Empty() {
		return
	}

	dst := r.dc.Image().(*image.RGBA)
	dim := 0.35

	if kind == KindScene {
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, crop, draw.Src, nil)
	} else {
		// Карточки: дешевый блюр через даунскейл с последующим растягиванием
		small := system.GetImage(image.Rect(0, 0, r.cfg.Width/8, r.cfg.Height/8))
		draw.ApproxBiLinear.Scale(small, small.Bounds(), img, crop, draw.Src, nil)
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
		system.PutImage(small)
		dim = 0.55
	}

	r.dc.SetRGBA(0, 0, 0, dim)
	r.dc.DrawRectangle(0, 0, float64(r.cfg.Width), float64(r.cfg.Height))
	r.dc.Fill()
}

// drawPlate затемняет нижнюю текстовую зону градиентом, чтобы субтитры
// читались на произвольной картинке.
func (r *Renderer) drawPlate() {
	top := r.cfg.SafeTop - r.cfg.LineHeight
	h := float64(r.cfg.Height)

	grad := gg.NewLinearGradient(0, top, 0, h)
	grad.AddColorStop(0, color.RGBA{0, 0, 0, 0})
	grad.AddColorStop(1, color.RGBA{0, 0, 0, 215})

	r.dc.SetFillStyle(grad)
	r.dc.DrawRectangle(0, top, float64(r.cfg.Width), h-top)
	r.dc.Fill()
}

func (r *Renderer) drawSubtitles(text string, progress float64) {
	if text == "" {
		return
	}

	lines := layout.Wrap(r.subtitleFace, text, r.cfg.TextWidth())
	totalH := float64(len(lines)) * r.cfg.LineHeight
	scroll := ScrollOffset(progress, totalH, r.cfg.WindowHeight())

	r.dc.SetFontFace(r.subtitleFace)
	for i, line := range lines {
		top := r.cfg.SafeTop + float64(i)*r.cfg.LineHeight - scroll
		// Строки целиком за пределами окна не рисуем
		if top+r.cfg.LineHeight < r.cfg.SafeTop || top > r.cfg.SafeBottom {
			continue
		}

		fill := color.Color(fillDefault)
		if c, ok := r.rules.Match(line); ok {
			fill = c
		}
		r.drawOutlined(line, r.cfg.TextMargin, top+r.cfg.SubtitleSize, fill, r.subtitleRadius())
	}
}

func (r *Renderer) drawTitleBlock(title, tagline string) {
	w := float64(r.cfg.Width)
	lines := layout.Wrap(r.titleFace, title, w*0.86)

	r.dc.SetFontFace(r.titleFace)
	titleLH := r.cfg.TitleSize * 1.3
	blockH := float64(len(lines)) * titleLH
	y := float64(r.cfg.Height)*0.42 - blockH/2 + r.cfg.TitleSize

	for _, line := range lines {
		lw, _ := r.dc.MeasureString(line)
		r.drawOutlined(line, (w-lw)/2, y, fillDefault, r.cfg.TitleSize*0.08+1)
		y += titleLH
	}

	if tagline == "" {
		return
	}
	r.dc.SetFontFace(r.taglineFace)
	for _, line := range layout.Wrap(r.taglineFace, tagline, w*0.86) {
		lw, _ := r.dc.MeasureString(line)
		r.drawOutlined(line, (w-lw)/2, y+r.cfg.TaglineSize, taglineColor, 1.5)
		y += r.cfg.TaglineSize * 1.5
	}
}

func (r *Renderer) drawOutro(topic string) {
	w := float64(r.cfg.Width)

	r.dc.SetFontFace(r.titleFace)
	y := float64(r.cfg.Height) * 0.3
	for _, line := range layout.Wrap(r.titleFace, topic, w*0.86) {
		lw, _ := r.dc.MeasureString(line)
		r.drawOutlined(line, (w-lw)/2, y, fillDefault, r.cfg.TitleSize*0.08+1)
		y += r.cfg.TitleSize * 1.3
	}

	if r.qr == nil {
		return
	}

	// QR на белой подложке по центру нижней половины
	qb := r.qr.Bounds()
	qx := (r.cfg.Width - qb.Dx()) / 2
	qy := int(float64(r.cfg.Height)*0.72) - qb.Dy()/2
	pad := 12.0

	r.dc.SetRGB(1, 1, 1)
	r.dc.DrawRoundedRectangle(float64(qx)-pad, float64(qy)-pad,
		float64(qb.Dx())+2*pad, float64(qb.Dy())+2*pad, pad)
	r.dc.Fill()
	r.dc.DrawImage(r.qr, qx, qy)
}

func (r *Renderer) subtitleRadius() float64 {
	return r.cfg.SubtitleSize*0.09 + 1
}

// drawOutlined рисует строку техникой "обводка, затем заливка":
// толстый темный контур по восьми направлениям, поверх него цвет заливки.
func (r *Renderer) drawOutlined(s string, x, y float64, fill color.Color, radius float64) {
	r.dc.SetColor(strokeDefault)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			r.dc.DrawString(s, x+float64(dx)*radius, y+float64(dy)*radius)
		}
	}

	r.dc.SetColor(fill)
	r.dc.DrawString(s, x, y)
}
