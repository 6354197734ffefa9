package assets

import (
	"image"
)

// Visual — единый интерфейс визуального источника сцены: статичная
// картинка или зацикленный видеоклип. Нулевые размеры допустимы —
// рендерер просто пропускает такой слой.
type Visual interface {
	Width() int
	Height() int
	// Frame возвращает кадр для текущего момента воспроизведения.
	// Для картинки это всегда один и тот же кадр, для клипа — следующий
	// декодированный. nil означает, что рисовать нечего.
	Frame() image.Image
	Close() error
}

// StillVisual — декодированное статичное изображение.
type StillVisual struct {
	img image.Image
}

func NewStillVisual(img image.Image) *StillVisual {
	return &StillVisual{img: img}
}

func (s *StillVisual) Width() int {
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dx()
}

func (s *StillVisual) Height() int {
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dy()
}

func (s *StillVisual) Frame() image.Image { return s.img }

func (s *StillVisual) Close() error { return nil }
