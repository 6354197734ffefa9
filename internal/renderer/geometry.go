package renderer

import (
	"image"
	"math"
)

// CoverCrop вычисляет окно кадрирования источника под пропорции холста:
// исходник заполняет кадр целиком, без полей, лишнее по одной из осей
// срезается симметрично. Возвращаемый прямоугольник всегда имеет
// пропорции холста и лежит внутри границ источника.
func CoverCrop(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(dstW) / float64(dstH)

	w := float64(srcW)
	h := float64(srcH)
	if srcAspect > dstAspect {
		// Источник шире: полная высота, горизонтальный срез по центру
		w = h * dstAspect
	} else {
		// Источник выше: полная ширина, вертикальный срез по центру
		h = w / dstAspect
	}

	x0 := (float64(srcW) - w) / 2
	y0 := (float64(srcH) - h) / 2

	r := image.Rect(int(x0), int(y0), int(x0+w), int(y0+h))
	return r.Intersect(image.Rect(0, 0, srcW, srcH))
}

// zoomCrop сжимает окно кадрирования в z раз вокруг центра.
// z < 1 трактуется как отсутствие зума.
func zoomCrop(crop image.Rectangle, z float64) image.Rectangle {
	if z <= 1 || crop.Empty() {
		return crop
	}

	w := float64(crop.Dx()) / z
	h := float64(crop.Dy()) / z
	cx := float64(crop.Min.X+crop.Max.X) / 2
	cy := float64(crop.Min.Y+crop.Max.Y) / 2

	return image.Rect(
		int(cx-w/2), int(cy-h/2),
		int(cx+w/2), int(cy+h/2),
	).Intersect(crop)
}

// zoomFor возвращает коэффициент зума для прогресса сегмента.
// Сцены тянутся монотонно, карточки (интро/аутро) пульсируют.
func zoomFor(kind SegmentKind, progress float64) float64 {
	var z float64
	switch kind {
	case KindScene:
		z = 1.0 + 0.08*progress
	default:
		z = 1.0 + 0.05*math.Sin(math.Pi*progress)
	}
	// Страховка от вырождения окна при экстремальных параметрах
	if z > 1.5 {
		z = 1.5
	}
	if z < 1.0 {
		z = 1.0
	}
	return z
}

// ScrollOffset — вертикальное смещение блока субтитров: длинный текст
// линейно уезжает вверх по мере прогресса сегмента. Результат всегда
// в диапазоне [0, max(0, totalH-windowH*1.5)].
func ScrollOffset(progress, totalH, windowH float64) float64 {
	max := totalH - windowH*1.5
	if max < 0 {
		max = 0
	}

	off := progress * max
	if off < 0 {
		return 0
	}
	if off > max {
		return max
	}
	return off
}
