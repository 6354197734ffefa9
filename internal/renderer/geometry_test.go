package renderer

import (
	"image"
	"math"
	"testing"
)

func TestCoverCropAspect(t *testing.T) {
	cases := []struct {
		srcW, srcH int
		dstW, dstH int
	}{
		{1920, 1080, 720, 1280}, // широкий источник в вертикальный кадр
		{1080, 1920, 1280, 720}, // вертикальный источник в широкий кадр
		{720, 1280, 720, 1280},  // пропорции совпадают
		{100, 100, 720, 1280},
		{3000, 500, 1080, 1350},
		{7, 1300, 720, 1280},
	}

	for _, c := range cases {
		crop := CoverCrop(c.srcW, c.srcH, c.dstW, c.dstH)

		if crop.Empty() {
			t.Errorf("CoverCrop(%d,%d -> %d,%d): empty crop", c.srcW, c.srcH, c.dstW, c.dstH)
			continue
		}

		// Окно лежит внутри источника
		if !crop.In(image.Rect(0, 0, c.srcW, c.srcH)) {
			t.Errorf("CoverCrop(%d,%d -> %d,%d): %v outside source", c.srcW, c.srcH, c.dstW, c.dstH, crop)
		}

		// Одна из осей используется целиком
		if crop.Dx() != c.srcW && crop.Dy() != c.srcH {
			t.Errorf("CoverCrop(%d,%d -> %d,%d): %v uses neither full axis", c.srcW, c.srcH, c.dstW, c.dstH, crop)
		}

		// Пропорции окна совпадают с пропорциями холста (с точностью округления)
		got := float64(crop.Dx()) / float64(crop.Dy())
		want := float64(c.dstW) / float64(c.dstH)
		if math.Abs(got-want) > 0.2 {
			t.Errorf("CoverCrop(%d,%d -> %d,%d): aspect %.3f, expected %.3f", c.srcW, c.srcH, c.dstW, c.dstH, got, want)
		}
	}
}

func TestCoverCropDegenerate(t *testing.T) {
	degenerate := []struct{ srcW, srcH, dstW, dstH int }{
		{0, 100, 720, 1280},
		{100, 0, 720, 1280},
		{100, 100, 0, 1280},
		{100, 100, 720, 0},
		{-5, 100, 720, 1280},
	}
	for _, c := range degenerate {
		if crop := CoverCrop(c.srcW, c.srcH, c.dstW, c.dstH); !crop.Empty() {
			t.Errorf("CoverCrop(%d,%d -> %d,%d): expected empty, got %v", c.srcW, c.srcH, c.dstW, c.dstH, crop)
		}
	}
}

func TestZoomCropShrinksAroundCenter(t *testing.T) {
	crop := image.Rect(100, 200, 500, 1000)

	z := zoomCrop(crop, 1.25)
	if !z.In(crop) {
		t.Fatalf("Zoomed crop %v escapes original %v", z, crop)
	}
	if z.Dx() >= crop.Dx() || z.Dy() >= crop.Dy() {
		t.Errorf("Zoom 1.25 did not shrink: %v -> %v", crop, z)
	}

	// Центр остается на месте (с точностью до пикселя округления)
	cx := (z.Min.X + z.Max.X) / 2
	cy := (z.Min.Y + z.Max.Y) / 2
	if abs(cx-300) > 1 || abs(cy-600) > 1 {
		t.Errorf("Zoom moved center to (%d,%d), expected (300,600)", cx, cy)
	}

	// z <= 1 — без изменений
	if got := zoomCrop(crop, 1.0); got != crop {
		t.Errorf("zoomCrop(.., 1.0) changed crop: %v", got)
	}
	if got := zoomCrop(crop, 0.5); got != crop {
		t.Errorf("zoomCrop(.., 0.5) changed crop: %v", got)
	}
}

func TestZoomForBounds(t *testing.T) {
	kinds := []SegmentKind{KindIntro, KindScene, KindOutro}
	for _, kind := range kinds {
		prev := 0.0
		for p := 0.0; p <= 1.0001; p += 0.01 {
			z := zoomFor(kind, p)
			if z < 1.0 || z > 1.5 {
				t.Fatalf("zoomFor(%d, %.2f) = %.4f outside [1.0, 1.5]", kind, p, z)
			}
			// Зум сцены монотонный
			if kind == KindScene && z < prev {
				t.Fatalf("Scene zoom decreased at progress %.2f: %.4f < %.4f", p, z, prev)
			}
			prev = z
		}
	}

	// Карточки возвращаются к исходному масштабу на краях сегмента
	for _, p := range []float64{0, 1} {
		if z := zoomFor(KindIntro, p); math.Abs(z-1.0) > 0.001 {
			t.Errorf("Card zoom at progress %.0f = %.4f, expected ~1.0", p, z)
		}
	}
}

func TestScrollOffsetBounds(t *testing.T) {
	totalH := 900.0
	windowH := 300.0
	maxOff := totalH - windowH*1.5

	prev := -1.0
	for p := 0.0; p <= 1.0001; p += 0.05 {
		off := ScrollOffset(p, totalH, windowH)
		if off < 0 || off > maxOff {
			t.Fatalf("ScrollOffset(%.2f) = %.1f outside [0, %.1f]", p, off, maxOff)
		}
		if off < prev {
			t.Fatalf("ScrollOffset not monotonic at %.2f: %.1f < %.1f", p, off, prev)
		}
		prev = off
	}

	if off := ScrollOffset(0, totalH, windowH); off != 0 {
		t.Errorf("ScrollOffset(0) = %.1f, expected 0", off)
	}
	if off := ScrollOffset(1, totalH, windowH); off != maxOff {
		t.Errorf("ScrollOffset(1) = %.1f, expected %.1f", off, maxOff)
	}

	// Короткий текст не скроллится вовсе
	for _, p := range []float64{0, 0.5, 1} {
		if off := ScrollOffset(p, 100, 300); off != 0 {
			t.Errorf("Short text scrolled: ScrollOffset(%.1f, 100, 300) = %.1f", p, off)
		}
	}

	// Прогресс за пределами [0,1] зажимается
	if off := ScrollOffset(2.0, totalH, windowH); off != maxOff {
		t.Errorf("ScrollOffset(2.0) = %.1f, expected clamp to %.1f", off, maxOff)
	}
	if off := ScrollOffset(-1.0, totalH, windowH); off != 0 {
		t.Errorf("ScrollOffset(-1.0) = %.1f, expected 0", off)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
