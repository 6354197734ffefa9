package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/topic2video/internal/config"
)

// testVisual — управляемый источник для проверки композитора.
type testVisual struct {
	img image.Image
}

func (v *testVisual) Width() int {
	if v.img == nil {
		return 0
	}
	return v.img.Bounds().Dx()
}

func (v *testVisual) Height() int {
	if v.img == nil {
		return 0
	}
	return v.img.Bounds().Dy()
}

func (v *testVisual) Frame() image.Image { return v.img }
func (v *testVisual) Close() error       { return nil }

func testRenderConfig() config.RenderConfig {
	c := config.Config{Width: 90, Height: 160, FPS: 30}
	return c.Render()
}

func gradientImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 255 / w), uint8(y * 255 / h), 128, 255})
		}
	}
	return img
}

func TestFrameAllKinds(t *testing.T) {
	r, err := New(testRenderConfig(), nil, "https://example.com/channel")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	visual := &testVisual{img: gradientImage(120, 80)}
	specs := []FrameSpec{
		{Visual: visual, Kind: KindIntro, Text: "Заголовок выпуска", Tagline: "подзаголовок", Progress: 0},
		{Visual: visual, Kind: KindScene, Text: "Первая строка субтитров достаточной длины для переноса", Progress: 0.5},
		{Visual: visual, Kind: KindOutro, Text: "Тема", Progress: 1},
	}

	for _, fs := range specs {
		frame, err := r.Frame(fs)
		if err != nil {
			t.Fatalf("Frame(kind=%d): %v", fs.Kind, err)
		}
		if frame.Bounds().Dx() != 90 || frame.Bounds().Dy() != 160 {
			t.Errorf("Frame(kind=%d): size %v, expected 90x160", fs.Kind, frame.Bounds())
		}
	}
}

// Источник с нулевыми размерами (клип до первого кадра) — не ошибка,
// слой просто пропускается.
func TestFrameSkipsEmptyVisual(t *testing.T) {
	r, err := New(testRenderConfig(), nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	specs := []FrameSpec{
		{Visual: nil, Kind: KindScene, Text: "текст", Progress: 0.3},
		{Visual: &testVisual{}, Kind: KindScene, Text: "текст", Progress: 0.3},
	}
	for i, fs := range specs {
		frame, err := r.Frame(fs)
		if err != nil {
			t.Fatalf("Case %d: Frame with empty visual: %v", i, err)
		}
		if frame == nil {
			t.Fatalf("Case %d: Frame returned nil image", i)
		}
	}
}

func TestFrameRejectsNaNProgress(t *testing.T) {
	r, err := New(testRenderConfig(), nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := r.Frame(FrameSpec{Kind: KindScene, Progress: math.NaN()}); err == nil {
		t.Fatal("Expected error for NaN progress")
	}

	// Конечные значения за пределами [0,1] зажимаются без ошибки
	for _, p := range []float64{-0.5, 1.5} {
		if _, err := r.Frame(FrameSpec{Kind: KindScene, Progress: p}); err != nil {
			t.Errorf("Frame(progress=%.1f): %v", p, err)
		}
	}
}

// Кадр зависит только от FrameSpec: повторная отрисовка того же входа
// после других кадров дает побайтно тот же результат.
func TestFrameDeterministic(t *testing.T) {
	r, err := New(testRenderConfig(), nil, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	visual := &testVisual{img: gradientImage(200, 100)}
	spec := FrameSpec{Visual: visual, Kind: KindScene, Text: "повторяемый кадр", Progress: 0.3}

	first, err := r.Frame(spec)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	snapshot := make([]byte, len(first.Pix))
	copy(snapshot, first.Pix)

	// Промежуточный кадр с другим прогрессом не должен протекать в следующий
	if _, err := r.Frame(FrameSpec{Visual: visual, Kind: KindScene, Text: "повторяемый кадр", Progress: 0.9}); err != nil {
		t.Fatalf("Frame: %v", err)
	}

	again, err := r.Frame(spec)
	if err != nil {
		t.Fatalf("Frame: %v", err)
	}
	for i := range snapshot {
		if again.Pix[i] != snapshot[i] {
			t.Fatalf("Frame not deterministic: byte %d differs (%d != %d)", i, again.Pix[i], snapshot[i])
		}
	}
}

func TestNewRejectsBadCanvas(t *testing.T) {
	if _, err := New(config.RenderConfig{Width: 0, Height: 100}, nil, ""); err == nil {
		t.Fatal("Expected error for zero-width canvas")
	}
}
