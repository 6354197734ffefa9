package assets

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"strings"

	"github.com/ivlev/topic2video/internal/system"
)

// ClipVisual — видеоклип сцены: зацикленный, без звука, декодируется
// потоково через ffmpeg (rawvideo на stdout) с ресемплингом под FPS рендера.
type ClipVisual struct {
	src    string
	w, h   int
	fps    int
	cmd    *exec.Cmd
	out    io.ReadCloser
	frame  *image.RGBA
	primed bool // декодирован ли хотя бы один кадр
}

// NewClipVisual проверяет размеры клипа через ffprobe и готовит читатель.
// Декодер стартует лениво, на первом запросе кадра.
func NewClipVisual(src string, fps int) (*ClipVisual, error) {
	w, h, err := probeDimensions(src)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", src, err)
	}

	c := &ClipVisual{src: src, w: w, h: h, fps: fps}
	if w > 0 && h > 0 {
		c.frame = system.GetImage(image.Rect(0, 0, w, h))
	}
	return c, nil
}

func (c *ClipVisual) Width() int  { return c.w }
func (c *ClipVisual) Height() int { return c.h }

// Frame читает следующий декодированный кадр. На конце клипа декодер
// перезапускается (loop). При сбое чтения возвращается последний
// успешный кадр, чтобы не ронять прогон из-за битого хвоста файла.
func (c *ClipVisual) Frame() image.Image {
	if c.w <= 0 || c.h <= 0 {
		return nil
	}

	if c.cmd == nil {
		if err := c.start(); err != nil {
			return c.lastFrame()
		}
	}

	if _, err := io.ReadFull(c.out, c.frame.Pix); err != nil {
		// Конец потока: перезапускаем с начала
		c.stop()
		if err := c.start(); err != nil {
			return c.lastFrame()
		}
		if _, err := io.ReadFull(c.out, c.frame.Pix); err != nil {
			c.stop()
			return c.lastFrame()
		}
	}

	c.primed = true
	return c.frame
}

func (c *ClipVisual) lastFrame() image.Image {
	if !c.primed {
		return nil
	}
	return c.frame
}

func (c *ClipVisual) start() error {
	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", c.src,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-r", fmt.Sprintf("%d", c.fps),
		"-an",
		"pipe:1",
	)

	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return err
	}

	c.cmd = cmd
	c.out = out
	return nil
}

func (c *ClipVisual) stop() {
	if c.cmd == nil {
		return
	}
	c.out.Close()
	c.cmd.Process.Kill()
	c.cmd.Wait()
	c.cmd = nil
	c.out = nil
}

func (c *ClipVisual) Close() error {
	c.stop()
	if c.frame != nil {
		system.PutImage(c.frame)
		c.frame = nil
	}
	return nil
}

// probeDimensions возвращает размеры видеопотока через ffprobe.
func probeDimensions(src string) (int, int, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0",
		src,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, fmt.Errorf("%v: %s", err, strings.TrimSpace(string(out)))
	}

	var w, h int
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%d,%d", &w, &h)
	if err != nil {
		return 0, 0, fmt.Errorf("не удалось разобрать вывод ffprobe: %q", out)
	}
	return w, h, nil
}
