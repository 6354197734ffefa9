package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"

	"github.com/ivlev/topic2video/internal/audio"
)

// Recorder — поток захвата одного прогона: принимает кадры и PCM
// инкрементально и отдает готовый файл на Stop. Abort убирает
// недописанный результат.
type Recorder interface {
	Start(width, height int) error
	WriteFrame(img *image.RGBA) error
	WriteAudio(pcm []int16) error
	Stop() error
	Abort() error
	OutputPath() string
}

// FFmpegRecorder кормит один процесс ffmpeg двумя потоками:
// raw RGBA видео через stdin (pipe:0) и s16le аудио через pipe:3
// (ExtraFiles). Муксинг идет инкрементально, по мере поступления данных.
type FFmpegRecorder struct {
	Output  string
	FPS     int
	Encoder string // h264_videotoolbox | h264_nvenc | libx264
	Quality int

	cmd       *exec.Cmd
	videoPipe io.WriteCloser
	audioPipe *os.File
	stderr    bytes.Buffer
	audioBuf  []byte
}

func (r *FFmpegRecorder) OutputPath() string { return r.Output }

func (r *FFmpegRecorder) Start(width, height int) error {
	if r.cmd != nil {
		return fmt.Errorf("запись уже начата")
	}

	args := []string{
		"-y",
		// Видео: raw RGBA на stdin
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%d", r.FPS),
		"-i", "pipe:0",
		// Аудио: смикшированный PCM на pipe:3
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", audio.SampleRate),
		"-ac", fmt.Sprintf("%d", audio.Channels),
		"-i", "pipe:3",
		"-c:v", r.Encoder,
	}

	// Качество в зависимости от энкодера
	switch r.Encoder {
	case "h264_videotoolbox":
		bitrate := r.Quality * 100
		args = append(args, "-b:v", fmt.Sprintf("%dk", bitrate))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", r.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", r.Quality), "-preset", "medium")
	}

	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-map", "0:v",
		"-map", "1:a",
		"-movflags", "+faststart",
		r.Output,
	)

	cmd := exec.Command("ffmpeg", args...)
	cmd.Stderr = &r.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}

	audioR, audioW, err := os.Pipe()
	if err != nil {
		stdin.Close()
		return fmt.Errorf("audio pipe: %w", err)
	}
	cmd.ExtraFiles = []*os.File{audioR} // становится pipe:3 внутри ffmpeg

	if err := cmd.Start(); err != nil {
		stdin.Close()
		audioR.Close()
		audioW.Close()
		return fmt.Errorf("ffmpeg start: %w", err)
	}
	audioR.Close() // читающий конец остается только у ffmpeg

	r.cmd = cmd
	r.videoPipe = stdin
	r.audioPipe = audioW
	return nil
}

func (r *FFmpegRecorder) WriteFrame(img *image.RGBA) error {
	if r.videoPipe == nil {
		return fmt.Errorf("запись не начата")
	}
	return writeRawRGBA(r.videoPipe, img)
}

func (r *FFmpegRecorder) WriteAudio(pcm []int16) error {
	if r.audioPipe == nil {
		return fmt.Errorf("запись не начата")
	}

	need := len(pcm) * 2
	if cap(r.audioBuf) < need {
		r.audioBuf = make([]byte, need)
	}
	buf := r.audioBuf[:need]
	for i, s := range pcm {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(uint16(s) >> 8)
	}

	_, err := r.audioPipe.Write(buf)
	return err
}

// Stop закрывает оба входа и дожидается финализации контейнера.
func (r *FFmpegRecorder) Stop() error {
	if r.cmd == nil {
		return nil
	}

	r.videoPipe.Close()
	r.audioPipe.Close()

	err := r.cmd.Wait()
	r.cmd = nil
	r.videoPipe = nil
	r.audioPipe = nil

	if err != nil {
		return fmt.Errorf("ffmpeg: %v\n%s", err, r.stderr.String())
	}
	return nil
}

// Abort прерывает кодирование и удаляет частичный файл:
// отмененный прогон не оставляет результата.
func (r *FFmpegRecorder) Abort() error {
	if r.cmd == nil {
		return nil
	}

	r.videoPipe.Close()
	r.audioPipe.Close()
	r.cmd.Process.Kill()
	r.cmd.Wait()

	r.cmd = nil
	r.videoPipe = nil
	r.audioPipe = nil

	os.Remove(r.Output)
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	if img.Stride != bounds.Dx()*4 || bounds.Min.X != 0 || bounds.Min.Y != 0 {
		norm := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(norm, norm.Bounds(), img, bounds.Min, draw.Src)
		img = norm
	}
	_, err := w.Write(img.Pix)
	return err
}
