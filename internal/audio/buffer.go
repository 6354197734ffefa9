package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
)

const (
	// Единый формат шины: стерео s16le @ 44100, как на входе энкодера
	SampleRate = 44100
	Channels   = 2
)

// Buffer хранит декодированное PCM-аудио одного источника
// (озвучка сцены, интро или фоновая музыка).
type Buffer struct {
	Data       []int16 // interleaved L/R
	SampleRate int
	Channels   int
}

// Frames возвращает количество сэмпл-кадров (пар L/R).
func (b *Buffer) Frames() int {
	if b == nil || b.Channels == 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration возвращает длительность буфера в секундах.
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate == 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Decode декодирует аудиофайл в PCM через ffmpeg (s16le на stdout).
func Decode(ctx context.Context, path string) (*Buffer, error) {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-ac", fmt.Sprintf("%d", Channels),
		"-ar", fmt.Sprintf("%d", SampleRate),
		"pipe:1",
	)

	raw, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode %s: %w", path, err)
	}

	// Отбрасываем неполный хвостовой сэмпл, если поток оборвался
	raw = raw[:len(raw)-len(raw)%2]

	data := make([]int16, len(raw)/2)
	for i := range data {
		data[i] = int16(binary.LittleEndian.Uint16(raw[i*2 : i*2+2]))
	}

	return &Buffer{Data: data, SampleRate: SampleRate, Channels: Channels}, nil
}
