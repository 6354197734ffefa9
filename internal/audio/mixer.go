package audio

// Mixer — мастер-шина одного прогона рендера. Все источники суммируются
// в единый PCM-поток, который покадрово забирает драйвер записи.
// Шина живет ровно один прогон и не разделяется между запусками.
type Mixer struct {
	head   int64 // сколько сэмпл-кадров уже отрендерено
	music  *musicTrack
	voices []*voiceTrack
}

// musicTrack — зацикленная фоновая музыка с собственным гейном
// и линейным фейдом в ноль перед финализацией.
type musicTrack struct {
	buf       *Buffer
	gain      float64
	fadeStart int64 // кадр начала фейда
	fadeLen   int64 // длина фейда в кадрах
	fading    bool
}

// voiceTrack — одноразовый источник озвучки, стартует на текущей позиции шины.
type voiceTrack struct {
	buf   *Buffer
	start int64
}

func NewMixer() *Mixer {
	return &Mixer{}
}

// SetMusic подключает зацикленный музыкальный источник с начальным гейном.
// Музыка стартует с нулевой отметки прогона.
func (m *Mixer) SetMusic(buf *Buffer, gain float64) {
	if buf == nil || buf.Frames() == 0 {
		return
	}
	if gain < 0 {
		gain = 0
	}
	if gain > 1 {
		gain = 1
	}
	m.music = &musicTrack{buf: buf, gain: gain}
}

// StartVoice запускает озвучку сегмента с текущей позиции шины.
// Вызывается ровно один раз на сегмент, синхронно с его первым кадром.
func (m *Mixer) StartVoice(buf *Buffer) {
	if buf == nil || buf.Frames() == 0 {
		return
	}
	m.voices = append(m.voices, &voiceTrack{buf: buf, start: m.head})
}

// FadeOutMusic запускает линейный спад гейна музыки до нуля
// за указанное окно, начиная с текущей позиции.
func (m *Mixer) FadeOutMusic(seconds float64) {
	if m.music == nil || m.music.fading {
		return
	}
	frames := int64(seconds * float64(SampleRate))
	if frames < 1 {
		frames = 1
	}
	m.music.fadeStart = m.head
	m.music.fadeLen = frames
	m.music.fading = true
}

// musicGainAt возвращает гейн музыки на сэмпл-кадре frame.
// После окончания фейда гейн остается ровно нулевым.
func (t *musicTrack) gainAt(frame int64) float64 {
	if !t.fading || frame < t.fadeStart {
		return t.gain
	}
	done := float64(frame-t.fadeStart) / float64(t.fadeLen)
	if done >= 1 {
		return 0
	}
	g := t.gain * (1 - done)
	if g < 0 {
		g = 0
	}
	return g
}

// Render заполняет dst суммой активных источников и продвигает шину.
// len(dst) должен быть кратен числу каналов.
func (m *Mixer) Render(dst []int16) {
	frames := len(dst) / Channels

	for i := 0; i < frames; i++ {
		pos := m.head + int64(i)
		for c := 0; c < Channels; c++ {
			acc := 0.0

			if m.music != nil {
				mf := m.music.buf.Frames()
				src := m.music.buf.Data[int(pos%int64(mf))*Channels+c]
				acc += float64(src) * m.music.gainAt(pos)
			}

			for _, v := range m.voices {
				off := pos - v.start
				if off < 0 || off >= int64(v.buf.Frames()) {
					continue
				}
				acc += float64(v.buf.Data[int(off)*Channels+c])
			}

			dst[i*Channels+c] = clampSample(acc)
		}
	}

	m.head += int64(frames)
	m.dropFinished()
}

// dropFinished убирает полностью проигранные голоса, чтобы не
// сканировать их на каждом кадре длинного прогона.
func (m *Mixer) dropFinished() {
	active := m.voices[:0]
	for _, v := range m.voices {
		if m.head < v.start+int64(v.buf.Frames()) {
			active = append(active, v)
		}
	}
	m.voices = active
}

func clampSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
