package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ivlev/topic2video/internal/assets"
	"github.com/ivlev/topic2video/internal/audio"
	"github.com/ivlev/topic2video/internal/capture"
	"github.com/ivlev/topic2video/internal/config"
	"github.com/ivlev/topic2video/internal/renderer"
	"github.com/ivlev/topic2video/internal/script"
	"github.com/ivlev/topic2video/internal/system"
	"github.com/ivlev/topic2video/internal/words"
)

// State — состояние машины воспроизведения/захвата.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRecording
	StateFinalizing
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "LoadingAssets"
	case StateRecording:
		return "Recording"
	case StateFinalizing:
		return "Finalizing"
	case StateDone:
		return "Done"
	case StateAborted:
		return "Aborted"
	}
	return "Unknown"
}

// Segment — один тайм-отрезок воспроизведения: интро, сцена или аутро-фейд.
type Segment struct {
	Kind      renderer.SegmentKind
	Visual    assets.Visual
	Text      string
	Tagline   string
	Narration *audio.Buffer
	Duration  float64 // секунды
	Label     string
}

type tickResult int

const (
	tickContinue tickResult = iota
	tickDone
)

// Session владеет всем изменяемым состоянием одного прогона: ассетами,
// аудио-шиной, рекордером и холстом. Создается на старте, демонтируется
// безусловно по завершении или отмене; между прогонами ничего не живет.
type Session struct {
	cfg    *config.Config
	script *script.Script
	rec    capture.Recorder
	rules  *words.List

	// Вызывается ровно один раз на успешный прогон — единственный
	// внешне наблюдаемый результат ядра.
	onFinish func(outputPath string)

	mixer   *audio.Mixer
	rend    *renderer.Renderer
	visuals []assets.Visual

	state      State
	audioCarry int     // остаток сэмплов при делении частоты на FPS
	pcm        []int16 // переиспользуемый буфер одного тика

	framesTotal int64
	startedAt   time.Time

	closeOnce sync.Once
}

func NewSession(cfg *config.Config, sc *script.Script, rec capture.Recorder, rules *words.List, onFinish func(string)) *Session {
	if rules == nil {
		rules = words.Default()
	}
	return &Session{
		cfg:      cfg,
		script:   sc,
		rec:      rec,
		rules:    rules,
		onFinish: onFinish,
		state:    StateIdle,
	}
}

// State возвращает текущее состояние машины.
func (s *Session) State() State { return s.state }

// Run проводит прогон целиком: загрузка ассетов, запись сегментов,
// финализация. Повторный запуск той же сессии не поддерживается.
func (s *Session) Run(ctx context.Context) error {
	if s.state != StateIdle {
		return fmt.Errorf("сессия уже использована (состояние %s)", s.state)
	}
	if err := s.script.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetResolution, err)
	}

	defer s.Close()
	s.startedAt = time.Now()

	// --- LoadingAssets ---
	s.state = StateLoading
	fmt.Printf("[*] Загрузка ассетов: %d сцен\n", len(s.script.Scenes))

	if err := s.decodeNarrations(ctx); err != nil {
		s.state = StateAborted
		return err
	}

	visuals, err := assets.Load(ctx, s.script.Scenes, s.cfg.FPS)
	if err != nil {
		s.state = StateAborted
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return fmt.Errorf("%w: %v", ErrAssetResolution, err)
	}
	s.visuals = visuals

	s.mixer = audio.NewMixer()
	if s.cfg.MusicPath != "" {
		music, err := audio.Decode(ctx, s.cfg.MusicPath)
		if err != nil {
			s.state = StateAborted
			return fmt.Errorf("%w: музыка: %v", ErrAssetResolution, err)
		}
		s.mixer.SetMusic(music, s.cfg.MusicVolume)
	}

	s.rend, err = renderer.New(s.cfg.Render(), s.rules, s.script.ChannelURL)
	if err != nil {
		s.state = StateAborted
		return err
	}

	if ctx.Err() != nil {
		s.state = StateAborted
		return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
	}

	// --- Recording ---
	// Захват стартует до отрисовки первого кадра, чтобы не потерять
	// открывающие кадры.
	if err := s.rec.Start(s.cfg.Width, s.cfg.Height); err != nil {
		s.state = StateAborted
		return err
	}
	s.state = StateRecording

	for _, seg := range s.BuildSegments() {
		fmt.Printf("[>] %s: %.2fs\n", seg.Label, seg.Duration)
		if err := s.runSegment(ctx, seg); err != nil {
			s.state = StateAborted
			return err
		}
	}

	// --- Finalizing ---
	s.state = StateFinalizing
	if err := s.rec.Stop(); err != nil {
		s.state = StateAborted
		return err
	}

	s.state = StateDone
	if s.onFinish != nil {
		s.onFinish(s.rec.OutputPath())
	}

	if s.cfg.ShowStats {
		s.printReport()
	}
	return nil
}

// BuildSegments разворачивает сценарий в последовательность сегментов:
// интро → сцены в порядке сценария → аутро с фейдом музыки.
func (s *Session) BuildSegments() []Segment {
	segs := make([]Segment, 0, len(s.script.Scenes)+2)

	segs = append(segs, Segment{
		Kind:      renderer.KindIntro,
		Visual:    s.visuals[0],
		Text:      s.script.Title,
		Tagline:   s.script.Description,
		Narration: s.script.TitleAudio,
		Duration:  s.cfg.IntroDuration(s.script.TitleAudio.Duration()),
		Label:     "интро",
	})

	for i := range s.script.Scenes {
		sc := &s.script.Scenes[i]
		segs = append(segs, Segment{
			Kind:      renderer.KindScene,
			Visual:    s.visuals[i],
			Text:      sc.Display(),
			Narration: sc.Audio,
			Duration:  sc.Duration(s.cfg.SceneFallback),
			Label:     fmt.Sprintf("сцена %d/%d", i+1, len(s.script.Scenes)),
		})
	}

	segs = append(segs, Segment{
		Kind:     renderer.KindOutro,
		Visual:   s.visuals[len(s.visuals)-1],
		Text:     s.script.TopicName,
		Duration: s.cfg.FadeDuration,
		Label:    "аутро",
	})

	return segs
}

// runSegment крутит кадровый цикл сегмента: явный планировщик вызывает
// tick с фиксированным шагом, пока тот не вернет tickDone.
func (s *Session) runSegment(ctx context.Context, seg Segment) error {
	// Озвучка сегмента стартует ровно один раз, синхронно с первым кадром
	if seg.Narration != nil {
		s.mixer.StartVoice(seg.Narration)
	}
	if seg.Kind == renderer.KindOutro {
		s.mixer.FadeOutMusic(seg.Duration)
	}

	fps := float64(s.cfg.FPS)
	for frame := 0; ; frame++ {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}

		res, err := s.tick(seg, float64(frame)/fps)
		if err != nil {
			return err
		}
		if res == tickDone {
			return nil
		}
	}
}

// tick отрисовывает и записывает ровно один кадр на отметке elapsed.
// Прогресс монотонно растет от 0 до 1; кадр с прогрессом ровно 1
// рисуется один раз, после чего сегмент завершен.
func (s *Session) tick(seg Segment, elapsed float64) (tickResult, error) {
	progress := 1.0
	if seg.Duration > 0 {
		progress = elapsed / seg.Duration
		if progress > 1 {
			progress = 1
		}
	}

	frame, err := s.rend.Frame(renderer.FrameSpec{
		Visual:   seg.Visual,
		Kind:     seg.Kind,
		Text:     seg.Text,
		Tagline:  seg.Tagline,
		Progress: progress,
	})
	if err != nil {
		return tickDone, fmt.Errorf("%w: %v", ErrRender, err)
	}

	if err := s.rec.WriteFrame(frame); err != nil {
		return tickDone, err
	}

	// Аудио пишется покадрово, чтобы видео и звук продвигались вместе
	n := s.samplesThisTick() * audio.Channels
	if cap(s.pcm) < n {
		s.pcm = make([]int16, n)
	}
	s.mixer.Render(s.pcm[:n])
	if err := s.rec.WriteAudio(s.pcm[:n]); err != nil {
		return tickDone, err
	}

	s.framesTotal++
	if progress >= 1 {
		return tickDone, nil
	}
	return tickContinue, nil
}

// samplesThisTick распределяет остаток от деления частоты дискретизации
// на FPS, чтобы аудио не дрейфовало относительно видео.
func (s *Session) samplesThisTick() int {
	n := audio.SampleRate / s.cfg.FPS
	s.audioCarry += audio.SampleRate % s.cfg.FPS
	if s.audioCarry >= s.cfg.FPS {
		n++
		s.audioCarry -= s.cfg.FPS
	}
	return n
}

// Close освобождает все ресурсы прогона. Идемпотентен: повторный вызов
// или вызов после естественного завершения ничего не делает.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, v := range s.visuals {
			if v != nil {
				v.Close()
			}
		}
		s.visuals = nil
		s.mixer = nil

		// После успешного Stop это no-op; прерванный прогон
		// не оставляет частичного файла.
		if s.rec != nil {
			s.rec.Abort()
		}
	})
}

// decodeNarrations декодирует озвучку заголовка и сцен до старта записи.
func (s *Session) decodeNarrations(ctx context.Context) error {
	if s.script.TitleAudioPath != "" {
		buf, err := audio.Decode(ctx, s.script.TitleAudioPath)
		if err != nil {
			return fmt.Errorf("%w: озвучка заголовка: %v", ErrAssetResolution, err)
		}
		s.script.TitleAudio = buf
	}

	for i := range s.script.Scenes {
		sc := &s.script.Scenes[i]
		if sc.AudioPath == "" {
			continue
		}
		buf, err := audio.Decode(ctx, sc.AudioPath)
		if err != nil {
			return fmt.Errorf("%w: озвучка сцены %d: %v", ErrAssetResolution, i+1, err)
		}
		sc.Audio = buf
	}
	return nil
}

func (s *Session) printReport() {
	total := time.Since(s.startedAt)
	host := system.CollectHostStats()
	fps := float64(s.framesTotal) / total.Seconds()

	fmt.Printf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Frames: %d\n"+
			"Effective FPS: %.2f\n"+
			"Host: %d CPU, mem %.1f%%\n"+
			"----------------------------\n",
		s.cfg.BuildVersion, total.Seconds(), s.framesTotal, fps,
		host.CPUs, host.MemUsedPercent,
	)
}
