package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/topic2video/internal/capture"
	"github.com/ivlev/topic2video/internal/config"
	"github.com/ivlev/topic2video/internal/engine"
	"github.com/ivlev/topic2video/internal/script"
	"github.com/ivlev/topic2video/internal/system"
	"github.com/ivlev/topic2video/internal/words"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Переменные окружения из .env (ссылка на канал, пути по умолчанию)
	godotenv.Load()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/scripts", "input/music", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	scriptPtr := flag.String("script", "", "Путь к YAML-сценарию (по умолчанию: самый свежий файл в input/scripts/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	presetPtr := flag.String("preset", "9:16", "Пресет формата: 9:16 (Shorts/TikTok), 16:9, 4:5 (Instagram)")
	fpsPtr := flag.Int("fps", 30, "FPS")
	musicPtr := flag.String("music", "", "Путь к фоновой музыке (по умолчанию: самый свежий файл в input/music/)")
	musicVolPtr := flag.Float64("music-volume", 0.15, "Громкость фоновой музыки (0.0-1.0)")
	sceneDurPtr := flag.Float64("scene-duration", 5.0, "Длительность сцены без озвучки (сек)")
	fadePtr := flag.Float64("fade", 2.0, "Окно фейда музыки перед финализацией (сек)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	wordsPtr := flag.String("words", "", "Путь к YAML с правилами подсветки слов (пусто - встроенные)")
	channelPtr := flag.String("channel-url", os.Getenv("CHANNEL_URL"), "Ссылка для QR-кода на финальной карточке")
	statsPtr := flag.Bool("stats", false, "Показать отчет о производительности")

	flag.Parse()

	width, height, ok := config.PresetSize(*presetPtr)
	if !ok {
		log.Fatalf("[-] Неизвестный пресет: %s", *presetPtr)
	}

	scriptPath := *scriptPtr
	if scriptPath == "" {
		latest, err := system.FindLatestScript("input/scripts")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите сценарий в input/scripts/", err)
		}
		scriptPath = latest
		fmt.Printf("[*] Выбран сценарий: %s\n", scriptPath)
	}

	sc, err := script.ReadScript(scriptPath)
	if err != nil {
		log.Fatalf("[-] Ошибка чтения сценария: %v", err)
	}
	if *channelPtr != "" {
		sc.ChannelURL = *channelPtr
	}

	musicPath := *musicPtr
	if musicPath == "" {
		if latest, err := system.FindLatestMusic("input/music"); err == nil {
			musicPath = latest
			fmt.Printf("[*] Выбрана музыка: %s\n", musicPath)
		}
	}

	var rules *words.List
	if *wordsPtr != "" {
		rules, err = words.Load(*wordsPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения правил подсветки: %v", err)
		}
	}

	finalOutput := *outputPtr
	if finalOutput == "" {
		base := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
		cleanName := strings.ReplaceAll(base, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName, _ := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
	}

	quality := *qualityPtr
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75 // Хорошее качество для VideoToolbox
		case "h264_nvenc":
			quality = 28 // Эквивалент CRF для NVENC
		default:
			quality = 23 // Стандартный CRF для x264
		}
	}

	cfg := &config.Config{
		ScriptPath:    scriptPath,
		OutputVideo:   finalOutput,
		Width:         width,
		Height:        height,
		FPS:           *fpsPtr,
		Preset:        *presetPtr,
		MusicPath:     musicPath,
		MusicVolume:   *musicVolPtr,
		SceneFallback: *sceneDurPtr,
		FadeDuration:  *fadePtr,
		ChannelURL:    sc.ChannelURL,
		VideoEncoder:  encoderName,
		Quality:       quality,
		ShowStats:     *statsPtr,
	}
	cfg.Defaults()

	fmt.Println("--- [PROJECT: TOPIC ENGINE] ---")
	fmt.Printf("[*] Сценарий: %s | Сцен: %d\n", sc.TopicName, len(sc.Scenes))
	fmt.Printf("[*] Разрешение: %dx%d @ %d FPS | Энкодер: %s\n", width, height, cfg.FPS, encoderName)
	fmt.Println("-------------------------------")

	rec := &capture.FFmpegRecorder{
		Output:  finalOutput,
		FPS:     cfg.FPS,
		Encoder: encoderName,
		Quality: quality,
	}

	// Кооперативная отмена по Ctrl+C: кадровый цикл замечает сигнал
	// и демонтирует прогон без частичного результата
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := engine.NewSession(cfg, sc, rec, rules, func(path string) {
		fmt.Printf("[>] Видео финализировано: %s\n", path)
	})

	if err := session.Run(ctx); err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			fmt.Println("[!] Прогон отменен, результат удален")
			os.Exit(130)
		}
		log.Fatalf("[-] Ошибка прогона: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputVideo)
}
