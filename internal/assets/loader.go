package assets

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"os"
	"strings"

	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/topic2video/internal/script"
)

// Load параллельно разрешает визуальные источники всех сцен в декодированные
// Visual. Любая одиночная ошибка валит всю пачку: частичный набор ассетов
// непригоден для воспроизведения.
func Load(ctx context.Context, scenes []script.Scene, fps int) ([]Visual, error) {
	visuals := make([]Visual, len(scenes))

	g, ctx := errgroup.WithContext(ctx)
	for i := range scenes {
		i := i
		g.Go(func() error {
			v, err := resolve(ctx, &scenes[i], fps)
			if err != nil {
				return fmt.Errorf("сцена %d: %w", i+1, err)
			}
			visuals[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Закрываем то, что успело загрузиться
		for _, v := range visuals {
			if v != nil {
				v.Close()
			}
		}
		return nil, err
	}

	return visuals, nil
}

func resolve(ctx context.Context, sc *script.Scene, fps int) (Visual, error) {
	if sc.VideoURL != "" {
		return NewClipVisual(sc.VideoURL, fps)
	}

	img, err := fetchImage(ctx, sc.ImageURL)
	if err != nil {
		return nil, err
	}
	return NewStillVisual(img), nil
}

// fetchImage загружает и декодирует изображение по http(s)-ссылке
// или локальному пути.
func fetchImage(ctx context.Context, ref string) (image.Image, error) {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: %s", ref, resp.Status)
		}

		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("декодирование %s: %w", ref, err)
		}
		return img, nil
	}

	f, err := os.Open(ref)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("декодирование %s: %w", ref, err)
	}
	return img, nil
}
