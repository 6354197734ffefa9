package engine

import "errors"

// Таксономия ошибок прогона. Ядро ничего не ретраит: единственное
// восстановительное действие после старта записи — чистый демонтаж.
var (
	// ErrAssetResolution — не удалось разрешить ассеты сцен;
	// фатально для прогона, запись к этому моменту еще не начата.
	ErrAssetResolution = errors.New("ошибка загрузки ассетов")

	// ErrCancelled — кооперативная отмена; не является пользовательской
	// ошибкой, колбэк завершения не вызывается.
	ErrCancelled = errors.New("прогон отменен")

	// ErrRender — сбой внутри кадрового цикла; прогон завершается
	// без валидного результата.
	ErrRender = errors.New("ошибка отрисовки кадра")
)
