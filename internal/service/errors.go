// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrStorageQuery — не удалось вычислить занятое место.
	// Для вызывающего это hard stop: загрузка не продолжается.
	ErrStorageQuery = errors.New("ошибка запроса занятого места")
)

// SizeLimitError — файл превышает лимит размера одного файла.
// Проверка независима от квоты: файл может быть слишком большим
// даже при почти пустом хранилище.
type SizeLimitError struct {
	// Max — настроенный лимит размера файла
	Max int64
	// Actual — размер отклонённого файла
	Actual int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("размер файла %d байт превышает максимум %d байт", e.Actual, e.Max)
}

// QuotaExceededError — загрузка превысила бы агрегатный лимит хранения.
// Все поля — от снимка квоты ДО отклонённой загрузки.
type QuotaExceededError struct {
	// Used — занято байт на момент проверки
	Used int64
	// Limit — агрегатный лимит
	Limit int64
	// Attempted — размер отклонённого файла
	Attempted int64
	// Remaining — max(0, Limit - Used)
	Remaining int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("занято %d из %d байт, файл %d байт не помещается (осталось %d)",
		e.Used, e.Limit, e.Attempted, e.Remaining)
}

// BackendExhaustedError — все backends, включая терминальный fallback,
// отказали. Перечисляет ошибку каждого индекса; FileRecord не создаётся.
type BackendExhaustedError struct {
	// Errors — ошибки по индексам backends в порядке попыток
	Errors []BackendAttemptError
}

// BackendAttemptError — ошибка одной попытки загрузки.
type BackendAttemptError struct {
	// Index — позиция backend-а в registry
	Index int
	// Backend — имя backend-а
	Backend string
	// Err — ошибка попытки
	Err error
}

func (e *BackendExhaustedError) Error() string {
	return fmt.Sprintf("все storage backends недоступны (%d попыток)", len(e.Errors))
}
