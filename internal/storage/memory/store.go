package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// Store: in-memory реализация RecordStore для локальной разработки и тестов.
type Store[T any] struct {
	mu      sync.RWMutex
	name    string
	records []T
	saveErr error
	saves   int
}

// NewStore создаёт хранилище с начальным набором записей.
func NewStore[T any](name string, seed ...T) *Store[T] {
	records := make([]T, len(seed))
	copy(records, seed)
	return &Store[T]{name: name, records: records}
}

// Name возвращает имя хранилища.
func (s *Store[T]) Name() string { return s.name }

// Load возвращает копию записей, чтобы избежать непредсказуемых мутаций извне.
func (s *Store[T]) Load() ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]T, len(s.records))
	copy(result, s.records)
	return result, nil
}

// Save перезаписывает список целиком.
func (s *Store[T]) Save(records []T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = make([]T, len(records))
	copy(s.records, records)
	s.saves++
	return nil
}

// Append добавляет запись в конец.
func (s *Store[T]) Append(record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append(s.records, record)
	s.saves++
	return nil
}

// FailSaves заставляет последующие Save/Append возвращать err (nil снимает сбой).
// Используется в тестах для имитации падения между шагами.
func (s *Store[T]) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves возвращает количество успешных записей (используется в тестах).
func (s *Store[T]) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

var _ domain.RecordStore[domain.Order] = (*Store[domain.Order])(nil)
