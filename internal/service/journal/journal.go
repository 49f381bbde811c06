package journal

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// Stats: состояние журнала для health и метрик.
type Stats struct {
	Pending         int
	Failed          int
	OldestPendingAt time.Time
}

// JournalOption настраивает Journal.
type JournalOption func(*Journal)

// WithClock задаёт источник времени.
func WithClock(now func() time.Time) JournalOption {
	return func(j *Journal) {
		j.now = now
	}
}

// WithIDGenerator задаёт генератор идентификаторов записей.
func WithIDGenerator(newID func() string) JournalOption {
	return func(j *Journal) {
		j.newID = newID
	}
}

// Journal фиксирует намерение изменить два хранилища (заказы и товары) до того,
// как изменение начнётся. Незавершённые записи разбирает Worker при следующем запуске.
type Journal struct {
	store domain.JournalStore
	now   func() time.Time
	newID func() string
}

// New создаёт журнал поверх хранилища записей.
func New(store domain.JournalStore, options ...JournalOption) *Journal {
	j := &Journal{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, option := range options {
		option(j)
	}
	return j
}

// Begin записывает pending-запись для заказа до того, как заказ попадёт в хранилище.
func (j *Journal) Begin(order domain.Order, stockBefore, stockAfter int) (domain.JournalEntry, error) {
	now := j.now().UTC()
	entry := domain.JournalEntry{
		ID:          j.newID(),
		OrderID:     order.ID,
		ProductID:   order.ProductID,
		OrderType:   order.Type,
		Quantity:    order.Quantity,
		StockBefore: stockBefore,
		StockAfter:  stockAfter,
		Status:      domain.JournalStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := j.store.Append(entry); err != nil {
		return domain.JournalEntry{}, fmt.Errorf("append journal entry: %w", err)
	}
	return entry, nil
}

// Advance переводит запись id в статус status.
func (j *Journal) Advance(id string, status domain.JournalStatus) error {
	entries, err := j.store.Load()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	idx := indexOf(entries, id)
	if idx < 0 {
		return domain.ErrJournalEntryNotFound
	}

	entries[idx].Status = status
	entries[idx].UpdatedAt = j.now().UTC()
	if err := j.store.Save(entries); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return nil
}

// Complete удаляет запись id: оба хранилища согласованы.
func (j *Journal) Complete(id string) error {
	entries, err := j.store.Load()
	if err != nil {
		return fmt.Errorf("load journal: %w", err)
	}
	idx := indexOf(entries, id)
	if idx < 0 {
		return domain.ErrJournalEntryNotFound
	}

	entries = append(entries[:idx], entries[idx+1:]...)
	if err := j.store.Save(entries); err != nil {
		return fmt.Errorf("save journal: %w", err)
	}
	return nil
}

// Pending возвращает незавершённые записи (failed не включаются) в порядке создания.
func (j *Journal) Pending() ([]domain.JournalEntry, error) {
	entries, err := j.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	pending := make([]domain.JournalEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Status != domain.JournalStatusFailed {
			pending = append(pending, entry)
		}
	}
	return pending, nil
}

// Failed возвращает записи, которые восстановление не смогло разобрать.
func (j *Journal) Failed() ([]domain.JournalEntry, error) {
	entries, err := j.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}

	var failed []domain.JournalEntry
	for _, entry := range entries {
		if entry.Status == domain.JournalStatusFailed {
			failed = append(failed, entry)
		}
	}
	return failed, nil
}

// Requeue возвращает failed-запись в pending: при следующем проходе Worker разберёт её заново.
func (j *Journal) Requeue(id string) error {
	return j.Advance(id, domain.JournalStatusPending)
}

// Stats считает незавершённые и failed записи.
func (j *Journal) Stats() (Stats, error) {
	entries, err := j.store.Load()
	if err != nil {
		return Stats{}, fmt.Errorf("load journal: %w", err)
	}

	var stats Stats
	for _, entry := range entries {
		if entry.Status == domain.JournalStatusFailed {
			stats.Failed++
			continue
		}
		stats.Pending++
		if stats.OldestPendingAt.IsZero() || entry.CreatedAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = entry.CreatedAt
		}
	}
	return stats, nil
}

func indexOf(entries []domain.JournalEntry, id string) int {
	for i, entry := range entries {
		if entry.ID == id {
			return i
		}
	}
	return -1
}
