package journal

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

const (
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// Исходы разбора записи журнала (значение метки outcome).
const (
	OutcomeRecovered = "recovered"
	OutcomeDiscarded = "discarded"
	OutcomeFailed    = "failed"
)

// Recorder принимает метрики разбора журнала.
type Recorder interface {
	RecordJournalEntry(outcome string)
	SetJournalPending(n int)
}

// WorkerOptions задаёт параметры Worker.
type WorkerOptions struct {
	Logger         *log.Entry
	Metrics        Recorder
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithMetrics задаёт получателя метрик.
func WithMetrics(recorder Recorder) Option {
	return func(opts *WorkerOptions) {
		opts.Metrics = recorder
	}
}

// WithMaxAttempts задаёт число попыток записи остатка.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Result: итог одного прохода по журналу.
type Result struct {
	Recovered int
	Discarded int
	Failed    int
}

// Worker доводит до конца заказы, прерванные между записью заказа и записью остатка.
type Worker struct {
	journal        *Journal
	products       domain.ProductStore
	orders         domain.OrderStore
	logger         *log.Entry
	metrics        Recorder
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewWorker создаёт воркер восстановления.
func NewWorker(journal *Journal, products domain.ProductStore, orders domain.OrderStore, options ...Option) *Worker {
	opts := WorkerOptions{
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "journal-worker")
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Worker{
		journal:        journal,
		products:       products,
		orders:         orders,
		logger:         logger,
		metrics:        opts.Metrics,
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// ProcessOnce разбирает все незавершённые записи:
//   - pending без записанного заказа: заказ не состоялся, запись удаляется;
//   - заказ записан, остаток ещё StockBefore: остаток становится StockAfter;
//   - остаток уже StockAfter: запись просто удаляется;
//   - товар пропал или остаток изменён кем-то ещё: запись помечается failed.
func (w *Worker) ProcessOnce(ctx context.Context) (Result, error) {
	var result Result
	if err := ctx.Err(); err != nil {
		return result, err
	}

	entries, err := w.journal.Pending()
	if err != nil {
		return result, err
	}
	if len(entries) == 0 {
		w.refreshBacklogMetrics()
		return result, nil
	}

	orders, err := w.orders.Load()
	if err != nil {
		return result, fmt.Errorf("load orders: %w", err)
	}
	products, err := w.products.Load()
	if err != nil {
		return result, fmt.Errorf("load products: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entryLogger := w.logger.WithFields(log.Fields{
			"journal_id": entry.ID,
			"order_id":   entry.OrderID,
			"product_id": entry.ProductID,
		})

		outcome, err := w.resolve(ctx, entry, orders, products)
		if err != nil {
			entryLogger.WithError(err).Error("journal entry recovery failed")
			outcome = OutcomeFailed
		} else {
			entryLogger.WithField("outcome", outcome).Warn("journal entry resolved")
		}

		switch outcome {
		case OutcomeRecovered:
			result.Recovered++
		case OutcomeDiscarded:
			result.Discarded++
		default:
			result.Failed++
		}
		if w.metrics != nil {
			w.metrics.RecordJournalEntry(outcome)
		}
	}

	w.refreshBacklogMetrics()
	return result, nil
}

func (w *Worker) resolve(ctx context.Context, entry domain.JournalEntry, orders []domain.Order, products []domain.Product) (string, error) {
	if !orderWritten(entry, orders) {
		if entry.Status == domain.JournalStatusPending {
			if err := w.journal.Complete(entry.ID); err != nil {
				return "", err
			}
			return OutcomeDiscarded, nil
		}
		return w.markFailed(entry, fmt.Errorf("order %s is missing from orders store", entry.OrderID))
	}

	idx, ok := domain.FindProduct(products, entry.ProductID)
	if !ok {
		return w.markFailed(entry, domain.ErrProductNotFound)
	}

	switch products[idx].Stock {
	case entry.StockAfter:
	case entry.StockBefore:
		products[idx].Stock = entry.StockAfter
		if err := w.saveWithRetry(ctx, products); err != nil {
			products[idx].Stock = entry.StockBefore
			return "", err
		}
	default:
		return w.markFailed(entry, fmt.Errorf("stock of %s is %d, expected %d or %d",
			entry.ProductID, products[idx].Stock, entry.StockBefore, entry.StockAfter))
	}

	if err := w.journal.Complete(entry.ID); err != nil {
		return "", err
	}
	return OutcomeRecovered, nil
}

func (w *Worker) markFailed(entry domain.JournalEntry, cause error) (string, error) {
	w.logger.WithError(cause).WithField("journal_id", entry.ID).Error("journal entry needs manual review")
	if err := w.journal.Advance(entry.ID, domain.JournalStatusFailed); err != nil {
		return "", err
	}
	return OutcomeFailed, nil
}

func (w *Worker) saveWithRetry(ctx context.Context, products []domain.Product) error {
	var lastErr error

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.products.Save(products)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= w.maxAttempts {
			break
		}

		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("save products failed after %d attempts: %w", w.maxAttempts, lastErr)
}

func (w *Worker) refreshBacklogMetrics() {
	if w.metrics == nil {
		return
	}
	stats, err := w.journal.Stats()
	if err != nil {
		w.logger.WithError(err).Warn("failed to collect journal stats")
		return
	}
	w.metrics.SetJournalPending(stats.Pending)
}

func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return w.retryBaseDelay
	}

	const maxDuration = time.Duration(1<<63 - 1)
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		if delay > maxDuration/2 {
			return maxDuration
		}
		delay *= 2
	}
	return delay
}

func orderWritten(entry domain.JournalEntry, orders []domain.Order) bool {
	for _, order := range orders {
		if entry.Matches(order) {
			return true
		}
	}
	return false
}
