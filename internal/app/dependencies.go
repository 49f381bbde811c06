package app

import (
	"errors"
	"io/fs"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/metrics"
	"github.com/vladislavdragonenkov/inventory/internal/service/catalog"
	"github.com/vladislavdragonenkov/inventory/internal/service/journal"
	"github.com/vladislavdragonenkov/inventory/internal/service/ordering"
	"github.com/vladislavdragonenkov/inventory/internal/storage/jsonfile"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Products     *jsonfile.Store[domain.Product]
	Suppliers    *jsonfile.Store[domain.Supplier]
	Orders       *jsonfile.Store[domain.Order]
	JournalStore *jsonfile.Store[domain.JournalEntry]

	Journal  *journal.Journal
	Recovery *journal.Worker
	Catalog  *catalog.Service
	Ordering *ordering.Workflow

	Registry *prometheus.Registry
	Metrics  *metrics.InventoryMetrics
	Logger   *log.Entry
}

// DependencyOptions задаёт необязательные параметры сборки зависимостей.
type DependencyOptions struct {
	RecoveryHandler        func(jsonfile.Recovery)
	JournalRecoveryHandler func(jsonfile.Recovery)
	Clock                  func() time.Time
}

// DependencyOption настраивает сборку зависимостей.
type DependencyOption func(*DependencyOptions)

// WithRecoveryHandler задаёт реакцию на сброс файла хранилища (сообщение пользователю).
// К журналу заказов не применяется, для него есть WithJournalRecoveryHandler.
func WithRecoveryHandler(handler func(jsonfile.Recovery)) DependencyOption {
	return func(opts *DependencyOptions) {
		opts.RecoveryHandler = handler
	}
}

// WithJournalRecoveryHandler задаёт реакцию на сброс файла журнала заказов.
func WithJournalRecoveryHandler(handler func(jsonfile.Recovery)) DependencyOption {
	return func(opts *DependencyOptions) {
		opts.JournalRecoveryHandler = handler
	}
}

// WithDependencyClock задаёт источник даты заказов и времени записей журнала.
func WithDependencyClock(now func() time.Time) DependencyOption {
	return func(opts *DependencyOptions) {
		opts.Clock = now
	}
}

// NewDependencies создаёт хранилища поверх файлов из cfg и сервисы над ними.
// Файлы не читаются: каждое хранилище читает свой файл при первой операции.
func NewDependencies(cfg Config, logger *log.Entry, options ...DependencyOption) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	opts := DependencyOptions{Clock: time.Now}
	for _, option := range options {
		option(&opts)
	}

	registry := prometheus.NewRegistry()
	inventoryMetrics := metrics.NewWithRegisterer(registry)

	// у журнала свой backup-файл: его сброс не затирает содержимое пользовательских файлов
	storeOptions := func(name, backup string, handler func(jsonfile.Recovery)) []jsonfile.Option {
		result := []jsonfile.Option{
			jsonfile.WithLogger(logger.WithFields(log.Fields{"component": "store", "store": name})),
			jsonfile.WithBackupPath(cfg.Path(backup)),
			jsonfile.WithMetrics(inventoryMetrics),
		}
		if handler != nil {
			result = append(result, jsonfile.WithRecoveryHandler(handler))
		}
		return result
	}

	deps := &Dependencies{
		Products:     jsonfile.New[domain.Product](cfg.Path(cfg.ProductsFile), storeOptions(cfg.ProductsFile, cfg.BackupFile, opts.RecoveryHandler)...),
		Suppliers:    jsonfile.New[domain.Supplier](cfg.Path(cfg.SuppliersFile), storeOptions(cfg.SuppliersFile, cfg.BackupFile, opts.RecoveryHandler)...),
		Orders:       jsonfile.New[domain.Order](cfg.Path(cfg.OrdersFile), storeOptions(cfg.OrdersFile, cfg.BackupFile, opts.RecoveryHandler)...),
		JournalStore: jsonfile.New[domain.JournalEntry](cfg.Path(cfg.JournalFile), storeOptions(cfg.JournalFile, cfg.JournalBackupFile, opts.JournalRecoveryHandler)...),
		Registry:     registry,
		Metrics:      inventoryMetrics,
		Logger:       logger,
	}

	deps.Journal = journal.New(deps.JournalStore, journal.WithClock(opts.Clock))
	deps.Recovery = journal.NewWorker(deps.Journal, deps.Products, deps.Orders,
		journal.WithLogger(logger.WithField("component", "journal-worker")),
		journal.WithMetrics(inventoryMetrics),
		journal.WithMaxAttempts(cfg.RecoveryMaxAttempts),
		journal.WithRetryBaseDelay(cfg.RecoveryRetryDelay),
	)
	deps.Catalog = catalog.NewService(deps.Products, deps.Suppliers,
		logger.WithField("component", "catalog"),
		catalog.WithMetrics(inventoryMetrics),
	)
	deps.Ordering = ordering.NewWorkflow(deps.Products, deps.Orders, deps.Journal,
		logger.WithField("component", "ordering"),
		ordering.WithMetrics(inventoryMetrics),
		ordering.WithRecovery(deps.Recovery),
		ordering.WithClock(opts.Clock),
	)

	return deps
}

// JournalStats возвращает число незавершённых и failed записей журнала, не создавая файл.
func (d *Dependencies) JournalStats() (pending, failed int, err error) {
	if _, err := d.JournalStore.Inspect(); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, 0, nil
		}
		return 0, 0, err
	}
	stats, err := d.Journal.Stats()
	if err != nil {
		return 0, 0, err
	}
	return stats.Pending, stats.Failed, nil
}
