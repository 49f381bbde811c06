package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/console"
	"github.com/vladislavdragonenkov/inventory/internal/health"
	"github.com/vladislavdragonenkov/inventory/internal/storage/jsonfile"
	"github.com/vladislavdragonenkov/inventory/internal/version"
)

// Options задаёт необязательные параметры Run.
type Options struct {
	Logger *log.Entry
	Clock  func() time.Time
}

// Option настраивает Run.
type Option func(*Options)

// WithLogger задаёт logger приложения.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithClock задаёт источник времени (дата заказа).
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = now
	}
}

// Run запускает интерактивное меню поверх in/out и возвращается после пункта Exit,
// по окончании ввода или при отмене ctx. Перед меню доводятся до конца прерванные заказы.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, options ...Option) error {
	opts := Options{Clock: time.Now}
	for _, option := range options {
		option(&opts)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	var session *console.Session
	deps := NewDependencies(cfg, logger,
		WithDependencyClock(opts.Clock),
		WithRecoveryHandler(func(rec jsonfile.Recovery) { printRecovery(session, rec) }),
		WithJournalRecoveryHandler(func(rec jsonfile.Recovery) { printJournalRecovery(session, rec) }),
	)
	session = console.NewSession(in, out,
		console.WithLogger(logger.WithField("component", "console")),
		console.WithFailureRecorder(deps.Metrics),
	)
	defer dumpMetrics(cfg.MetricsFile, deps.Registry, logger)

	recoverJournal(ctx, deps, session, logger)

	m := newMenu(session, deps, cfg, logger)
	return m.loop(ctx)
}

// Check выполняет проверки файлов хранилищ и журнала, ничего не изменяя, и пишет JSON-ответ в w.
func Check(cfg Config, w io.Writer, logger *log.Entry) (health.Response, error) {
	deps := NewDependencies(cfg, logger)

	reporter := health.NewReporter(version.GetVersion())
	reporter.RegisterChecker("data_dir", health.NewDirChecker(cfg.DataDir))
	reporter.RegisterChecker("products", health.NewStoreChecker(deps.Products))
	reporter.RegisterChecker("suppliers", health.NewStoreChecker(deps.Suppliers))
	reporter.RegisterChecker("orders", health.NewStoreChecker(deps.Orders))
	reporter.RegisterChecker("journal", health.NewJournalChecker(cfg.JournalFile, deps.JournalStats))
	return reporter.WriteJSON(w)
}

func recoverJournal(ctx context.Context, deps *Dependencies, session *console.Session, logger *log.Entry) {
	result, err := deps.Recovery.ProcessOnce(ctx)
	if err != nil {
		logger.WithError(err).Error("order journal recovery failed")
		return
	}
	if result.Recovered+result.Discarded+result.Failed > 0 {
		logger.WithFields(log.Fields{
			"recovered": result.Recovered,
			"discarded": result.Discarded,
			"failed":    result.Failed,
		}).Warn("interrupted orders resolved")
	}
	if result.Failed > 0 {
		session.Println(fmt.Sprintf("WARNING: %d interrupted order(s) could not be completed, see %s.",
			result.Failed, deps.JournalStore.Name()))
	}
}

func printRecovery(session *console.Session, rec jsonfile.Recovery) {
	if session == nil {
		return
	}
	switch rec.Reason {
	case jsonfile.RecoveryMissing:
		session.Println(fmt.Sprintf("ERROR: File %s does not exist in this directory. Creating a new text file...", rec.Store))
	case jsonfile.RecoveryCorrupt:
		session.Println(fmt.Sprintf("ERROR: File %s has been tampered and cannot be read due to incorrect formatting.", rec.Store))
		session.Println(fmt.Sprintf("Contents from %s have been stored in '%s', and a new text file will be created.",
			rec.Store, filepath.Base(rec.BackupPath)))
	}
}

// printJournalRecovery сообщает только о повреждённом журнале: отсутствующий файл для него норма.
func printJournalRecovery(session *console.Session, rec jsonfile.Recovery) {
	if session == nil || rec.Reason != jsonfile.RecoveryCorrupt {
		return
	}
	session.Println(fmt.Sprintf("WARNING: Order journal %s cannot be read, interrupted orders in it will not be recovered.", rec.Store))
	session.Println(fmt.Sprintf("Contents from %s have been stored in '%s'.", rec.Store, filepath.Base(rec.BackupPath)))
}

// dumpMetrics пишет метрики сессии в textfile-формате для node_exporter.
func dumpMetrics(path string, gatherer prometheus.Gatherer, logger *log.Entry) {
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		logger.WithError(err).WithField("path", path).Warn("failed to write metrics file")
	}
}
