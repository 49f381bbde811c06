package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/app"
)

const defaultReprocessLimit = 100

type config struct {
	configPath string
	dataDir    string
	limit      int
	execute    bool
	discard    bool
}

type reprocessStats struct {
	processed int
	requeued  int
	discarded int
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg, err := readConfig()
	if err != nil {
		fail("%v", err)
	}

	appCfg, err := loadAppConfig(cfg)
	if err != nil {
		fail("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appCfg); err != nil {
		fail("journal reprocess failed: %v", err)
	}
}

func readConfig() (config, error) {
	var cfg config

	flag.StringVar(&cfg.configPath, "config", "", "path to YAML config (fallback: INVENTORY_CONFIG)")
	flag.StringVar(&cfg.dataDir, "data-dir", "", "directory with data files (fallback: INVENTORY_DATA_DIR)")
	flag.IntVar(&cfg.limit, "limit", defaultReprocessLimit, "max number of failed entries to process")
	flag.BoolVar(&cfg.execute, "execute", false, "apply changes; default is dry-run")
	flag.BoolVar(&cfg.discard, "discard", false, "remove failed entries instead of requeueing them")
	flag.Parse()

	if strings.TrimSpace(cfg.configPath) == "" {
		cfg.configPath = os.Getenv("INVENTORY_CONFIG")
	}
	if strings.TrimSpace(cfg.dataDir) == "" {
		cfg.dataDir = os.Getenv("INVENTORY_DATA_DIR")
	}

	if cfg.limit <= 0 {
		return config{}, fmt.Errorf("limit must be > 0")
	}
	if cfg.discard && !cfg.execute {
		log.Warn("discard has no effect without -execute")
	}

	return cfg, nil
}

func loadAppConfig(cfg config) (app.Config, error) {
	appCfg := app.DefaultConfig()
	if path := strings.TrimSpace(cfg.configPath); path != "" {
		loaded, err := app.LoadConfigFile(path)
		if err != nil {
			return app.Config{}, err
		}
		appCfg = loaded
	}
	if dir := strings.TrimSpace(cfg.dataDir); dir != "" {
		appCfg.DataDir = dir
	}
	return appCfg, nil
}

func run(ctx context.Context, cfg config, appCfg app.Config) error {
	mode := "dry-run"
	if cfg.execute {
		mode = "execute"
	}
	logger := log.WithField("component", "journal-reprocess")
	logger.WithFields(log.Fields{
		"journal": appCfg.Path(appCfg.JournalFile),
		"limit":   cfg.limit,
		"mode":    mode,
		"discard": cfg.discard,
	}).Info("starting journal reprocess")

	deps := app.NewDependencies(appCfg, logger)

	failed, err := deps.Journal.Failed()
	if err != nil {
		return err
	}
	if len(failed) == 0 {
		logger.Info("journal has no failed entries")
		return nil
	}

	var stats reprocessStats
	for _, entry := range failed {
		if stats.processed >= cfg.limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.processed++

		entryLogger := logger.WithFields(log.Fields{
			"journal_id":   entry.ID,
			"order_id":     entry.OrderID,
			"product_id":   entry.ProductID,
			"stock_before": entry.StockBefore,
			"stock_after":  entry.StockAfter,
		})
		if !cfg.execute {
			entryLogger.Info("dry-run: failed journal entry")
			continue
		}

		if cfg.discard {
			if err := deps.Journal.Complete(entry.ID); err != nil {
				return fmt.Errorf("discard entry %s: %w", entry.ID, err)
			}
			stats.discarded++
			entryLogger.Info("journal entry discarded")
			continue
		}

		if err := deps.Journal.Requeue(entry.ID); err != nil {
			return fmt.Errorf("requeue entry %s: %w", entry.ID, err)
		}
		stats.requeued++
		entryLogger.Info("journal entry requeued")
	}

	fields := log.Fields{
		"mode":      mode,
		"processed": stats.processed,
		"requeued":  stats.requeued,
		"discarded": stats.discarded,
	}

	if stats.requeued > 0 {
		result, err := deps.Recovery.ProcessOnce(ctx)
		if err != nil {
			return fmt.Errorf("recover requeued entries: %w", err)
		}
		fields["recovered"] = result.Recovered
		fields["still_failed"] = result.Failed
	}

	logger.WithFields(fields).Info("journal reprocess finished")
	return nil
}

func fail(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
