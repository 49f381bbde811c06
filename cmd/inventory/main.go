package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/app"
	"github.com/vladislavdragonenkov/inventory/internal/health"
	"github.com/vladislavdragonenkov/inventory/internal/version"
)

const (
	envConfig            = "INVENTORY_CONFIG"
	envDataDir           = "INVENTORY_DATA_DIR"
	envLogLevel          = "INVENTORY_LOG_LEVEL"
	envLogFile           = "INVENTORY_LOG_FILE"
	envMetricsFile       = "INVENTORY_METRICS_FILE"
	envLowStockThreshold = "INVENTORY_LOW_STOCK_THRESHOLD"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат, уровень и вывод логов. Консоль занята меню,
// поэтому по умолчанию пишутся только предупреждения и только в stderr.
// Возвращаемый файл лога (nil, если пишем в stderr) нужно закрыть при выходе.
func setupLogger(cfg app.Config) (*os.File, error) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.WarnLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	if cfg.LogFile == "" {
		return nil, nil
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	return file, nil
}

// readConfig собирает конфигурацию: значения по умолчанию, затем YAML-файл, затем окружение.
func readConfig(configPath string, lookup envLookup) (app.Config, []string, error) {
	if configPath == "" {
		if v, ok := lookup(envConfig); ok {
			configPath = strings.TrimSpace(v)
		}
	}

	base := app.DefaultConfig()
	if configPath != "" {
		cfg, err := app.LoadConfigFile(configPath)
		if err != nil {
			return base, nil, err
		}
		base = cfg
	}

	cfg, warnings := applyEnv(base, lookup)
	return cfg, warnings, nil
}

// applyEnv переопределяет поля cfg; некорректные значения игнорируются с предупреждением.
func applyEnv(cfg app.Config, lookup envLookup) (app.Config, []string) {
	var warnings []string

	if v, ok := lookupTrimmed(lookup, envDataDir); ok {
		cfg.DataDir = v
	}
	if v, ok := lookupTrimmed(lookup, envLogLevel); ok {
		if _, err := log.ParseLevel(v); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envLogLevel, err))
		} else {
			cfg.LogLevel = v
		}
	}
	if v, ok := lookupTrimmed(lookup, envLogFile); ok {
		cfg.LogFile = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsFile); ok {
		cfg.MetricsFile = v
	}
	if v, ok := lookupTrimmed(lookup, envLowStockThreshold); ok {
		threshold, err := parseInt(v, func(n int) bool { return n >= 0 }, "must be >= 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envLowStockThreshold, err))
		} else {
			cfg.LowStockThreshold = threshold
		}
	}

	return cfg, warnings
}

func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.LookupEnv))
}

// run разбирает флаги и возвращает код выхода процесса.
func run(args []string, stdin io.Reader, stdout io.Writer, lookup envLookup) int {
	flags := flag.NewFlagSet("inventory", flag.ContinueOnError)
	flags.SetOutput(stdout)
	configPath := flags.String("config", "", "path to YAML config (or "+envConfig+")")
	check := flags.Bool("check", false, "check store files, print JSON report and exit")
	showVersion := flags.Bool("version", false, "print version and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.Banner("inventory"))
		return 0
	}

	cfg, warnings, err := readConfig(*configPath, lookup)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}

	logFile, err := setupLogger(cfg)
	if err != nil {
		log.WithError(err).Warn("logging to stderr")
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}
	for _, warning := range warnings {
		log.Warn(warning)
	}

	logger := log.WithField("component", "app")
	if *check {
		response, err := app.Check(cfg, stdout, logger)
		if err != nil {
			logger.WithError(err).Error("health check failed")
			return 1
		}
		if response.Status == health.StatusUnhealthy {
			return 1
		}
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.WithFields(log.Fields{
		"data_dir": cfg.DataDir,
		"version":  version.GetVersion(),
	}).Info("starting inventory")

	if err := app.Run(ctx, cfg, stdin, stdout, app.WithLogger(logger)); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("inventory stopped with error")
		return 1
	}
	return 0
}
