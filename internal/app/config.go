package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/vladislavdragonenkov/inventory/internal/report"
	"github.com/vladislavdragonenkov/inventory/internal/storage/jsonfile"
)

const (
	defaultProductsFile  = "products.txt"
	defaultSuppliersFile = "suppliers.txt"
	defaultOrdersFile    = "orders.txt"
	defaultJournalFile   = "journal.txt"
	defaultJournalBackup = "journal_temp.txt"
	defaultLogLevel      = "warn"
	defaultRecoveryTries = 3
	defaultRecoveryDelay = 50 * time.Millisecond
)

// Config описывает настройки запуска: где лежат файлы хранилищ, логирование и метрики.
// MetricsFile: путь для выгрузки метрик в textfile-формате при выходе; пусто, не выгружать.
type Config struct {
	DataDir             string        `yaml:"data_dir"`
	ProductsFile        string        `yaml:"products_file"`
	SuppliersFile       string        `yaml:"suppliers_file"`
	OrdersFile          string        `yaml:"orders_file"`
	BackupFile          string        `yaml:"backup_file"`
	JournalFile         string        `yaml:"journal_file"`
	JournalBackupFile   string        `yaml:"journal_backup_file"`
	LowStockThreshold   int           `yaml:"low_stock_threshold"`
	LogLevel            string        `yaml:"log_level"`
	LogFile             string        `yaml:"log_file"`
	MetricsFile         string        `yaml:"metrics_file"`
	RecoveryMaxAttempts int           `yaml:"recovery_max_attempts"`
	RecoveryRetryDelay  time.Duration `yaml:"recovery_retry_delay"`
}

// DefaultConfig возвращает настройки исходной программы: файлы в текущем каталоге.
func DefaultConfig() Config {
	return Config{
		DataDir:             ".",
		ProductsFile:        defaultProductsFile,
		SuppliersFile:       defaultSuppliersFile,
		OrdersFile:          defaultOrdersFile,
		BackupFile:          jsonfile.DefaultBackupName,
		JournalFile:         defaultJournalFile,
		JournalBackupFile:   defaultJournalBackup,
		LowStockThreshold:   report.DefaultLowStockThreshold,
		LogLevel:            defaultLogLevel,
		RecoveryMaxAttempts: defaultRecoveryTries,
		RecoveryRetryDelay:  defaultRecoveryDelay,
	}
}

// LoadConfigFile читает YAML поверх DefaultConfig. Неизвестные ключи: ошибка.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults заполняет пустые имена файлов, оставленные в YAML.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	fill := func(field *string, value string) {
		if strings.TrimSpace(*field) == "" {
			*field = value
		}
	}
	fill(&c.DataDir, def.DataDir)
	fill(&c.ProductsFile, def.ProductsFile)
	fill(&c.SuppliersFile, def.SuppliersFile)
	fill(&c.OrdersFile, def.OrdersFile)
	fill(&c.BackupFile, def.BackupFile)
	fill(&c.JournalFile, def.JournalFile)
	fill(&c.JournalBackupFile, def.JournalBackupFile)
	fill(&c.LogLevel, def.LogLevel)
	if c.RecoveryMaxAttempts <= 0 {
		c.RecoveryMaxAttempts = def.RecoveryMaxAttempts
	}
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	if c.LowStockThreshold < 0 {
		errs = append(errs, errors.New("low_stock_threshold must be >= 0"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.RecoveryRetryDelay < 0 {
		errs = append(errs, errors.New("recovery_retry_delay must be >= 0"))
	}

	seen := make(map[string]string)
	for _, file := range []struct{ key, name string }{
		{"products_file", c.ProductsFile},
		{"suppliers_file", c.SuppliersFile},
		{"orders_file", c.OrdersFile},
		{"backup_file", c.BackupFile},
		{"journal_file", c.JournalFile},
		{"journal_backup_file", c.JournalBackupFile},
	} {
		if other, ok := seen[file.name]; ok {
			errs = append(errs, fmt.Errorf("%s and %s point to the same file %q", other, file.key, file.name))
			continue
		}
		seen[file.name] = file.key
	}

	return errors.Join(errs...)
}

// Path возвращает путь к файлу name внутри DataDir.
func (c Config) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}
