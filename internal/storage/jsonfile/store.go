package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

const (
	filePerm = 0o644
	// DefaultBackupName: общий файл для содержимого, которое не удалось разобрать.
	DefaultBackupName = "temp.txt"
)

// ErrCorrupt: содержимое файла не является JSON-массивом записей.
var ErrCorrupt = errors.New("store file is corrupt")

// RecoveryReason описывает, почему хранилище было сброшено в пустой список.
type RecoveryReason string

const (
	// RecoveryMissing: файла не было, создан пустой.
	RecoveryMissing RecoveryReason = "missing"
	// RecoveryCorrupt: содержимое не разобрано, сохранено в backup и сброшено.
	RecoveryCorrupt RecoveryReason = "corrupt"
)

// Recovery описывает одно восстановление хранилища.
type Recovery struct {
	Store      string
	Path       string
	Reason     RecoveryReason
	BackupPath string
	Err        error
}

// Recorder принимает счётчики операций хранилища.
type Recorder interface {
	RecordLoad(store string)
	RecordSave(store string)
	RecordRecovery(store, reason string)
}

// Options задаёт параметры хранилища.
type Options struct {
	Logger          *log.Entry
	BackupPath      string
	Metrics         Recorder
	RecoveryHandler func(Recovery)
}

// Option настраивает Store.
type Option func(*Options)

// WithLogger задаёт logger для хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithBackupPath задаёт файл, куда копируется неразобранное содержимое.
func WithBackupPath(path string) Option {
	return func(opts *Options) {
		opts.BackupPath = path
	}
}

// WithMetrics задаёт получателя счётчиков.
func WithMetrics(recorder Recorder) Option {
	return func(opts *Options) {
		opts.Metrics = recorder
	}
}

// WithRecoveryHandler задаёт callback, которому сообщается о каждом восстановлении.
func WithRecoveryHandler(handler func(Recovery)) Option {
	return func(opts *Options) {
		opts.RecoveryHandler = handler
	}
}

// Store хранит список записей T в одном JSON-файле.
// Каждая операция читает или перезаписывает файл целиком; блокировок нет.
type Store[T any] struct {
	path       string
	backupPath string
	logger     *log.Entry
	metrics    Recorder
	onRecover  func(Recovery)
}

// New создаёт хранилище для файла path.
func New[T any](path string, options ...Option) *Store[T] {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	backupPath := opts.BackupPath
	if backupPath == "" {
		backupPath = filepath.Join(filepath.Dir(path), DefaultBackupName)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "jsonfile")
	}

	return &Store[T]{
		path:       path,
		backupPath: backupPath,
		logger:     logger.WithField("store", filepath.Base(path)),
		metrics:    opts.Metrics,
		onRecover:  opts.RecoveryHandler,
	}
}

// Name возвращает имя файла хранилища.
func (s *Store[T]) Name() string {
	return filepath.Base(s.path)
}

// Path возвращает полный путь к файлу.
func (s *Store[T]) Path() string {
	return s.path
}

// Load читает все записи. Отсутствующий и повреждённый файл не считаются ошибкой:
// хранилище сбрасывается в [] и возвращается пустой список.
func (s *Store[T]) Load() ([]T, error) {
	if s.metrics != nil {
		s.metrics.RecordLoad(s.Name())
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.reset(); err != nil {
			return nil, err
		}
		s.recovered(Recovery{Reason: RecoveryMissing})
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Name(), err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []T{}, nil
	}

	var records []T
	if decodeErr := json.Unmarshal(data, &records); decodeErr != nil {
		// Без копии не сбрасываем: иначе исходные данные будут потеряны.
		if err := os.WriteFile(s.backupPath, data, filePerm); err != nil {
			return nil, fmt.Errorf("backup unreadable %s to %s: %w", s.Name(), s.backupPath, err)
		}
		if err := s.reset(); err != nil {
			return nil, err
		}
		s.recovered(Recovery{Reason: RecoveryCorrupt, BackupPath: s.backupPath, Err: decodeErr})
		return []T{}, nil
	}

	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Save полностью перезаписывает файл списком records (отступ в два пробела).
func (s *Store[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.Name(), err)
	}
	if err := os.WriteFile(s.path, data, filePerm); err != nil {
		return fmt.Errorf("write %s: %w", s.Name(), err)
	}

	if s.metrics != nil {
		s.metrics.RecordSave(s.Name())
	}
	s.logger.WithField("records", len(records)).Debug("store saved")
	return nil
}

// Inspect проверяет файл, ничего не меняя: возвращает число записей,
// ошибку с fs.ErrNotExist для отсутствующего файла или ErrCorrupt для неразборчивого.
func (s *Store[T]) Inspect() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", s.Name(), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("%s: %w: %v", s.Name(), ErrCorrupt, err)
	}
	return len(records), nil
}

// Append добавляет запись в конец и сохраняет весь список.
func (s *Store[T]) Append(record T) error {
	records, err := s.Load()
	if err != nil {
		return err
	}
	return s.Save(append(records, record))
}

func (s *Store[T]) reset() error {
	if err := os.WriteFile(s.path, []byte("[]"), filePerm); err != nil {
		return fmt.Errorf("reset %s: %w", s.Name(), err)
	}
	return nil
}

func (s *Store[T]) recovered(rec Recovery) {
	rec.Store = s.Name()
	rec.Path = s.path

	entry := s.logger.WithField("reason", rec.Reason)
	if rec.Err != nil {
		entry = entry.WithError(rec.Err).WithField("backup", rec.BackupPath)
	}
	entry.Warn("store reset to empty list")

	if s.metrics != nil {
		s.metrics.RecordRecovery(rec.Store, string(rec.Reason))
	}
	if s.onRecover != nil {
		s.onRecover(rec)
	}
}

var _ domain.RecordStore[domain.Product] = (*Store[domain.Product])(nil)
