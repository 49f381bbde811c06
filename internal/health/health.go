package health

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"sync"
	"time"
)

// Status представляет статус компонента
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check представляет проверку здоровья компонента
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response представляет итог всех проверок
type Response struct {
	Status    Status           `json:"status"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks,omitempty"`
	Version   string           `json:"version,omitempty"`
}

// Checker интерфейс для проверки здоровья компонента
type Checker interface {
	Check() Check
}

// Reporter собирает проверки и выполняет их по запросу (флаг -check).
type Reporter struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	version  string
	now      func() time.Time
}

// NewReporter создаёт новый reporter
func NewReporter(version string) *Reporter {
	return &Reporter{
		checkers: make(map[string]Checker),
		version:  version,
		now:      time.Now,
	}
}

// RegisterChecker регистрирует проверку компонента
func (r *Reporter) RegisterChecker(name string, checker Checker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers[name] = checker
}

// Run выполняет все проверки. Общий статус: худший из статусов проверок.
func (r *Reporter) Run() Response {
	r.mu.RLock()
	names := make([]string, 0, len(r.checkers))
	checkers := make(map[string]Checker, len(r.checkers))
	for k, v := range r.checkers {
		names = append(names, k)
		checkers[k] = v
	}
	r.mu.RUnlock()
	sort.Strings(names)

	checks := make(map[string]Check, len(names))
	overallStatus := StatusHealthy

	for _, name := range names {
		check := checkers[name].Check()
		checks[name] = check

		if check.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if check.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}

	return Response{
		Status:    overallStatus,
		Timestamp: r.now().UTC(),
		Checks:    checks,
		Version:   r.version,
	}
}

// WriteJSON выполняет проверки и пишет ответ в w.
func (r *Reporter) WriteJSON(w io.Writer) (Response, error) {
	response := r.Run()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return response, fmt.Errorf("encode health response: %w", err)
	}
	return response, nil
}

// DirChecker проверяет каталог с файлами хранилищ: он должен существовать.
// Без него запуск создал бы файлы не там, где их ждут.
type DirChecker struct {
	path string
}

// NewDirChecker создаёт проверку каталога path.
func NewDirChecker(path string) *DirChecker {
	return &DirChecker{path: path}
}

// Check выполняет проверку.
func (c *DirChecker) Check() Check {
	start := time.Now()
	info, err := os.Stat(c.path)
	check := Check{Name: c.path, Status: StatusHealthy, Message: "directory"}

	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case !info.IsDir():
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("%s is not a directory", c.path)
	}
	check.DurationMs = time.Since(start).Milliseconds()
	return check
}

// Inspector: хранилище, которое умеет проверить свой файл без изменений.
type Inspector interface {
	Name() string
	Inspect() (int, error)
}

// StoreChecker проверяет файл хранилища.
// Отсутствующий файл даёт degraded (будет создан при запуске), неразборчивый даёт unhealthy.
type StoreChecker struct {
	store Inspector
}

// NewStoreChecker создаёт проверку файла хранилища.
func NewStoreChecker(store Inspector) *StoreChecker {
	return &StoreChecker{store: store}
}

// Check выполняет проверку
func (c *StoreChecker) Check() Check {
	start := time.Now()
	n, err := c.store.Inspect()
	check := Check{Name: c.store.Name(), DurationMs: time.Since(start).Milliseconds()}

	switch {
	case err == nil:
		check.Status = StatusHealthy
		check.Message = fmt.Sprintf("%d records", n)
	case errors.Is(err, fs.ErrNotExist):
		check.Status = StatusDegraded
		check.Message = "file does not exist and will be created"
	default:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}
	return check
}

// JournalChecker проверяет журнал заказов. Незавершённые записи дают degraded
// (их разберёт восстановление при запуске), failed-записи дают unhealthy.
type JournalChecker struct {
	name  string
	stats func() (pending, failed int, err error)
}

// NewJournalChecker создаёт проверку журнала.
func NewJournalChecker(name string, stats func() (pending, failed int, err error)) *JournalChecker {
	return &JournalChecker{name: name, stats: stats}
}

// Check выполняет проверку
func (c *JournalChecker) Check() Check {
	start := time.Now()
	pending, failed, err := c.stats()
	check := Check{Name: c.name, DurationMs: time.Since(start).Milliseconds()}

	switch {
	case err != nil:
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	case failed > 0:
		check.Status = StatusUnhealthy
		check.Message = fmt.Sprintf("%d failed entries need manual review", failed)
	case pending > 0:
		check.Status = StatusDegraded
		check.Message = fmt.Sprintf("%d pending entries will be recovered on start", pending)
	default:
		check.Status = StatusHealthy
	}
	return check
}
