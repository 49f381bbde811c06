package catalog

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// Recorder принимает счётчики операций каталога.
type Recorder interface {
	RecordProductCreated()
	RecordProductUpdated()
	RecordSupplierCreated()
}

// Option настраивает Service.
type Option func(*Service)

// WithMetrics задаёт получателя счётчиков.
func WithMetrics(recorder Recorder) Option {
	return func(s *Service) {
		s.metrics = recorder
	}
}

// Service управляет товарами и поставщиками поверх файловых хранилищ.
// Все операции перечитывают хранилище: кэша между операциями нет.
type Service struct {
	products  domain.ProductStore
	suppliers domain.SupplierStore
	logger    *log.Entry
	metrics   Recorder
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductStore, suppliers domain.SupplierStore, logger *log.Entry, options ...Option) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	s := &Service{
		products:  products,
		suppliers: suppliers,
		logger:    logger,
	}
	for _, option := range options {
		option(s)
	}
	return s
}
