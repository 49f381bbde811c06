package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics содержит метрики хранилищ, ввода и заказов.
type InventoryMetrics struct {
	// Операции с файлами хранилищ
	storeLoads      *prometheus.CounterVec
	storeSaves      *prometheus.CounterVec
	storeRecoveries *prometheus.CounterVec

	// Отказы во вводе по классам проверок
	validationFailures *prometheus.CounterVec

	productsCreated  prometheus.Counter
	productsUpdated  prometheus.Counter
	suppliersCreated prometheus.Counter

	ordersPlaced    *prometheus.CounterVec
	ordersCancelled *prometheus.CounterVec
	placeDuration   prometheus.Histogram

	// Журнал заказов
	journalEntries *prometheus.CounterVec
	journalPending prometheus.Gauge
}

// NewInventoryMetrics регистрирует метрики в DefaultRegisterer.
func NewInventoryMetrics() *InventoryMetrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registerer (nil: DefaultRegisterer).
func NewWithRegisterer(registerer prometheus.Registerer) *InventoryMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &InventoryMetrics{
		storeLoads: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_store_loads_total",
			Help: "Total number of store file loads",
		}, []string{"store"}),
		storeSaves: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_store_saves_total",
			Help: "Total number of full store file writes",
		}, []string{"store"}),
		storeRecoveries: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_store_recoveries_total",
			Help: "Total number of stores reset to an empty list, by reason",
		}, []string{"store", "reason"}),
		validationFailures: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_validation_failures_total",
			Help: "Total number of rejected inputs, by check kind",
		}, []string{"kind"}),
		productsCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_products_created_total",
			Help: "Total number of products added",
		}),
		productsUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_products_updated_total",
			Help: "Total number of product attribute updates",
		}),
		suppliersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "inventory_suppliers_created_total",
			Help: "Total number of suppliers added",
		}),
		ordersPlaced: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_orders_placed_total",
			Help: "Total number of confirmed orders, by order type",
		}, []string{"type"}),
		ordersCancelled: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_orders_cancelled_total",
			Help: "Total number of declined orders, by order type",
		}, []string{"type"}),
		placeDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "inventory_order_place_duration_seconds",
			Help:    "Duration of the order commit (journal, orders, products) in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		journalEntries: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "inventory_journal_entries_total",
			Help: "Total number of journal entries handled during recovery, by outcome",
		}, []string{"outcome"}),
		journalPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "inventory_journal_pending_entries",
			Help: "Number of journal entries left after the last recovery pass",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordLoad увеличивает счётчик чтений хранилища.
func (m *InventoryMetrics) RecordLoad(store string) {
	m.storeLoads.WithLabelValues(store).Inc()
}

// RecordSave увеличивает счётчик записей хранилища.
func (m *InventoryMetrics) RecordSave(store string) {
	m.storeSaves.WithLabelValues(store).Inc()
}

// RecordRecovery фиксирует сброс хранилища (missing/corrupt).
func (m *InventoryMetrics) RecordRecovery(store, reason string) {
	m.storeRecoveries.WithLabelValues(store, reason).Inc()
}

// RecordValidationFailure фиксирует отказ во вводе.
func (m *InventoryMetrics) RecordValidationFailure(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.validationFailures.WithLabelValues(kind).Inc()
}

func (m *InventoryMetrics) RecordProductCreated() { m.productsCreated.Inc() }

func (m *InventoryMetrics) RecordProductUpdated() { m.productsUpdated.Inc() }

func (m *InventoryMetrics) RecordSupplierCreated() { m.suppliersCreated.Inc() }

// RecordOrderPlaced фиксирует подтверждённый заказ и время его записи.
func (m *InventoryMetrics) RecordOrderPlaced(orderType string, duration time.Duration) {
	m.ordersPlaced.WithLabelValues(orderType).Inc()
	m.placeDuration.Observe(duration.Seconds())
}

// RecordOrderCancelled фиксирует отказ от подтверждения заказа.
func (m *InventoryMetrics) RecordOrderCancelled(orderType string) {
	m.ordersCancelled.WithLabelValues(orderType).Inc()
}

// RecordJournalEntry фиксирует исход обработки записи журнала (recovered/discarded/failed).
func (m *InventoryMetrics) RecordJournalEntry(outcome string) {
	m.journalEntries.WithLabelValues(outcome).Inc()
}

// SetJournalPending выставляет количество оставшихся записей журнала.
func (m *InventoryMetrics) SetJournalPending(n int) {
	m.journalPending.Set(float64(n))
}
