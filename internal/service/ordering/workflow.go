package ordering

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/service/journal"
	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

// ErrStockUpdateDeferred: заказ записан, но остаток не сохранён.
// Запись журнала осталась, остаток будет выставлен при следующем запуске.
var ErrStockUpdateDeferred = errors.New("stock update deferred to recovery")

// Recorder принимает метрики заказов.
type Recorder interface {
	RecordOrderPlaced(orderType string, duration time.Duration)
	RecordOrderCancelled(orderType string)
}

// Recovery доводит до конца незавершённые записи журнала.
type Recovery interface {
	ProcessOnce(ctx context.Context) (journal.Result, error)
}

// Option настраивает Workflow.
type Option func(*Workflow)

// WithMetrics задаёт получателя метрик.
func WithMetrics(recorder Recorder) Option {
	return func(w *Workflow) {
		w.metrics = recorder
	}
}

// WithClock задаёт источник даты заказа.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		w.now = now
	}
}

// WithRecovery позволяет дописать отложенный остаток товара прямо в сессии,
// не дожидаясь следующего запуска.
func WithRecovery(recovery Recovery) Option {
	return func(w *Workflow) {
		w.recovery = recovery
	}
}

// Request: подтверждённый пользователем заказ.
type Request struct {
	ProductID string
	Type      domain.OrderType
	Quantity  int
}

// Workflow оформляет заказы на продажу и пополнение.
type Workflow struct {
	products domain.ProductStore
	orders   domain.OrderStore
	journal  *journal.Journal
	logger   *log.Entry
	metrics  Recorder
	recovery Recovery
	now      func() time.Time
}

// NewWorkflow создаёт сценарий оформления заказа.
func NewWorkflow(products domain.ProductStore, orders domain.OrderStore, j *journal.Journal, logger *log.Entry, options ...Option) *Workflow {
	if logger == nil {
		logger = log.WithField("component", "ordering")
	}
	w := &Workflow{
		products: products,
		orders:   orders,
		journal:  j,
		logger:   logger,
		now:      time.Now,
	}
	for _, option := range options {
		option(w)
	}
	return w
}

// Products возвращает товары для выбора.
func (w *Workflow) Products() ([]domain.Product, error) {
	products, err := w.products.Load()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// Lookup ищет товар по точному совпадению ID.
func (w *Workflow) Lookup(productID string) (domain.Product, error) {
	products, err := w.Products()
	if err != nil {
		return domain.Product{}, err
	}
	idx, ok := domain.FindProduct(products, productID)
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return products[idx], nil
}

// Orders возвращает заказы в порядке записи.
func (w *Workflow) Orders() ([]domain.Order, error) {
	orders, err := w.orders.Load()
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return orders, nil
}

// OrderTypePrompt: меню выбора типа заказа.
const OrderTypePrompt = "[1] Sale\n[2] Resupply\nOrder Type: "

// OrderTypeRule принимает номер пункта меню типа заказа.
var OrderTypeRule validation.Rule[domain.OrderType] = func(raw string) (domain.OrderType, error) {
	orderType, ok := domain.ParseOrderTypeChoice(raw)
	if !ok {
		return "", validation.Reject(validation.KindChoice, domain.ErrOrderTypeInvalid,
			"Invalid option, please try again \n\n"+OrderTypePrompt)
	}
	return orderType, nil
}

// CheckAvailability запрещает продажу товара с нулевым остатком.
func CheckAvailability(product domain.Product, orderType domain.OrderType) error {
	if orderType == domain.OrderTypeSale && product.Stock == 0 {
		return domain.ErrOutOfStock
	}
	return nil
}

// QuantityRule принимает целое количество от 1; для продажи не больше остатка,
// для пополнения не больше, чем помещается в остаток.
func QuantityRule(product domain.Product, orderType domain.OrderType) validation.Rule[int] {
	return validation.Then(validation.Int, func(qty int) error {
		if qty < 1 {
			return validation.Reject(validation.KindRange, domain.ErrQuantityInvalid,
				"Quantity cannot be less than 1, please try again: ")
		}
		switch err := checkQuantity(product, orderType, qty); {
		case errors.Is(err, domain.ErrInsufficientStock):
			return validation.Reject(validation.KindRange, domain.ErrInsufficientStock,
				"Order amount exceeds inventory level, please try again: ")
		case errors.Is(err, domain.ErrStockOverflow):
			return validation.Reject(validation.KindRange, domain.ErrStockOverflow,
				"Order amount exceeds maximum stock level, please try again: ")
		}
		return nil
	})
}

func checkQuantity(product domain.Product, orderType domain.OrderType, qty int) error {
	if orderType == domain.OrderTypeSale && qty > product.Stock {
		return domain.ErrInsufficientStock
	}
	if orderType == domain.OrderTypeResupply && qty > math.MaxInt-product.Stock {
		return domain.ErrStockOverflow
	}
	return nil
}

// Settle проверяет, что у товара нет заказа с несохранённым остатком.
// Если такой есть, сначала пробует довести его до конца через Recovery;
// пока запись журнала открыта, новый заказ по товару считался бы от устаревшего остатка.
func (w *Workflow) Settle(ctx context.Context, productID string) error {
	open, err := w.openEntries(productID)
	if err != nil || open == 0 {
		return err
	}

	if w.recovery != nil {
		result, err := w.recovery.ProcessOnce(ctx)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			w.logger.WithError(err).Warn("in-session journal recovery failed")
		} else {
			w.logger.WithFields(log.Fields{
				"product_id": productID,
				"recovered":  result.Recovered,
				"discarded":  result.Discarded,
				"failed":     result.Failed,
			}).Info("unsettled orders processed")
		}
		if open, err = w.openEntries(productID); err != nil || open == 0 {
			return err
		}
	}

	w.logger.WithFields(log.Fields{
		"product_id": productID,
		"open":       open,
	}).Warn("product has unsettled orders")
	return domain.ErrStockUnsettled
}

func (w *Workflow) openEntries(productID string) (int, error) {
	entries, err := w.journal.Pending()
	if err != nil {
		return 0, err
	}
	open := 0
	for _, entry := range entries {
		if entry.ProductID == productID {
			open++
		}
	}
	return open, nil
}

// Quote: полная стоимость заказа по текущей цене.
func Quote(product domain.Product, qty int) domain.Money {
	return product.Price.Mul(qty)
}

// Place записывает заказ и меняет остаток товара.
// Хранилища перечитываются, ограничения проверяются заново: между выбором товара
// и подтверждением файл мог измениться.
func (w *Workflow) Place(ctx context.Context, req Request) (domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return domain.Order{}, err
	}
	start := time.Now()

	if !req.Type.Valid() {
		return domain.Order{}, domain.ErrOrderTypeInvalid
	}
	if req.Quantity < 1 {
		return domain.Order{}, domain.ErrQuantityInvalid
	}
	if err := w.Settle(ctx, req.ProductID); err != nil {
		return domain.Order{}, err
	}

	products, err := w.products.Load()
	if err != nil {
		return domain.Order{}, fmt.Errorf("load products: %w", err)
	}
	idx, ok := domain.FindProduct(products, req.ProductID)
	if !ok {
		return domain.Order{}, domain.ErrProductNotFound
	}
	product := products[idx]
	if err := CheckAvailability(product, req.Type); err != nil {
		return domain.Order{}, err
	}
	if err := checkQuantity(product, req.Type, req.Quantity); err != nil {
		return domain.Order{}, err
	}
	updated := product
	updated.Stock += req.Type.StockDelta(req.Quantity)
	if err := domain.JoinErrors(updated.ValidateInvariants()); err != nil {
		return domain.Order{}, fmt.Errorf("invalid product after order: %w", err)
	}

	orders, err := w.orders.Load()
	if err != nil {
		return domain.Order{}, fmt.Errorf("load orders: %w", err)
	}
	order := domain.Order{
		ID:        domain.NextID(domain.OrderIDPrefix, len(orders)),
		ProductID: product.ID,
		Quantity:  req.Quantity,
		OrderDate: domain.FormatOrderDate(w.now()),
		Type:      req.Type,
	}
	if err := domain.JoinErrors(order.ValidateInvariants()); err != nil {
		return domain.Order{}, fmt.Errorf("invalid order: %w", err)
	}

	stockAfter := updated.Stock
	entry, err := w.journal.Begin(order, product.Stock, stockAfter)
	if err != nil {
		return domain.Order{}, err
	}

	orderLogger := w.logger.WithFields(log.Fields{
		"order_id":   order.ID,
		"product_id": order.ProductID,
		"order_type": order.Type,
		"quantity":   order.Quantity,
	})

	if err := w.orders.Save(append(orders, order)); err != nil {
		if completeErr := w.journal.Complete(entry.ID); completeErr != nil {
			orderLogger.WithError(completeErr).Warn("failed to discard journal entry")
		}
		return domain.Order{}, fmt.Errorf("save orders: %w", err)
	}
	// без отметки order_written воркер всё равно найдёт заказ в хранилище
	if err := w.journal.Advance(entry.ID, domain.JournalStatusOrderWritten); err != nil {
		orderLogger.WithError(err).Warn("failed to advance journal entry")
	}

	products[idx].Stock = stockAfter
	if err := w.products.Save(products); err != nil {
		orderLogger.WithError(err).Error("order recorded but stock not saved")
		return order, fmt.Errorf("%w: save products: %w", ErrStockUpdateDeferred, err)
	}

	if err := w.journal.Complete(entry.ID); err != nil {
		orderLogger.WithError(err).Warn("failed to complete journal entry")
	}

	if w.metrics != nil {
		w.metrics.RecordOrderPlaced(string(order.Type), time.Since(start))
	}
	orderLogger.WithFields(log.Fields{
		"stock_before": product.Stock,
		"stock_after":  stockAfter,
	}).Info("order placed")
	return order, nil
}

// Cancel фиксирует отказ от заказа. Хранилища не меняются.
func (w *Workflow) Cancel(req Request) {
	if w.metrics != nil {
		w.metrics.RecordOrderCancelled(string(req.Type))
	}
	w.logger.WithFields(log.Fields{
		"product_id": req.ProductID,
		"order_type": req.Type,
	}).Info("order cancelled")
}
