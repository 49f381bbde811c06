package ordering

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/service/journal"
	"github.com/vladislavdragonenkov/inventory/internal/storage/memory"
	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

type stubRecorder struct {
	placed    []string
	cancelled []string
}

func (r *stubRecorder) RecordOrderPlaced(orderType string, _ time.Duration) {
	r.placed = append(r.placed, orderType)
}

func (r *stubRecorder) RecordOrderCancelled(orderType string) {
	r.cancelled = append(r.cancelled, orderType)
}

type fixture struct {
	products *memory.Store[domain.Product]
	orders   *memory.Store[domain.Order]
	entries  *memory.Store[domain.JournalEntry]
	journal  *journal.Journal
	recorder *stubRecorder
	workflow *Workflow
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()

	f := &fixture{
		products: memory.NewStore("products.txt", domain.Product{
			ID: "P001", Name: "Bolt", Description: "steel bolt", Price: domain.MoneyFromFloat(1.5), Stock: stock,
		}),
		orders:   memory.NewStore[domain.Order]("orders.txt"),
		entries:  memory.NewStore[domain.JournalEntry]("journal.txt"),
		recorder: &stubRecorder{},
	}
	f.journal = journal.New(f.entries)
	f.workflow = NewWorkflow(f.products, f.orders, f.journal, nil,
		WithMetrics(f.recorder),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }),
	)
	return f
}

// withRecovery пересобирает workflow с дописыванием отложенного остатка в сессии.
func (f *fixture) withRecovery() {
	worker := journal.NewWorker(f.journal, f.products, f.orders, journal.WithRetryBaseDelay(0))
	f.workflow = NewWorkflow(f.products, f.orders, f.journal, nil,
		WithMetrics(f.recorder),
		WithRecovery(worker),
		WithClock(func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }),
	)
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	products, err := f.products.Load()
	require.NoError(t, err)
	return products[0].Stock
}

func TestPlace_SaleDecreasesStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)

	order, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 3})
	require.NoError(t, err)
	require.Equal(t, domain.Order{
		ID:        "OR001",
		ProductID: "P001",
		Quantity:  3,
		OrderDate: "14/03/2026",
		Type:      domain.OrderTypeSale,
	}, order)
	require.Equal(t, 2, f.stock(t))

	orders, err := f.orders.Load()
	require.NoError(t, err)
	require.Equal(t, []domain.Order{order}, orders)

	entries, err := f.entries.Load()
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Equal(t, []string{"Sale"}, f.recorder.placed)
}

func TestPlace_ResupplyIncreasesStockAndSequencesIDs(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)

	first, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeResupply, Quantity: 7})
	require.NoError(t, err)
	second, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 7})
	require.NoError(t, err)

	require.Equal(t, "OR001", first.ID)
	require.Equal(t, "OR002", second.ID)
	require.Equal(t, 0, f.stock(t))
}

func TestPlace_RejectsUnavailableStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)
	_, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrOutOfStock)
	require.True(t, domain.IsBusinessAbort(err))

	f = newFixture(t, 5)
	_, err = f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 10})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.workflow.Place(context.Background(), Request{ProductID: "P404", Type: domain.OrderTypeSale, Quantity: 1})
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeResupply, Quantity: 0})
	require.ErrorIs(t, err, domain.ErrQuantityInvalid)

	_, err = f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: "Gift", Quantity: 1})
	require.ErrorIs(t, err, domain.ErrOrderTypeInvalid)

	require.Equal(t, 5, f.stock(t))
	require.Equal(t, 0, f.orders.Saves())
	require.Equal(t, 0, f.entries.Saves())
}

func TestPlace_OrderSaveFailureDiscardsJournalEntry(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)
	f.orders.FailSaves(errors.New("disk full"))

	_, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 3})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 5, f.stock(t))

	entries, err := f.entries.Load()
	require.NoError(t, err)
	require.Empty(t, entries)
	require.Empty(t, f.recorder.placed)
}

func TestPlace_StockSaveFailureIsRecoveredByWorker(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)
	f.products.FailSaves(errors.New("disk full"))

	order, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 3})
	require.ErrorIs(t, err, ErrStockUpdateDeferred)
	require.Equal(t, "OR001", order.ID)
	require.Equal(t, 5, f.stock(t))

	entries, err := f.entries.Load()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.JournalStatusOrderWritten, entries[0].Status)
	require.Equal(t, 2, entries[0].StockAfter)

	f.products.FailSaves(nil)
	worker := journal.NewWorker(f.journal, f.products, f.orders, journal.WithRetryBaseDelay(0))
	result, err := worker.ProcessOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, journal.Result{Recovered: 1}, result)
	require.Equal(t, 2, f.stock(t))
}

func TestPlace_DeferredStockIsSettledBeforeNextOrder(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	f.withRecovery()
	sale := Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 3}

	f.products.FailSaves(errors.New("disk full"))
	_, err := f.workflow.Place(context.Background(), sale)
	require.ErrorIs(t, err, ErrStockUpdateDeferred)
	require.Equal(t, 10, f.stock(t))

	f.products.FailSaves(nil)
	order, err := f.workflow.Place(context.Background(), sale)
	require.NoError(t, err)
	require.Equal(t, "OR002", order.ID)
	require.Equal(t, 4, f.stock(t))

	entries, err := f.entries.Load()
	require.NoError(t, err)
	require.Empty(t, entries)

	// после перезапуска восстанавливать нечего, остаток не откатывается
	result, err := journal.NewWorker(f.journal, f.products, f.orders).ProcessOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, journal.Result{}, result)
	require.Equal(t, 4, f.stock(t))
}

func TestPlace_RefusesOrderWhileStockUnsettled(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10)
	sale := Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 3}

	f.products.FailSaves(errors.New("disk full"))
	_, err := f.workflow.Place(context.Background(), sale)
	require.ErrorIs(t, err, ErrStockUpdateDeferred)

	// без Recovery запись журнала не закрыть: заказ по старому остатку запрещён
	f.products.FailSaves(nil)
	_, err = f.workflow.Place(context.Background(), sale)
	require.ErrorIs(t, err, domain.ErrStockUnsettled)
	require.True(t, domain.IsBusinessAbort(err))

	orders, err := f.orders.Load()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 10, f.stock(t))

	// Recovery есть, но диск всё ещё не пишет
	f.withRecovery()
	f.products.FailSaves(errors.New("disk full"))
	require.ErrorIs(t, f.workflow.Settle(context.Background(), "P001"), domain.ErrStockUnsettled)

	f.products.FailSaves(nil)
	require.NoError(t, f.workflow.Settle(context.Background(), "P001"))
	require.Equal(t, 7, f.stock(t))

	// у других товаров открытых записей нет
	require.NoError(t, f.workflow.Settle(context.Background(), "P404"))
}

func TestPlace_ResupplyOverflowIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)

	_, err := f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeResupply, Quantity: math.MaxInt})
	require.ErrorIs(t, err, domain.ErrStockOverflow)
	require.Equal(t, 5, f.stock(t))
	require.Equal(t, 0, f.orders.Saves())
	require.Equal(t, 0, f.entries.Saves())

	_, err = f.workflow.Place(context.Background(), Request{ProductID: "P001", Type: domain.OrderTypeResupply, Quantity: math.MaxInt - 5})
	require.NoError(t, err)
	require.Equal(t, math.MaxInt, f.stock(t))
}

func TestPlace_CanceledContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.workflow.Place(ctx, Request{ProductID: "P001", Type: domain.OrderTypeSale, Quantity: 1})
	require.ErrorIs(t, err, context.Canceled)
}

func TestCancel_LeavesStoresUntouched(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 5)
	f.workflow.Cancel(Request{ProductID: "P001", Type: domain.OrderTypeResupply, Quantity: 2})

	require.Equal(t, []string{"Resupply"}, f.recorder.cancelled)
	require.Equal(t, 0, f.products.Saves())
	require.Equal(t, 0, f.orders.Saves())
	require.Equal(t, 0, f.entries.Saves())
}

func TestLookupAndAvailability(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 0)

	product, err := f.workflow.Lookup("P001")
	require.NoError(t, err)
	require.Equal(t, "Bolt", product.Name)

	_, err = f.workflow.Lookup("p001")
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.ErrorIs(t, CheckAvailability(product, domain.OrderTypeSale), domain.ErrOutOfStock)
	require.NoError(t, CheckAvailability(product, domain.OrderTypeResupply))
}

func TestQuantityRule(t *testing.T) {
	t.Parallel()

	product := domain.Product{ID: "P001", Stock: 5}

	qty, err := QuantityRule(product, domain.OrderTypeSale)("5")
	require.NoError(t, err)
	require.Equal(t, 5, qty)

	_, err = QuantityRule(product, domain.OrderTypeSale)("10")
	require.Equal(t, "Order amount exceeds inventory level, please try again: ", validation.RetryPrompt(err))

	_, err = QuantityRule(product, domain.OrderTypeSale)("0")
	require.Equal(t, "Quantity cannot be less than 1, please try again: ", validation.RetryPrompt(err))

	qty, err = QuantityRule(product, domain.OrderTypeResupply)("10")
	require.NoError(t, err)
	require.Equal(t, 10, qty)

	_, err = QuantityRule(product, domain.OrderTypeResupply)(strconv.Itoa(math.MaxInt))
	require.ErrorIs(t, err, domain.ErrStockOverflow)
	require.Equal(t, "Order amount exceeds maximum stock level, please try again: ", validation.RetryPrompt(err))

	qty, err = QuantityRule(product, domain.OrderTypeResupply)(strconv.Itoa(math.MaxInt - 5))
	require.NoError(t, err)
	require.Equal(t, math.MaxInt-5, qty)

	_, err = QuantityRule(product, domain.OrderTypeResupply)("ten")
	require.Equal(t, validation.KindInt, validation.KindOf(err))
}

func TestQuote(t *testing.T) {
	t.Parallel()

	product := domain.Product{Price: domain.MoneyFromFloat(1.5)}
	require.Equal(t, "4.50", Quote(product, 3).String())
}

func TestOrderTypeRule(t *testing.T) {
	t.Parallel()

	orderType, err := OrderTypeRule(" 2 ")
	require.NoError(t, err)
	require.Equal(t, domain.OrderTypeResupply, orderType)

	_, err = OrderTypeRule("3")
	require.Equal(t, validation.KindChoice, validation.KindOf(err))
	require.Equal(t, "Invalid option, please try again \n\n[1] Sale\n[2] Resupply\nOrder Type: ", validation.RetryPrompt(err))
}
