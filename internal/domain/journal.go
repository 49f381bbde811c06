package domain

import "time"

// JournalStatus: стадия применения заказа к двум хранилищам.
type JournalStatus string

const (
	// JournalStatusPending: запись создана, заказ ещё может быть не записан.
	JournalStatusPending JournalStatus = "pending"
	// JournalStatusOrderWritten: заказ записан, остаток товара ещё может быть не обновлён.
	JournalStatusOrderWritten JournalStatus = "order_written"
	// JournalStatusFailed: восстановление невозможно (например, товар исчез), нужна ручная проверка.
	JournalStatusFailed JournalStatus = "failed"
)

// JournalEntry связывает запись заказа с изменением остатка товара.
// StockAfter хранит итоговый остаток, поэтому повторное применение идемпотентно.
type JournalEntry struct {
	ID          string        `json:"id"`
	OrderID     string        `json:"order_id"`
	ProductID   string        `json:"product_id"`
	OrderType   OrderType     `json:"order_type"`
	Quantity    int           `json:"quantity"`
	StockBefore int           `json:"stock_before"`
	StockAfter  int           `json:"stock_after"`
	Status      JournalStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Matches сообщает, описывает ли запись журнала данный заказ.
func (e JournalEntry) Matches(order Order) bool {
	return e.OrderID == order.ID &&
		e.ProductID == order.ProductID &&
		e.Quantity == order.Quantity &&
		e.OrderType == order.Type
}
