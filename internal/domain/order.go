package domain

import (
	"strings"
	"time"
)

// OrderDateLayout: формат даты заказа (DD/MM/YYYY).
const OrderDateLayout = "02/01/2006"

// OrderType описывает направление движения товара.
type OrderType string

const (
	// OrderTypeSale: продажа, уменьшает остаток.
	OrderTypeSale OrderType = "Sale"
	// OrderTypeResupply: пополнение, увеличивает остаток.
	OrderTypeResupply OrderType = "Resupply"
)

// OrderTypeChoices: пункты меню выбора типа заказа в порядке отображения.
var OrderTypeChoices = []OrderType{OrderTypeSale, OrderTypeResupply}

// ParseOrderTypeChoice переводит номер пункта меню ("1", "2") в тип заказа.
func ParseOrderTypeChoice(raw string) (OrderType, bool) {
	switch strings.TrimSpace(raw) {
	case "1":
		return OrderTypeSale, true
	case "2":
		return OrderTypeResupply, true
	default:
		return "", false
	}
}

// Valid сообщает, является ли тип одним из известных.
func (t OrderType) Valid() bool {
	return t == OrderTypeSale || t == OrderTypeResupply
}

// StockDelta возвращает изменение остатка для заказа на qty единиц.
func (t OrderType) StockDelta(qty int) int {
	if t == OrderTypeSale {
		return -qty
	}
	return qty
}

// Order: заказ на продажу или пополнение. После создания не изменяется.
type Order struct {
	ID        string    `json:"Order ID"`
	ProductID string    `json:"Product ID"`
	Quantity  int       `json:"Quantity"`
	OrderDate string    `json:"Order Date"`
	Type      OrderType `json:"Order Type"`
}

// FormatOrderDate форматирует дату заказа.
func FormatOrderDate(t time.Time) string {
	return t.Format(OrderDateLayout)
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.ID == "" {
		errs = append(errs, ErrIDRequired)
	}
	if o.ProductID == "" {
		errs = append(errs, ErrProductIDRequired)
	}
	if o.Quantity < 1 {
		errs = append(errs, ErrQuantityInvalid)
	}
	if !o.Type.Valid() {
		errs = append(errs, ErrOrderTypeInvalid)
	}
	if _, err := time.Parse(OrderDateLayout, o.OrderDate); err != nil {
		errs = append(errs, ErrOrderDateInvalid)
	}

	return errs
}
