// Package report собирает данные отчётов по товарам и заказам.
// Печать остаётся за вызывающим кодом.
package report

import "github.com/vladislavdragonenkov/inventory/internal/domain"

// DefaultLowStockThreshold: остаток, при котором товар попадает в отчёт о нехватке.
const DefaultLowStockThreshold = 10

// Sales: итоги продаж одного товара.
type Sales struct {
	ProductID string
	Name      string
	Quantity  int
	Revenue   domain.Money
}

// Report: все три раздела отчёта.
type Report struct {
	LowStock       []domain.Product
	Sales          []Sales
	SupplierOrders []domain.Order
}

// Build строит отчёт.
func Build(products []domain.Product, orders []domain.Order, threshold int) Report {
	return Report{
		LowStock:       LowStock(products, threshold),
		Sales:          ProductSales(products, orders),
		SupplierOrders: SupplierOrders(orders),
	}
}

// LowStock возвращает товары с остатком не больше threshold.
func LowStock(products []domain.Product, threshold int) []domain.Product {
	var low []domain.Product
	for _, p := range products {
		if p.Stock <= threshold {
			low = append(low, p)
		}
	}
	return low
}

// ProductSales суммирует продажи по товарам в порядке товаров.
// Выручка считается по текущей цене; товары без продаж пропускаются.
func ProductSales(products []domain.Product, orders []domain.Order) []Sales {
	sold := make(map[string]int)
	for _, o := range orders {
		if o.Type == domain.OrderTypeSale {
			sold[o.ProductID] += o.Quantity
		}
	}

	var sales []Sales
	for _, p := range products {
		qty := sold[p.ID]
		if qty == 0 {
			continue
		}
		sales = append(sales, Sales{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Revenue:   p.Price.Mul(qty),
		})
	}
	return sales
}

// SupplierOrders возвращает заказы на пополнение в порядке записи.
func SupplierOrders(orders []domain.Order) []domain.Order {
	var resupply []domain.Order
	for _, o := range orders {
		if o.Type == domain.OrderTypeResupply {
			resupply = append(resupply, o)
		}
	}
	return resupply
}
