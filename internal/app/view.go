package app

import (
	"github.com/vladislavdragonenkov/inventory/internal/console"
	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/report"
)

// printProductFields печатает товар в виде "ключ: значение" с выравниванием ключей.
func printProductFields(s *console.Session, p domain.Product) {
	s.Printf("%-13s: %s\n", "Product ID", p.ID)
	s.Printf("%-13s: %s\n", "Name", p.Name)
	s.Printf("%-13s: %s\n", "Description", p.Description)
	s.Printf("%-13s: %s\n", "Price", p.Price)
	s.Printf("%-13s: %d\n", "Stock", p.Stock)
}

func printOrderProduct(s *console.Session, p domain.Product) {
	s.Printf("Product ID: %s\nName: %s\nDescription: %s\nPrice: %s\nStock: %d\n",
		p.ID, p.Name, p.Description, p.Price, p.Stock)
}

func printReport(s *console.Session, r report.Report) {
	s.Println("Low Stock Items\n---------------")
	for _, p := range r.LowStock {
		s.Printf("Product ID  : %s\n", p.ID)
		s.Printf("Product Name: %s\n", p.Name)
		s.Printf("Stock level : %d\n\n", p.Stock)
	}

	s.Println("\nProduct Sales\n-------------")
	for _, row := range r.Sales {
		s.Printf("Product ID    : %s\n", row.ProductID)
		s.Printf("Product Name  : %s\n", row.Name)
		s.Printf("Order Quantity: %d\n", row.Quantity)
		s.Printf("Total Revenue : $%s\n\n", row.Revenue)
	}

	s.Println("\nSupplier Orders\n---------------")
	for _, o := range r.SupplierOrders {
		s.Printf("Order ID  : %s\n", o.ID)
		s.Printf("Product ID: %s\n", o.ProductID)
		s.Printf("Quantity  : %d\n", o.Quantity)
		s.Printf("Order Date: %s\n\n", o.OrderDate)
	}
}
