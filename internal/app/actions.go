package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/inventory/internal/console"
	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/report"
	"github.com/vladislavdragonenkov/inventory/internal/service/catalog"
	"github.com/vladislavdragonenkov/inventory/internal/service/ordering"
	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

func (m *menu) addProduct(_ context.Context) error {
	svc := m.deps.Catalog

	id, err := svc.NextProductID()
	if err != nil {
		return err
	}
	m.session.Printf("Assigned Product ID: %s\n", id)

	name, err := console.Prompt(m.session, "Product Name: ", svc.ProductNameRule(""))
	if err != nil {
		return err
	}
	description, err := console.Prompt(m.session, "Description: ", catalog.DescriptionRule)
	if err != nil {
		return err
	}
	price, err := console.Prompt(m.session, "Price: ", catalog.PriceRule)
	if err != nil {
		return err
	}
	stock, err := console.Prompt(m.session, "Stock: ", catalog.StockRule)
	if err != nil {
		return err
	}

	if _, err := svc.AddProduct(domain.Product{
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
	}); err != nil {
		return err
	}
	m.session.Println("New product added successfully!")
	return nil
}

func (m *menu) updateProduct(_ context.Context) error {
	svc := m.deps.Catalog

	products, err := svc.ListProducts()
	if err != nil {
		return err
	}
	m.session.Println("List of Product IDs and Names:")
	for _, p := range products {
		m.session.Printf("%s - %s\n", p.ID, p.Name)
	}
	m.session.Println()

	id, err := console.Prompt(m.session, "Please enter the ID of the product you wish to change: ", validation.NonEmpty)
	if err != nil {
		return err
	}
	product, err := svc.FindProduct(id)
	if errors.Is(err, domain.ErrProductNotFound) {
		m.session.Println("ERROR: Product ID was not found. ")
		return nil
	}
	if err != nil {
		return err
	}

	m.session.Println()
	printProductFields(m.session, product)
	m.session.Println()

	attributes := svc.ProductAttributes(product.ID)
	for i, attribute := range attributes {
		m.session.Printf("[%d] %s\n", i+1, attribute.Label)
	}
	back := len(attributes) + 1
	m.session.Printf("[%d] Return to Main Menu\n", back)

	choice, err := console.Prompt(m.session, "\nWhich element do you wish to change? ",
		validation.IntRange(1, back, "Option does not exist. Please choose a valid option: "))
	if err != nil {
		return err
	}
	if choice == back {
		return nil
	}

	attribute := attributes[choice-1]
	change, err := console.Prompt(m.session, "Please enter new data for "+attribute.Label+": ", attribute.Rule)
	if err != nil {
		return err
	}
	if _, err := svc.UpdateProduct(product.ID, change); err != nil {
		return err
	}
	m.session.Println("Product updated successfully!")
	return nil
}

func (m *menu) addSupplier(_ context.Context) error {
	svc := m.deps.Catalog

	id, err := svc.NextSupplierID()
	if err != nil {
		return err
	}
	m.session.Printf("Assigned Supplier ID: %s\n", id)

	name, err := console.Prompt(m.session, "Please enter Supplier Name: ", svc.SupplierNameRule())
	if err != nil {
		return err
	}
	contact, err := console.Prompt(m.session, "Please enter Contact Number: ", catalog.ContactRule)
	if err != nil {
		return err
	}
	email, err := console.Prompt(m.session, "Please enter Email Address: ", catalog.EmailRule)
	if err != nil {
		return err
	}

	if _, err := svc.AddSupplier(domain.Supplier{
		Name:          name,
		ContactNumber: contact,
		Email:         email,
	}); err != nil {
		return err
	}
	m.session.Println("\nNew supplier information has been added! ")
	return nil
}

func (m *menu) placeOrder(ctx context.Context) error {
	workflow := m.deps.Ordering

	products, err := workflow.Products()
	if err != nil {
		return err
	}
	for _, p := range products {
		m.session.Printf(" Product ID: %s\n Name: %s\n Description: %s\n Price: %s\n Stock: %d\n\n",
			p.ID, p.Name, p.Description, p.Price, p.Stock)
	}

	productID, err := m.session.Ask("Type the product ID that you wish to order: ")
	if err != nil {
		return err
	}
	productID = strings.TrimSpace(productID)
	if err := workflow.Settle(ctx, productID); err != nil {
		if domain.IsBusinessAbort(err) {
			m.abort(err)
			return nil
		}
		return err
	}
	product, err := workflow.Lookup(productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		m.session.Println("There is no such product. ")
		return nil
	}
	if err != nil {
		return err
	}

	printOrderProduct(m.session, product)
	m.session.Println()

	orderType, err := console.Prompt(m.session, ordering.OrderTypePrompt, ordering.OrderTypeRule)
	if err != nil {
		return err
	}
	if err := ordering.CheckAvailability(product, orderType); err != nil {
		m.abort(err)
		return nil
	}

	qty, err := console.Prompt(m.session, "Order quantity: ", ordering.QuantityRule(product, orderType))
	if err != nil {
		return err
	}

	total := ordering.Quote(product, qty)
	confirmed, err := console.Prompt(m.session,
		fmt.Sprintf("The total cost of %d %s is %s \n Confirm?(Y/N) -> ", qty, product.Name, total),
		validation.YesNo)
	if err != nil {
		return err
	}

	req := ordering.Request{ProductID: product.ID, Type: orderType, Quantity: qty}
	if !confirmed {
		workflow.Cancel(req)
		m.session.Printf("%s Order Cancelled\n", orderType)
		return nil
	}

	_, err = workflow.Place(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, ordering.ErrStockUpdateDeferred):
		m.session.Printf("%s Order Placed\n", orderType)
		m.session.Println("WARNING: stock level could not be saved and will be updated on next start.")
		m.logger.WithError(err).Warn("stock update deferred")
		return nil
	case domain.IsBusinessAbort(err),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrStockOverflow):
		m.abort(err)
		return nil
	default:
		return err
	}

	m.session.Printf("%s Order Placed\n", orderType)
	return nil
}

// abort печатает сообщение об отказе в заказе; это не сбой.
func (m *menu) abort(err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		m.session.Println("Product is currently out of stock, please restock this product. ")
	case errors.Is(err, domain.ErrProductNotFound):
		m.session.Println("There is no such product. ")
	case errors.Is(err, domain.ErrInsufficientStock):
		m.session.Println("Order amount exceeds inventory level. ")
	case errors.Is(err, domain.ErrStockOverflow):
		m.session.Println("Order amount exceeds maximum stock level. ")
	case errors.Is(err, domain.ErrStockUnsettled):
		m.session.Println("Stock of this product from a previous order is not saved yet, please try again later. ")
	default:
		m.session.Println(err.Error())
	}
}

func (m *menu) viewInventory(_ context.Context) error {
	products, err := m.deps.Catalog.ListProducts()
	if err != nil {
		return err
	}
	if len(products) == 0 {
		m.session.Println("No products available in the inventory.")
		return nil
	}

	m.session.Println("\nProduct IDs available:")
	for _, p := range products {
		m.session.Printf("%s: %s\n", p.ID, p.Name)
	}

	productID, err := m.session.Ask("\nEnter product ID: ")
	if err != nil {
		return err
	}
	product, err := m.deps.Catalog.FindProduct(productID)
	if errors.Is(err, domain.ErrProductNotFound) {
		m.session.Printf("Product ID %s not found.\n", productID)
		return nil
	}
	if err != nil {
		return err
	}

	m.session.Println("\nProduct Details:")
	m.session.Printf("Product ID: %s\n", product.ID)
	m.session.Printf("Name: %s\n", product.Name)
	m.session.Printf("Description: %s\n", product.Description)
	m.session.Printf("Price: $%s\n", product.Price)
	m.session.Printf("Stock: %d\n", product.Stock)
	return nil
}

func (m *menu) generateReports(_ context.Context) error {
	products, err := m.deps.Catalog.ListProducts()
	if err != nil {
		return err
	}
	orders, err := m.deps.Ordering.Orders()
	if err != nil {
		return err
	}

	printReport(m.session, report.Build(products, orders, m.cfg.LowStockThreshold))
	return nil
}
