package domain

import (
	"fmt"
	"strings"
)

const (
	// ProductIDPrefix: префикс идентификатора товара (P001).
	ProductIDPrefix = "P"
	// SupplierIDPrefix: префикс идентификатора поставщика (S001).
	SupplierIDPrefix = "S"
	// OrderIDPrefix: префикс идентификатора заказа (OR001).
	OrderIDPrefix = "OR"
)

// NextID формирует идентификатор по текущему размеру хранилища: prefix + count+1 (минимум три цифры).
// Освободившиеся номера не переиспользуются, т.к. удаления нет.
func NextID(prefix string, count int) string {
	return fmt.Sprintf("%s%03d", prefix, count+1)
}

// Product: товар на складе.
type Product struct {
	ID          string `json:"Product ID"`
	Name        string `json:"Name"`
	Description string `json:"Description"`
	Price       Money  `json:"Price"`
	Stock       int    `json:"Stock"`
}

// ValidateInvariants проверяет базовые инварианты товара и возвращает список замечаний.
func (p *Product) ValidateInvariants() []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, ErrIDRequired)
	}
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if strings.TrimSpace(p.Description) == "" {
		errs = append(errs, ErrDescriptionRequired)
	}
	if p.Price.IsNegative() {
		errs = append(errs, ErrNegativePrice)
	}
	if p.Stock < 0 {
		errs = append(errs, ErrNegativeStock)
	}

	return errs
}

// FindProduct ищет товар по ID и возвращает его индекс в срезе.
func FindProduct(products []Product, id string) (int, bool) {
	for i := range products {
		if products[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
