package catalog

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

var (
	// DescriptionRule: описание не может быть пустым.
	DescriptionRule validation.Rule[string] = validation.NonEmpty

	// PriceRule: число с двумя знаками, не меньше нуля.
	PriceRule = validation.Then(validation.Float, func(price domain.Money) error {
		if price.IsNegative() {
			return validation.Reject(validation.KindRange, domain.ErrNegativePrice,
				"Price cannot be a negative value, please try again: ")
		}
		return nil
	})

	// StockRule: целое неотрицательное число.
	StockRule = validation.Then(validation.Int, func(stock int) error {
		if stock < 0 {
			return validation.Reject(validation.KindRange, domain.ErrNegativeStock,
				"Stock cannot be a negative value, please try again: ")
		}
		return nil
	})
)

// ProductChange изменяет одно поле товара.
type ProductChange func(*domain.Product)

// ProductAttribute: редактируемое поле товара и правило разбора нового значения.
type ProductAttribute struct {
	Label string
	Rule  validation.Rule[ProductChange]
}

// NextProductID возвращает ID, который получит следующий товар.
func (s *Service) NextProductID() (string, error) {
	products, err := s.products.Load()
	if err != nil {
		return "", fmt.Errorf("load products: %w", err)
	}
	return domain.NextID(domain.ProductIDPrefix, len(products)), nil
}

// ProductNameRule проверяет уникальность имени среди товаров.
// Товар exceptID не учитывается, чтобы при редактировании можно было оставить прежнее имя.
func (s *Service) ProductNameRule(exceptID string) validation.Rule[string] {
	return validation.Unique("Name", func(name string) (bool, error) {
		products, err := s.products.Load()
		if err != nil {
			return false, fmt.Errorf("load products: %w", err)
		}
		return productNameTaken(products, name, exceptID), nil
	})
}

// AddProduct назначает ID по текущему размеру хранилища, проверяет поля и сохраняет товар.
func (s *Service) AddProduct(product domain.Product) (domain.Product, error) {
	products, err := s.products.Load()
	if err != nil {
		return domain.Product{}, fmt.Errorf("load products: %w", err)
	}

	product.ID = domain.NextID(domain.ProductIDPrefix, len(products))
	product.Name = strings.TrimSpace(product.Name)
	product.Description = strings.TrimSpace(product.Description)
	if err := domain.JoinErrors(product.ValidateInvariants()); err != nil {
		return domain.Product{}, fmt.Errorf("invalid product: %w", err)
	}
	if productNameTaken(products, product.Name, "") {
		return domain.Product{}, fmt.Errorf("product %q: %w", product.Name, domain.ErrDuplicateName)
	}

	if err := s.products.Save(append(products, product)); err != nil {
		return domain.Product{}, fmt.Errorf("save products: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductCreated()
	}
	s.logger.WithFields(log.Fields{
		"product_id": product.ID,
		"stock":      product.Stock,
	}).Info("product added")
	return product, nil
}

// ListProducts возвращает товары в порядке добавления.
func (s *Service) ListProducts() ([]domain.Product, error) {
	products, err := s.products.Load()
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return products, nil
}

// FindProduct возвращает товар или domain.ErrProductNotFound.
func (s *Service) FindProduct(id string) (domain.Product, error) {
	products, err := s.products.Load()
	if err != nil {
		return domain.Product{}, fmt.Errorf("load products: %w", err)
	}
	idx, ok := domain.FindProduct(products, id)
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return products[idx], nil
}

// ProductAttributes возвращает редактируемые поля товара productID в порядке пунктов меню.
func (s *Service) ProductAttributes(productID string) []ProductAttribute {
	return []ProductAttribute{
		{
			Label: "Name",
			Rule: validation.Map(s.ProductNameRule(productID), func(name string) ProductChange {
				return func(p *domain.Product) { p.Name = name }
			}),
		},
		{
			Label: "Description",
			Rule: validation.Map(DescriptionRule, func(description string) ProductChange {
				return func(p *domain.Product) { p.Description = description }
			}),
		},
		{
			Label: "Price",
			Rule: validation.Map(PriceRule, func(price domain.Money) ProductChange {
				return func(p *domain.Product) { p.Price = price }
			}),
		},
		{
			Label: "Stock",
			Rule: validation.Map(StockRule, func(stock int) ProductChange {
				return func(p *domain.Product) { p.Stock = stock }
			}),
		},
	}
}

// UpdateProduct применяет изменение к товару id и перезаписывает всё хранилище.
func (s *Service) UpdateProduct(id string, change ProductChange) (domain.Product, error) {
	products, err := s.products.Load()
	if err != nil {
		return domain.Product{}, fmt.Errorf("load products: %w", err)
	}
	idx, ok := domain.FindProduct(products, id)
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}

	updated := products[idx]
	change(&updated)
	if err := domain.JoinErrors(updated.ValidateInvariants()); err != nil {
		return domain.Product{}, fmt.Errorf("invalid product: %w", err)
	}
	if productNameTaken(products, updated.Name, updated.ID) {
		return domain.Product{}, fmt.Errorf("product %q: %w", updated.Name, domain.ErrDuplicateName)
	}

	products[idx] = updated
	if err := s.products.Save(products); err != nil {
		return domain.Product{}, fmt.Errorf("save products: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordProductUpdated()
	}
	s.logger.WithField("product_id", id).Info("product updated")
	return updated, nil
}

func productNameTaken(products []domain.Product, name, exceptID string) bool {
	for _, p := range products {
		if p.Name == name && p.ID != exceptID {
			return true
		}
	}
	return false
}
