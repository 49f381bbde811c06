package catalog

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

var (
	// ContactRule: только цифры, не короче domain.MinContactDigits.
	// Пустой ввод получает ту же подсказку, что и неверный формат.
	ContactRule validation.Rule[string] = func(raw string) (string, error) {
		contact := strings.TrimSpace(raw)
		if !domain.ValidContactNumber(contact) {
			return "", validation.Reject(validation.KindFormat, domain.ErrContactNumberInvalid,
				"Contact number should contain only digits and have least 10 digits, please try again: ")
		}
		return contact, nil
	}

	// EmailRule: непустой адрес, прошедший domain.ValidEmail.
	EmailRule = validation.Then(validation.NonEmpty, func(email string) error {
		if !domain.ValidEmail(email) {
			return validation.Reject(validation.KindFormat, domain.ErrEmailInvalid,
				"Invalid Email Address format, please try again: ")
		}
		return nil
	})
)

// NextSupplierID возвращает ID, который получит следующий поставщик.
func (s *Service) NextSupplierID() (string, error) {
	suppliers, err := s.suppliers.Load()
	if err != nil {
		return "", fmt.Errorf("load suppliers: %w", err)
	}
	return domain.NextID(domain.SupplierIDPrefix, len(suppliers)), nil
}

// SupplierNameRule проверяет уникальность имени среди поставщиков.
func (s *Service) SupplierNameRule() validation.Rule[string] {
	return validation.Unique("Name", func(name string) (bool, error) {
		suppliers, err := s.suppliers.Load()
		if err != nil {
			return false, fmt.Errorf("load suppliers: %w", err)
		}
		return supplierNameTaken(suppliers, name), nil
	})
}

// AddSupplier назначает ID, проверяет поля и сохраняет поставщика.
func (s *Service) AddSupplier(supplier domain.Supplier) (domain.Supplier, error) {
	suppliers, err := s.suppliers.Load()
	if err != nil {
		return domain.Supplier{}, fmt.Errorf("load suppliers: %w", err)
	}

	supplier.ID = domain.NextID(domain.SupplierIDPrefix, len(suppliers))
	supplier.Name = strings.TrimSpace(supplier.Name)
	supplier.ContactNumber = strings.TrimSpace(supplier.ContactNumber)
	supplier.Email = strings.TrimSpace(supplier.Email)
	if err := domain.JoinErrors(supplier.ValidateInvariants()); err != nil {
		return domain.Supplier{}, fmt.Errorf("invalid supplier: %w", err)
	}
	if supplierNameTaken(suppliers, supplier.Name) {
		return domain.Supplier{}, fmt.Errorf("supplier %q: %w", supplier.Name, domain.ErrDuplicateName)
	}

	if err := s.suppliers.Save(append(suppliers, supplier)); err != nil {
		return domain.Supplier{}, fmt.Errorf("save suppliers: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSupplierCreated()
	}
	s.logger.WithFields(log.Fields{"supplier_id": supplier.ID}).Info("supplier added")
	return supplier, nil
}

// ListSuppliers возвращает поставщиков в порядке добавления.
func (s *Service) ListSuppliers() ([]domain.Supplier, error) {
	suppliers, err := s.suppliers.Load()
	if err != nil {
		return nil, fmt.Errorf("load suppliers: %w", err)
	}
	return suppliers, nil
}

func supplierNameTaken(suppliers []domain.Supplier, name string) bool {
	for _, s := range suppliers {
		if s.Name == name {
			return true
		}
	}
	return false
}
