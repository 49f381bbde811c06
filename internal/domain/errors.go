package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора записи.
	ErrIDRequired = errors.New("id is required")
	// Ошибка пустого имени товара или поставщика.
	ErrNameRequired = errors.New("name is required")
	// Ошибка пустого описания товара.
	ErrDescriptionRequired = errors.New("description is required")
	// Ошибка отрицательной цены.
	ErrNegativePrice = errors.New("price cannot be a negative value")
	// Ошибка отрицательного остатка.
	ErrNegativeStock = errors.New("stock cannot be a negative value")
	// Ошибка дублирующегося имени в хранилище.
	ErrDuplicateName = errors.New("name already exists")
	// Ошибка формата контактного номера.
	ErrContactNumberInvalid = errors.New("contact number should contain only digits and have at least 10 digits")
	// Ошибка формата email.
	ErrEmailInvalid = errors.New("invalid email address format")
	// Ошибка отсутствующей ссылки на товар в заказе.
	ErrProductIDRequired = errors.New("product id is required")
	// Ошибка количества меньше единицы.
	ErrQuantityInvalid = errors.New("quantity cannot be less than 1")
	// Ошибка неизвестного типа заказа.
	ErrOrderTypeInvalid = errors.New("order type must be Sale or Resupply")
	// Ошибка формата даты заказа.
	ErrOrderDateInvalid = errors.New("order date must be DD/MM/YYYY")
	// ErrProductNotFound возвращается, если товара с таким ID нет.
	ErrProductNotFound = errors.New("product not found")
	// ErrOutOfStock: продажа товара с нулевым остатком.
	ErrOutOfStock = errors.New("product is out of stock")
	// ErrInsufficientStock: количество в продаже превышает остаток.
	ErrInsufficientStock = errors.New("order amount exceeds inventory level")
	// ErrStockOverflow: пополнение не помещается в допустимый остаток.
	ErrStockOverflow = errors.New("order amount exceeds maximum stock level")
	// ErrStockUnsettled: по товару есть заказ, остаток которого ещё не сохранён.
	ErrStockUnsettled = errors.New("stock of a previous order is not saved yet")
	// ErrJournalEntryNotFound: запись журнала не найдена.
	ErrJournalEntryNotFound = errors.New("journal entry not found")
)

// IsBusinessAbort сообщает, что операцию нужно прервать с сообщением пользователю,
// но это не сбой: управление возвращается в меню.
func IsBusinessAbort(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrOutOfStock) ||
		errors.Is(err, ErrStockUnsettled)
}

// JoinErrors объединяет замечания ValidateInvariants в одну ошибку (nil, если замечаний нет).
func JoinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}
