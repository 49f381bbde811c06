package validation

import (
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/inventory/internal/domain"
)

// Rule приводит сырой ввод к типу T или возвращает ошибку.
// *Failure означает, что ввод нужно запросить заново; любая другая ошибка прерывает операцию.
type Rule[T any] func(raw string) (T, error)

// NonEmpty обрезает пробелы и отклоняет пустую строку.
func NonEmpty(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", &Failure{Kind: KindNonEmpty, Err: ErrEmpty}
	}
	return value, nil
}

// Unique проверяет, что в хранилище нет записи с тем же значением поля field.
// Ошибка exists (например, чтение файла) возвращается как есть.
func Unique(field string, exists func(value string) (bool, error)) Rule[string] {
	return func(raw string) (string, error) {
		value, err := NonEmpty(raw)
		if err != nil {
			return "", err
		}
		taken, err := exists(value)
		if err != nil {
			return "", err
		}
		if taken {
			return "", &Failure{Kind: KindUnique, Field: field, Err: ErrDuplicate}
		}
		return value, nil
	}
}

// Float разбирает десятичное число и округляет его до двух знаков.
func Float(raw string) (domain.Money, error) {
	value, err := NonEmpty(raw)
	if err != nil {
		return domain.Money{}, err
	}
	money, err := domain.ParseMoney(value)
	if err != nil {
		return domain.Money{}, &Failure{Kind: KindFloat, Err: ErrInvalidNumber}
	}
	return money, nil
}

// Int разбирает целое число; "12.5" отклоняется.
func Int(raw string) (int, error) {
	value, err := NonEmpty(raw)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, &Failure{Kind: KindInt, Err: ErrInvalidInteger}
	}
	return n, nil
}

// Then дополняет правило проверками уже разобранного значения.
// Проверка должна вернуть *Failure, иначе ошибка прервёт ввод.
func Then[T any](rule Rule[T], checks ...func(T) error) Rule[T] {
	return func(raw string) (T, error) {
		value, err := rule(raw)
		if err != nil {
			return value, err
		}
		for _, check := range checks {
			if err := check(value); err != nil {
				var zero T
				return zero, err
			}
		}
		return value, nil
	}
}

// Map преобразует результат правила.
func Map[T, U any](rule Rule[T], fn func(T) U) Rule[U] {
	return func(raw string) (U, error) {
		value, err := rule(raw)
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(value), nil
	}
}

// YesNo принимает "Y" или "N" в любом регистре.
func YesNo(raw string) (bool, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "Y":
		return true, nil
	case "N":
		return false, nil
	default:
		return false, Reject(KindChoice, errNotYesNo, "Please select 'Y' or 'N': ")
	}
}

// IntRange принимает целое число в диапазоне [lo, hi].
func IntRange(lo, hi int, hint string) Rule[int] {
	return Then(Int, func(n int) error {
		if n < lo || n > hi {
			return Reject(KindChoice, errOptionMissing, hint)
		}
		return nil
	})
}
