package domain

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces: количество знаков после запятой для всех денежных значений.
const MoneyPlaces = 2

// Money хранит денежную сумму, всегда округлённую до двух знаков.
// В JSON сериализуется числом с ровно двумя знаками (например, 1.50).
type Money struct {
	d decimal.Decimal
}

// NewMoney округляет значение до двух знаков.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(MoneyPlaces)}
}

// MoneyFromFloat используется в тестах и при миграции старых файлов.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// ParseMoney разбирает десятичную строку и округляет её до двух знаков.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return NewMoney(d), nil
}

// Decimal возвращает значение как decimal.Decimal.
func (m Money) Decimal() decimal.Decimal { return m.d }

// Mul умножает цену на количество.
func (m Money) Mul(qty int) Money {
	return NewMoney(m.d.Mul(decimal.NewFromInt(int64(qty))))
}

// Add складывает две суммы.
func (m Money) Add(other Money) Money {
	return NewMoney(m.d.Add(other.d))
}

func (m Money) IsNegative() bool { return m.d.IsNegative() }

// Equal сравнивает суммы по значению.
func (m Money) Equal(other Money) bool { return m.d.Equal(other.d) }

// String форматирует сумму с двумя знаками после запятой.
func (m Money) String() string { return m.d.StringFixed(MoneyPlaces) }

// MarshalJSON пишет сумму числом, а не строкой.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON принимает как число, так и строку в кавычках.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(bytes.TrimSpace(data), `"`)
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return fmt.Errorf("decode money %q: %w", string(data), err)
	}
	*m = NewMoney(d)
	return nil
}
