package domain

import (
	"strings"
	"unicode"
)

// MinContactDigits: минимальная длина контактного номера.
const MinContactDigits = 10

// Supplier: поставщик. После создания не изменяется.
type Supplier struct {
	ID            string `json:"Supplier ID"`
	Name          string `json:"Name"`
	ContactNumber string `json:"Contact Number"`
	Email         string `json:"Email"`
}

// ValidateInvariants проверяет поля поставщика.
func (s *Supplier) ValidateInvariants() []error {
	var errs []error

	if s.ID == "" {
		errs = append(errs, ErrIDRequired)
	}
	if strings.TrimSpace(s.Name) == "" {
		errs = append(errs, ErrNameRequired)
	}
	if !ValidContactNumber(s.ContactNumber) {
		errs = append(errs, ErrContactNumberInvalid)
	}
	if !ValidEmail(s.Email) {
		errs = append(errs, ErrEmailInvalid)
	}

	return errs
}

// ValidContactNumber: только цифры, не меньше MinContactDigits символов.
func ValidContactNumber(contact string) bool {
	runes := []rune(contact)
	if len(runes) < MinContactDigits {
		return false
	}
	for _, r := range runes {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidEmail проверяет формат адреса эвристикой:
// ровно один '@', '@' находится в email[1:-5], а '.' в email[-4:-2]
// (отрицательные индексы отсчитываются от конца, выход за границы обрезается).
func ValidEmail(email string) bool {
	if strings.Count(email, "@") != 1 {
		return false
	}
	runes := []rune(email)
	return containsRune(sliceFromEnds(runes, 1, -5), '@') &&
		containsRune(sliceFromEnds(runes, -4, -2), '.')
}

func sliceFromEnds(runes []rune, start, end int) []rune {
	n := len(runes)
	norm := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				return 0
			}
			return i
		}
		if i > n {
			return n
		}
		return i
	}

	s, e := norm(start), norm(end)
	if s >= e {
		return nil
	}
	return runes[s:e]
}

func containsRune(runes []rune, target rune) bool {
	for _, r := range runes {
		if r == target {
			return true
		}
	}
	return false
}
