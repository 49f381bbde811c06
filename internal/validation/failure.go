package validation

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Kind классифицирует причину отказа во вводе.
type Kind string

const (
	KindNonEmpty Kind = "non-empty"
	KindUnique   Kind = "unique"
	KindFloat    Kind = "float"
	KindInt      Kind = "int"
	// KindRange: число разобрано, но вне допустимого диапазона.
	KindRange Kind = "range"
	// KindFormat: строка не соответствует формату (телефон, email).
	KindFormat Kind = "format"
	// KindChoice: выбран несуществующий пункт меню.
	KindChoice Kind = "choice"
)

var (
	// ErrEmpty: пустой ввод после trim.
	ErrEmpty = errors.New("this cannot be left empty")
	// ErrDuplicate: значение уже есть в хранилище.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidNumber: ввод не является числом.
	ErrInvalidNumber = errors.New("invalid integer or float")
	// ErrInvalidInteger: ввод не является целым числом.
	ErrInvalidInteger = errors.New("invalid integer")

	errNotYesNo      = errors.New("answer must be Y or N")
	errOptionMissing = errors.New("option does not exist")
)

// Failure: классифицированный отказ во вводе. Повторный запрос возможен всегда.
type Failure struct {
	Kind  Kind
	Field string
	Err   error
	// Hint: готовый текст повторного запроса; если пуст, строится из Err.
	Hint string
}

func (f *Failure) Error() string {
	if f.Kind == KindUnique && f.Field != "" {
		return fmt.Sprintf("%s %s", f.Field, f.Err)
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error { return f.Err }

// Reject создаёт отказ для доменной проверки.
func Reject(kind Kind, err error, hint string) *Failure {
	return &Failure{Kind: kind, Err: err, Hint: hint}
}

// IsFailure сообщает, что err: отказ во вводе (а не сбой хранилища).
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}

// KindOf возвращает класс отказа или пустую строку.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// RetryPrompt возвращает текст повторного запроса для отказа.
func RetryPrompt(err error) string {
	var f *Failure
	if errors.As(err, &f) && f.Hint != "" {
		return f.Hint
	}
	return capitalize(err.Error()) + ", please try again: "
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
