package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/inventory/internal/validation"
)

// FailureRecorder принимает счётчик отказов во вводе по классам.
type FailureRecorder interface {
	RecordValidationFailure(kind string)
}

// Session: построчный диалог с пользователем.
// Ввод читается только здесь, поэтому в тестах его можно заменить конечным скриптом:
// по исчерпании ввода Ask возвращает io.EOF.
type Session struct {
	in      *bufio.Reader
	out     io.Writer
	logger  *log.Entry
	metrics FailureRecorder
}

// Option настраивает Session.
type Option func(*Session)

// WithLogger задаёт logger сессии.
func WithLogger(logger *log.Entry) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithFailureRecorder задаёт получателя метрик отказов.
func WithFailureRecorder(recorder FailureRecorder) Option {
	return func(s *Session) {
		s.metrics = recorder
	}
}

// NewSession создаёт сессию поверх in/out.
func NewSession(in io.Reader, out io.Writer, options ...Option) *Session {
	s := &Session{
		in:  bufio.NewReader(in),
		out: out,
	}
	for _, option := range options {
		option(s)
	}
	if s.logger == nil {
		s.logger = log.WithField("component", "console")
	}
	return s
}

// Printf пишет форматированный текст без перевода строки.
func (s *Session) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

// Println пишет строку.
func (s *Session) Println(args ...any) {
	_, _ = fmt.Fprintln(s.out, args...)
}

// Ask выводит prompt и читает одну строку без завершающего перевода строки.
// Последняя строка без '\n' возвращается как обычно; io.EOF: только когда ввода больше нет.
func (s *Session) Ask(prompt string) (string, error) {
	s.Printf("%s", prompt)

	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Pause ждёт нажатия ENTER.
func (s *Session) Pause(prompt string) error {
	_, err := s.Ask(prompt)
	return err
}

func (s *Session) rejected(err error) {
	kind := validation.KindOf(err)
	s.logger.WithField("kind", kind).WithError(err).Debug("input rejected")
	if s.metrics != nil {
		s.metrics.RecordValidationFailure(string(kind))
	}
}

// Prompt запрашивает значение и повторяет запрос, пока rule не примет ввод.
func Prompt[T any](s *Session, prompt string, rule validation.Rule[T]) (T, error) {
	raw, err := s.Ask(prompt)
	if err != nil {
		var zero T
		return zero, err
	}
	return Retry(s, raw, rule)
}

// Retry применяет rule к уже полученному вводу raw; при отказе выводит текст повторного
// запроса (validation.RetryPrompt) и читает новую строку. Число попыток не ограничено.
// Ошибка, не являющаяся *validation.Failure, прерывает цикл.
func Retry[T any](s *Session, raw string, rule validation.Rule[T]) (T, error) {
	for {
		value, err := rule(raw)
		if err == nil {
			return value, nil
		}
		if !validation.IsFailure(err) {
			var zero T
			return zero, err
		}

		s.rejected(err)
		raw, err = s.Ask(validation.RetryPrompt(err))
		if err != nil {
			var zero T
			return zero, err
		}
	}
}
