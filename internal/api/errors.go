package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network failure")
)

// Error - неуспешный ответ бэкенда
type Error struct {
	Message   string
	Status    int
	RequestID string
}

func (e *Error) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%d %s (request id %s)", e.Status, e.Message, e.RequestID)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Message)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Retryable - серверная ошибка, которую есть смысл повторить
func (e *Error) Retryable() bool {
	return e.Status >= http.StatusInternalServerError
}

// messageFrom берёт message или detail из тела ответа, иначе текст статуса
func messageFrom(body any, status int) string {
	if m, ok := body.(map[string]any); ok {
		for _, key := range []string{"message", "detail"} {
			if s, ok := m[key].(string); ok && s != "" {
				return s
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", status)
}

// Describe формирует сообщение для пользователя: что не получилось,
// текст сервера для ошибок клиента и идентификатор запроса для поддержки.
// Детали транспорта наружу не выходят.
func Describe(what string, err error) string {
	if err == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("could not ")
	b.WriteString(what)

	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized && (apiErr.Message == "" || apiErr.Message == http.StatusText(http.StatusUnauthorized)) {
			b.WriteString(": please sign in again")
		} else if apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
			b.WriteString(": ")
			b.WriteString(apiErr.Message)
		}
		if apiErr.RequestID != "" {
			b.WriteString(" [request id: ")
			b.WriteString(apiErr.RequestID)
			b.WriteString("]")
		}
	case errors.Is(err, ErrNetwork):
		b.WriteString(": backend is unreachable")
	}

	return b.String()
}
