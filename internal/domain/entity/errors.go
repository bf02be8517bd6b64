package entity

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind категория ошибки.
type Kind string

const (
	KindDecode           Kind = "decode"
	KindModelUnavailable Kind = "model_unavailable"
	KindConfiguration    Kind = "configuration"
	KindInference        Kind = "inference"
	KindNotFound         Kind = "not_found"
	KindStorage          Kind = "storage"
	KindTimeout          Kind = "timeout"
	KindInternal         Kind = "internal"
)

// Error типизированная ошибка с операцией, на которой она возникла.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Сентинели для errors.Is: совпадают с любой *Error того же Kind.
var (
	ErrDecode           = &Error{Kind: KindDecode}
	ErrModelUnavailable = &Error{Kind: KindModelUnavailable}
	ErrConfiguration    = &Error{Kind: KindConfiguration}
	ErrNotFound         = &Error{Kind: KindNotFound}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is сравнивает по Kind, если target является сентинелем (без Op и Message).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Message != "" || t.Cause != nil {
		return false
	}
	return e.Kind == t.Kind
}

// NewError создаёт ошибку без причины.
func NewError(kind Kind, op, message string) error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap оборачивает err. Уже типизированная ошибка возвращается как есть.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

// IsKind проверяет Kind первой *Error в цепочке.
func IsKind(err error, kind Kind) bool {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind == kind
	}
	return false
}

// HTTPStatus HTTP-код для ошибки.
func HTTPStatus(err error) int {
	var target *Error
	if !errors.As(err, &target) {
		return http.StatusInternalServerError
	}
	switch target.Kind {
	case KindDecode, KindConfiguration:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindModelUnavailable:
		return http.StatusServiceUnavailable
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
