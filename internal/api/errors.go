// Package api содержит HTTP-клиент бэкенда витрины garioush с единой
// нормализацией конвертов ответов и классификацией ошибок.
package api

import (
	"errors"
	"fmt"
)

// Kind классифицирует ошибку обращения к бэкенду.
type Kind string

const (
	// KindNetwork — запрос не дошёл до сервера или истёк таймаут.
	KindNetwork Kind = "network"
	// KindHTTP — сервер ответил транспортной ошибкой (не 2xx).
	KindHTTP Kind = "http"
	// KindApplication — транспортный статус успешный, но бэкенд сообщил
	// о логической ошибке в конверте ответа.
	KindApplication Kind = "application"
	// KindAuthRequired — токен отсутствует либо отвергнут сервером.
	KindAuthRequired Kind = "auth_required"
)

// Error представляет нормализованную ошибку обращения к бэкенду.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	cause      error
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.cause)
	}
	return string(e.Kind)
}

// Unwrap возвращает исходную ошибку транспортного уровня.
func (e *Error) Unwrap() error {
	return e.cause
}

// AsError извлекает *Error из цепочки ошибок.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthRequired сообщает, требует ли ошибка повторной аутентификации.
func IsAuthRequired(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindAuthRequired
}

// IsApplication сообщает, является ли ошибка логической ошибкой бэкенда.
func IsApplication(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Kind == KindApplication
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, cause: err}
}

func httpError(statusCode int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("unexpected status: %d", statusCode)
	}
	return &Error{Kind: KindHTTP, StatusCode: statusCode, Message: message}
}

func applicationError(statusCode int, message string) *Error {
	if message == "" {
		message = "request rejected by server"
	}
	return &Error{Kind: KindApplication, StatusCode: statusCode, Message: message}
}

func authRequiredError(statusCode int) *Error {
	return &Error{Kind: KindAuthRequired, StatusCode: statusCode, Message: "authentication required"}
}
