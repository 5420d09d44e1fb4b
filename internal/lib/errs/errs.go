// Package errs содержит сентинельные ошибки доменного уровня.
// Сервисы оборачивают их через fmt.Errorf("%s: %w", op, err),
// а HTTP-слой сопоставляет их со статусами через errors.Is.
package errs

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrBadRequest          = errors.New("bad request")
	ErrConflict            = errors.New("conflict")
	ErrPaymentVerification = errors.New("payment verification failed")
)
