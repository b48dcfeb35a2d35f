package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput se devuelve antes de tocar la base de datos.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable cubre fallos de conexión, ejecución o timeout.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrNotFound indica que el recurso pedido no existe.
	ErrNotFound = errors.New("not found")
)

// InvalidInputError indica qué parámetro de entrada es incorrecto.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// NewInvalidInput construye un InvalidInputError.
func NewInvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// StoreError envuelve un fallo del almacén con la operación que lo produjo
// (estadística, relación, tabla...).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error { return []error{ErrStoreUnavailable, e.Err} }

// NewStoreError devuelve nil si err es nil.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return &StoreError{Op: op + ": " + se.Op, Err: se.Err}
	}
	return &StoreError{Op: op, Err: err}
}
