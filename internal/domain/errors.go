package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrPlanLimit          = errors.New("límite del plan alcanzado")
)

// Error lleva un código legible por máquina sobre uno de los errores base.
// errors.Is(err, ErrConflict) clasifica; errors.As(err, &*Error) expone el código.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// NewError construye un error codificado.
func NewError(kind error, code, message string) *Error {
	return &Error{Code: code, Message: message, Err: kind}
}

// Validation atajo para errores corregibles por el cliente.
func Validation(code, message string) *Error { return NewError(ErrInvalidInput, code, message) }

// Conflict atajo para conflictos con el estado actual.
func Conflict(code, message string) *Error { return NewError(ErrConflict, code, message) }

// NotFound atajo para recursos ausentes.
func NotFound(code, message string) *Error { return NewError(ErrNotFound, code, message) }

// Code devuelve el código del error si existe.
func Code(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
