package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists  = errors.New("el email ya está registrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrInvalidQuantity     = errors.New("cantidad inválida")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrProductMismatch     = errors.New("origen y destino no corresponden al mismo producto")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrIdempotencyConflict = errors.New("ya hay una solicitud en curso con la misma clave de idempotencia")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")

	// ErrPersistence la transacción no pudo completarse; el caller puede reintentar.
	ErrPersistence = errors.New("error de persistencia")
	// ErrAuditLog fallo al registrar la auditoría. Nunca se propaga al caller.
	ErrAuditLog = errors.New("no se pudo registrar la auditoría")
)

// IsValidation indica si err es un error de validación de negocio (no reintentable).
func IsValidation(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrProductMismatch)
}
