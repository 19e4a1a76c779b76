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
)

// Errores del ledger de módulos (compras y entitlements).
var (
	// ErrPermissionDenied el usuario no pertenece a la empresa. Nunca se reintenta.
	ErrPermissionDenied = errors.New("el usuario no pertenece a la empresa")
	// ErrModulesUnresolved ningún módulo solicitado existe en el catálogo. Error del cliente.
	ErrModulesUnresolved = errors.New("no se pudo resolver ningún módulo")
	// ErrPersistence el store no respondió o abortó la transacción; envuelve el error original.
	ErrPersistence = errors.New("fallo de persistencia")
)

// IsRetryable informa si la operación puede reintentarse completa.
// Solo los fallos de persistencia lo son; permisos y validación nunca.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}
