package entity

import "time"

// Roles conocidos. RoleGod tiene un override de capacidades al emitir tokens (ver entitlement.RoleOverrides).
const (
	RoleGod    = "God"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Estados de User.
const (
	UserStatusActive    = "active"
	UserStatusInactive  = "inactive"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema. CompanyID es su empresa de origen;
// la pertenencia efectiva a empresas se modela con UserRole.
type User struct {
	ID           string
	CompanyID    string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRole hecho de pertenencia (usuario, empresa, rol).
// El resolver de entitlements solo lo usa como filtro de membresía.
type UserRole struct {
	UserID    string
	CompanyID string
	Role      string
	CreatedAt time.Time
}
