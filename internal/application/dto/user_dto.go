package dto

import "time"

// RegisterRequest entrada para registro (auth): email, password, company_id.
// El rol se asigna en la empresa indicada; God no es asignable por esta vía.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Name      string `json:"name" validate:"omitempty,max=200"`
	Role      string `json:"role" validate:"omitempty,oneof=admin member"`
}

// AssignRoleRequest agrega un usuario existente a una empresa con un rol.
type AssignRoleRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	Role   string `json:"role" validate:"required,oneof=admin member"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Roles     []string  `json:"roles,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserListResponse lista paginada de usuarios de una empresa.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// LoginRequest entrada para login. CompanyID opcional: por defecto la empresa de origen del usuario.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	CompanyID string `json:"company_id" validate:"omitempty,uuid"`
}

// TokenRequest reemisión del token para otra empresa a la que pertenece el usuario.
type TokenRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid"`
}

// LoginResponse token JWT con roles y capacidades de módulo.
type LoginResponse struct {
	Token     string       `json:"token"`
	CompanyID string       `json:"company_id"`
	Roles     []string     `json:"roles"`
	Modules   []string     `json:"modules"`
	User      UserResponse `json:"user"`
}
