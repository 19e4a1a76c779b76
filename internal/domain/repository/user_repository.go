package repository

import (
	"context"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error)
}

// UserRoleRepository puerto para los hechos de pertenencia (usuario, empresa, rol).
// El ciclo de vida de estos hechos pertenece al subsistema de identidad; el ledger solo los lee.
type UserRoleRepository interface {
	Assign(ctx context.Context, role *entity.UserRole) error
	// IsMember informa si el usuario tiene al menos un rol en la empresa.
	IsMember(ctx context.Context, userID, companyID string) (bool, error)
	// ListRoles devuelve los roles del usuario en la empresa, ordenados.
	ListRoles(ctx context.Context, userID, companyID string) ([]string, error)
}
