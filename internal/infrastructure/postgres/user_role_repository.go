package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.UserRoleRepository = (*UserRoleRepo)(nil)

// UserRoleRepo pertenencia (usuario, empresa, rol) sobre la tabla user_roles.
type UserRoleRepo struct {
	q Querier
}

// NewUserRoleRepository construye el adaptador.
func NewUserRoleRepository(q Querier) *UserRoleRepo {
	return &UserRoleRepo{q: q}
}

// Assign es idempotente (ON CONFLICT DO NOTHING sobre la clave primaria).
func (r *UserRoleRepo) Assign(ctx context.Context, role *entity.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, company_id, role, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, company_id, role) DO NOTHING`
	if _, err := r.q.Exec(ctx, query, role.UserID, role.CompanyID, role.Role, role.CreatedAt); err != nil {
		return mapConstraint("assign role", err)
	}
	return nil
}

func (r *UserRoleRepo) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM user_roles WHERE user_id = $1 AND company_id = $2)`
	var member bool
	if err := r.q.QueryRow(ctx, query, userID, companyID).Scan(&member); err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return member, nil
}

func (r *UserRoleRepo) ListRoles(ctx context.Context, userID, companyID string) ([]string, error) {
	rows, err := r.q.Query(ctx,
		`SELECT role FROM user_roles WHERE user_id = $1 AND company_id = $2 ORDER BY role COLLATE "C"`,
		userID, companyID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
