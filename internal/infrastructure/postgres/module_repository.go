package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.ModuleRepository = (*ModuleRepo)(nil)

// ModuleRepo catálogo de módulos (solo lectura).
type ModuleRepo struct {
	q Querier
}

// NewModuleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewModuleRepository(q Querier) *ModuleRepo {
	return &ModuleRepo{q: q}
}

const moduleColumns = `id, type, name, price, created_at`

func scanModule(row interface{ Scan(...any) error }) (*entity.Module, error) {
	var m entity.Module
	var t string
	if err := row.Scan(&m.ID, &t, &m.Name, &m.Price, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Type = entity.ModuleType(t)
	return &m, nil
}

func (r *ModuleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Module, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()
	out := []*entity.Module{}
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ResolveModules devuelve los módulos existentes entre ids, ordenados por tipo e id. Los ids desconocidos se omiten.
func (r *ModuleRepo) ResolveModules(ctx context.Context, ids []string) ([]*entity.Module, error) {
	if len(ids) == 0 {
		return []*entity.Module{}, nil
	}
	return r.list(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = ANY($1::uuid[]) ORDER BY type COLLATE "C", id`,
		ids)
}

func (r *ModuleRepo) GetByType(ctx context.Context, t entity.ModuleType) (*entity.Module, error) {
	m, err := scanModule(r.q.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE type = $1 ORDER BY id LIMIT 1`, string(t)))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module by type: %w", err)
	}
	return m, nil
}

func (r *ModuleRepo) GetByID(ctx context.Context, id string) (*entity.Module, error) {
	m, err := scanModule(r.q.QueryRow(ctx, `SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get module: %w", err)
	}
	return m, nil
}

func (r *ModuleRepo) List(ctx context.Context) ([]*entity.Module, error) {
	return r.list(ctx, `SELECT `+moduleColumns+` FROM modules ORDER BY type COLLATE "C", id`)
}
