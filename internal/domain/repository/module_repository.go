package repository

import (
	"context"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// ModuleRepository es el catálogo de módulos (solo lectura para el ledger).
type ModuleRepository interface {
	// ResolveModules devuelve el subconjunto de ids que existe, ordenado por tipo ascendente.
	// Un id sin coincidencia se descarta sin error; el caller detecta diferencias de cardinalidad.
	ResolveModules(ctx context.Context, ids []string) ([]*entity.Module, error)
	// GetByType devuelve (nil, nil) si el tipo no está en el catálogo.
	GetByType(ctx context.Context, moduleType entity.ModuleType) (*entity.Module, error)
	GetByID(ctx context.Context, id string) (*entity.Module, error)
	List(ctx context.Context) ([]*entity.Module, error)
}
