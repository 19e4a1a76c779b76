package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// catalogNamespace espacio de nombres para IDs deterministas del catálogo de desarrollo.
var catalogNamespace = uuid.MustParse("6f1c2a9e-3b7d-4c55-9a0e-5d2b8f41c7a3")

// CatalogModuleID devuelve el ID estable del módulo de catálogo de desarrollo para el tipo dado.
func CatalogModuleID(t entity.ModuleType) string {
	return uuid.NewSHA1(catalogNamespace, []byte("module:"+string(t))).String()
}

// DefaultCatalog catálogo con el que arranca el driver en memoria (mismos precios que la migración).
func DefaultCatalog() []*entity.Module {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := func(t entity.ModuleType, name, price string) *entity.Module {
		return &entity.Module{
			ID:        CatalogModuleID(t),
			Type:      t,
			Name:      name,
			Price:     decimal.RequireFromString(price),
			CreatedAt: created,
		}
	}
	return []*entity.Module{
		entry(entity.ModuleBasic, "Básico", "10.00"),
		entry(entity.ModuleErp, "ERP", "50.00"),
		entry(entity.ModuleSocialNetwork, "Redes sociales", "25.00"),
		entry(entity.ModuleCRM, "CRM", "30.00"),
		entry(entity.ModuleAnalytics, "Analítica", "20.00"),
	}
}
