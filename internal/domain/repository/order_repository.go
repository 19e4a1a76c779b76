package repository

import (
	"context"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// OrderRepository puerto de persistencia de órdenes. Create escribe cabecera y detalles como una unidad.
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	// GetByID devuelve la orden con sus detalles, o (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error)
}
