package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo órdenes y sus detalles (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// Create persiste cabecera y detalles en una sola transacción (savepoint si q ya es una tx).
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return inTx(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, user_id, company_id, total_amount, sale_date, status)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, o.UserID, o.CompanyID, o.TotalAmount, o.SaleDate, string(o.Status))
		if err != nil {
			return mapConstraint("insert order", err)
		}

		batch := &pgx.Batch{}
		for _, d := range o.Details {
			batch.Queue(`INSERT INTO order_details (id, order_id, module_id, price) VALUES ($1, $2, $3, $4)`,
				d.ID, o.ID, d.ModuleID, d.Price)
		}
		br := tx.SendBatch(ctx, batch)
		for range o.Details {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return mapConstraint("insert order detail", err)
			}
		}
		return br.Close()
	})
}

// GetByID devuelve la orden con sus detalles, o (nil, nil) si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var o entity.Order
	var status string
	err := r.q.QueryRow(ctx, `
		SELECT id, user_id, company_id, total_amount, sale_date, status
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.CompanyID, &o.TotalAmount, &o.SaleDate, &status)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	o.Status = entity.OrderStatus(status)
	details, err := r.details(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Details = details[o.ID]
	return &o, nil
}

// ListByCompany órdenes de la empresa, más recientes primero, con sus detalles.
func (r *OrderRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, user_id, company_id, total_amount, sale_date, status
		FROM orders WHERE company_id = $1
		ORDER BY sale_date DESC, id LIMIT $2 OFFSET $3`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []*entity.Order
	var ids []string
	for rows.Next() {
		var o entity.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.CompanyID, &o.TotalAmount, &o.SaleDate, &status); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = entity.OrderStatus(status)
		list = append(list, &o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	details, err := r.details(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Details = details[o.ID]
	}
	return list, nil
}

func (r *OrderRepo) details(ctx context.Context, orderIDs []string) (map[string][]*entity.OrderDetail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT d.id, d.order_id, d.module_id, d.price
		FROM order_details d
		JOIN modules m ON m.id = d.module_id
		WHERE d.order_id = ANY($1::uuid[])
		ORDER BY m.type COLLATE "C", d.module_id`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order details: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.OrderDetail, len(orderIDs))
	for rows.Next() {
		var d entity.OrderDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ModuleID, &d.Price); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		out[d.OrderID] = append(out[d.OrderID], &d)
	}
	return out, rows.Err()
}
