package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo Entitlement Store sobre subscriptions y subscription_credits (usable con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// GrantCredits inserta la suscripción y todos sus créditos en una transacción.
// Si cualquier INSERT falla, o el contexto se cancela antes del commit, no queda ninguna fila.
func (r *SubscriptionRepo) GrantCredits(ctx context.Context, sub *entity.Subscription, credits []*entity.SubscriptionCredit) (*entity.Subscription, error) {
	if err := entitlement.ValidateGrant(sub, credits); err != nil {
		return nil, err
	}
	err := inTx(ctx, r.q, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO subscriptions (id, company_id, order_id, status, start_date, end_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sub.ID, sub.CompanyID, sub.OrderID, string(sub.Status), sub.StartDate, sub.EndDate, sub.CreatedAt)
		if err != nil {
			return mapConstraint("insert subscription", err)
		}

		batch := &pgx.Batch{}
		for _, c := range credits {
			batch.Queue(`
				INSERT INTO subscription_credits (id, subscription_id, module_id, order_detail_id, is_active, start_date, end_date)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				c.ID, sub.ID, c.ModuleID, c.OrderDetailID, c.IsActive, c.StartDate, c.EndDate)
		}
		br := tx.SendBatch(ctx, batch)
		for range credits {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return mapConstraint("insert subscription credit", err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

// findActiveModuleTypesSQL join user_roles × subscriptions × subscription_credits × modules.
// Ambos extremos de las ventanas son inclusivos (BETWEEN).
const findActiveModuleTypesSQL = `
	SELECT DISTINCT m.type
	FROM user_roles ur
	JOIN subscriptions s         ON s.company_id = ur.company_id
	JOIN subscription_credits sc ON sc.subscription_id = s.id
	JOIN modules m               ON m.id = sc.module_id
	WHERE ur.user_id = $2
	  AND ur.company_id = $1
	  AND s.status = 'Active'
	  AND $3::timestamptz BETWEEN s.start_date AND s.end_date
	  AND sc.is_active
	  AND $3::timestamptz BETWEEN sc.start_date AND sc.end_date
	ORDER BY m.type COLLATE "C"`

// FindActiveModuleTypes tipos de módulo vigentes en asOf. El instante lo fija el caller (reloj del resolver).
func (r *SubscriptionRepo) FindActiveModuleTypes(ctx context.Context, companyID, userID string, asOf time.Time) ([]entity.ModuleType, error) {
	rows, err := r.q.Query(ctx, findActiveModuleTypesSQL, companyID, userID, asOf)
	if err != nil {
		return nil, fmt.Errorf("find active module types: %w", err)
	}
	defer rows.Close()
	out := []entity.ModuleType{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan module type: %w", err)
		}
		out = append(out, entity.ModuleType(t))
	}
	return out, rows.Err()
}

// ListByCompany suscripciones de la empresa, más recientes primero.
func (r *SubscriptionRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, company_id, order_id, status, start_date, end_date, created_at
		FROM subscriptions WHERE company_id = $1
		ORDER BY start_date DESC, id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()
	out := []*entity.Subscription{}
	for rows.Next() {
		var s entity.Subscription
		var status string
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.OrderID, &status, &s.StartDate, &s.EndDate, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		s.Status = entity.SubscriptionStatus(status)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *SubscriptionRepo) ListCredits(ctx context.Context, subscriptionID string) ([]*entity.SubscriptionCredit, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, subscription_id, module_id, order_detail_id, is_active, start_date, end_date
		FROM subscription_credits WHERE subscription_id = $1
		ORDER BY id`, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	defer rows.Close()
	out := []*entity.SubscriptionCredit{}
	for rows.Next() {
		var c entity.SubscriptionCredit
		if err := rows.Scan(&c.ID, &c.SubscriptionID, &c.ModuleID, &c.OrderDetailID, &c.IsActive, &c.StartDate, &c.EndDate); err != nil {
			return nil, fmt.Errorf("scan credit: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
