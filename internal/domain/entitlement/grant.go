package entitlement

import (
	"fmt"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// NewGrant construye la suscripción activa y un crédito por línea de la orden, todos con la misma ventana.
// Los IDs de la suscripción y los créditos los asigna newID.
func NewGrant(order *entity.Order, window Window, newID func() string) (*entity.Subscription, []*entity.SubscriptionCredit) {
	orderID := order.ID
	sub := &entity.Subscription{
		ID:        newID(),
		CompanyID: order.CompanyID,
		OrderID:   &orderID,
		Status:    entity.SubscriptionActive,
		StartDate: window.Start,
		EndDate:   window.End,
		CreatedAt: window.Start,
	}
	credits := make([]*entity.SubscriptionCredit, 0, len(order.Details))
	for _, d := range order.Details {
		detailID := d.ID
		credits = append(credits, &entity.SubscriptionCredit{
			ID:             newID(),
			SubscriptionID: sub.ID,
			ModuleID:       d.ModuleID,
			OrderDetailID:  &detailID,
			IsActive:       true,
			StartDate:      window.Start,
			EndDate:        window.End,
		})
	}
	return sub, credits
}

// ValidateGrant verifica las invariantes de GrantCredits antes de escribir nada.
func ValidateGrant(sub *entity.Subscription, credits []*entity.SubscriptionCredit) error {
	if sub == nil || sub.ID == "" || sub.CompanyID == "" {
		return fmt.Errorf("%w: suscripción sin id o empresa", domain.ErrInvalidInput)
	}
	if !(Window{Start: sub.StartDate, End: sub.EndDate}).Valid() {
		return fmt.Errorf("%w: la suscripción debe cumplir start_date < end_date", domain.ErrInvalidInput)
	}
	if len(credits) == 0 {
		return fmt.Errorf("%w: una suscripción requiere al menos un crédito", domain.ErrInvalidInput)
	}
	modules := make(map[string]bool, len(credits))
	for _, c := range credits {
		if c == nil || c.ID == "" || c.ModuleID == "" {
			return fmt.Errorf("%w: crédito sin id o módulo", domain.ErrInvalidInput)
		}
		if c.SubscriptionID != sub.ID {
			return fmt.Errorf("%w: el crédito %s apunta a otra suscripción", domain.ErrInvalidInput, c.ID)
		}
		if modules[c.ModuleID] {
			return fmt.Errorf("%w: módulo %s repetido en la suscripción", domain.ErrInvalidInput, c.ModuleID)
		}
		modules[c.ModuleID] = true
		if !(Window{Start: c.StartDate, End: c.EndDate}).Valid() {
			return fmt.Errorf("%w: el crédito %s debe cumplir start_date < end_date", domain.ErrInvalidInput, c.ID)
		}
	}
	return nil
}

// ClockPrecision precisión común de los timestamps persistidos (timestamptz de PostgreSQL).
// Truncar antes de escribir hace que memoria y PostgreSQL comparen fechas igual.
const ClockPrecision = time.Microsecond
