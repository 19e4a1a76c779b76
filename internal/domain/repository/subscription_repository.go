package repository

import (
	"context"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// SubscriptionRepository es el Entitlement Store: suscripciones y sus créditos.
type SubscriptionRepository interface {
	// GrantCredits persiste la suscripción y todos sus créditos como una unidad:
	// o se escriben todas las filas o ninguna. Nunca queda visible una suscripción sin créditos
	// ni un crédito que apunte a una suscripción inexistente.
	GrantCredits(ctx context.Context, sub *entity.Subscription, credits []*entity.SubscriptionCredit) (*entity.Subscription, error)
	// FindActiveModuleTypes resuelve los tipos de módulo vigentes en asOf para (empresa, usuario).
	// Join UserRole × Subscription × SubscriptionCredit × Module; ambos extremos de fecha inclusive;
	// resultado distinto y ordenado. Sin rol en la empresa = lista vacía, no error.
	FindActiveModuleTypes(ctx context.Context, companyID, userID string, asOf time.Time) ([]entity.ModuleType, error)
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error)
	ListCredits(ctx context.Context, subscriptionID string) ([]*entity.SubscriptionCredit, error)
}
