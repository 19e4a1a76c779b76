package entity

import "time"

// SubscriptionStatus estado de una suscripción.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "Active"
	SubscriptionCanceled SubscriptionStatus = "Canceled"
	SubscriptionExpired  SubscriptionStatus = "Expired"
)

// Subscription concesión acotada en el tiempo para una empresa.
// OrderID es nil en concesiones manuales. Invariante: StartDate < EndDate.
type Subscription struct {
	ID        string
	CompanyID string
	OrderID   *string
	Status    SubscriptionStatus
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
}

// SubscriptionCredit unidad atómica de entitlement: un módulo dentro de una suscripción.
// Nunca se borra; la desactivación es IsActive=false.
type SubscriptionCredit struct {
	ID             string
	SubscriptionID string
	ModuleID       string
	OrderDetailID  *string
	IsActive       bool
	StartDate      time.Time
	EndDate        time.Time
}

// ActiveAt informa si la suscripción está activa en el instante (ambos extremos inclusive).
func (s *Subscription) ActiveAt(asOf time.Time) bool {
	return s.Status == SubscriptionActive && !asOf.Before(s.StartDate) && !asOf.After(s.EndDate)
}

// ActiveAt informa si el crédito es válido en el instante (ambos extremos inclusive).
func (c *SubscriptionCredit) ActiveAt(asOf time.Time) bool {
	return c.IsActive && !asOf.Before(c.StartDate) && !asOf.After(c.EndDate)
}
