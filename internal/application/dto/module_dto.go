package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModuleResponse entrada del catálogo.
type ModuleResponse struct {
	ID    string          `json:"id"`
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ActiveModulesResponse resultado del resolver para (empresa, usuario, instante).
type ActiveModulesResponse struct {
	CompanyID string    `json:"company_id"`
	UserID    string    `json:"user_id"`
	AsOf      time.Time `json:"as_of"`
	Modules   []string  `json:"modules"`
}

// CreditResponse un crédito de módulo dentro de una suscripción.
type CreditResponse struct {
	ID            string    `json:"id"`
	ModuleID      string    `json:"module_id"`
	OrderDetailID *string   `json:"order_detail_id,omitempty"`
	IsActive      bool      `json:"is_active"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
}

// SubscriptionResponse suscripción con sus créditos.
type SubscriptionResponse struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	OrderID   *string          `json:"order_id,omitempty"`
	Status    string           `json:"status"`
	StartDate time.Time        `json:"start_date"`
	EndDate   time.Time        `json:"end_date"`
	Credits   []CreditResponse `json:"credits"`
}
