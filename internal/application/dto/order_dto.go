package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest intención de compra. Usuario y empresa salen del token.
type CreateOrderRequest struct {
	ModuleIDs []string `json:"module_ids" validate:"dive,uuid"`
}

// OrderDetailResponse una línea de la orden.
type OrderDetailResponse struct {
	ID         string          `json:"id"`
	ModuleID   string          `json:"module_id"`
	ModuleType string          `json:"module_type,omitempty"`
	Price      decimal.Decimal `json:"price"`
}

// OrderResponse resumen valorizado de una compra.
type OrderResponse struct {
	ID             string                `json:"id"`
	CompanyID      string                `json:"company_id"`
	UserID         string                `json:"user_id"`
	SaleDate       time.Time             `json:"sale_date"`
	Status         string                `json:"status"`
	TotalAmount    decimal.Decimal       `json:"total_amount"`
	Details        []OrderDetailResponse `json:"details"`
	SubscriptionID string                `json:"subscription_id,omitempty"`
	ValidUntil     *time.Time            `json:"valid_until,omitempty"`
}

// OrderListResponse lista paginada de órdenes.
type OrderListResponse struct {
	Items []OrderResponse `json:"items"`
	Page  PageResponse    `json:"page"`
}
