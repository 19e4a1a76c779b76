package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden de compra.
type OrderStatus string

const (
	OrderStatusApproved OrderStatus = "Approved"
)

// Order registro de auditoría de una compra. Se crea una vez y no se modifica.
type Order struct {
	ID          string
	UserID      string
	CompanyID   string
	TotalAmount decimal.Decimal
	SaleDate    time.Time
	Status      OrderStatus
	Details     []*OrderDetail
}

// OrderDetail una línea por módulo comprado.
type OrderDetail struct {
	ID       string
	OrderID  string
	ModuleID string
	Price    decimal.Decimal
}
