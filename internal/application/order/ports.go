package order

import (
	"context"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

// PurchaseTxRunner ejecuta una función dentro de una transacción que incluye órdenes y suscripciones.
// Si fn retorna error, o el contexto se cancela antes del commit, no queda ninguna fila escrita.
type PurchaseTxRunner interface {
	RunPurchase(ctx context.Context, fn func(
		orderRepo repository.OrderRepository,
		subscriptionRepo repository.SubscriptionRepository,
	) error) error
}

// ReceiptLine línea del comprobante enriquecida con el nombre del módulo.
type ReceiptLine struct {
	entity.OrderDetail
	ModuleName string
	ModuleType entity.ModuleType
}

// ReceiptPDFGenerator genera el comprobante de compra en PDF.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(
		ctx context.Context,
		order *entity.Order,
		company *entity.Company,
		lines []ReceiptLine,
		sub *entity.Subscription,
	) ([]byte, error)
}
