package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ModuleType etiqueta del tipo de módulo. Es lo que viaja en los tokens y listados.
type ModuleType string

// Tipos de módulo del catálogo (deben coincidir con el CHECK de la tabla modules).
const (
	ModuleBasic         ModuleType = "basic"
	ModuleErp           ModuleType = "erp"
	ModuleSocialNetwork ModuleType = "social_network"
	ModuleCRM           ModuleType = "crm"
	ModuleAnalytics     ModuleType = "analytics"
)

// Valid informa si el tipo es uno de los conocidos.
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleBasic, ModuleErp, ModuleSocialNetwork, ModuleCRM, ModuleAnalytics:
		return true
	}
	return false
}

func (t ModuleType) String() string { return string(t) }

// Module entrada del catálogo. Inmutable para el ledger.
type Module struct {
	ID        string
	Type      ModuleType
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
}
