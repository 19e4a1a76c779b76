package entitlement

import (
	"sort"

	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
)

// RoleOverrides tabla rol -> tipos de módulo implícitos al emitir capacidades.
//
// Es una excepción de autorización superpuesta al ledger, no derivada de él:
// el resolver nunca la consulta y sigue reflejando solo créditos reales.
type RoleOverrides map[string][]entity.ModuleType

// DefaultRoleOverrides el rol God recibe siempre erp.
func DefaultRoleOverrides() RoleOverrides {
	return RoleOverrides{entity.RoleGod: {entity.ModuleErp}}
}

// NewRoleOverrides construye la tabla desde configuración (rol -> nombres de tipo).
func NewRoleOverrides(cfg map[string][]string) RoleOverrides {
	o := make(RoleOverrides, len(cfg))
	for role, types := range cfg {
		for _, t := range types {
			o[role] = append(o[role], entity.ModuleType(t))
		}
	}
	return o
}

// Capabilities une los tipos resueltos por el ledger con los implícitos de los roles.
// Sin duplicados y ordenado.
func (o RoleOverrides) Capabilities(resolved []entity.ModuleType, roles []string) []string {
	set := make(map[string]struct{}, len(resolved)+1)
	for _, t := range resolved {
		set[string(t)] = struct{}{}
	}
	for _, role := range roles {
		for _, t := range o[role] {
			set[string(t)] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
