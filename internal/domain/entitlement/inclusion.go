package entitlement

import "github.com/jhoicas/saas-backoffice/internal/domain/entity"

// InclusionPolicy tipos de módulo que toda compra incluye aunque no se pidan.
// Strict decide qué pasa si alguno no existe en el catálogo: false = se omite, true = la compra falla.
type InclusionPolicy struct {
	Types  []entity.ModuleType
	Strict bool
}

// DefaultInclusionPolicy incluye siempre el módulo basic.
func DefaultInclusionPolicy() InclusionPolicy {
	return InclusionPolicy{Types: []entity.ModuleType{entity.ModuleBasic}}
}

// NewInclusionPolicy construye la política desde nombres de tipo (configuración).
func NewInclusionPolicy(types []string, strict bool) InclusionPolicy {
	p := InclusionPolicy{Strict: strict}
	seen := make(map[entity.ModuleType]bool, len(types))
	for _, t := range types {
		mt := entity.ModuleType(t)
		if seen[mt] {
			continue
		}
		seen[mt] = true
		p.Types = append(p.Types, mt)
	}
	return p
}

// Missing devuelve, en el orden de la política, los tipos que faltan en resolved.
func (p InclusionPolicy) Missing(resolved []*entity.Module) []entity.ModuleType {
	present := make(map[entity.ModuleType]bool, len(resolved))
	for _, m := range resolved {
		present[m.Type] = true
	}
	var missing []entity.ModuleType
	for _, t := range p.Types {
		if !present[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
