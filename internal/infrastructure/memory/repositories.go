package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/saas-backoffice/internal/domain"
	"github.com/jhoicas/saas-backoffice/internal/domain/entitlement"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var (
	_ repository.CompanyRepository      = (*CompanyRepo)(nil)
	_ repository.UserRepository         = (*UserRepo)(nil)
	_ repository.UserRoleRepository     = (*UserRoleRepo)(nil)
	_ repository.ModuleRepository       = (*ModuleRepo)(nil)
	_ repository.OrderRepository        = (*OrderRepo)(nil)
	_ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)
)

func page(n, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	end := n
	if limit > 0 && offset+limit < n {
		end = offset + limit
	}
	return offset, end
}

// ── Companies ─────────────────────────────────────────────────────────────────

// CompanyRepo implementa repository.CompanyRepository.
type CompanyRepo struct{ h handle }

// NewCompanyRepository crea el repositorio de empresas sobre el store.
func NewCompanyRepository(s *Store) *CompanyRepo { return &CompanyRepo{h: s} }

func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	return r.h.update(ctx, func(st *state) error {
		if _, ok := st.companies[c.ID]; ok {
			return fmt.Errorf("%w: empresa %s", domain.ErrDuplicate, c.ID)
		}
		for _, existing := range st.companies {
			if existing.TaxID == c.TaxID {
				return fmt.Errorf("%w: tax_id %s", domain.ErrDuplicate, c.TaxID)
			}
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*entity.Company, error) {
	var out *entity.Company
	err := r.h.view(ctx, func(st *state) error {
		if c, ok := st.companies[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Company, error) {
	var out *entity.Company
	err := r.h.view(ctx, func(st *state) error {
		for _, c := range st.companies {
			if c.TaxID == taxID {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CompanyRepo) Update(ctx context.Context, c *entity.Company) error {
	return r.h.update(ctx, func(st *state) error {
		if _, ok := st.companies[c.ID]; !ok {
			return domain.ErrNotFound
		}
		st.companies[c.ID] = *c
		return nil
	})
}

func (r *CompanyRepo) List(ctx context.Context, limit, offset int) ([]*entity.Company, error) {
	var out []*entity.Company
	err := r.h.view(ctx, func(st *state) error {
		all := make([]*entity.Company, 0, len(st.companies))
		for _, c := range st.companies {
			c := c
			all = append(all, &c)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		from, to := page(len(all), limit, offset)
		out = all[from:to]
		return nil
	})
	return out, err
}

// ── Users ─────────────────────────────────────────────────────────────────────

// UserRepo implementa repository.UserRepository.
type UserRepo struct{ h handle }

func NewUserRepository(s *Store) *UserRepo { return &UserRepo{h: s} }

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.h.update(ctx, func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return domain.ErrEmailAlreadyExists
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.h.view(ctx, func(st *state) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.h.view(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByCompany usuarios con algún rol en la empresa.
func (r *UserRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	err := r.h.view(ctx, func(st *state) error {
		seen := make(map[string]bool)
		all := make([]*entity.User, 0)
		for _, ur := range st.roles {
			if ur.CompanyID != companyID || seen[ur.UserID] {
				continue
			}
			seen[ur.UserID] = true
			if u, ok := st.users[ur.UserID]; ok {
				all = append(all, &u)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
		from, to := page(len(all), limit, offset)
		out = all[from:to]
		return nil
	})
	return out, err
}

// ── User roles ────────────────────────────────────────────────────────────────

// UserRoleRepo implementa repository.UserRoleRepository.
type UserRoleRepo struct{ h handle }

func NewUserRoleRepository(s *Store) *UserRoleRepo { return &UserRoleRepo{h: s} }

// Assign es idempotente: asignar dos veces el mismo rol no duplica la fila.
func (r *UserRoleRepo) Assign(ctx context.Context, role *entity.UserRole) error {
	return r.h.update(ctx, func(st *state) error {
		for _, ur := range st.roles {
			if ur.UserID == role.UserID && ur.CompanyID == role.CompanyID && ur.Role == role.Role {
				return nil
			}
		}
		st.roles = append(st.roles, *role)
		return nil
	})
}

func (r *UserRoleRepo) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	var member bool
	err := r.h.view(ctx, func(st *state) error {
		member = hasRole(st, userID, companyID)
		return nil
	})
	return member, err
}

func (r *UserRoleRepo) ListRoles(ctx context.Context, userID, companyID string) ([]string, error) {
	out := []string{}
	err := r.h.view(ctx, func(st *state) error {
		for _, ur := range st.roles {
			if ur.UserID == userID && ur.CompanyID == companyID {
				out = append(out, ur.Role)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func hasRole(st *state, userID, companyID string) bool {
	for _, ur := range st.roles {
		if ur.UserID == userID && ur.CompanyID == companyID {
			return true
		}
	}
	return false
}

// ── Catalog ───────────────────────────────────────────────────────────────────

// ModuleRepo implementa repository.ModuleRepository.
type ModuleRepo struct{ h handle }

func NewModuleRepository(s *Store) *ModuleRepo { return &ModuleRepo{h: s} }

func (r *ModuleRepo) ResolveModules(ctx context.Context, ids []string) ([]*entity.Module, error) {
	out := []*entity.Module{}
	err := r.h.view(ctx, func(st *state) error {
		for _, id := range entitlement.DedupeIDs(ids) {
			if m, ok := st.modules[id]; ok {
				out = append(out, &m)
			}
		}
		return nil
	})
	entitlement.SortModules(out)
	return out, err
}

func (r *ModuleRepo) GetByType(ctx context.Context, t entity.ModuleType) (*entity.Module, error) {
	var out *entity.Module
	err := r.h.view(ctx, func(st *state) error {
		for _, m := range st.modules {
			if m.Type != t {
				continue
			}
			// Con más de una entrada del mismo tipo gana la de menor ID, igual que en PostgreSQL.
			if out == nil || m.ID < out.ID {
				m := m
				out = &m
			}
		}
		return nil
	})
	return out, err
}

func (r *ModuleRepo) GetByID(ctx context.Context, id string) (*entity.Module, error) {
	var out *entity.Module
	err := r.h.view(ctx, func(st *state) error {
		if m, ok := st.modules[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r *ModuleRepo) List(ctx context.Context) ([]*entity.Module, error) {
	out := []*entity.Module{}
	err := r.h.view(ctx, func(st *state) error {
		for _, m := range st.modules {
			m := m
			out = append(out, &m)
		}
		return nil
	})
	entitlement.SortModules(out)
	return out, err
}

// ── Orders ────────────────────────────────────────────────────────────────────

// OrderRepo implementa repository.OrderRepository.
type OrderRepo struct{ h handle }

func NewOrderRepository(s *Store) *OrderRepo { return &OrderRepo{h: s} }

// Create escribe la cabecera y todos los detalles o nada.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	return r.h.update(ctx, func(st *state) error {
		if _, ok := st.orders[o.ID]; ok {
			return fmt.Errorf("%w: orden %s", domain.ErrDuplicate, o.ID)
		}
		details := make([]entity.OrderDetail, 0, len(o.Details))
		for _, d := range o.Details {
			if d.OrderID != o.ID {
				return fmt.Errorf("%w: el detalle %s apunta a otra orden", domain.ErrInvalidInput, d.ID)
			}
			if _, ok := st.modules[d.ModuleID]; !ok {
				return fmt.Errorf("%w: módulo %s inexistente", domain.ErrInvalidInput, d.ModuleID)
			}
			details = append(details, *d)
		}
		head := *o
		head.Details = nil
		st.orders[o.ID] = head
		st.details[o.ID] = details
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	var out *entity.Order
	err := r.h.view(ctx, func(st *state) error {
		o, ok := st.orders[id]
		if !ok {
			return nil
		}
		out = withDetails(st, o)
		return nil
	})
	return out, err
}

func (r *OrderRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Order, error) {
	var out []*entity.Order
	err := r.h.view(ctx, func(st *state) error {
		all := make([]*entity.Order, 0)
		for _, o := range st.orders {
			if o.CompanyID == companyID {
				all = append(all, withDetails(st, o))
			}
		}
		sort.Slice(all, func(i, j int) bool {
			if !all[i].SaleDate.Equal(all[j].SaleDate) {
				return all[i].SaleDate.After(all[j].SaleDate)
			}
			return all[i].ID < all[j].ID
		})
		from, to := page(len(all), limit, offset)
		out = all[from:to]
		return nil
	})
	return out, err
}

func withDetails(st *state, o entity.Order) *entity.Order {
	for _, d := range st.details[o.ID] {
		d := d
		o.Details = append(o.Details, &d)
	}
	return &o
}

// ── Subscriptions ─────────────────────────────────────────────────────────────

// SubscriptionRepo implementa repository.SubscriptionRepository.
type SubscriptionRepo struct{ h handle }

func NewSubscriptionRepository(s *Store) *SubscriptionRepo { return &SubscriptionRepo{h: s} }

// GrantCredits valida todo antes de escribir; si algo falla el estado no cambia.
func (r *SubscriptionRepo) GrantCredits(ctx context.Context, sub *entity.Subscription, credits []*entity.SubscriptionCredit) (*entity.Subscription, error) {
	if err := entitlement.ValidateGrant(sub, credits); err != nil {
		return nil, err
	}
	err := r.h.update(ctx, func(st *state) error {
		if _, ok := st.subscriptions[sub.ID]; ok {
			return fmt.Errorf("%w: suscripción %s", domain.ErrDuplicate, sub.ID)
		}
		if _, ok := st.companies[sub.CompanyID]; !ok {
			return fmt.Errorf("%w: empresa %s inexistente", domain.ErrInvalidInput, sub.CompanyID)
		}
		if sub.OrderID != nil {
			if _, ok := st.orders[*sub.OrderID]; !ok {
				return fmt.Errorf("%w: orden %s inexistente", domain.ErrInvalidInput, *sub.OrderID)
			}
		}
		rows := make([]entity.SubscriptionCredit, 0, len(credits))
		for _, c := range credits {
			if _, ok := st.modules[c.ModuleID]; !ok {
				return fmt.Errorf("%w: módulo %s inexistente", domain.ErrInvalidInput, c.ModuleID)
			}
			rows = append(rows, *c)
		}
		st.subscriptions[sub.ID] = *sub
		st.credits[sub.ID] = rows
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

// FindActiveModuleTypes resuelve en memoria el mismo join que la consulta SQL.
func (r *SubscriptionRepo) FindActiveModuleTypes(ctx context.Context, companyID, userID string, asOf time.Time) ([]entity.ModuleType, error) {
	out := []entity.ModuleType{}
	err := r.h.view(ctx, func(st *state) error {
		if !hasRole(st, userID, companyID) {
			return nil
		}
		set := make(map[entity.ModuleType]bool)
		for id, sub := range st.subscriptions {
			if sub.CompanyID != companyID || !sub.ActiveAt(asOf) {
				continue
			}
			for _, c := range st.credits[id] {
				if !c.ActiveAt(asOf) {
					continue
				}
				if m, ok := st.modules[c.ModuleID]; ok {
					set[m.Type] = true
				}
			}
		}
		for t := range set {
			out = append(out, t)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, err
}

func (r *SubscriptionRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Subscription, error) {
	out := []*entity.Subscription{}
	err := r.h.view(ctx, func(st *state) error {
		for _, s := range st.subscriptions {
			if s.CompanyID == companyID {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *SubscriptionRepo) ListCredits(ctx context.Context, subscriptionID string) ([]*entity.SubscriptionCredit, error) {
	out := []*entity.SubscriptionCredit{}
	err := r.h.view(ctx, func(st *state) error {
		for _, c := range st.credits[subscriptionID] {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}
