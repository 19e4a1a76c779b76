// Package memory implementa los puertos de persistencia en memoria.
// Se usa como driver de desarrollo (STORE_DRIVER=memory) y en los tests.
//
// Cada escritura trabaja sobre una copia del estado y la publica solo si termina sin error,
// así una escritura compuesta (orden + detalles, suscripción + créditos) es todo o nada.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/saas-backoffice/internal/application/order"
	"github.com/jhoicas/saas-backoffice/internal/domain/entity"
	"github.com/jhoicas/saas-backoffice/internal/domain/repository"
)

var _ order.PurchaseTxRunner = (*Store)(nil)

type state struct {
	companies     map[string]entity.Company
	users         map[string]entity.User
	roles         []entity.UserRole
	modules       map[string]entity.Module
	orders        map[string]entity.Order
	details       map[string][]entity.OrderDetail // por order_id
	subscriptions map[string]entity.Subscription
	credits       map[string][]entity.SubscriptionCredit // por subscription_id
}

func newState() *state {
	return &state{
		companies:     make(map[string]entity.Company),
		users:         make(map[string]entity.User),
		modules:       make(map[string]entity.Module),
		orders:        make(map[string]entity.Order),
		details:       make(map[string][]entity.OrderDetail),
		subscriptions: make(map[string]entity.Subscription),
		credits:       make(map[string][]entity.SubscriptionCredit),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.companies {
		c.companies[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.roles = append(c.roles, s.roles...)
	for k, v := range s.modules {
		c.modules[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.details {
		c.details[k] = append([]entity.OrderDetail(nil), v...)
	}
	for k, v := range s.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range s.credits {
		c.credits[k] = append([]entity.SubscriptionCredit(nil), v...)
	}
	return c
}

// handle abstrae "el store" o "una transacción abierta" para los repositorios.
type handle interface {
	view(ctx context.Context, fn func(st *state) error) error
	update(ctx context.Context, fn func(st *state) error) error
}

// Store estado compartido en memoria. Seguro para uso concurrente.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New crea un store vacío.
func New() *Store {
	return &Store{st: newState()}
}

func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

func (s *Store) update(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	// Cancelación antes de publicar = rollback.
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = next
	return nil
}

// tx transacción abierta: trabaja sobre su propia copia, sin bloqueo (el Store ya lo tiene tomado).
type tx struct {
	st *state
}

func (t *tx) view(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(t.st)
}

func (t *tx) update(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	next := t.st.clone()
	if err := fn(next); err != nil {
		return err
	}
	t.st = next
	return nil
}

// RunPurchase ejecuta fn con repositorios atados a una transacción y publica el resultado
// solo si fn no falla y el contexto sigue vivo. fn debe usar únicamente los repos recibidos.
func (s *Store) RunPurchase(ctx context.Context, fn func(
	orderRepo repository.OrderRepository,
	subscriptionRepo repository.SubscriptionRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{st: s.st.clone()}
	if err := fn(&OrderRepo{h: t}, &SubscriptionRepo{h: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = t.st
	return nil
}

// AddModules carga entradas de catálogo (seed de desarrollo y tests).
func (s *Store) AddModules(modules ...*entity.Module) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range modules {
		s.st.modules[m.ID] = *m
	}
}

// Counts número de filas por relación del ledger; útil para verificar atomicidad en tests.
type Counts struct {
	Orders        int
	OrderDetails  int
	Subscriptions int
	Credits       int
}

// Counts devuelve el número de filas visibles por relación.
func (s *Store) Counts() Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := Counts{Orders: len(s.st.orders), Subscriptions: len(s.st.subscriptions)}
	for _, d := range s.st.details {
		c.OrderDetails += len(d)
	}
	for _, cr := range s.st.credits {
		c.Credits += len(cr)
	}
	return c
}
