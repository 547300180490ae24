// Package memory implements the repositories in process memory. Every
// transaction holds one global lock, which gives the serial ordering the
// postgres row locks provide, and rolls back by restoring a snapshot.
package memory

import (
	"context"
	"sync"

	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
)

type state struct {
	tenants   map[string]*tenant.Tenant
	users     map[string]*user.User
	clients   map[string]*client.Client
	products  map[string]*product.Product
	movements []*product.Movement
	orders    map[string]*order.Order
	history   []*order.StatusHistory
	sequences map[string]int64
}

func newState() *state {
	return &state{
		tenants:   make(map[string]*tenant.Tenant),
		users:     make(map[string]*user.User),
		clients:   make(map[string]*client.Client),
		products:  make(map[string]*product.Product),
		orders:    make(map[string]*order.Order),
		sequences: make(map[string]int64),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.tenants {
		t := *v
		c.tenants[k] = &t
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.clients {
		cl := *v
		c.clients[k] = &cl
	}
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	c.movements = make([]*product.Movement, len(s.movements))
	for i, m := range s.movements {
		mv := *m
		c.movements[i] = &mv
	}
	for k, v := range s.orders {
		c.orders[k] = cloneOrder(v)
	}
	c.history = make([]*order.StatusHistory, len(s.history))
	for i, h := range s.history {
		c.history[i] = cloneHistory(h)
	}
	for k, v := range s.sequences {
		c.sequences[k] = v
	}
	return c
}

// DB is the shared in-memory database
type DB struct {
	mu    sync.RWMutex
	state *state
}

// NewDB creates an empty database
func NewDB() *DB {
	return &DB{state: newState()}
}

// session gives repositories access to the state. Sessions created for a
// transaction already hold the write lock.
type session struct {
	db   *DB
	inTx bool
}

func (s *session) read(fn func(st *state) error) error {
	if !s.inTx {
		s.db.mu.RLock()
		defer s.db.mu.RUnlock()
	}
	return fn(s.db.state)
}

func (s *session) write(fn func(st *state) error) error {
	if !s.inTx {
		s.db.mu.Lock()
		defer s.db.mu.Unlock()
	}
	return fn(s.db.state)
}

func (s *session) repositories() domain.Repositories {
	return domain.Repositories{
		Orders:   &OrderRepository{s: s},
		Reports:  &ReportRepository{s: s},
		Clients:  &ClientRepository{s: s},
		Products: &ProductRepository{s: s},
		Tenants:  &TenantRepository{s: s},
		Users:    &UserRepository{s: s},
	}
}

// UnitOfWork implements domain.UnitOfWork over a DB
type UnitOfWork struct {
	db *DB
}

// NewUnitOfWork creates a unit of work for db
func NewUnitOfWork(db *DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Within implements domain.UnitOfWork
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.db.mu.Lock()
	defer u.db.mu.Unlock()

	snapshot := u.db.state.clone()
	sess := &session{db: u.db, inTx: true}

	err := fn(ctx, sess.repositories())
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		u.db.state = snapshot
		return err
	}
	return nil
}

// Reader implements domain.UnitOfWork
func (u *UnitOfWork) Reader() domain.Repositories {
	return (&session{db: u.db}).repositories()
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)
