// Package repository implements the domain repositories on PostgreSQL
// through pgx.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is satisfied by both the pool and a transaction
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	codeUniqueViolation = "23505"
	codeRaiseException  = "P0001"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func pgConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// nullable maps an empty id to SQL NULL
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func limitClause(limit, offset int) string {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
}

// NewRepositories binds every repository to db
func NewRepositories(db DBTX) domain.Repositories {
	return domain.Repositories{
		Orders:   NewOrderRepository(db),
		Reports:  NewReportRepository(db),
		Clients:  NewClientRepository(db),
		Products: NewProductRepository(db),
		Tenants:  NewTenantRepository(db),
		Users:    NewUserRepository(db),
	}
}

// UnitOfWork runs callbacks inside READ COMMITTED transactions. Mutations
// serialize on the order row lock taken by FindByIDForUpdate.
type UnitOfWork struct {
	pool *pgxpool.Pool
}

// NewUnitOfWork creates a unit of work over pool
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pool: pool}
}

// Within implements domain.UnitOfWork
func (u *UnitOfWork) Within(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) (err error) {
	tx, err := u.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.Background())
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(context.Background())
		}
	}()

	if err = fn(ctx, NewRepositories(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Reader implements domain.UnitOfWork
func (u *UnitOfWork) Reader() domain.Repositories {
	return NewRepositories(u.pool)
}

var _ domain.UnitOfWork = (*UnitOfWork)(nil)
