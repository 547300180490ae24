package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, tenant_id, login, email, password, role, active, created_at, updated_at`

// UserRepository implements user.Repository
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// Create implements user.Repository.Create
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, nullable(u.TenantID), u.Login, u.Email, u.Password, u.Role, u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrUserDuplicateLogin
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID implements user.Repository.FindByID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	if uuid.Validate(id) != nil {
		return nil, user.ErrUserNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByLogin implements user.Repository.FindByLogin
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login)
}

func (r *UserRepository) findOne(ctx context.Context, query, arg string) (*user.User, error) {
	var u user.User
	var tenantID *string
	err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &tenantID, &u.Login, &u.Email,
		&u.Password, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	u.TenantID = deref(tenantID)
	return &u, nil
}

var _ user.Repository = (*UserRepository)(nil)
