package memory

import (
	"context"

	"github.com/hugohenrick/arte-ideas/internal/domain/user"
)

// UserRepository implements user.Repository
type UserRepository struct {
	s *session
}

// Create implements user.Repository.Create
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.users {
			if existing.Login == u.Login {
				return user.ErrUserDuplicateLogin
			}
		}
		cp := *u
		st.users[u.ID] = &cp
		return nil
	})
}

// FindByID implements user.Repository.FindByID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var out *user.User
	err := r.s.read(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return user.ErrUserNotFound
		}
		cp := *u
		out = &cp
		return nil
	})
	return out, err
}

// FindByLogin implements user.Repository.FindByLogin
func (r *UserRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	var out *user.User
	err := r.s.read(func(st *state) error {
		for _, u := range st.users {
			if u.Login == login {
				cp := *u
				out = &cp
				return nil
			}
		}
		return user.ErrUserNotFound
	})
	return out, err
}
