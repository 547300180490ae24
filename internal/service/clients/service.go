// Package clients manages the customers orders are issued to
package clients

import (
	"context"
	"errors"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
)

// CreateInput carries the attributes of a new client
type CreateInput struct {
	Type     client.Type `json:"type"`
	FullName string      `json:"full_name"`
	DNI      string      `json:"dni,omitempty"`
	RUC      string      `json:"ruc,omitempty"`
	Phone    string      `json:"phone"`
	Email    string      `json:"email,omitempty"`
	Address  string      `json:"address,omitempty"`
}

// Service implements the client operations
type Service struct {
	uow   domain.UnitOfWork
	guard *access.Guard
	log   logger.Logger
}

// NewService creates the client service
func NewService(uow domain.UnitOfWork, guard *access.Guard, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{uow: uow, guard: guard, log: log.With("component", "clients")}
}

func (s *Service) fail(op string, err error) error {
	switch {
	case errors.Is(err, client.ErrClientNotFound):
		return apperror.NotFound("client")
	case errors.Is(err, client.ErrClientDuplicateDNI):
		return apperror.Validation(map[string]string{"dni": "already registered in the tenant"})
	case errors.Is(err, client.ErrClientDuplicateRUC):
		return apperror.Validation(map[string]string{"ruc": "already registered in the tenant"})
	}
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		s.log.Error("client operation failed", "operation", op, "error", err)
	}
	return appErr
}

// Create registers a client in the caller's tenant
func (s *Service) Create(ctx context.Context, c access.Caller, in CreateInput) (*client.Client, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionCreate, access.ResourceClient)
	if err != nil {
		return nil, err
	}

	cl, err := client.NewClient(scope.TenantID(), in.Type, in.FullName, in.DNI, in.RUC, in.Phone, in.Email, in.Address)
	if err != nil {
		return nil, err
	}
	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Clients.Create(ctx, cl)
	})
	if err != nil {
		return nil, s.fail("createClient", err)
	}
	s.log.Info("client created", "tenant_id", cl.TenantID, "client_id", cl.ID, "user_id", scope.UserID)
	return cl, nil
}

// Get returns one client of the caller's tenant
func (s *Service) Get(ctx context.Context, c access.Caller, id string) (*client.Client, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceClient)
	if err != nil {
		return nil, err
	}
	cl, err := s.uow.Reader().Clients.FindByID(ctx, scope.TenantID(), id)
	if err != nil {
		return nil, s.fail("getClient", err)
	}
	return cl, nil
}

// List returns the clients matching filter, ordered by name
func (s *Service) List(ctx context.Context, c access.Caller, filter client.ListFilter) ([]*client.Client, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceClient)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	list, err := s.uow.Reader().Clients.List(ctx, scope.TenantID(), filter)
	if err != nil {
		return nil, s.fail("listClients", err)
	}
	return list, nil
}

// Update changes the contact data of a client. Type and tax ids are fixed
// once created.
func (s *Service) Update(ctx context.Context, c access.Caller, id string, patch client.Patch) (*client.Client, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionUpdate, access.ResourceClient)
	if err != nil {
		return nil, err
	}

	var cl *client.Client
	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		cl, err = repos.Clients.FindByID(ctx, scope.TenantID(), id)
		if err != nil {
			return err
		}
		if err := cl.Apply(patch); err != nil {
			return err
		}
		return repos.Clients.Update(ctx, cl)
	})
	if err != nil {
		return nil, s.fail("updateClient", err)
	}
	return cl, nil
}
