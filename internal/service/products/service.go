// Package products manages the stock table sale-notes draw from
package products

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreateInput carries the attributes of a new product
type CreateInput struct {
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
}

// ProductDTO is the wire form of a product. CostPrice is nil unless the
// caller may view costs.
type ProductDTO struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code,omitempty"`
	Description string    `json:"description,omitempty"`
	Stock       int       `json:"stock"`
	CostPrice   *string   `json:"cost_price,omitempty"`
	SalePrice   string    `json:"sale_price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toDTO(p *product.Product, costs bool) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Code:        p.Code,
		Description: p.Description,
		Stock:       p.Stock,
		SalePrice:   money.Format(p.SalePrice),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if costs {
		c := money.Format(p.CostPrice)
		dto.CostPrice = &c
	}
	return dto
}

// Service implements the product operations
type Service struct {
	uow   domain.UnitOfWork
	guard *access.Guard
	log   logger.Logger
	clock func() time.Time
}

// NewService creates the product service. A nil clock uses time.Now.
func NewService(uow domain.UnitOfWork, guard *access.Guard, log logger.Logger, clock func() time.Time) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{uow: uow, guard: guard, log: log.With("component", "products"), clock: clock}
}

func (s *Service) fail(op string, err error) error {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		return apperror.NotFound("product")
	case errors.Is(err, product.ErrProductDuplicateName):
		return apperror.Validation(map[string]string{"name": "already exists in the tenant"})
	}
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		s.log.Error("product operation failed", "operation", op, "error", err)
	}
	return appErr
}

func (s *Service) costs(scope *access.Scope) bool {
	return s.guard.Policy().Permit(scope, access.ActionViewCosts, access.ResourceProduct)
}

// Create adds a product with its opening stock
func (s *Service) Create(ctx context.Context, c access.Caller, in CreateInput) (*ProductDTO, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionCreate, access.ResourceProduct)
	if err != nil {
		return nil, err
	}

	p, err := product.NewProduct(scope.TenantID(), in.Name, in.Code, in.Description, in.Stock, in.CostPrice, in.SalePrice)
	if err != nil {
		return nil, err
	}
	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Products.Create(ctx, p)
	})
	if err != nil {
		return nil, s.fail("createProduct", err)
	}
	s.log.Info("product created", "tenant_id", p.TenantID, "product_id", p.ID, "user_id", scope.UserID)
	dto := toDTO(p, s.costs(scope))
	return &dto, nil
}

// Get returns one product
func (s *Service) Get(ctx context.Context, c access.Caller, id string) (*ProductDTO, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceProduct)
	if err != nil {
		return nil, err
	}
	p, err := s.uow.Reader().Products.FindByID(ctx, scope.TenantID(), id)
	if err != nil {
		return nil, s.fail("getProduct", err)
	}
	dto := toDTO(p, s.costs(scope))
	return &dto, nil
}

// List returns products matching filter, ordered by name
func (s *Service) List(ctx context.Context, c access.Caller, filter product.ListFilter) ([]ProductDTO, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceProduct)
	if err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	list, err := s.uow.Reader().Products.List(ctx, scope.TenantID(), filter)
	if err != nil {
		return nil, s.fail("listProducts", err)
	}
	costs := s.costs(scope)
	out := make([]ProductDTO, 0, len(list))
	for _, p := range list {
		out = append(out, toDTO(p, costs))
	}
	return out, nil
}

// AdjustStock applies a manual stock correction and records it in the
// ledger. Stock never goes below zero.
func (s *Service) AdjustStock(ctx context.Context, c access.Caller, id string, delta int, note string) (*ProductDTO, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionUpdate, access.ResourceProduct)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, apperror.Validation(map[string]string{"delta": "must not be zero"})
	}

	var p *product.Product
	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		locked, err := repos.Products.LockByIDs(ctx, scope.TenantID(), []string{id})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return product.ErrProductNotFound
		}
		p = locked[0]
		if p.Stock+delta < 0 {
			return apperror.InsufficientStock(p.Name, -delta, p.Stock)
		}
		if err := repos.Products.AdjustStock(ctx, p.TenantID, p.ID, delta); err != nil {
			return err
		}
		p.Stock += delta
		return repos.Products.AddMovement(ctx, &product.Movement{
			ID:        uuid.New().String(),
			TenantID:  p.TenantID,
			ProductID: p.ID,
			Kind:      product.MovementManual,
			Delta:     delta,
			Note:      note,
			CreatedBy: scope.UserID,
			CreatedAt: s.clock().UTC().Truncate(time.Microsecond),
		})
	})
	if err != nil {
		return nil, s.fail("adjustStock", err)
	}
	s.log.Info("stock adjusted", "tenant_id", p.TenantID, "product_id", p.ID, "delta", delta, "user_id", scope.UserID)
	dto := toDTO(p, s.costs(scope))
	return &dto, nil
}

// Movements returns the stock ledger of a product, newest first
func (s *Service) Movements(ctx context.Context, c access.Caller, id string, limit int) ([]*product.Movement, error) {
	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceProduct)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	repos := s.uow.Reader()
	if _, err := repos.Products.FindByID(ctx, scope.TenantID(), id); err != nil {
		return nil, s.fail("listMovements", err)
	}
	list, err := repos.Products.ListMovements(ctx, scope.TenantID(), id, limit)
	if err != nil {
		return nil, s.fail("listMovements", err)
	}
	return list, nil
}
