package orders

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// lineKey identifies the stock effect of one order line on one product
type lineKey struct {
	itemID    string
	productID string
}

// syncStock makes the stock ledger of a sale-note match its current lines:
// every linked line ends up debited by exactly its quantity. The ledger is
// what makes repeated calls no-ops.
func (s *Service) syncStock(ctx context.Context, repos domain.Repositories, o *order.Order, kind product.MovementKind, actor string, now time.Time) error {
	if !o.AffectsInventory {
		return nil
	}
	targets := map[lineKey]int{}
	for _, it := range o.Items {
		p, err := s.linkedProduct(ctx, repos, o.TenantID, it)
		if err != nil {
			return err
		}
		if p != nil {
			targets[lineKey{it.ID, p.ID}] -= it.Quantity
		}
	}
	return s.reconcileStock(ctx, repos, o, targets, kind, actor, now)
}

// adjustStock follows a line change of a live sale-note
func (s *Service) adjustStock(ctx context.Context, repos domain.Repositories, o *order.Order, actor string, now time.Time) error {
	return s.syncStock(ctx, repos, o, product.MovementSaleAdjustment, actor, now)
}

// releaseStock credits back everything the order still holds
func (s *Service) releaseStock(ctx context.Context, repos domain.Repositories, o *order.Order, actor string, now time.Time) error {
	return s.reconcileStock(ctx, repos, o, map[lineKey]int{}, product.MovementSaleReversal, actor, now)
}

// linkedProduct finds the stock row a line draws from: by inventory item id
// when set, otherwise by exact product name. Lines matching no product do
// not touch stock.
func (s *Service) linkedProduct(ctx context.Context, repos domain.Repositories, tenantID string, it *order.Item) (*product.Product, error) {
	if it.InventoryItemID != "" {
		p, err := repos.Products.FindByID(ctx, tenantID, it.InventoryItemID)
		if errors.Is(err, product.ErrProductNotFound) {
			return nil, apperror.Validation(map[string]string{"inventory_item_id": "does not exist in the tenant"})
		}
		return p, err
	}
	p, err := repos.Products.FindByName(ctx, tenantID, it.ProductName)
	if errors.Is(err, product.ErrProductNotFound) {
		return nil, nil
	}
	return p, err
}

// reconcileStock moves each (line, product) net from what the ledger holds
// to target. Products are locked in ascending id order and no product may
// end below zero.
func (s *Service) reconcileStock(ctx context.Context, repos domain.Repositories, o *order.Order, target map[lineKey]int, kind product.MovementKind, actor string, now time.Time) error {
	balances, err := repos.Products.ItemBalances(ctx, o.TenantID, o.ID)
	if err != nil {
		return err
	}
	current := map[lineKey]int{}
	for _, b := range balances {
		current[lineKey{b.ItemID, b.ProductID}] += b.Net
	}

	deltas := map[lineKey]int{}
	for k, want := range target {
		if d := want - current[k]; d != 0 {
			deltas[k] = d
		}
	}
	for k, have := range current {
		if _, kept := target[k]; !kept && have != 0 {
			deltas[k] = -have
		}
	}
	if len(deltas) == 0 {
		return nil
	}

	perProduct := map[string]int{}
	for k, d := range deltas {
		perProduct[k.productID] += d
	}
	ids := make([]string, 0, len(perProduct))
	for id := range perProduct {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	locked, err := repos.Products.LockByIDs(ctx, o.TenantID, ids)
	if err != nil {
		return err
	}
	for _, p := range locked {
		if d := perProduct[p.ID]; d < 0 && p.Stock+d < 0 {
			return apperror.InsufficientStock(p.Name, -d, p.Stock)
		}
	}
	for _, p := range locked {
		if d := perProduct[p.ID]; d != 0 {
			if err := repos.Products.AdjustStock(ctx, o.TenantID, p.ID, d); err != nil {
				return err
			}
		}
	}

	keys := make([]lineKey, 0, len(deltas))
	for k := range deltas {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].productID != keys[j].productID {
			return keys[i].productID < keys[j].productID
		}
		return keys[i].itemID < keys[j].itemID
	})
	for _, k := range keys {
		m := &product.Movement{
			ID:        uuid.New().String(),
			TenantID:  o.TenantID,
			ProductID: k.productID,
			OrderID:   o.ID,
			ItemID:    k.itemID,
			Kind:      kind,
			Delta:     deltas[k],
			Note:      o.OrderNumber,
			CreatedBy: actor,
			CreatedAt: now,
		}
		if err := repos.Products.AddMovement(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
