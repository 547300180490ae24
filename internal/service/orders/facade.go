package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// CreateOrder opens an order. Sale-notes debit stock in the same
// transaction.
func (s *Service) CreateOrder(ctx context.Context, c access.Caller, cmd CreateOrderCommand) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionCreate, access.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if len(cmd.Items) > 0 {
		if err := s.policy.Authorize(scope, access.ActionCreate, access.ResourceOrderItem); err != nil {
			return nil, err
		}
	}
	if cmd.InitialPayment != nil {
		if err := s.policy.Authorize(scope, access.ActionRegisterPayment, access.ResourceOrder); err != nil {
			return nil, err
		}
	}

	dto, err := s.idempotent(ctx, scope, cmd.IdempotencyKey, "createOrder", cmd, func() (string, error) {
		var id string
		err := s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
			o, err := s.createOrder(ctx, repos, scope, cmd)
			if err != nil {
				return err
			}
			id = o.ID
			return s.verify(o, s.taxRate(scope))
		})
		if err != nil {
			return "", err
		}
		s.log.Info("order created", "tenant_id", scope.TenantID(), "order_id", id, "user_id", scope.UserID)
		return id, nil
	})
	if err != nil {
		return nil, s.fail(ctx, "createOrder", err)
	}
	return dto, nil
}

// UpdateOrder changes header fields allowed in the current status
func (s *Service) UpdateOrder(ctx context.Context, c access.Caller, id string, patch order.HeaderPatch) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionUpdate, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	dto, err := s.mutate(ctx, scope, id, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
		if patch.ClientID != nil && *patch.ClientID != o.ClientID {
			if _, err := repos.Clients.FindByID(ctx, o.TenantID, *patch.ClientID); err != nil {
				if errors.Is(err, client.ErrClientNotFound) {
					return apperror.Validation(map[string]string{"client_id": "does not exist in the tenant"})
				}
				return err
			}
		}
		if err := o.ApplyHeader(patch, s.now()); err != nil {
			return err
		}
		if err := o.Recalculate(s.taxRate(scope)); err != nil {
			return err
		}
		return repos.Orders.Update(ctx, o)
	})
	if err != nil {
		return nil, s.fail(ctx, "updateOrder", err)
	}
	return dto, nil
}

func itemsLocked(o *order.Order) error {
	if o.ItemsEditable() {
		return nil
	}
	return apperror.IllegalTransition(fmt.Sprintf("order is %s; items can no longer change", o.Status))
}

// AddItem appends a line while the order is still editable
func (s *Service) AddItem(ctx context.Context, c access.Caller, orderID string, in ItemInput) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionCreate, access.ResourceOrderItem)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(scope, access.ActionEditPrice, access.ResourceOrderItem); err != nil {
		return nil, err
	}

	dto, err := s.mutate(ctx, scope, orderID, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
		if err := itemsLocked(o); err != nil {
			return err
		}
		now := s.now()
		it := order.NewItem(o, in.ProductName, in.ProductDescription, in.ProductCode,
			in.Quantity, in.UnitPrice, in.DiscountPct, in.InventoryItemID, now)
		if err := it.Validate().Err(); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
		o.UpdatedAt = now
		if err := o.Recalculate(s.taxRate(scope)); err != nil {
			return err
		}
		if err := repos.Orders.AddItem(ctx, it); err != nil {
			return err
		}
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		return s.adjustStock(ctx, repos, o, scope.UserID, now)
	})
	if err != nil {
		return nil, s.fail(ctx, "addItem", err)
	}
	return dto, nil
}

// UpdateItem changes a line while the order is still editable. Price
// changes need the edit-price grant.
func (s *Service) UpdateItem(ctx context.Context, c access.Caller, orderID, itemID string, patch order.ItemPatch) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionUpdate, access.ResourceOrderItem)
	if err != nil {
		return nil, err
	}
	if patch.TouchesPrice() {
		if err := s.policy.Authorize(scope, access.ActionEditPrice, access.ResourceOrderItem); err != nil {
			return nil, err
		}
	}

	dto, err := s.mutate(ctx, scope, orderID, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
		it := o.FindItem(itemID)
		if it == nil {
			return order.ErrItemNotFound
		}
		if err := itemsLocked(o); err != nil {
			return err
		}
		now := s.now()
		if err := it.Apply(patch, now).Err(); err != nil {
			return err
		}
		o.UpdatedAt = now
		if err := o.Recalculate(s.taxRate(scope)); err != nil {
			return err
		}
		if err := repos.Orders.UpdateItem(ctx, it); err != nil {
			return err
		}
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		return s.adjustStock(ctx, repos, o, scope.UserID, now)
	})
	if err != nil {
		return nil, s.fail(ctx, "updateItem", err)
	}
	return dto, nil
}

// RemoveItem deletes a line while the order is still editable
func (s *Service) RemoveItem(ctx context.Context, c access.Caller, orderID, itemID string) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionDelete, access.ResourceOrderItem)
	if err != nil {
		return nil, err
	}

	dto, err := s.mutate(ctx, scope, orderID, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
		if o.FindItem(itemID) == nil {
			return order.ErrItemNotFound
		}
		if err := itemsLocked(o); err != nil {
			return err
		}
		now := s.now()
		o.RemoveItem(itemID)
		o.UpdatedAt = now
		if err := o.Recalculate(s.taxRate(scope)); err != nil {
			return err
		}
		if err := repos.Orders.RemoveItem(ctx, o.TenantID, o.ID, itemID); err != nil {
			return err
		}
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		return s.adjustStock(ctx, repos, o, scope.UserID, now)
	})
	if err != nil {
		return nil, s.fail(ctx, "removeItem", err)
	}
	return dto, nil
}

// RegisterPayment appends a payment when the new sum still fits the total.
// Negative amounts are compensating adjustments reserved to administrators.
func (s *Service) RegisterPayment(ctx context.Context, c access.Caller, cmd RegisterPaymentCommand) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRegisterPayment, access.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if cmd.Payment.Amount.IsNegative() && !s.policy.MayCompensate(scope) {
		return nil, apperror.Forbidden("only administrators may register compensating adjustments")
	}

	dto, err := s.idempotent(ctx, scope, cmd.IdempotencyKey, "registerPayment", cmd, func() (string, error) {
		return cmd.OrderID, s.apply(ctx, scope, cmd.OrderID, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
			if o.Status.IsTerminal() {
				return apperror.IllegalTransition(fmt.Sprintf("order is %s; payments are frozen", o.Status))
			}
			now := s.now()
			p := s.newPayment(o, cmd.Payment, scope.UserID, now)
			if err := p.Validate().Err(); err != nil {
				return err
			}
			o.Payments = append(o.Payments, p)
			o.UpdatedAt = now
			if err := o.Recalculate(s.taxRate(scope)); err != nil {
				return err
			}
			if err := repos.Orders.AddPayment(ctx, p); err != nil {
				return err
			}
			return repos.Orders.Update(ctx, o)
		})
	})
	if err != nil {
		return nil, s.fail(ctx, "registerPayment", err)
	}
	return dto, nil
}

// UpdatePayment always fails: payments are append-only and are corrected
// with a compensating adjustment
func (s *Service) UpdatePayment(ctx context.Context, c access.Caller, orderID, paymentID string) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionRead, access.ResourceOrderPayment)
	if err != nil {
		return err
	}
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		o, err := repos.Orders.FindByID(ctx, scope.TenantID(), orderID)
		if err != nil {
			return err
		}
		for _, p := range o.Payments {
			if p.ID == paymentID {
				return order.ErrPaymentImmutable
			}
		}
		return apperror.NotFound("payment")
	})
	return s.fail(ctx, "updatePayment", err)
}

// Transition moves an order along the state machine. Cancelling a
// sale-note credits its stock back.
func (s *Service) Transition(ctx context.Context, c access.Caller, cmd TransitionCommand) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionTransition, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	dto, err := s.mutate(ctx, scope, cmd.OrderID, func(ctx context.Context, repos domain.Repositories, o *order.Order) error {
		at := s.stamp(o)
		h, err := o.Transition(cmd.Status, cmd.Reason, scope.UserID, at)
		if err != nil || h == nil {
			return err
		}
		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}
		if err := repos.Orders.AddHistory(ctx, h); err != nil {
			return err
		}
		if o.Status == order.StatusCancelled && o.AffectsInventory {
			if err := s.releaseStock(ctx, repos, o, scope.UserID, at); err != nil {
				return err
			}
		}
		s.log.Info("order status changed", "tenant_id", o.TenantID, "order_id", o.ID,
			"from", *h.PreviousStatus, "to", h.NewStatus, "user_id", scope.UserID)
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "transition", err)
	}
	return dto, nil
}

// DeleteOrder removes an order that never received a payment. A live
// sale-note gives its stock back first.
func (s *Service) DeleteOrder(ctx context.Context, c access.Caller, id string) error {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.EnterTenant(ctx, c, access.ActionDelete, access.ResourceOrder)
	if err != nil {
		return err
	}

	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		o, err := repos.Orders.FindByIDForUpdate(ctx, scope.TenantID(), id)
		if err != nil {
			return err
		}
		if len(o.Payments) > 0 {
			return apperror.Conflict("orders with payments cannot be deleted; cancel the order instead")
		}
		if o.AffectsInventory && o.Status != order.StatusCancelled {
			if err := s.releaseStock(ctx, repos, o, scope.UserID, s.now()); err != nil {
				return err
			}
		}
		return repos.Orders.Delete(ctx, o.TenantID, o.ID)
	})
	if err != nil {
		return s.fail(ctx, "deleteOrder", err)
	}
	s.log.Info("order deleted", "tenant_id", scope.TenantID(), "order_id", id, "user_id", scope.UserID)
	return nil
}
