package orders

import (
	"context"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/shopspring/decimal"
)

// SummaryDTO is the dashboard overview of the tenant's orders
type SummaryDTO struct {
	ByStatus           map[string]int `json:"by_status"`
	ByDocumentType     map[string]int `json:"by_document_type"`
	Total              *string        `json:"total,omitempty"`
	Paid               *string        `json:"paid,omitempty"`
	Balance            *string        `json:"balance,omitempty"`
	Overdue            int            `json:"overdue"`
	UpcomingDeliveries int            `json:"upcoming_deliveries"`
	HorizonDays        int            `json:"horizon_days"`
}

// TotalsDTO are the absolute amounts across every order
type TotalsDTO struct {
	AbsoluteTotal   string `json:"absolute_total"`
	AbsoluteBalance string `json:"absolute_balance"`
}

// StatusRollupDTO is the count and value of one stored status
type StatusRollupDTO struct {
	Status string  `json:"status"`
	Count  int     `json:"count"`
	Total  *string `json:"total,omitempty"`
}

// ByStatusDTO holds either a rollup of every status or the orders of one
type ByStatusDTO struct {
	Rollup []StatusRollupDTO `json:"rollup,omitempty"`
	Orders *OrderPage        `json:"orders,omitempty"`
}

// MonthlyStatDTO is the activity of one calendar month
type MonthlyStatDTO struct {
	Month string  `json:"month"`
	Count int     `json:"count"`
	Total *string `json:"total,omitempty"`
}

// nonTerminal are the stored statuses an order can still leave
var nonTerminal = []order.Status{order.StatusDraft, order.StatusPending, order.StatusConfirmed, order.StatusInProcess}

// Summary counts orders by status and document type and sums their money
func (s *Service) Summary(ctx context.Context, c access.Caller) (*SummaryDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	tenantID := scope.TenantID()
	today := s.today()
	horizon := today.AddDate(0, 0, s.opts.UpcomingHorizonDays)
	out := &SummaryDTO{
		ByStatus:       map[string]int{},
		ByDocumentType: map[string]int{},
		HorizonDays:    s.opts.UpcomingHorizonDays,
	}
	var totals order.AmountTotals

	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		rollup, err := repos.Reports.StatusRollup(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, st := range order.StoredStatuses {
			out.ByStatus[string(st)] = 0
		}
		for _, r := range rollup {
			out.ByStatus[string(r.Status)] = r.Count
		}

		docs, err := repos.Reports.DocumentTypeCounts(ctx, tenantID)
		if err != nil {
			return err
		}
		for _, d := range order.DocumentTypes {
			out.ByDocumentType[string(d)] = docs[d]
		}

		if totals, err = repos.Reports.Totals(ctx, tenantID); err != nil {
			return err
		}
		if out.Overdue, err = repos.Reports.CountOverdue(ctx, tenantID, today); err != nil {
			return err
		}
		out.UpcomingDeliveries, err = repos.Reports.CountDeliveriesBetween(ctx, tenantID, today, horizon)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "summary", err)
	}

	fin := s.policy.Permit(scope, access.ActionViewFinancials, access.ResourceOrder)
	out.Total = amount(totals.Total, fin)
	out.Paid = amount(totals.Paid, fin)
	out.Balance = amount(totals.Balance, fin)
	return out, nil
}

// TotalsSummary returns the absolute total and balance of every order
func (s *Service) TotalsSummary(ctx context.Context, c access.Caller) (*TotalsDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionViewFinancials, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	var totals order.AmountTotals
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		totals, err = repos.Reports.Totals(ctx, scope.TenantID())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "totalsSummary", err)
	}
	return &TotalsDTO{
		AbsoluteTotal:   *amount(totals.Total, true),
		AbsoluteBalance: *amount(totals.Balance, true),
	}, nil
}

// Overdue lists open orders whose delivery date has passed, oldest
// delivery first
func (s *Service) Overdue(ctx context.Context, c access.Caller, limit, offset int) (*OrderPage, error) {
	return s.ListOrders(ctx, c, ListQuery{Status: order.StatusOverdue, Sort: order.SortDeliveryAsc, Limit: limit, Offset: offset})
}

// UpcomingDeliveries lists non-terminal orders delivering between today and
// today plus horizonDays, soonest first. A non-positive horizon uses the
// configured default.
func (s *Service) UpcomingDeliveries(ctx context.Context, c access.Caller, horizonDays, limit, offset int) (*OrderPage, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if horizonDays <= 0 {
		horizonDays = s.opts.UpcomingHorizonDays
	}

	today := s.today()
	to := today.AddDate(0, 0, horizonDays)
	limit, offset = ListQuery{Limit: limit, Offset: offset}.page()
	page, err := s.listPage(ctx, scope, order.ListFilter{
		TenantID:     scope.TenantID(),
		Statuses:     nonTerminal,
		DeliveryFrom: &today,
		DeliveryTo:   &to,
		Sort:         order.SortDeliveryAsc,
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		return nil, s.fail(ctx, "upcomingDeliveries", err)
	}
	return page, nil
}

// ByStatus returns the orders of one status, or a rollup of every stored
// status when status is empty
func (s *Service) ByStatus(ctx context.Context, c access.Caller, status order.Status, limit, offset int) (*ByStatusDTO, error) {
	if status != "" {
		page, err := s.ListOrders(ctx, c, ListQuery{Status: status, Sort: order.SortDeliveryAsc, Limit: limit, Offset: offset})
		if err != nil {
			return nil, err
		}
		return &ByStatusDTO{Orders: page}, nil
	}

	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	var rollup []order.StatusRollup
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		rollup, err = repos.Reports.StatusRollup(ctx, scope.TenantID())
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "byStatus", err)
	}

	fin := s.policy.Permit(scope, access.ActionViewFinancials, access.ResourceOrder)
	found := map[order.Status]order.StatusRollup{}
	for _, r := range rollup {
		found[r.Status] = r
	}
	out := &ByStatusDTO{Rollup: make([]StatusRollupDTO, 0, len(order.StoredStatuses))}
	for _, st := range order.StoredStatuses {
		r, ok := found[st]
		if !ok {
			r = order.StatusRollup{Status: st, Total: decimal.Zero}
		}
		out.Rollup = append(out.Rollup, StatusRollupDTO{Status: string(st), Count: r.Count, Total: amount(r.Total, fin)})
	}
	return out, nil
}

// MonthlyStats returns the order count and value of each of the last
// months calendar months, the current one included. Months without orders
// are reported with zeros.
func (s *Service) MonthlyStats(ctx context.Context, c access.Caller, months int) ([]MonthlyStatDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}
	if months <= 0 {
		months = s.opts.MonthlyMonths
	}

	today := s.today()
	first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	var stats []order.MonthlyStat
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		stats, err = repos.Reports.MonthlyStats(ctx, scope.TenantID(), first)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "monthlyStats", err)
	}

	byMonth := map[string]order.MonthlyStat{}
	for _, st := range stats {
		byMonth[st.Month.Format("2006-01")] = st
	}
	fin := s.policy.Permit(scope, access.ActionViewFinancials, access.ResourceOrder)
	out := make([]MonthlyStatDTO, 0, months)
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		st, ok := byMonth[key]
		if !ok {
			st.Total = decimal.Zero
		}
		out = append(out, MonthlyStatDTO{Month: key, Count: st.Count, Total: amount(st.Total, fin)})
	}
	return out, nil
}
