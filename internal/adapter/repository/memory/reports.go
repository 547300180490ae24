package memory

import (
	"context"
	"sort"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ReportRepository implements order.ReportRepository
type ReportRepository struct {
	s *session
}

func (r *ReportRepository) each(tenantID string, fn func(o *order.Order)) error {
	return r.s.read(func(st *state) error {
		for _, o := range st.orders {
			if visible(o, tenantID) {
				fn(o)
			}
		}
		return nil
	})
}

// StatusRollup implements order.ReportRepository.StatusRollup
func (r *ReportRepository) StatusRollup(ctx context.Context, tenantID string) ([]order.StatusRollup, error) {
	byStatus := map[order.Status]*order.StatusRollup{}
	err := r.each(tenantID, func(o *order.Order) {
		row, ok := byStatus[o.Status]
		if !ok {
			row = &order.StatusRollup{Status: o.Status, Total: decimal.Zero}
			byStatus[o.Status] = row
		}
		row.Count++
		row.Total = row.Total.Add(o.Total)
	})
	if err != nil {
		return nil, err
	}
	out := make([]order.StatusRollup, 0, len(byStatus))
	for _, row := range byStatus {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

// DocumentTypeCounts implements order.ReportRepository.DocumentTypeCounts
func (r *ReportRepository) DocumentTypeCounts(ctx context.Context, tenantID string) (map[order.DocumentType]int, error) {
	out := map[order.DocumentType]int{}
	err := r.each(tenantID, func(o *order.Order) { out[o.DocumentType]++ })
	return out, err
}

// Totals implements order.ReportRepository.Totals
func (r *ReportRepository) Totals(ctx context.Context, tenantID string) (order.AmountTotals, error) {
	out := order.AmountTotals{Total: decimal.Zero, Paid: decimal.Zero, Balance: decimal.Zero}
	err := r.each(tenantID, func(o *order.Order) {
		out.Total = out.Total.Add(o.Total)
		out.Paid = out.Paid.Add(o.PaidAmount)
		out.Balance = out.Balance.Add(o.Balance)
	})
	return out, err
}

// CountOverdue implements order.ReportRepository.CountOverdue
func (r *ReportRepository) CountOverdue(ctx context.Context, tenantID string, today time.Time) (int, error) {
	n := 0
	err := r.each(tenantID, func(o *order.Order) {
		if o.IsOverdue(today) {
			n++
		}
	})
	return n, err
}

// CountDeliveriesBetween implements order.ReportRepository.CountDeliveriesBetween
func (r *ReportRepository) CountDeliveriesBetween(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	n := 0
	err := r.each(tenantID, func(o *order.Order) {
		if !o.Status.IsTerminal() && !o.DeliveryDate.Before(from) && !o.DeliveryDate.After(to) {
			n++
		}
	})
	return n, err
}

// MonthlyStats implements order.ReportRepository.MonthlyStats
func (r *ReportRepository) MonthlyStats(ctx context.Context, tenantID string, since time.Time) ([]order.MonthlyStat, error) {
	start := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	byMonth := map[time.Time]*order.MonthlyStat{}
	err := r.each(tenantID, func(o *order.Order) {
		if o.OrderDate.Before(start) {
			return
		}
		month := time.Date(o.OrderDate.Year(), o.OrderDate.Month(), 1, 0, 0, 0, 0, time.UTC)
		row, ok := byMonth[month]
		if !ok {
			row = &order.MonthlyStat{Month: month, Total: decimal.Zero}
			byMonth[month] = row
		}
		row.Count++
		row.Total = row.Total.Add(o.Total)
	})
	if err != nil {
		return nil, err
	}
	out := make([]order.MonthlyStat, 0, len(byMonth))
	for _, row := range byMonth {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month.Before(out[j].Month) })
	return out, nil
}
