package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/shopspring/decimal"
)

// openStatuses are the stored statuses the overdue overlay applies to
var openStatuses = []string{string(order.StatusPending), string(order.StatusConfirmed), string(order.StatusInProcess)}

// pendingStatuses are the stored statuses an order can still leave
var pendingStatuses = append([]string{string(order.StatusDraft)}, openStatuses...)

// ReportRepository implements order.ReportRepository
type ReportRepository struct {
	db DBTX
}

// NewReportRepository creates a ReportRepository
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// StatusRollup implements order.ReportRepository.StatusRollup
func (r *ReportRepository) StatusRollup(ctx context.Context, tenantID string) ([]order.StatusRollup, error) {
	var w where
	w.tenant("tenant_id", tenantID)
	rows, err := r.db.Query(ctx,
		`SELECT status, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders`+w.clause()+`
		GROUP BY status ORDER BY status`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to roll up orders by status: %w", err)
	}
	defer rows.Close()

	out := []order.StatusRollup{}
	for rows.Next() {
		var row order.StatusRollup
		if err := rows.Scan(&row.Status, &row.Count, &row.Total); err != nil {
			return nil, fmt.Errorf("failed to scan status rollup: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DocumentTypeCounts implements order.ReportRepository.DocumentTypeCounts
func (r *ReportRepository) DocumentTypeCounts(ctx context.Context, tenantID string) (map[order.DocumentType]int, error) {
	var w where
	w.tenant("tenant_id", tenantID)
	rows, err := r.db.Query(ctx,
		`SELECT document_type, COUNT(*) FROM orders`+w.clause()+` GROUP BY document_type`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by document type: %w", err)
	}
	defer rows.Close()

	out := map[order.DocumentType]int{}
	for rows.Next() {
		var doc order.DocumentType
		var n int
		if err := rows.Scan(&doc, &n); err != nil {
			return nil, fmt.Errorf("failed to scan document type count: %w", err)
		}
		out[doc] = n
	}
	return out, rows.Err()
}

// Totals implements order.ReportRepository.Totals
func (r *ReportRepository) Totals(ctx context.Context, tenantID string) (order.AmountTotals, error) {
	var out order.AmountTotals
	var w where
	w.tenant("tenant_id", tenantID)
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0), COALESCE(SUM(paid_amount), 0), COALESCE(SUM(balance), 0)
		FROM orders`+w.clause(), w.args...).Scan(&out.Total, &out.Paid, &out.Balance)
	if err != nil {
		return order.AmountTotals{}, fmt.Errorf("failed to sum order amounts: %w", err)
	}
	return out, nil
}

// CountOverdue implements order.ReportRepository.CountOverdue
func (r *ReportRepository) CountOverdue(ctx context.Context, tenantID string, today time.Time) (int, error) {
	var w where
	w.tenant("tenant_id", tenantID)
	w.add("status = ANY($%d)", openStatuses)
	w.add("delivery_date < $%d", day(today))
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+w.clause(), w.args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count overdue orders: %w", err)
	}
	return n, nil
}

// CountDeliveriesBetween implements order.ReportRepository.CountDeliveriesBetween
func (r *ReportRepository) CountDeliveriesBetween(ctx context.Context, tenantID string, from, to time.Time) (int, error) {
	var w where
	w.tenant("tenant_id", tenantID)
	w.add("status = ANY($%d)", pendingStatuses)
	w.add("delivery_date >= $%d", day(from))
	w.add("delivery_date <= $%d", day(to))
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+w.clause(), w.args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming deliveries: %w", err)
	}
	return n, nil
}

// MonthlyStats implements order.ReportRepository.MonthlyStats
func (r *ReportRepository) MonthlyStats(ctx context.Context, tenantID string, since time.Time) ([]order.MonthlyStat, error) {
	start := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	var w where
	w.tenant("tenant_id", tenantID)
	w.add("order_date >= $%d", start)
	rows, err := r.db.Query(ctx,
		`SELECT date_trunc('month', order_date)::date AS month, COUNT(*), COALESCE(SUM(total), 0)
		FROM orders`+w.clause()+`
		GROUP BY month ORDER BY month`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to compute monthly stats: %w", err)
	}
	defer rows.Close()

	out := []order.MonthlyStat{}
	for rows.Next() {
		var row order.MonthlyStat
		var total decimal.Decimal
		if err := rows.Scan(&row.Month, &row.Count, &total); err != nil {
			return nil, fmt.Errorf("failed to scan monthly stat: %w", err)
		}
		row.Total = total
		out = append(out, row)
	}
	return out, rows.Err()
}

var _ order.ReportRepository = (*ReportRepository)(nil)
