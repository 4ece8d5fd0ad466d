package application

import (
	"context"
	"fmt"
	"time"

	"atlas-core-wave-layer/internal/config"
	"atlas-core-wave-layer/internal/domain"
	"atlas-core-wave-layer/internal/infrastructure/wave"
	"atlas-core-wave-layer/internal/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const summaryPageSize = 100

// ReportService computes read-only aggregates over Wave invoice data.
type ReportService struct {
	exec   ports.GraphQLExecutor
	cfg    *config.Config
	logger zerolog.Logger
}

// NewReportService creates a new report service.
func NewReportService(exec ports.GraphQLExecutor, cfg *config.Config, logger zerolog.Logger) *ReportService {
	return &ReportService{exec: exec, cfg: cfg, logger: logger}
}

// MonthlySummary aggregates every invoice dated within the given month:
// totalInvoiced sums invoice totals, totalPaid sums total minus amountDue per
// invoice, totalOutstanding sums amountDue, and statusCounts counts invoices
// per upstream status. Sums are computed with exact decimals.
func (s *ReportService) MonthlySummary(ctx context.Context, key domain.BusinessKey, year, month int) (domain.MonthlySummary, error) {
	bc, err := s.cfg.Business(key)
	if err != nil {
		return domain.MonthlySummary{}, err
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	summary := domain.MonthlySummary{
		BusinessKey:  key.String(),
		Year:         year,
		Month:        month,
		StatusCounts: make(map[string]int),
	}
	totalInvoiced := decimal.Zero
	totalPaid := decimal.Zero
	totalOutstanding := decimal.Zero

	for page := 1; ; page++ {
		vars := map[string]any{
			"businessId":       bc.BusinessID,
			"page":             page,
			"pageSize":         summaryPageSize,
			"invoiceDateStart": start.Format(dateLayout),
			"invoiceDateEnd":   end.Format(dateLayout),
		}
		var data wave.BusinessInvoicesData
		if err := s.exec.Execute(ctx, wave.QueryInvoicesByDateRange, vars, &data); err != nil {
			return domain.MonthlySummary{}, err
		}
		if data.Business == nil {
			return domain.MonthlySummary{}, ErrBusinessNotFound
		}

		conn := data.Business.Invoices
		for _, edge := range conn.Edges {
			node := edge.Node
			total, err := moneyValue(node.Total)
			if err != nil {
				return domain.MonthlySummary{}, fmt.Errorf("invoice %s: %w", node.ID, err)
			}
			due, err := moneyValue(node.AmountDue)
			if err != nil {
				return domain.MonthlySummary{}, fmt.Errorf("invoice %s: %w", node.ID, err)
			}

			summary.InvoiceCount++
			summary.StatusCounts[node.Status]++
			totalInvoiced = totalInvoiced.Add(total)
			totalPaid = totalPaid.Add(total.Sub(due))
			totalOutstanding = totalOutstanding.Add(due)
		}
		if page >= conn.PageInfo.TotalPages {
			break
		}
	}

	summary.TotalInvoiced = totalInvoiced.InexactFloat64()
	summary.TotalPaid = totalPaid.InexactFloat64()
	summary.TotalOutstanding = totalOutstanding.InexactFloat64()

	s.logger.Info().
		Str("businessKey", key.String()).
		Int("year", year).
		Int("month", month).
		Int("invoices", summary.InvoiceCount).
		Msg("Computed monthly summary")
	return summary, nil
}

func moneyValue(m *wave.MoneyNode) (decimal.Decimal, error) {
	if m == nil || m.Value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(m.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid money value %q: %w", m.Value, err)
	}
	return d, nil
}
