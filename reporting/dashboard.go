/*
Package reporting derives the clinic dashboard from the transaction ledger.

METRICS:
  - Revenue today:          sum of totals dated today
  - Patients today:         number of transactions dated today (not unique patients)
  - Medicine sales (month): medicine-only transactions this month
  - Procedures (month):     procedure-only transactions this month
  - Breakdown:              revenue per category with its share of all revenue

Reporting is read-only. It never touches the catalog or appends to the ledger.
*/
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vetcare/clinic-engine/billing"
)

// CategoryShare is one slice of the revenue chart.
type CategoryShare struct {
	Category billing.Category `json:"category"`
	Count    int              `json:"count"`
	Revenue  billing.Money    `json:"revenue"`
	// Share is the percentage of all recorded revenue, 2 decimal places.
	Share decimal.Decimal `json:"share"`
}

type Dashboard struct {
	Date               string          `json:"date"`
	Month              string          `json:"month"`
	RevenueToday       billing.Money   `json:"revenue_today"`
	PatientsToday      int             `json:"patients_today"`
	MedicineSalesMonth int             `json:"medicine_sales_month"`
	ProceduresMonth    int             `json:"procedures_month"`
	TotalRevenue       billing.Money   `json:"total_revenue"`
	TotalTransactions  int             `json:"total_transactions"`
	Breakdown          []CategoryShare `json:"breakdown"`
}

type Service struct {
	ledger billing.Ledger
	logger *zap.Logger
}

func NewService(ledger billing.Ledger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, logger: logger}
}

// Dashboard computes the metrics as of now, bucketed in now's location.
func (s *Service) Dashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	date := billing.DateKey(now)
	month := billing.MonthKey(now)
	medicine := billing.CategoryMedicine
	procedure := billing.CategoryProcedure

	today, err := s.ledger.Aggregate(ctx, billing.LedgerFilter{Date: &date})
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate today: %w", err)
	}
	medMonth, err := s.ledger.Aggregate(ctx, billing.LedgerFilter{Month: &month, Category: &medicine})
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate medicine month: %w", err)
	}
	procMonth, err := s.ledger.Aggregate(ctx, billing.LedgerFilter{Month: &month, Category: &procedure})
	if err != nil {
		return Dashboard{}, fmt.Errorf("aggregate procedure month: %w", err)
	}
	breakdown, all, err := s.Breakdown(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		Date:               date,
		Month:              month,
		RevenueToday:       today.Sum,
		PatientsToday:      today.Count,
		MedicineSalesMonth: medMonth.Count,
		ProceduresMonth:    procMonth.Count,
		TotalRevenue:       all.Sum,
		TotalTransactions:  all.Count,
		Breakdown:          breakdown,
	}
	s.logger.Debug("dashboard computed",
		zap.String("date", date),
		zap.Int64("revenue_today", int64(d.RevenueToday)),
		zap.Int("patients_today", d.PatientsToday))
	return d, nil
}

// Breakdown returns revenue per category over the whole ledger, plus the
// unfiltered aggregate. Categories with no revenue have a zero share.
func (s *Service) Breakdown(ctx context.Context) ([]CategoryShare, billing.Aggregate, error) {
	all, err := s.ledger.Aggregate(ctx, billing.LedgerFilter{})
	if err != nil {
		return nil, billing.Aggregate{}, fmt.Errorf("aggregate all: %w", err)
	}

	hundred := decimal.NewFromInt(100)
	shares := make([]CategoryShare, 0, len(billing.Categories))
	for _, c := range billing.Categories {
		agg, err := s.ledger.Aggregate(ctx, billing.LedgerFilter{Category: &c})
		if err != nil {
			return nil, billing.Aggregate{}, fmt.Errorf("aggregate %s: %w", c, err)
		}

		share := decimal.Zero
		if all.Sum > 0 {
			share = decimal.NewFromInt(int64(agg.Sum)).
				Mul(hundred).
				Div(decimal.NewFromInt(int64(all.Sum))).
				Round(2)
		}
		shares = append(shares, CategoryShare{
			Category: c,
			Count:    agg.Count,
			Revenue:  agg.Sum,
			Share:    share,
		})
	}
	return shares, all, nil
}
