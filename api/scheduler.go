/*
scheduler.go - End-of-day report scheduler

PURPOSE:
  At closing time, logs the day's dashboard figures and every medicine
  whose stock is at or below the restock threshold, so the clinic sees
  what to reorder before the next morning.

DESIGN:
  - robfig/cron runs the job on a standard 5-field schedule
  - The job only reads the ledger and catalog
  - RunOnce is exported so the same report can be produced on demand

USAGE:
  s := NewReportScheduler(reportingSvc, catalog, 10, logger)
  if err := s.Start("0 21 * * *", loc); err != nil { ... }
  defer s.Stop()
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vetcare/clinic-engine/billing"
	"github.com/vetcare/clinic-engine/reporting"
)

// DailyReport is what the closing job produces.
type DailyReport struct {
	Dashboard reporting.Dashboard
	LowStock  []billing.MedicineItem
}

// ReportScheduler runs the end-of-day report.
type ReportScheduler struct {
	Reporting         *reporting.Service
	Catalog           *billing.Catalog
	LowStockThreshold int

	now    func() time.Time
	logger *zap.Logger
	cron   *cron.Cron
	mu     sync.Mutex
}

// NewReportScheduler creates a new scheduler.
func NewReportScheduler(svc *reporting.Service, catalog *billing.Catalog, lowStockThreshold int, logger *zap.Logger) *ReportScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportScheduler{
		Reporting:         svc,
		Catalog:           catalog,
		LowStockThreshold: lowStockThreshold,
		now:               time.Now,
		logger:            logger,
	}
}

// Start schedules the report. An empty schedule disables it.
func (rs *ReportScheduler) Start(spec string, loc *time.Location) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if spec == "" {
		rs.logger.Info("report scheduler disabled")
		return nil
	}
	if rs.cron != nil {
		return fmt.Errorf("report scheduler already started")
	}
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(spec, rs.run); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", spec, err)
	}
	rs.now = func() time.Time { return time.Now().In(loc) }
	rs.cron = c
	c.Start()

	rs.logger.Info("report scheduler started", zap.String("schedule", spec), zap.String("timezone", loc.String()))
	return nil
}

// Stop stops the scheduler and waits for a running report to finish.
func (rs *ReportScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.cron == nil {
		return
	}
	<-rs.cron.Stop().Done()
	rs.cron = nil
	rs.logger.Info("report scheduler stopped")
}

func (rs *ReportScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := rs.RunOnce(ctx, rs.now()); err != nil {
		rs.logger.Error("daily report failed", zap.Error(err))
	}
}

// RunOnce builds and logs the report for the day containing now.
func (rs *ReportScheduler) RunOnce(ctx context.Context, now time.Time) (DailyReport, error) {
	d, err := rs.Reporting.Dashboard(ctx, now)
	if err != nil {
		return DailyReport{}, err
	}
	report := DailyReport{
		Dashboard: d,
		LowStock:  rs.Catalog.LowStock(rs.LowStockThreshold),
	}

	rs.logger.Info("daily report",
		zap.String("date", d.Date),
		zap.Int64("revenue_today", int64(d.RevenueToday)),
		zap.Int("patients_today", d.PatientsToday),
		zap.Int("medicine_sales_month", d.MedicineSalesMonth),
		zap.Int("procedures_month", d.ProceduresMonth))
	for _, m := range report.LowStock {
		rs.logger.Warn("low stock",
			zap.String("medicine", m.Name),
			zap.Int("stock", m.Stock),
			zap.Int("threshold", rs.LowStockThreshold))
	}
	return report, nil
}
