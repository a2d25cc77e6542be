// Package worker turns queued report requests into exported monthly reports.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fracc/internal/aggregate"
	"fracc/internal/amqp"
	"fracc/internal/api"
	"fracc/internal/core"
	"fracc/internal/screens"
	"fracc/internal/sheets"
	"fracc/internal/telemetry"
)

// Source is the part of the residential API a report needs.
type Source interface {
	ListPayments(ctx context.Context) ([]core.Payment, error)
	ListPersons(ctx context.Context) ([]core.Person, error)
}

// ReportWorker handles report requests consumed from AMQP.
type ReportWorker struct {
	src     Source
	writer  sheets.ReportWriter
	loc     *time.Location
	metrics *telemetry.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

type Option func(*ReportWorker)

func WithMetrics(m *telemetry.Metrics) Option { return func(w *ReportWorker) { w.metrics = m } }
func WithLogger(l *slog.Logger) Option        { return func(w *ReportWorker) { w.logger = l } }
func WithClock(now func() time.Time) Option   { return func(w *ReportWorker) { w.now = now } }

func NewReportWorker(src Source, writer sheets.ReportWriter, loc *time.Location, opts ...Option) *ReportWorker {
	if loc == nil {
		loc = time.UTC
	}
	w := &ReportWorker{
		src:    src,
		writer: writer,
		loc:    loc,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// HandleReportRequest fetches payments and the person directory in parallel,
// builds the month report and writes it. Any fetch failure aborts the export.
func (w *ReportWorker) HandleReportRequest(ctx context.Context, msg *amqp.ReportRequest) error {
	start := w.now()
	ref, err := w.export(ctx, msg)
	if err != nil {
		w.metrics.ReportProcessed("error")
		w.logger.ErrorContext(ctx, "Report export failed",
			"id", msg.ID,
			"year", msg.Year,
			"month", msg.Month,
			"error_kind", api.Kind(err),
			"error", err)
		return err
	}
	w.metrics.ReportProcessed("ok")
	w.logger.InfoContext(ctx, "Report exported",
		"id", msg.ID,
		"year", msg.Year,
		"month", msg.Month,
		"report_ref", ref,
		"duration", w.now().Sub(start))
	return nil
}

func (w *ReportWorker) export(ctx context.Context, msg *amqp.ReportRequest) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	var (
		payments []core.Payment
		persons  []core.Person
	)
	err := api.FetchAll(ctx,
		api.Into(&payments, w.src.ListPayments),
		api.Into(&persons, w.src.ListPersons),
	)
	if err != nil {
		return "", fmt.Errorf("fetch report data: %w", err)
	}

	dir := screens.NewDirectory(persons)
	report := aggregate.Report(payments, dir.Name, msg.YearMonth(), w.loc, w.now().In(w.loc))
	report.RequestedBy = msg.RequestedByName

	ref, err := w.writer.WriteMonthReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return ref, nil
}
