// Package memory keeps exported reports in process, for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fracc/internal/core"
	ports "fracc/internal/sheets"
)

var _ ports.ReportWriter = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	reports []core.MonthReport
}

func New() *Store {
	return &Store{}
}

// WriteMonthReport stores the report and returns a synthetic reference.
func (s *Store) WriteMonthReport(ctx context.Context, r core.MonthReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !r.Month.Valid() {
		return "", fmt.Errorf("invalid report month %v", r.Month)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.Lines = append([]core.ReportLine(nil), r.Lines...)
	s.reports = append(s.reports, r)
	return fmt.Sprintf("mem:%d", len(s.reports)), nil
}

// Reports returns a copy of everything written so far, oldest first.
func (s *Store) Reports() []core.MonthReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MonthReport(nil), s.reports...)
}

// Latest returns the most recent report written for month.
func (s *Store) Latest(month core.YearMonth) (core.MonthReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.reports) - 1; i >= 0; i-- {
		if s.reports[i].Month == month {
			return s.reports[i], true
		}
	}
	return core.MonthReport{}, false
}
