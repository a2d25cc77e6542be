package sheets

import (
	"context"

	"fracc/internal/core"
)

// Ports for outbound adapters.
type (
	// ReportWriter stores a monthly report and returns where it landed.
	ReportWriter interface {
		WriteMonthReport(ctx context.Context, r core.MonthReport) (ref string, err error)
	}
)
