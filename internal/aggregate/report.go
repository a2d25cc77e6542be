package aggregate

import (
	"sort"
	"time"

	"fracc/internal/core"
)

// Report builds the export of month: every payment dated in it, whatever the
// status, plus the paid comparison with the previous month.
// name resolves payer ids, normally from a directory built once per report.
func Report(payments []core.Payment, name func(int64) string, month core.YearMonth, loc *time.Location, now time.Time) core.MonthReport {
	current := Overview(payments, month, loc)
	previous := Overview(payments, month.Prev(), loc)

	lines := make([]core.ReportLine, 0, current.PaidCount+current.PendingCount+current.OverdueCount)
	for _, p := range payments {
		ts, ok := core.ParseTimestamp(p.Timestamp, loc)
		if !ok || core.MonthOf(ts, loc) != month {
			continue
		}
		amount, valid := p.Amount()
		lines = append(lines, core.ReportLine{
			TransactionID: p.TransactionID,
			PaidAt:        ts,
			Resident:      name(p.PersonID),
			Concept:       p.Concept(),
			Status:        p.StatusLabel(),
			Amount:        amount,
			RawAmount:     p.Total,
			AmountValid:   valid,
		})
	}
	sort.SliceStable(lines, func(i, j int) bool {
		if !lines[i].PaidAt.Equal(lines[j].PaidAt) {
			return lines[i].PaidAt.Before(lines[j].PaidAt)
		}
		return lines[i].TransactionID < lines[j].TransactionID
	})

	return core.MonthReport{
		Month:       month,
		Overview:    current,
		Previous:    previous,
		DeltaLabel:  Change(current.Paid, previous.Paid).Label(),
		Lines:       lines,
		GeneratedAt: now,
	}
}
