// Package aggregate derives the dashboard figures from raw payment, reservation
// and announcement lists.
//
// Month membership is decided on the calendar month observed from an explicit
// *time.Location, so the same list gives the same totals regardless of the
// host time zone.
package aggregate

import (
	"time"

	"fracc/internal/core"
	"fracc/internal/format"
)

// ExpenseRatio is the share of monthly income shown as estimated expenses.
const ExpenseRatio = 40

// NoBaselineLabel replaces the percentage when the previous month has no income.
const NoBaselineLabel = "Sin datos del mes anterior"

type Direction string

const (
	DirectionUp         Direction = "up"
	DirectionDown       Direction = "down"
	DirectionFlat       Direction = "flat"
	DirectionNoBaseline Direction = "none"
)

// Delta is the relative change between two monthly totals.
// Percent is meaningful only when HasBaseline is true.
type Delta struct {
	Percent     float64
	HasBaseline bool
}

// Change computes (current-previous)/previous*100; a zero previous gives no baseline.
func Change(current, previous core.Money) Delta {
	if previous.Cents <= 0 {
		return Delta{}
	}
	pct := float64(current.Cents-previous.Cents) / float64(previous.Cents) * 100
	return Delta{Percent: pct, HasBaseline: true}
}

func (d Delta) Direction() Direction {
	switch {
	case !d.HasBaseline:
		return DirectionNoBaseline
	case d.Percent > 0:
		return DirectionUp
	case d.Percent < 0:
		return DirectionDown
	default:
		return DirectionFlat
	}
}

// Label renders "+25.0%" or the no-baseline text.
func (d Delta) Label() string {
	if !d.HasBaseline {
		return NoBaselineLabel
	}
	return format.SignedPercent(d.Percent)
}

// Class is the CSS modifier used by the dashboard cards.
func (d Delta) Class() string {
	switch d.Direction() {
	case DirectionUp:
		return "trend-up"
	case DirectionDown:
		return "trend-down"
	case DirectionFlat:
		return "trend-flat"
	default:
		return "trend-none"
	}
}

// MonthComparison is the current vs previous month income summary.
type MonthComparison struct {
	Current  core.MonthOverview
	Previous core.MonthOverview
	Delta    Delta
}

// Overview totals the payments of one calendar month.
// Only paid payments add to Paid; unreadable amounts add zero.
func Overview(payments []core.Payment, month core.YearMonth, loc *time.Location) core.MonthOverview {
	out := core.MonthOverview{Month: month}
	for _, p := range payments {
		ts, ok := core.ParseTimestamp(p.Timestamp, loc)
		if !ok || core.MonthOf(ts, loc) != month {
			continue
		}
		amount, ok := p.Amount()
		if !ok {
			out.Unparsed++
		}
		switch p.StatusLabel() {
		case core.PaymentPaid:
			out.Paid = out.Paid.Add(amount)
			out.PaidCount++
		case core.PaymentPending:
			out.Pending = out.Pending.Add(amount)
			out.PendingCount++
		case core.PaymentOverdue:
			out.Overdue = out.Overdue.Add(amount)
			out.OverdueCount++
		}
	}
	return out
}

// ByMonth compares the reference month with the one before it.
func ByMonth(payments []core.Payment, reference time.Time, loc *time.Location) MonthComparison {
	cur := core.MonthOf(reference, loc)
	current := Overview(payments, cur, loc)
	previous := Overview(payments, cur.Prev(), loc)
	return MonthComparison{
		Current:  current,
		Previous: previous,
		Delta:    Change(current.Paid, previous.Paid),
	}
}

// PaidTotal sums every paid payment regardless of date.
func PaidTotal(payments []core.Payment) core.Money {
	var total core.Money
	for _, p := range payments {
		if !p.IsPaid() {
			continue
		}
		if amount, ok := p.Amount(); ok {
			total = total.Add(amount)
		}
	}
	return total
}

// Sum adds every readable amount, whatever the status.
func Sum(payments []core.Payment) core.Money {
	var total core.Money
	for _, p := range payments {
		if amount, ok := p.Amount(); ok {
			total = total.Add(amount)
		}
	}
	return total
}

// Pending counts and totals the payments still due.
func Pending(payments []core.Payment) (int, core.Money) {
	var (
		n     int
		total core.Money
	)
	for _, p := range payments {
		if p.StatusLabel() != core.PaymentPending {
			continue
		}
		n++
		if amount, ok := p.Amount(); ok {
			total = total.Add(amount)
		}
	}
	return n, total
}

// ExpenseEstimate is the fixed share of income shown as expenses.
func ExpenseEstimate(income core.Money) core.Money {
	return income.Percent(ExpenseRatio)
}

// InMonth keeps the items whose timestamp falls in month.
func InMonth[T any](items []T, stamp func(T) string, month core.YearMonth, loc *time.Location) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		ts, ok := core.ParseTimestamp(stamp(it), loc)
		if ok && core.MonthOf(ts, loc) == month {
			out = append(out, it)
		}
	}
	return out
}
