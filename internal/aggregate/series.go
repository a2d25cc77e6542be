package aggregate

import (
	"time"

	"fracc/internal/core"
	"fracc/internal/format"
)

// Bar is one column of a per-month chart.
type Bar struct {
	Month core.YearMonth
	Label string
	Total int
	// Height is Total relative to the tallest bar, 0-100.
	Height int
}

// Series lays out the n months ending at last, filling missing months with zero.
func Series(counts []core.MonthlyCount, last core.YearMonth, n int) []Bar {
	if n <= 0 {
		return nil
	}
	byMonth := make(map[core.YearMonth]int, len(counts))
	for _, c := range counts {
		ym := core.YearMonth{Year: c.Year, Month: time.Month(c.Month)}
		if ym.Valid() {
			byMonth[ym] += c.Total
		}
	}
	bars := make([]Bar, n)
	ym := last.Back(n - 1)
	tallest := 0
	for i := range bars {
		total := byMonth[ym]
		bars[i] = Bar{Month: ym, Label: format.ShortMonthLabel(ym), Total: total}
		if total > tallest {
			tallest = total
		}
		ym = ym.Next()
	}
	if tallest > 0 {
		for i := range bars {
			bars[i].Height = bars[i].Total * 100 / tallest
		}
	}
	return bars
}

// CountByMonth buckets items by the month of their timestamp.
func CountByMonth[T any](items []T, stamp func(T) string, loc *time.Location) []core.MonthlyCount {
	counts := map[core.YearMonth]int{}
	for _, it := range items {
		ts, ok := core.ParseTimestamp(stamp(it), loc)
		if !ok {
			continue
		}
		counts[core.MonthOf(ts, loc)]++
	}
	out := make([]core.MonthlyCount, 0, len(counts))
	for ym, total := range counts {
		out = append(out, core.MonthlyCount{Year: ym.Year, Month: int(ym.Month), Total: total})
	}
	return out
}
