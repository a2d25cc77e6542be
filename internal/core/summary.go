package core

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month independently of any time zone.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month t falls in when observed from loc.
func MonthOf(t time.Time, loc *time.Location) YearMonth {
	if loc != nil {
		t = t.In(loc)
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Prev returns the month before ym; January rolls over to December of the previous year.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Next returns the month after ym.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Back walks n months into the past.
func (ym YearMonth) Back(n int) YearMonth {
	for i := 0; i < n; i++ {
		ym = ym.Prev()
	}
	return ym
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

func (ym YearMonth) Valid() bool {
	return ym.Month >= time.January && ym.Month <= time.December
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// MonthOverview is the income summary of one month of payments.
type MonthOverview struct {
	Month        YearMonth
	Paid         Money
	PaidCount    int
	Pending      Money
	PendingCount int
	Overdue      Money
	OverdueCount int
	// Unparsed counts payments whose amount could not be read; they add zero.
	Unparsed int
}
