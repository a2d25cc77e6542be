// Package format turns raw API values into the Spanish (es-MX) strings shown
// in the console. Every function is pure; time zone handling is explicit
// through the loc argument.
package format

import (
	"fmt"
	"strings"
	"time"

	"fracc/internal/core"
)

// Placeholder is rendered when a date cannot be read.
const Placeholder = "-"

var monthNames = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

var shortMonths = [...]string{
	"Ene", "Feb", "Mar", "Abr", "May", "Jun",
	"Jul", "Ago", "Sep", "Oct", "Nov", "Dic",
}

var shortWeekdays = [...]string{"dom", "lun", "mar", "mié", "jue", "vie", "sáb"}

func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

func ShortMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return shortMonths[m-1]
}

// DateLabel renders a timestamp as "21 de Diciembre, 2025".
func DateLabel(raw string, loc *time.Location) string {
	t, ok := core.ParseTimestamp(raw, loc)
	if !ok {
		return Placeholder
	}
	return fmt.Sprintf("%d de %s, %d", t.Day(), MonthName(t.Month()), t.Year())
}

// ShortDate renders a calendar date as dd/mm/yyyy.
func ShortDate(raw string, loc *time.Location) string {
	t, ok := core.ParseDate(raw, loc)
	if !ok {
		return raw
	}
	return t.Format("02/01/2006")
}

// DateTime renders a timestamp as "21 dic 2025, 09:00".
func DateTime(raw string, loc *time.Location) string {
	t, ok := core.ParseTimestamp(raw, loc)
	if !ok {
		return raw
	}
	return fmt.Sprintf("%d %s %d, %s", t.Day(), strings.ToLower(ShortMonth(t.Month())), t.Year(), t.Format("15:04"))
}

// Clock cuts "HH:MM:SS" down to "HH:MM".
func Clock(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) >= 5 {
		return raw[:5]
	}
	return raw
}

// TimeRange renders "10:00 - 12:00".
func TimeRange(start, end string) string {
	return Clock(start) + " - " + Clock(end)
}

// ReservationLine renders "21 dic · 10:00 - 12:00" for dashboard lists.
func ReservationLine(date, start, end string, loc *time.Location) string {
	t, ok := core.ParseDate(date, loc)
	label := date
	if ok {
		label = fmt.Sprintf("%02d %s", t.Day(), strings.ToLower(ShortMonth(t.Month())))
	}
	return label + " · " + TimeRange(start, end)
}

// ReservationSlot renders "dom 21 dic · 10:00 - 12:00" for the resident home.
func ReservationSlot(date, start, end string, loc *time.Location) string {
	t, ok := core.ParseDate(date, loc)
	label := date
	if ok {
		label = fmt.Sprintf("%s %d %s", shortWeekdays[t.Weekday()], t.Day(), strings.ToLower(ShortMonth(t.Month())))
	}
	return label + " · " + TimeRange(start, end)
}

// MonthLabel renders "Diciembre 2025".
func MonthLabel(ym core.YearMonth) string {
	return fmt.Sprintf("%s %d", MonthName(ym.Month), ym.Year)
}

// ShortMonthLabel renders "Dic 25" for chart axes.
func ShortMonthLabel(ym core.YearMonth) string {
	return fmt.Sprintf("%s %02d", ShortMonth(ym.Month), ym.Year%100)
}
