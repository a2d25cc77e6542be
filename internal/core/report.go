package core

import "time"

// ReportLine is one payment row of a monthly report.
type ReportLine struct {
	TransactionID int64
	PaidAt        time.Time
	Resident      string
	Concept       string
	Status        PaymentStatus
	Amount        Money
	// RawAmount is kept for rows whose amount could not be parsed.
	RawAmount   string
	AmountValid bool
}

// MonthReport is the export of one month of payments.
type MonthReport struct {
	Month       YearMonth
	Overview    MonthOverview
	Previous    MonthOverview
	DeltaLabel  string
	Lines       []ReportLine
	RequestedBy string
	GeneratedAt time.Time
}
