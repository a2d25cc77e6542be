package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fracc/internal/core"
)

// ReportRequest asks the worker to export one month of payments.
// The worker fetches the payments itself; the message carries only the month
// and who asked for it.
type ReportRequest struct {
	ID              string    `json:"id"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	RequestedBy     int64     `json:"requested_by"`
	RequestedByName string    `json:"requested_by_name,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// NewReportRequest stamps a request for month on behalf of the session user.
func NewReportRequest(month core.YearMonth, s core.Session) *ReportRequest {
	return &ReportRequest{
		ID:              uuid.NewString(),
		Year:            month.Year,
		Month:           int(month.Month),
		RequestedBy:     s.UserID,
		RequestedByName: s.FullName,
		Timestamp:       time.Now().UTC(),
	}
}

func (m *ReportRequest) YearMonth() core.YearMonth {
	return core.YearMonth{Year: m.Year, Month: time.Month(m.Month)}
}

// Validate rejects requests no worker could satisfy.
func (m *ReportRequest) Validate() error {
	if m.Year < 2000 || m.Year > 2100 {
		return fmt.Errorf("invalid report year %d", m.Year)
	}
	if !m.YearMonth().Valid() {
		return fmt.Errorf("invalid report month %d", m.Month)
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *ReportRequest) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRequestFromJSON decodes and validates a message body.
func ReportRequestFromJSON(data []byte) (*ReportRequest, error) {
	var msg ReportRequest
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
