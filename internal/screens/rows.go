package screens

import (
	"strconv"
	"strings"
	"time"

	"fracc/internal/core"
	"fracc/internal/format"
	"fracc/internal/listview"
)

// Option is one choice of a facet select.
type Option struct {
	Value string
	Label string
}

// Directory resolves person ids to display data. Built once per screen load.
type Directory map[int64]core.Person

func NewDirectory(persons []core.Person) Directory {
	d := make(Directory, len(persons))
	for _, p := range persons {
		d[p.ID] = p
	}
	return d
}

// Name is the person's display name, or "Persona #id" when unknown.
func (d Directory) Name(id int64) string {
	if p, ok := d[id]; ok {
		if name := p.DisplayName(); name != "" {
			return name
		}
	}
	return "Persona #" + strconv.FormatInt(id, 10)
}

func (d Directory) Email(id int64) string {
	return d[id].EmailOrEmpty()
}

// ResidentRow is one line of the residents table.
type ResidentRow struct {
	ID     int64
	Name   string
	Email  string
	Phone  string
	House  string
	Person core.Person
}

func NewResidentRow(p core.Person) ResidentRow {
	house := ""
	if p.ResidenceUnit != nil {
		house = strconv.FormatInt(*p.ResidenceUnit, 10)
	}
	return ResidentRow{
		ID:     p.ID,
		Name:   p.DisplayName(),
		Email:  p.EmailOrEmpty(),
		Phone:  p.PhoneOrEmpty(),
		House:  house,
		Person: p,
	}
}

func ResidentSchema() listview.Schema[ResidentRow] {
	return listview.Schema[ResidentRow]{
		Searchable: func(r ResidentRow) []string {
			return []string{r.Name, r.Email, r.Phone, r.House}
		},
	}
}

// Payment facets.
const (
	FacetStatus      = "estado"
	FacetOnlyPending = "pendientes"
)

// PaymentRow is one line of the payments table.
type PaymentRow struct {
	ID        int64
	PersonID  int64
	Resident  string
	Email     string
	Concept   string
	DateLabel string
	Amount    string
	Status    core.PaymentStatus
}

func NewPaymentRow(p core.Payment, dir Directory, loc *time.Location) PaymentRow {
	return PaymentRow{
		ID:        p.TransactionID,
		PersonID:  p.PersonID,
		Resident:  dir.Name(p.PersonID),
		Email:     dir.Email(p.PersonID),
		Concept:   p.Concept(),
		DateLabel: format.DateLabel(p.Timestamp, loc),
		Amount:    format.Amount(p.Total),
		Status:    p.StatusLabel(),
	}
}

func PaymentSchema() listview.Schema[PaymentRow] {
	return listview.Schema[PaymentRow]{
		Searchable: func(r PaymentRow) []string {
			return []string{r.Resident, r.Email, r.Concept, r.DateLabel}
		},
		Facets: map[string]func(PaymentRow, string) bool{
			FacetStatus: listview.EqualFold(func(r PaymentRow) string { return string(r.Status) }),
			FacetOnlyPending: func(r PaymentRow, v string) bool {
				if !truthy(v) {
					return true
				}
				return r.Status == core.PaymentPending
			},
		},
	}
}

// PaymentStatusOptions lists the status select choices.
func PaymentStatusOptions() []Option {
	return []Option{
		{Value: listview.AllValue, Label: "Todos los estados"},
		{Value: string(core.PaymentPaid), Label: string(core.PaymentPaid)},
		{Value: string(core.PaymentPending), Label: string(core.PaymentPending)},
		{Value: string(core.PaymentOverdue), Label: string(core.PaymentOverdue)},
		{Value: string(core.PaymentOther), Label: string(core.PaymentOther)},
	}
}

// Announcement facets.
const (
	FacetAudience      = "destino"
	AudienceBroadcast  = "general"
	AudienceRecipients = "especificos"
)

// AnnouncementRow is one line of the announcements list.
type AnnouncementRow struct {
	ID         int64
	Title      string
	Message    string
	Sender     string
	DateLabel  string
	Created    time.Time
	Broadcast  bool
	Recipients []string
}

func NewAnnouncementRow(a core.Announcement, dir Directory, loc *time.Location) AnnouncementRow {
	row := AnnouncementRow{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Sender:    a.SenderLabel(),
		DateLabel: format.DateLabel(a.CreatedAt, loc),
		Broadcast: a.Broadcast,
	}
	if ts, ok := core.ParseTimestamp(a.CreatedAt, loc); ok {
		row.Created = ts
	}
	if !a.Broadcast {
		for _, id := range a.Recipients {
			row.Recipients = append(row.Recipients, dir.Name(id))
		}
	}
	return row
}

// Audience summarizes who receives the announcement.
func (r AnnouncementRow) Audience() string {
	switch {
	case r.Broadcast:
		return "Todos los residentes"
	case len(r.Recipients) == 1:
		return r.Recipients[0]
	case len(r.Recipients) > 1:
		return strconv.Itoa(len(r.Recipients)) + " destinatarios"
	default:
		return "Sin destinatarios"
	}
}

func AnnouncementSchema() listview.Schema[AnnouncementRow] {
	return listview.Schema[AnnouncementRow]{
		Searchable: func(r AnnouncementRow) []string {
			return []string{r.Title, r.Message, r.Sender, r.DateLabel}
		},
		Facets: map[string]func(AnnouncementRow, string) bool{
			FacetAudience: func(r AnnouncementRow, v string) bool {
				switch strings.ToLower(v) {
				case AudienceBroadcast:
					return r.Broadcast
				case AudienceRecipients:
					return !r.Broadcast
				default:
					return true
				}
			},
		},
		Less: func(a, b AnnouncementRow) bool { return a.Created.After(b.Created) },
	}
}

// Reservation facets.
const (
	FacetArea     = "area"
	FacetResident = "residente"
)

// ReservationRow is one line of the reservations history.
type ReservationRow struct {
	ID       int64
	AreaID   int64
	Area     string
	PersonID int64
	Resident string
	RawDate  string
	Date     string
	Slot     string
	Start    string
	Status   core.ReservationStatus
}

func NewReservationRow(r core.Reservation, dir Directory, loc *time.Location) ReservationRow {
	resident := strings.TrimSpace(r.RequesterName)
	if resident == "" {
		resident = dir.Name(r.RequesterID)
	}
	return ReservationRow{
		ID:       r.ID,
		AreaID:   r.AreaID,
		Area:     r.AreaName,
		PersonID: r.RequesterID,
		Resident: resident,
		RawDate:  r.Date,
		Date:     format.ShortDate(r.Date, loc),
		Slot:     format.TimeRange(r.Start, r.End),
		Start:    format.Clock(r.Start),
		Status:   r.StatusLabel(),
	}
}

func (r ReservationRow) StatusLabel() string { return r.Status.Label() }

func ReservationSchema() listview.Schema[ReservationRow] {
	return listview.Schema[ReservationRow]{
		Searchable: func(r ReservationRow) []string {
			return []string{r.Area, r.Resident, r.Date}
		},
		Facets: map[string]func(ReservationRow, string) bool{
			FacetArea: func(r ReservationRow, v string) bool {
				return strconv.FormatInt(r.AreaID, 10) == v
			},
			FacetResident: func(r ReservationRow, v string) bool {
				return strconv.FormatInt(r.PersonID, 10) == v
			},
			FacetStatus: func(r ReservationRow, v string) bool {
				return r.Status == core.NormalizeReservationStatus(v)
			},
		},
		// Newest date first; same day by start time.
		Less: func(a, b ReservationRow) bool {
			if a.RawDate != b.RawDate {
				return a.RawDate > b.RawDate
			}
			return a.Start < b.Start
		},
	}
}

func ReservationStatusOptions() []Option {
	return []Option{
		{Value: listview.AllValue, Label: "Todos los estados"},
		{Value: string(core.ReservationPending), Label: core.ReservationPending.Label()},
		{Value: string(core.ReservationConfirmed), Label: core.ReservationConfirmed.Label()},
		{Value: string(core.ReservationCancelled), Label: core.ReservationCancelled.Label()},
		{Value: string(core.ReservationRejected), Label: core.ReservationRejected.Label()},
	}
}

// BoardMemberRow is one line of the board members table.
type BoardMemberRow struct {
	PersonID int64
	Name     string
	Role     string
	Email    string
	Phone    string
	House    string
}

func NewBoardMemberRow(m core.BoardMember) BoardMemberRow {
	house := ""
	if m.ResidenceUnit != nil {
		house = strconv.FormatInt(*m.ResidenceUnit, 10)
	}
	phone := ""
	if m.Phone != nil {
		phone = *m.Phone
	}
	return BoardMemberRow{
		PersonID: m.PersonID,
		Name:     m.DisplayName(),
		Role:     m.Role,
		Email:    m.EmailOrEmpty(),
		Phone:    phone,
		House:    house,
	}
}

func BoardMemberSchema() listview.Schema[BoardMemberRow] {
	return listview.Schema[BoardMemberRow]{
		Searchable: func(r BoardMemberRow) []string {
			return []string{r.Name, r.Role, r.Email}
		},
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "on", "true", "si", "sí":
		return true
	}
	return false
}
