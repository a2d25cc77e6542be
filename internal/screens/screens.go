// Package screens builds the view models of every console screen: it fetches
// the lists a screen needs in parallel, resolves person ids once per load and
// runs them through the listview pipeline.
package screens

import (
	"context"
	"sort"
	"strconv"
	"time"

	"fracc/internal/api"
	"fracc/internal/core"
	"fracc/internal/listview"
)

// Source is the slice of the remote API the screens read and write.
type Source interface {
	ListPersons(ctx context.Context) ([]core.Person, error)
	GetPersonProfile(ctx context.Context, id int64) (api.PersonProfile, error)
	CreatePerson(ctx context.Context, in core.PersonInput) error
	UpdatePerson(ctx context.Context, id int64, in core.PersonInput) error

	ListAnnouncements(ctx context.Context) ([]core.Announcement, error)
	ListAnnouncementsFor(ctx context.Context, personID int64) ([]core.Announcement, error)
	CreateAnnouncement(ctx context.Context, in core.AnnouncementInput) error

	ListPayments(ctx context.Context) ([]core.Payment, error)
	ListMaintenancePayments(ctx context.Context) ([]core.Payment, error)

	ListReservations(ctx context.Context) ([]core.Reservation, error)
	CreateReservation(ctx context.Context, in core.ReservationInput) error
	ListAreas(ctx context.Context) ([]core.Area, error)
	CheckAvailability(ctx context.Context, areaID int64, date, start, end string) (available, known bool, err error)

	ListBoardMembers(ctx context.Context) ([]core.BoardMember, error)
	AdminDashboard(ctx context.Context) (api.AdminDashboard, error)
	BoardDashboard(ctx context.Context, personID int64) (api.BoardDashboard, error)
	ResidentHome(ctx context.Context, personID int64) (api.ResidentHome, error)
}

// Loader builds screen view models from a Source.
type Loader struct {
	src      Source
	loc      *time.Location
	pageSize int
	now      func() time.Time
}

type LoaderOption func(*Loader)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) LoaderOption {
	return func(l *Loader) { l.now = now }
}

func NewLoader(src Source, loc *time.Location, pageSize int, opts ...LoaderOption) *Loader {
	if loc == nil {
		loc = time.Local
	}
	if pageSize < 1 {
		pageSize = listview.DefaultPageSize
	}
	l := &Loader{src: src, loc: loc, pageSize: pageSize, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Location() *time.Location { return l.loc }

// List is a paged, filtered view over a screen's rows.
type List[R any] struct {
	Page  listview.Page[R]
	State listview.State
	// Facets holds the select options of each facet the screen offers.
	Facets map[string][]Option
}

// Browse runs rows through the search, filter and paging pipeline for st.
func Browse[R any](rows []R, schema listview.Schema[R], st listview.State, size int) List[R] {
	e := listview.NewEngine(schema, rows, size)
	e.Restore(st)
	page := e.View()
	return List[R]{Page: page, State: e.State()}
}

// Residents returns every person; the board view hides the administrator account.
func (l *Loader) Residents(ctx context.Context, st listview.State, hideAdmin bool) (List[ResidentRow], error) {
	persons, err := l.src.ListPersons(ctx)
	if err != nil {
		return List[ResidentRow]{}, err
	}
	rows := make([]ResidentRow, 0, len(persons))
	for _, p := range persons {
		if hideAdmin && p.ID == core.AdminPersonID {
			continue
		}
		rows = append(rows, NewResidentRow(p))
	}
	return Browse(rows, ResidentSchema(), st, l.pageSize), nil
}

// Payments joins the payment history with the person directory.
// maintenanceOnly selects the board's maintenance history endpoint.
func (l *Loader) Payments(ctx context.Context, st listview.State, maintenanceOnly bool) (List[PaymentRow], error) {
	var (
		payments []core.Payment
		persons  []core.Person
	)
	list := l.src.ListPayments
	if maintenanceOnly {
		list = l.src.ListMaintenancePayments
	}
	if err := api.FetchAll(ctx,
		api.Into(&payments, list),
		api.Into(&persons, l.src.ListPersons),
	); err != nil {
		return List[PaymentRow]{}, err
	}

	dir := NewDirectory(persons)
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, NewPaymentRow(p, dir, l.loc))
	}
	out := Browse(rows, PaymentSchema(), st, l.pageSize)
	out.Facets = map[string][]Option{FacetStatus: PaymentStatusOptions()}
	return out, nil
}

// AnnouncementsView is the announcements list plus the recipient picker.
type AnnouncementsView struct {
	List       List[AnnouncementRow]
	Recipients []Option
}

func (l *Loader) Announcements(ctx context.Context, st listview.State) (AnnouncementsView, error) {
	var (
		announcements []core.Announcement
		persons       []core.Person
	)
	if err := api.FetchAll(ctx,
		api.Into(&announcements, l.src.ListAnnouncements),
		api.Into(&persons, l.src.ListPersons),
	); err != nil {
		return AnnouncementsView{}, err
	}

	dir := NewDirectory(persons)
	rows := make([]AnnouncementRow, 0, len(announcements))
	for _, a := range announcements {
		rows = append(rows, NewAnnouncementRow(a, dir, l.loc))
	}
	list := Browse(rows, AnnouncementSchema(), st, l.pageSize)
	list.Facets = map[string][]Option{FacetAudience: {
		{Value: listview.AllValue, Label: "Todos"},
		{Value: AudienceBroadcast, Label: "Generales"},
		{Value: AudienceRecipients, Label: "Específicos"},
	}}
	return AnnouncementsView{List: list, Recipients: personOptions(persons, true)}, nil
}

// ReservationsView is the reservation history plus the catalogs of the booking form.
type ReservationsView struct {
	List      List[ReservationRow]
	Areas     []Option
	Residents []Option
}

func (l *Loader) Reservations(ctx context.Context, st listview.State) (ReservationsView, error) {
	var (
		reservations []core.Reservation
		areas        []core.Area
		persons      []core.Person
	)
	if err := api.FetchAll(ctx,
		api.Into(&reservations, l.src.ListReservations),
		api.Into(&areas, l.src.ListAreas),
		api.Into(&persons, l.src.ListPersons),
	); err != nil {
		return ReservationsView{}, err
	}

	dir := NewDirectory(persons)
	rows := make([]ReservationRow, 0, len(reservations))
	for _, r := range reservations {
		rows = append(rows, NewReservationRow(r, dir, l.loc))
	}

	areaOpts := make([]Option, 0, len(areas))
	for _, a := range areas {
		areaOpts = append(areaOpts, Option{Value: strconv.FormatInt(a.ID, 10), Label: a.Name})
	}
	residents := personOptions(persons, false)

	list := Browse(rows, ReservationSchema(), st, l.pageSize)
	list.Facets = map[string][]Option{
		FacetArea:     append([]Option{{Value: listview.AllValue, Label: "Todas las áreas"}}, areaOpts...),
		FacetResident: append([]Option{{Value: listview.AllValue, Label: "Todos los residentes"}}, residents...),
		FacetStatus:   ReservationStatusOptions(),
	}
	return ReservationsView{List: list, Areas: areaOpts, Residents: residents}, nil
}

func (l *Loader) BoardMembers(ctx context.Context, st listview.State) (List[BoardMemberRow], error) {
	members, err := l.src.ListBoardMembers(ctx)
	if err != nil {
		return List[BoardMemberRow]{}, err
	}
	rows := make([]BoardMemberRow, 0, len(members))
	for _, m := range members {
		rows = append(rows, NewBoardMemberRow(m))
	}
	return Browse(rows, BoardMemberSchema(), st, l.pageSize), nil
}

// personOptions lists persons by display name.
func personOptions(persons []core.Person, hideAdmin bool) []Option {
	out := make([]Option, 0, len(persons))
	for _, p := range persons {
		if hideAdmin && p.ID == core.AdminPersonID {
			continue
		}
		out = append(out, Option{Value: strconv.FormatInt(p.ID, 10), Label: p.DisplayName()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
