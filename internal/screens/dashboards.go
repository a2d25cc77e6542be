package screens

import (
	"context"
	"strconv"
	"strings"

	"fracc/internal/aggregate"
	"fracc/internal/api"
	"fracc/internal/core"
	"fracc/internal/format"
)

const (
	adminRecentItems    = 6
	boardRecentItems    = 8
	residentReservas    = 2
	residentAvisos      = 3
	adminSeriesMonths   = 12
	boardSeriesMonths   = 6
	noPaymentsBalance   = "Aún no hay pagos registrados"
	historicBalanceNote = "Total histórico cobrado"
	expensesNote        = "Estimado 40% de los ingresos del mes"
)

// ReservationCard is a reservation summarized for a dashboard list.
type ReservationCard struct {
	Area     string
	Resident string
	When     string
	Status   string
}

// PaymentCard is a payment summarized for a dashboard list.
type PaymentCard struct {
	ID       int64
	Resident string
	Concept  string
	Date     string
	Amount   string
	Status   core.PaymentStatus
}

type AdminDashboardView struct {
	Month         string
	ResidentCount int
	Comparison    aggregate.MonthComparison
	Income        string
	Trend         string
	TrendClass    string
	Expenses      string
	ExpensesNote  string
	Balance       string
	BalanceNote   string
	Reservations  []ReservationCard
	Payments      []PaymentCard
	Announcements []aggregate.Bar
}

// AdminDashboard loads the dashboard summary, the directory and the full
// payment history together; income figures come from the history.
func (l *Loader) AdminDashboard(ctx context.Context) (AdminDashboardView, error) {
	var (
		dash     api.AdminDashboard
		persons  []core.Person
		payments []core.Payment
	)
	if err := api.FetchAll(ctx,
		api.Into(&dash, l.src.AdminDashboard),
		api.Into(&persons, l.src.ListPersons),
		api.Into(&payments, l.src.ListPayments),
	); err != nil {
		return AdminDashboardView{}, err
	}

	now := l.now().In(l.loc)
	month := core.MonthOf(now, l.loc)
	cmp := aggregate.ByMonth(payments, now, l.loc)
	balance := aggregate.PaidTotal(payments)
	dir := NewDirectory(persons)

	view := AdminDashboardView{
		Month:         format.MonthLabel(month),
		ResidentCount: len(persons),
		Comparison:    cmp,
		Income:        format.Pesos(cmp.Current.Paid),
		Trend:         trendLabel(cmp.Delta),
		TrendClass:    cmp.Delta.Class(),
		Expenses:      format.Pesos(aggregate.ExpenseEstimate(cmp.Current.Paid)),
		ExpensesNote:  expensesNote,
		Balance:       format.Pesos(balance),
		BalanceNote:   noPaymentsBalance,
		Reservations:  l.reservationCards(dash.Reservations, dir, adminRecentItems),
		Payments:      l.paymentCards(dash.Payments, dir, adminRecentItems),
		Announcements: aggregate.Series(dash.AnnouncementsPerMonth, month, adminSeriesMonths),
	}
	if balance.Cents > 0 {
		view.BalanceNote = historicBalanceNote
	}
	return view, nil
}

type BoardDashboardView struct {
	Month               string
	MaintenanceTotal    string
	MaintenanceCount    int
	ReservationsInMonth int
	AnnouncementsMonth  int
	Reservations        []ReservationCard
	Payments            []PaymentCard
	Announcements       []aggregate.Bar
}

// BoardDashboard sums this month's maintenance payments over every status.
func (l *Loader) BoardDashboard(ctx context.Context, sess core.Session) (BoardDashboardView, error) {
	var (
		dash          api.BoardDashboard
		maintenance   []core.Payment
		announcements []core.Announcement
		persons       []core.Person
	)
	if err := api.FetchAll(ctx,
		api.Into(&dash, func(ctx context.Context) (api.BoardDashboard, error) {
			return l.src.BoardDashboard(ctx, sess.PersonID)
		}),
		api.Into(&maintenance, l.src.ListMaintenancePayments),
		api.Into(&announcements, l.src.ListAnnouncements),
		api.Into(&persons, l.src.ListPersons),
	); err != nil {
		return BoardDashboardView{}, err
	}

	month := core.MonthOf(l.now(), l.loc)
	paymentStamp := func(p core.Payment) string { return p.Timestamp }
	announcementStamp := func(a core.Announcement) string { return a.CreatedAt }

	monthPayments := aggregate.InMonth(maintenance, paymentStamp, month, l.loc)
	monthReservations := aggregate.InMonth(dash.Reservations, func(r core.Reservation) string { return r.Date }, month, l.loc)
	monthAnnouncements := aggregate.InMonth(announcements, announcementStamp, month, l.loc)
	dir := NewDirectory(persons)
	perMonth := aggregate.CountByMonth(announcements, announcementStamp, l.loc)

	return BoardDashboardView{
		Month:               format.MonthLabel(month),
		MaintenanceTotal:    format.Pesos(aggregate.Sum(monthPayments)),
		MaintenanceCount:    len(monthPayments),
		ReservationsInMonth: len(monthReservations),
		AnnouncementsMonth:  len(monthAnnouncements),
		Reservations:        l.reservationCards(dash.Reservations, dir, boardRecentItems),
		Payments:            l.paymentCards(maintenance, dir, boardRecentItems),
		Announcements:       aggregate.Series(perMonth, month, boardSeriesMonths),
	}, nil
}

type ResidentHomeView struct {
	Name          string
	Initial       string
	Email         string
	House         string
	PendingCount  int
	PendingTotal  string
	LatestPayment *PaymentCard
	Reservations  []ReservationCard
	Announcements []AnnouncementRow
}

func (l *Loader) ResidentHome(ctx context.Context, sess core.Session) (ResidentHomeView, error) {
	var (
		home          api.ResidentHome
		profile       api.PersonProfile
		announcements []core.Announcement
	)
	if err := api.FetchAll(ctx,
		api.Into(&home, func(ctx context.Context) (api.ResidentHome, error) {
			return l.src.ResidentHome(ctx, sess.PersonID)
		}),
		api.Into(&profile, func(ctx context.Context) (api.PersonProfile, error) {
			return l.src.GetPersonProfile(ctx, sess.PersonID)
		}),
		api.Into(&announcements, func(ctx context.Context) ([]core.Announcement, error) {
			return l.src.ListAnnouncementsFor(ctx, sess.PersonID)
		}),
	); err != nil {
		return ResidentHomeView{}, err
	}

	name := firstNonEmpty(home.Name, profile.Name, sess.FullName, "Residente")
	n, total := aggregate.Pending(home.Payments)
	view := ResidentHomeView{
		Name:         name,
		Initial:      core.Session{FullName: name}.Initial(),
		Email:        firstNonEmpty(deref(profile.Email), sess.Email),
		PendingCount: n,
		PendingTotal: format.Pesos(total),
		Reservations: make([]ReservationCard, 0, residentReservas),
	}
	if profile.HouseNumber != nil {
		view.House = strconv.FormatInt(*profile.HouseNumber, 10)
	}
	if len(home.Payments) > 0 {
		card := l.paymentCard(home.Payments[0], name)
		view.LatestPayment = &card
	}
	for i, r := range home.Reservations {
		if i == residentReservas {
			break
		}
		view.Reservations = append(view.Reservations, ReservationCard{
			Area:   r.AreaName,
			When:   format.ReservationSlot(r.Date, r.Start, r.End, l.loc),
			Status: r.StatusLabel().Label(),
		})
	}
	for i, a := range announcements {
		if i == residentAvisos {
			break
		}
		view.Announcements = append(view.Announcements, NewAnnouncementRow(a, nil, l.loc))
	}
	return view, nil
}

func (l *Loader) reservationCards(rs []core.Reservation, dir Directory, n int) []ReservationCard {
	out := make([]ReservationCard, 0, min(n, len(rs)))
	for _, r := range rs {
		if len(out) == n {
			break
		}
		row := NewReservationRow(r, dir, l.loc)
		out = append(out, ReservationCard{
			Area:     row.Area,
			Resident: row.Resident,
			When:     format.ReservationLine(r.Date, r.Start, r.End, l.loc),
			Status:   row.StatusLabel(),
		})
	}
	return out
}

func (l *Loader) paymentCards(ps []core.Payment, dir Directory, n int) []PaymentCard {
	out := make([]PaymentCard, 0, min(n, len(ps)))
	for _, p := range ps {
		if len(out) == n {
			break
		}
		out = append(out, l.paymentCard(p, dir.Name(p.PersonID)))
	}
	return out
}

func (l *Loader) paymentCard(p core.Payment, resident string) PaymentCard {
	return PaymentCard{
		ID:       p.TransactionID,
		Resident: resident,
		Concept:  p.Concept(),
		Date:     format.DateLabel(p.Timestamp, l.loc),
		Amount:   format.Amount(p.Total),
		Status:   p.StatusLabel(),
	}
}

func trendLabel(d aggregate.Delta) string {
	if !d.HasBaseline {
		return d.Label()
	}
	return d.Label() + " vs mes anterior"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
