package http

import (
	"context"
	"net/http"

	"fracc/internal/api"
	"fracc/internal/core"
	applog "fracc/internal/log"
	"fracc/internal/listview"
	"fracc/internal/screens"
	"fracc/internal/session"
)

// section is one role's area of the console. The admin and board areas
// share handlers and differ only in what a section switches on.
type section struct {
	Base            string
	Title           string
	Roles           []string
	HideAdmin       bool
	MaintenanceOnly bool
	CanEditPersons  bool
	Extra           []navItem
}

var (
	adminSection = section{
		Base:           "/admin",
		Title:          "Administración",
		Roles:          []string{core.RoleAdmin},
		CanEditPersons: true,
		Extra:          []navItem{{Label: "Mesa directiva", Href: "/admin/mesa-directiva"}},
	}
	boardSection = section{
		Base:            "/mesa",
		Title:           "Mesa directiva",
		Roles:           []string{core.RoleBoard, core.RoleAdmin},
		HideAdmin:       true,
		MaintenanceOnly: true,
	}
	residentNav = []navItem{
		{Label: "Inicio", Href: "/residente"},
		{Label: "Reservar área", Href: "/residente/reservar"},
	}
)

func (sec section) nav(active string) []navItem {
	items := []navItem{
		{Label: "Panel", Href: sec.Base},
		{Label: "Residentes", Href: sec.Base + "/residentes"},
		{Label: "Pagos", Href: sec.Base + "/pagos"},
		{Label: "Avisos", Href: sec.Base + "/avisos"},
		{Label: "Reservas", Href: sec.Base + "/reservas"},
	}
	items = append(items, sec.Extra...)
	return markActive(items, active)
}

func markActive(items []navItem, active string) []navItem {
	out := make([]navItem, len(items))
	for i, it := range items {
		it.Active = it.Href == active
		out[i] = it
	}
	return out
}

// Fallback messages when an error carries no text of its own.
const (
	msgDashboardFailed     = "No se pudo cargar el panel."
	msgResidentsFailed     = "No se pudieron cargar los residentes."
	msgPaymentsFailed      = "No se pudieron cargar los pagos."
	msgAnnouncementsFailed = "No se pudieron cargar los avisos."
	msgReservationsFailed  = "No se pudieron cargar las reservas."
	msgBoardFailed         = "No se pudo cargar la mesa directiva."
	msgAreasFailed         = "No se pudieron cargar las áreas."
)

// loadScreen runs one Idle -> Loading -> Ready|Failed cycle and records it.
func loadScreen[T any](s *Server, r *http.Request, screen, fallback string, fetch func(context.Context) (T, error)) *screens.Load[T] {
	ctx := r.Context()
	load := &screens.Load[T]{Status: screens.StatusIdle}
	if err := screens.Run(ctx, load, fallback, fetch); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Screen state error", applog.FieldScreen, screen, applog.FieldError, err)
	}
	s.metrics.ScreenLoaded(screen, string(load.Status))
	if load.Failed() {
		applog.FromContext(ctx).WithComponent(applog.ComponentScreens).ErrorContext(ctx, "Screen load failed",
			applog.FieldScreen, screen,
			applog.FieldError, load.Err,
			applog.FieldErrorKind, api.Kind(load.Err))
	}
	return load
}

// newPage fills the chrome shared by every authenticated page.
func (s *Server) newPage(r *http.Request, title string, nav []navItem, home string) *pageData {
	sess, _ := session.FromContext(r.Context())
	return &pageData{
		Title:   title,
		Path:    r.URL.Path,
		Query:   r.URL.RawQuery,
		Session: sess,
		Nav:     nav,
		Home:    home,
	}
}

func (s *Server) dashboardHandler(sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.newPage(r, sec.Title, sec.nav(sec.Base), sec.Base)
		if sec.Base == adminSection.Base {
			page.Screen = loadScreen(s, r, "admin_dashboard", msgDashboardFailed, s.loader.AdminDashboard)
			page.ExportsEnabled = s.reports != nil
			page.DefaultPeriod = s.now().In(s.loader.Location()).Format("2006-01")
			s.render(w, r, http.StatusOK, "admin_dashboard", page)
			return
		}
		page.Screen = loadScreen(s, r, "board_dashboard", msgDashboardFailed, func(ctx context.Context) (screens.BoardDashboardView, error) {
			return s.loader.BoardDashboard(ctx, page.Session)
		})
		s.render(w, r, http.StatusOK, "board_dashboard", page)
	}
}

func (s *Server) residentsHandler(sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.newPage(r, "Residentes", sec.nav(sec.Base+"/residentes"), sec.Base)
		st := listview.StateFromQuery(r.URL.Query())
		page.Screen = loadScreen(s, r, "residents", msgResidentsFailed, func(ctx context.Context) (screens.List[screens.ResidentRow], error) {
			return s.loader.Residents(ctx, st, sec.HideAdmin)
		})
		page.CanEdit = sec.CanEditPersons
		page.Form = formState{Action: sec.Base + "/residentes"}
		s.render(w, r, http.StatusOK, "residents", page)
	}
}

func (s *Server) paymentsHandler(sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := "Pagos"
		if sec.MaintenanceOnly {
			title = "Pagos de mantenimiento"
		}
		page := s.newPage(r, title, sec.nav(sec.Base+"/pagos"), sec.Base)
		st := listview.StateFromQuery(r.URL.Query(), screens.FacetStatus, screens.FacetOnlyPending)
		page.Screen = loadScreen(s, r, "payments", msgPaymentsFailed, func(ctx context.Context) (screens.List[screens.PaymentRow], error) {
			return s.loader.Payments(ctx, st, sec.MaintenanceOnly)
		})
		s.render(w, r, http.StatusOK, "payments", page)
	}
}

func (s *Server) announcementsHandler(sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.newPage(r, "Avisos", sec.nav(sec.Base+"/avisos"), sec.Base)
		st := listview.StateFromQuery(r.URL.Query(), screens.FacetAudience)
		page.Screen = loadScreen(s, r, "announcements", msgAnnouncementsFailed, func(ctx context.Context) (screens.AnnouncementsView, error) {
			return s.loader.Announcements(ctx, st)
		})
		page.Form = formState{Action: sec.Base + "/avisos"}
		s.render(w, r, http.StatusOK, "announcements", page)
	}
}

func (s *Server) reservationsHandler(sec section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.newPage(r, "Reservas", sec.nav(sec.Base+"/reservas"), sec.Base)
		st := listview.StateFromQuery(r.URL.Query(), screens.FacetArea, screens.FacetResident, screens.FacetStatus)
		page.Screen = loadScreen(s, r, "reservations", msgReservationsFailed, func(ctx context.Context) (screens.ReservationsView, error) {
			return s.loader.Reservations(ctx, st)
		})
		page.Form = formState{Action: sec.Base + "/reservas"}
		s.render(w, r, http.StatusOK, "reservations", page)
	}
}

func (s *Server) handleBoardMembers(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r, "Mesa directiva", adminSection.nav("/admin/mesa-directiva"), adminSection.Base)
	st := listview.StateFromQuery(r.URL.Query())
	page.Screen = loadScreen(s, r, "board_members", msgBoardFailed, func(ctx context.Context) (screens.List[screens.BoardMemberRow], error) {
		return s.loader.BoardMembers(ctx, st)
	})
	s.render(w, r, http.StatusOK, "board_members", page)
}

func (s *Server) handleResidentHome(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r, "Inicio", markActive(residentNav, "/residente"), "/residente")
	page.Screen = loadScreen(s, r, "resident_home", msgDashboardFailed, func(ctx context.Context) (screens.ResidentHomeView, error) {
		return s.loader.ResidentHome(ctx, page.Session)
	})
	s.render(w, r, http.StatusOK, "resident_home", page)
}

func (s *Server) handleBookingPage(w http.ResponseWriter, r *http.Request) {
	page := s.newPage(r, "Reservar área", markActive(residentNav, "/residente/reservar"), "/residente")
	page.Screen = loadScreen(s, r, "booking", msgAreasFailed, s.loader.Areas)
	page.Form = formState{Action: "/residente/reservar"}
	s.render(w, r, http.StatusOK, "booking", page)
}
