package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"fracc/internal/core"
)

// AdminDashboard is the payload of GET /dashboard/admin.
type AdminDashboard struct {
	Reservations          []core.Reservation  `json:"reservas"`
	Payments              []core.Payment      `json:"pagos"`
	AnnouncementsPerMonth []core.MonthlyCount `json:"avisos_por_mes"`
}

// BoardDashboard is the payload of GET /dashboard/mesa/{id}.
type BoardDashboard = AdminDashboard

// ResidentHome is the payload of GET /inicio/residente/{id}.
type ResidentHome struct {
	Name         string             `json:"nombre"`
	Reservations []core.Reservation `json:"reservas"`
	Payments     []core.Payment     `json:"pagos"`
}

// PersonProfile is the payload of GET /persona/{id}.
type PersonProfile struct {
	Name        string  `json:"nombre"`
	Email       *string `json:"correo"`
	HouseNumber *int64  `json:"numero_casa"`
}

type availability struct {
	Available *bool `json:"disponible"`
}

func personPath(id int64) string { return "/persona/" + strconv.FormatInt(id, 10) }

// ListPersons returns the resident directory. The slice may be shared with
// the catalog cache and must not be modified.
func (c *Client) ListPersons(ctx context.Context) ([]core.Person, error) {
	if c.persons != nil {
		if v, ok := c.persons.Get(keyPersons); ok {
			return v, nil
		}
	}
	out, err := getList[core.Person](ctx, c, "personas", "/personas")
	if err != nil {
		return nil, err
	}
	if c.persons != nil {
		c.persons.Set(keyPersons, out)
	}
	return out, nil
}

func (c *Client) GetPersonProfile(ctx context.Context, id int64) (PersonProfile, error) {
	return getOne[PersonProfile](ctx, c, "persona", personPath(id), nil)
}

func (c *Client) CreatePerson(ctx context.Context, in core.PersonInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	err := c.do(ctx, "persona_create", http.MethodPost, "/persona", nil, in, nil)
	c.invalidatePersons()
	return err
}

func (c *Client) UpdatePerson(ctx context.Context, id int64, in core.PersonInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	err := c.do(ctx, "persona_update", http.MethodPut, personPath(id), nil, in, nil)
	c.invalidatePersons()
	return err
}

func (c *Client) invalidatePersons() {
	if c.persons != nil {
		c.persons.Delete(keyPersons)
	}
}

func (c *Client) ListAnnouncements(ctx context.Context) ([]core.Announcement, error) {
	return getList[core.Announcement](ctx, c, "avisos", "/avisos")
}

// ListAnnouncementsFor returns the announcements addressed to one person.
func (c *Client) ListAnnouncementsFor(ctx context.Context, personID int64) ([]core.Announcement, error) {
	return getList[core.Announcement](ctx, c, "avisos_persona", "/avisos/persona/"+strconv.FormatInt(personID, 10))
}

func (c *Client) CreateAnnouncement(ctx context.Context, in core.AnnouncementInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.do(ctx, "avisos_create", http.MethodPost, "/avisos", nil, in, nil)
}

// ListPayments returns the full payment history.
func (c *Client) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return getList[core.Payment](ctx, c, "pagos_historial_todos", "/pagos/historial_todos")
}

// ListMaintenancePayments returns only maintenance cuota payments.
func (c *Client) ListMaintenancePayments(ctx context.Context) ([]core.Payment, error) {
	return getList[core.Payment](ctx, c, "pagos_historial_mantenimiento", "/pagos/historial_mantenimiento")
}

func (c *Client) ListReservations(ctx context.Context) ([]core.Reservation, error) {
	return getList[core.Reservation](ctx, c, "reservas_historial", "/reservas/historial")
}

// CreateReservation validates the input and posts it; times are sent as HH:MM:SS.
func (c *Client) CreateReservation(ctx context.Context, in core.ReservationInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.do(ctx, "reservas_create", http.MethodPost, "/reservas", nil, in, nil)
}

// ListAreas returns the common-area catalog; cached like ListPersons.
func (c *Client) ListAreas(ctx context.Context) ([]core.Area, error) {
	if c.areas != nil {
		if v, ok := c.areas.Get(keyAreas); ok {
			return v, nil
		}
	}
	out, err := getList[core.Area](ctx, c, "areas", "/areas")
	if err != nil {
		return nil, err
	}
	if c.areas != nil {
		c.areas.Set(keyAreas, out)
	}
	return out, nil
}

// CheckAvailability asks whether an area is free on date between start and end.
// known is false when the API answered without a disponible flag.
func (c *Client) CheckAvailability(ctx context.Context, areaID int64, date, start, end string) (available, known bool, err error) {
	q := url.Values{}
	q.Set("fecha", date)
	q.Set("inicio", start)
	q.Set("fin", end)
	res, err := getOne[availability](ctx, c, "areas_disponibilidad", "/areas/"+strconv.FormatInt(areaID, 10)+"/disponibilidad", q)
	if err != nil {
		return false, false, err
	}
	if res.Available == nil {
		return false, false, nil
	}
	return *res.Available, true, nil
}

func (c *Client) ListBoardMembers(ctx context.Context) ([]core.BoardMember, error) {
	return getList[core.BoardMember](ctx, c, "mesa_directiva_miembros", "/mesa_directiva/miembros")
}

func (c *Client) AdminDashboard(ctx context.Context) (AdminDashboard, error) {
	return getOne[AdminDashboard](ctx, c, "dashboard_admin", "/dashboard/admin", nil)
}

func (c *Client) BoardDashboard(ctx context.Context, personID int64) (BoardDashboard, error) {
	return getOne[BoardDashboard](ctx, c, "dashboard_mesa", "/dashboard/mesa/"+strconv.FormatInt(personID, 10), nil)
}

func (c *Client) ResidentHome(ctx context.Context, personID int64) (ResidentHome, error) {
	return getOne[ResidentHome](ctx, c, "inicio_residente", "/inicio/residente/"+strconv.FormatInt(personID, 10), nil)
}

// Login exchanges email and password for a session payload.
func (c *Client) Login(ctx context.Context, creds core.Credentials) (core.Session, error) {
	if err := core.ValidateStruct(creds); err != nil {
		return core.Session{}, err
	}
	return c.postSession(ctx, "login", "/login", creds)
}

// LoginGoogle exchanges a Google ID token for a session payload.
func (c *Client) LoginGoogle(ctx context.Context, creds core.GoogleCredentials) (core.Session, error) {
	if err := core.ValidateStruct(creds); err != nil {
		return core.Session{}, err
	}
	return c.postSession(ctx, "login_google", "/login/google", creds)
}

func (c *Client) postSession(ctx context.Context, endpoint, path string, in any) (core.Session, error) {
	var s core.Session
	if err := c.do(ctx, endpoint, http.MethodPost, path, nil, in, &s); err != nil {
		return core.Session{}, err
	}
	if err := core.ValidateStruct(s); err != nil {
		return core.Session{}, &DecodeError{Path: path, Err: err}
	}
	return s, nil
}

// Ping checks that the API answers; used by readiness probes.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, "ping", http.MethodGet, "/areas", nil, nil, nil)
}
