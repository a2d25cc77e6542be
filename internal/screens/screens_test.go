package screens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fracc/internal/api"
	"fracc/internal/core"
	"fracc/internal/listview"
)

type route struct {
	status int
	body   string
}

func ok(body string) route { return route{status: http.StatusOK, body: body} }

// fakeAPI answers "METHOD /path" keys and records request bodies.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]route
	posted map[string][]byte
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	if len(body) > 0 {
		f.posted[key] = body
	}
	rt, found := f.routes[key]
	f.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(rt.status)
	io.WriteString(w, rt.body)
}

func (f *fakeAPI) body(key string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.posted[key]
}

var march2025 = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func newLoader(t *testing.T, routes map[string]route) (*Loader, *fakeAPI) {
	t.Helper()
	fake := &fakeAPI{routes: routes, posted: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client, err := api.New(srv.URL)
	require.NoError(t, err)
	return NewLoader(client, time.UTC, 10, WithClock(func() time.Time { return march2025 })), fake
}

func personsJSON(n int) string {
	var b strings.Builder
	b.WriteString("[")
	for i := 1; i <= n; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"id_persona":%d,"nombre":"Residente%02d","primer_apellido":"Apellido","correo":"r%d@fracc.com","no_residencia":%d}`, i, i, i, 100+i)
	}
	b.WriteString("]")
	return b.String()
}

func TestLoadStateMachine(t *testing.T) {
	var l Load[[]int]
	assert.Error(t, l.Finish(nil, nil, ""), "finish before begin")

	boom := &api.StatusError{Code: 500, Body: "No hay conexión a la base de datos"}
	require.NoError(t, Run(context.Background(), &l, "Error al cargar", func(context.Context) ([]int, error) {
		return []int{1}, boom
	}))
	assert.True(t, l.Failed())
	assert.Nil(t, l.Data)
	assert.Equal(t, "No hay conexión a la base de datos", l.Message)

	// Retry re-enters Loading from Failed.
	require.NoError(t, Run(context.Background(), &l, "Error al cargar", func(context.Context) ([]int, error) {
		return []int{1, 2}, nil
	}))
	assert.True(t, l.Ready())
	assert.Equal(t, []int{1, 2}, l.Data)
	assert.Equal(t, 2, l.Attempts)
	assert.Empty(t, l.Message)

	assert.ErrorIs(t, l.Begin(), ErrTransition)
}

func TestLoadFallbackMessage(t *testing.T) {
	var l Load[int]
	require.NoError(t, l.Begin())
	require.NoError(t, l.Finish(0, errors.New("weird"), "Error al cargar pagos"))
	assert.Equal(t, "Error al cargar pagos", l.Message)
}

func TestResidentsPagination(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{"GET /personas": ok(personsJSON(23))})

	list, err := loader.Residents(context.Background(), listview.State{Page: 1}, false)
	require.NoError(t, err)
	assert.Equal(t, "Mostrando 1-10 de 23", list.Page.Summary())
	assert.Equal(t, "Residente01 Apellido", list.Page.Items[0].Name)

	list, err = loader.Residents(context.Background(), listview.State{Page: 3}, false)
	require.NoError(t, err)
	assert.Equal(t, "Mostrando 21-23 de 23", list.Page.Summary())
	assert.Len(t, list.Page.Items, 3)

	list, err = loader.Residents(context.Background(), listview.State{Search: "108"}, false)
	require.NoError(t, err)
	require.Len(t, list.Page.Items, 1)
	assert.Equal(t, int64(8), list.Page.Items[0].ID)
}

func TestBoardResidentsHideAdmin(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{"GET /personas": ok(personsJSON(3))})
	list, err := loader.Residents(context.Background(), listview.State{}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)
	for _, r := range list.Page.Items {
		assert.NotEqual(t, int64(core.AdminPersonID), r.ID)
	}
}

const paymentsJSON = `[
	{"no_transaccion":1,"fecha_transaccion":"2025-03-02T10:00:00","id_persona":2,"id_tipo_cuota":1,"total":"100.00","estado":"pagado"},
	{"no_transaccion":2,"fecha_transaccion":"2025-03-05T10:00:00","id_persona":3,"id_tipo_cuota":2,"total":"50.00","estado":"pendiente"},
	{"no_transaccion":3,"fecha_transaccion":"2025-02-20T10:00:00","id_persona":2,"id_tipo_cuota":1,"total":"80.00","estado":"pagado"},
	{"no_transaccion":4,"fecha_transaccion":"2024-12-21T15:00:00Z","id_persona":99,"id_tipo_cuota":7,"total":"abc","estado":"fallido"}
]`

func TestPaymentsJoinAndFacets(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /pagos/historial_todos": ok(paymentsJSON),
		"GET /personas":              ok(personsJSON(3)),
	})
	ctx := context.Background()

	list, err := loader.Payments(ctx, listview.State{}, false)
	require.NoError(t, err)
	require.Equal(t, 4, list.Page.Total)
	last := list.Page.Items[3]
	assert.Equal(t, "Persona #99", last.Resident)
	assert.Equal(t, "$abc MXN", last.Amount)
	assert.Equal(t, core.PaymentOverdue, last.Status)
	assert.Equal(t, "Otro pago", last.Concept)
	assert.NotEmpty(t, list.Facets[FacetStatus])

	list, err = loader.Payments(ctx, listview.State{Filters: map[string]string{FacetStatus: "pagado"}}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)

	list, err = loader.Payments(ctx, listview.State{Filters: map[string]string{FacetOnlyPending: "on"}}, false)
	require.NoError(t, err)
	require.Equal(t, 1, list.Page.Total)
	assert.Equal(t, int64(2), list.Page.Items[0].ID)

	list, err = loader.Payments(ctx, listview.State{Search: "diciembre"}, false)
	require.NoError(t, err)
	require.Equal(t, 1, list.Page.Total)
	assert.Equal(t, "21 de Diciembre, 2024", list.Page.Items[0].DateLabel)
}

func TestPaymentsFailWhenAnyFetchFails(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /pagos/historial_mantenimiento": ok(paymentsJSON),
		"GET /personas":                      {status: http.StatusInternalServerError, body: "sin personas"},
	})
	var l Load[List[PaymentRow]]
	require.NoError(t, Run(context.Background(), &l, "Error al cargar pagos", func(ctx context.Context) (List[PaymentRow], error) {
		return loader.Payments(ctx, listview.State{}, true)
	}))
	assert.True(t, l.Failed())
	assert.Equal(t, "sin personas", l.Message)
	assert.Empty(t, l.Data.Page.Items)
}

func TestReservationsOrderAndFacets(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /reservas/historial": ok(`[
			{"no_reserva":1,"cve_area":1,"area_nombre":"Alberca","id_persona_solicitante":2,"fecha_reserva":"2025-03-01","hora_inicio":"10:00:00","hora_fin":"12:00:00","estado":"aprobada","nombre_persona":" Residente02 Apellido "},
			{"no_reserva":2,"cve_area":2,"area_nombre":"Salón","id_persona_solicitante":3,"fecha_reserva":"2025-03-09","hora_inicio":"18:00:00","hora_fin":"20:00:00","estado":"pendiente"},
			{"no_reserva":3,"cve_area":1,"area_nombre":"Alberca","id_persona_solicitante":3,"fecha_reserva":"2025-03-09","hora_inicio":"09:00:00","hora_fin":"10:00:00","estado":"cancelada"}
		]`),
		"GET /areas":    ok(`[{"cve_area":1,"nombre":"Alberca"},{"cve_area":2,"nombre":"Salón"}]`),
		"GET /personas": ok(personsJSON(3)),
	})
	ctx := context.Background()

	view, err := loader.Reservations(ctx, listview.State{})
	require.NoError(t, err)
	items := view.List.Page.Items
	require.Len(t, items, 3)
	assert.Equal(t, []int64{3, 2, 1}, []int64{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "Residente02 Apellido", items[2].Resident)
	assert.Equal(t, "Residente03 Apellido", items[1].Resident)
	assert.Equal(t, "01/03/2025", items[2].Date)
	assert.Equal(t, "10:00 - 12:00", items[2].Slot)
	assert.Equal(t, "Aprobada", items[2].StatusLabel())
	assert.Len(t, view.Areas, 2)

	view, err = loader.Reservations(ctx, listview.State{Filters: map[string]string{FacetStatus: "confirmada"}})
	require.NoError(t, err)
	require.Len(t, view.List.Page.Items, 1)
	assert.Equal(t, int64(1), view.List.Page.Items[0].ID)

	view, err = loader.Reservations(ctx, listview.State{Filters: map[string]string{FacetArea: "1", FacetResident: "3"}})
	require.NoError(t, err)
	require.Len(t, view.List.Page.Items, 1)
	assert.Equal(t, int64(3), view.List.Page.Items[0].ID)

	view, err = loader.Reservations(ctx, listview.State{Search: "09/03"})
	require.NoError(t, err)
	assert.Len(t, view.List.Page.Items, 2)
}

func TestAnnouncementsNewestFirst(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /avisos": ok(`[
			{"id_aviso":1,"titulo":"Junta","mensaje":"Sábado","a_todos":true,"id_usuario_emisor":1,"creado_en":"2025-01-10T10:00:00"},
			{"id_aviso":2,"titulo":"Fuga","mensaje":"Torre B","a_todos":false,"id_usuario_emisor":1,"creado_en":"2025-03-01T10:00:00","nombre_emisor":"Mesa Uno","destinatarios":[2,3]}
		]`),
		"GET /personas": ok(personsJSON(3)),
	})
	view, err := loader.Announcements(context.Background(), listview.State{})
	require.NoError(t, err)
	items := view.List.Page.Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(2), items[0].ID)
	assert.Equal(t, "Mesa Uno", items[0].Sender)
	assert.Equal(t, "2 destinatarios", items[0].Audience())
	assert.Equal(t, "Administración", items[1].Sender)
	assert.Len(t, view.Recipients, 2, "admin is not a recipient")

	view, err = loader.Announcements(context.Background(), listview.State{Filters: map[string]string{FacetAudience: AudienceBroadcast}})
	require.NoError(t, err)
	require.Len(t, view.List.Page.Items, 1)
	assert.Equal(t, int64(1), view.List.Page.Items[0].ID)
}

func TestAdminDashboard(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /dashboard/admin": ok(`{
			"reservas":[{"no_reserva":5,"cve_area":1,"area_nombre":"Alberca","id_persona_solicitante":2,"fecha_reserva":"2025-12-21","hora_inicio":"10:00:00","hora_fin":"12:00:00","estado":"pendiente"}],
			"pagos":[],
			"avisos_por_mes":[{"anio":2025,"mes":3,"total":4},{"anio":2025,"mes":1,"total":2}]
		}`),
		"GET /personas":              ok(personsJSON(5)),
		"GET /pagos/historial_todos": ok(paymentsJSON),
	})
	view, err := loader.AdminDashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Marzo 2025", view.Month)
	assert.Equal(t, 5, view.ResidentCount)
	assert.Equal(t, "$100.00", view.Income)
	assert.Equal(t, "+25.0% vs mes anterior", view.Trend)
	assert.Equal(t, "trend-up", view.TrendClass)
	assert.Equal(t, "$40.00", view.Expenses)
	assert.Equal(t, "$180.00", view.Balance)
	assert.Equal(t, "Total histórico cobrado", view.BalanceNote)
	require.Len(t, view.Reservations, 1)
	assert.Equal(t, "21 dic · 10:00 - 12:00", view.Reservations[0].When)
	require.Len(t, view.Announcements, 12)
	assert.Equal(t, 4, view.Announcements[11].Total)
	assert.Equal(t, 100, view.Announcements[11].Height)
}

func TestAdminDashboardWithoutBaseline(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /dashboard/admin":       ok(`{"reservas":[],"pagos":[],"avisos_por_mes":[]}`),
		"GET /personas":              ok(`[]`),
		"GET /pagos/historial_todos": ok(`[]`),
	})
	view, err := loader.AdminDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sin datos del mes anterior", view.Trend)
	assert.Equal(t, "Aún no hay pagos registrados", view.BalanceNote)
	assert.Equal(t, "$0.00", view.Income)
}

func TestBoardDashboardSumsEveryStatus(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /dashboard/mesa/9": ok(`{"reservas":[
			{"no_reserva":1,"area_nombre":"Alberca","fecha_reserva":"2025-03-20","hora_inicio":"10:00:00","hora_fin":"11:00:00","estado":"pendiente"},
			{"no_reserva":2,"area_nombre":"Alberca","fecha_reserva":"2025-02-20","hora_inicio":"10:00:00","hora_fin":"11:00:00","estado":"pendiente"}
		],"pagos":[]}`),
		"GET /pagos/historial_mantenimiento": ok(paymentsJSON),
		"GET /avisos":                        ok(`[{"id_aviso":1,"creado_en":"2025-03-03T10:00:00"},{"id_aviso":2,"creado_en":"2024-11-03T10:00:00"}]`),
		"GET /personas":                      ok(personsJSON(3)),
	})
	view, err := loader.BoardDashboard(context.Background(), core.Session{UserID: 4, PersonID: 9})
	require.NoError(t, err)
	assert.Equal(t, "$150.00", view.MaintenanceTotal)
	assert.Equal(t, 2, view.MaintenanceCount)
	assert.Equal(t, 1, view.ReservationsInMonth)
	assert.Equal(t, 1, view.AnnouncementsMonth)
	require.Len(t, view.Announcements, 6)
	assert.Equal(t, 1, view.Announcements[5].Total)
}

func TestResidentHome(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /inicio/residente/7": ok(`{"nombre":"","reservas":[
			{"no_reserva":1,"area_nombre":"Alberca","fecha_reserva":"2025-12-21","hora_inicio":"10:00:00","hora_fin":"12:00:00","estado":"confirmada"}
		],"pagos":[
			{"no_transaccion":8,"fecha_transaccion":"2025-03-01T10:00:00","id_tipo_cuota":1,"total":"750.50","estado":"pendiente"},
			{"no_transaccion":9,"fecha_transaccion":"2025-02-01T10:00:00","id_tipo_cuota":1,"total":"750.00","estado":"Pendiente"}
		]}`),
		"GET /persona/7":        ok(`{"nombre":"Luisa Pérez","correo":"luisa@fracc.com","numero_casa":14}`),
		"GET /avisos/persona/7": ok(`[]`),
	})
	view, err := loader.ResidentHome(context.Background(), core.Session{UserID: 3, PersonID: 7, FullName: "Otra"})
	require.NoError(t, err)
	assert.Equal(t, "Luisa Pérez", view.Name)
	assert.Equal(t, "L", view.Initial)
	assert.Equal(t, "14", view.House)
	assert.Equal(t, 2, view.PendingCount)
	assert.Equal(t, "$1,500.50", view.PendingTotal)
	require.NotNil(t, view.LatestPayment)
	assert.Equal(t, int64(8), view.LatestPayment.ID)
	require.Len(t, view.Reservations, 1)
	assert.Equal(t, "dom 21 dic · 10:00 - 12:00", view.Reservations[0].When)
	assert.Equal(t, "Aprobada", view.Reservations[0].Status)
}

func TestBookArea(t *testing.T) {
	sess := core.Session{UserID: 4, PersonID: 9}
	in := core.ReservationInput{AreaID: 1, RequesterID: 2, Date: "2025-03-20", Start: "10:00", End: "11:00"}

	t.Run("explicit unavailability blocks", func(t *testing.T) {
		loader, fake := newLoader(t, map[string]route{
			"GET /areas/1/disponibilidad": ok(`{"disponible":false}`),
			"POST /reservas":              {status: http.StatusCreated},
		})
		err := loader.BookArea(context.Background(), sess, in)
		var ve *core.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, MsgAreaUnavailable, ve.Message())
		assert.Nil(t, fake.body("POST /reservas"))
	})

	t.Run("failed check is ignored", func(t *testing.T) {
		loader, fake := newLoader(t, map[string]route{
			"GET /areas/1/disponibilidad": {status: http.StatusInternalServerError},
			"POST /reservas":              {status: http.StatusCreated},
		})
		require.NoError(t, loader.BookArea(context.Background(), sess, in))
		var sent core.ReservationInput
		require.NoError(t, json.Unmarshal(fake.body("POST /reservas"), &sent))
		assert.Equal(t, int64(4), sent.RegisteredBy)
		assert.Equal(t, "11:00:00", sent.End)
	})

	t.Run("end before start never reaches the api", func(t *testing.T) {
		loader, fake := newLoader(t, map[string]route{})
		bad := in
		bad.End = "09:00"
		err := loader.BookArea(context.Background(), sess, bad)
		assert.Equal(t, "La hora de fin debe ser mayor que la de inicio.", api.UserMessage(err, ""))
		assert.Nil(t, fake.body("POST /reservas"))
	})
}

func TestSavePersonMapsDuplicates(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"POST /persona":  {status: http.StatusConflict, body: `ERROR: duplicate key value violates unique constraint "persona_correo_key"`},
		"PUT /persona/5": ok(``),
	})
	in := core.PersonInput{GivenName: "Ana", FirstSurname: "García"}

	err := loader.SavePerson(context.Background(), 0, in)
	assert.Equal(t, MsgDuplicatePerson, api.UserMessage(err, ""))

	assert.NoError(t, loader.SavePerson(context.Background(), 5, in))
}

func TestSendAnnouncementSignsWithSession(t *testing.T) {
	loader, fake := newLoader(t, map[string]route{"POST /avisos": {status: http.StatusCreated}})
	err := loader.SendAnnouncement(context.Background(), core.Session{UserID: 4},
		core.AnnouncementInput{Title: "Junta", Message: "Sábado", Recipients: []int64{2}})
	require.NoError(t, err)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(fake.body("POST /avisos"), &sent))
	assert.Equal(t, float64(4), sent["id_usuario_emisor"])
	assert.Equal(t, []any{float64(2)}, sent["destinatarios"])
}

func TestAreasOptions(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{
		"GET /areas": ok(`[{"cve_area":1,"nombre":"Alberca"},{"cve_area":2,"nombre":"Palapa"}]`),
	})
	opts, err := loader.Areas(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Option{{Value: "1", Label: "Alberca"}, {Value: "2", Label: "Palapa"}}, opts)
}

func TestPersonLookup(t *testing.T) {
	loader, _ := newLoader(t, map[string]route{"GET /personas": ok(personsJSON(3))})

	p, err := loader.Person(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Residente02", p.GivenName)

	_, err = loader.Person(context.Background(), 9)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}
