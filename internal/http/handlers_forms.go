package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"fracc/internal/api"
	"fracc/internal/core"
	applog "fracc/internal/log"
	"fracc/internal/middleware/trace"
	"fracc/internal/screens"
	"fracc/internal/session"
)

const (
	msgSaveFailed    = "No se pudo guardar. Intenta de nuevo."
	msgPersonMissing = "El residente no existe."
)

// formOutcome answers a form post. htmx swaps the returned fragment into the
// form's status area; plain posts are sent back to listPath on success.
type formOutcome struct {
	page     string
	listPath string
	screen   string
}

func (s *Server) formSucceeded(w http.ResponseWriter, r *http.Request, o formOutcome, message string) {
	if !isHTMX(r) {
		http.Redirect(w, r, o.listPath, http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().
		Status(http.StatusOK).
		TriggerFormReset().
		TriggerListRefresh(o.screen).
		TriggerSuccessNotification(message)
	s.renderTemplate(w, r, b, o.page, "form-success", formState{Message: message})
}

// formFailed maps a validation error to 422 with the field list, and any
// other error to 502 with the API's message.
func (s *Server) formFailed(w http.ResponseWriter, r *http.Request, o formOutcome, form formState, op string, err error) {
	ctx := r.Context()
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		form.Errors = ve.Fields
		form.Message = ve.Message()
		applog.FromContext(ctx).InfoContext(ctx, "Form rejected",
			applog.FieldScreen, o.screen,
			applog.FieldOperation, applog.OpValidate,
			applog.FieldError, err)
		s.renderTemplate(w, r, NewHTMXResponse().Status(http.StatusUnprocessableEntity), o.page, "form-errors", form)
		return
	}

	form.Message = api.UserMessage(err, msgSaveFailed)
	s.events.LogError(ctx, "Form submission failed", err, applog.ComponentScreens, op,
		applog.NewFields().WithRequestID(trace.GetRequestID(ctx)))
	b := NewHTMXResponse().Status(http.StatusBadGateway).TriggerErrorNotification(form.Message)
	s.renderTemplate(w, r, b, o.page, "form-errors", form)
}

// handleSavePerson creates a person on /admin/residentes and updates one
// on /admin/residentes/{id}.
func (s *Server) handleSavePerson(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	o := formOutcome{page: "residents", listPath: "/admin/residentes", screen: "residents"}

	var id int64
	if raw := r.PathValue("id"); raw != "" {
		if id = parseID(raw); id == 0 {
			NotFoundError(msgPersonMissing).Write(w)
			return
		}
	}

	form := formState{Values: r.PostForm}
	in := ParsePersonForm(r.PostForm)
	if err := in.Validate(); err != nil {
		s.formFailed(w, r, o, form, applog.OpValidate, err)
		return
	}

	op, msg := applog.OpCreate, screens.MsgPersonCreated
	if id != 0 {
		op, msg = applog.OpUpdate, screens.MsgPersonUpdated
	}
	if err := s.loader.SavePerson(r.Context(), id, in); err != nil {
		s.formFailed(w, r, o, form, op, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Person saved",
		applog.FieldOperation, op,
		applog.FieldPersonID, id)
	s.formSucceeded(w, r, o, msg)
}

// handleEditPerson returns the resident form prefilled for one person.
func (s *Server) handleEditPerson(w http.ResponseWriter, r *http.Request) {
	id := parseID(r.PathValue("id"))
	if id == 0 {
		NotFoundError(msgPersonMissing).Write(w)
		return
	}
	p, err := s.loader.Person(r.Context(), id)
	switch {
	case errors.Is(err, screens.ErrPersonNotFound):
		NotFoundError(msgPersonMissing).Write(w)
		return
	case err != nil:
		msg := api.UserMessage(err, msgResidentsFailed)
		ErrorResponse(http.StatusBadGateway, msg).TriggerErrorNotification(msg).Write(w)
		return
	}

	form := formState{
		Action: "/admin/residentes/" + strconv.FormatInt(id, 10),
		Values: personValues(p),
	}
	page := s.newPage(r, "Editar residente", adminSection.nav("/admin/residentes"), adminSection.Base)
	page.Form = form
	page.CanEdit = true
	s.renderTemplate(w, r, NewHTMXResponse(), "residents", "person-form", page)
}

func personValues(p core.Person) url.Values {
	v := url.Values{}
	v.Set("nombre", p.GivenName)
	v.Set("primer_apellido", p.FirstSurname)
	if p.SecondSurname != nil {
		v.Set("segundo_apellido", *p.SecondSurname)
	}
	v.Set("correo", p.EmailOrEmpty())
	v.Set("telefono", p.PhoneOrEmpty())
	if p.ResidenceUnit != nil {
		v.Set("no_residencia", strconv.FormatInt(*p.ResidenceUnit, 10))
	}
	return v
}

func (s *Server) createAnnouncementHandler(sec section) http.HandlerFunc {
	o := formOutcome{page: "announcements", listPath: sec.Base + "/avisos", screen: "announcements"}
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := ParseFormOrFail(w, r); resp != nil {
			resp.Write(w)
			return
		}
		sess, _ := session.FromContext(r.Context())
		form := formState{Values: r.PostForm}

		in := ParseAnnouncementForm(r.PostForm)
		in.SenderUserID = sess.UserID
		if err := in.Validate(); err != nil {
			s.formFailed(w, r, o, form, applog.OpValidate, err)
			return
		}
		if err := s.loader.SendAnnouncement(r.Context(), sess, in); err != nil {
			s.formFailed(w, r, o, form, applog.OpCreate, err)
			return
		}
		s.formSucceeded(w, r, o, screens.MsgAnnouncementCreated)
	}
}

func (s *Server) createReservationHandler(sec section) http.HandlerFunc {
	o := formOutcome{page: "reservations", listPath: sec.Base + "/reservas", screen: "reservations"}
	return func(w http.ResponseWriter, r *http.Request) {
		if resp := ParseFormOrFail(w, r); resp != nil {
			resp.Write(w)
			return
		}
		sess, _ := session.FromContext(r.Context())
		s.book(w, r, o, sess, ParseReservationForm(r.PostForm))
	}
}

// handleResidentBooking books on behalf of the signed-in resident only.
func (s *Server) handleResidentBooking(w http.ResponseWriter, r *http.Request) {
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	sess, _ := session.FromContext(r.Context())
	in := ParseReservationForm(r.PostForm)
	in.RequesterID = sess.PersonID
	o := formOutcome{page: "booking", listPath: "/residente", screen: "booking"}
	s.book(w, r, o, sess, in)
}

func (s *Server) book(w http.ResponseWriter, r *http.Request, o formOutcome, sess core.Session, in core.ReservationInput) {
	form := formState{Values: r.PostForm}
	if err := s.loader.BookArea(r.Context(), sess, in); err != nil {
		s.formFailed(w, r, o, form, applog.OpCreate, err)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Reservation created",
		applog.FieldUserID, sess.UserID,
		"area_id", in.AreaID,
		"date", in.Date)
	s.formSucceeded(w, r, o, screens.MsgReservationCreated)
}
