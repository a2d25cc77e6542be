package screens

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"fracc/internal/api"
	"fracc/internal/core"
	"fracc/internal/format"
)

// Form outcome messages.
const (
	MsgPersonCreated       = "Residente registrado correctamente."
	MsgPersonUpdated       = "Residente actualizado correctamente."
	MsgAnnouncementCreated = "Aviso enviado correctamente."
	MsgReservationCreated  = "Reserva creada correctamente."
	MsgDuplicatePerson     = "Ya existe un residente con esos datos"
	MsgAreaUnavailable     = "El área no está disponible en ese horario (ya existe una reserva)."
)

// SavePerson creates the person, or updates it when id is not zero.
func (l *Loader) SavePerson(ctx context.Context, id int64, in core.PersonInput) error {
	var err error
	if id == 0 {
		err = l.src.CreatePerson(ctx, in)
	} else {
		err = l.src.UpdatePerson(ctx, id, in)
	}
	var status *api.StatusError
	if errors.As(err, &status) && strings.Contains(strings.ToLower(status.Body), "duplicate key value") {
		return core.FormError(MsgDuplicatePerson)
	}
	return err
}

// SendAnnouncement posts an announcement signed by the session's user.
func (l *Loader) SendAnnouncement(ctx context.Context, sess core.Session, in core.AnnouncementInput) error {
	in.SenderUserID = sess.UserID
	return l.src.CreateAnnouncement(ctx, in)
}

// BookArea validates the booking, asks for availability and creates it.
// Only an explicit "not available" answer blocks the booking; a failed
// availability check is ignored and the API decides.
func (l *Loader) BookArea(ctx context.Context, sess core.Session, in core.ReservationInput) error {
	in.RegisteredBy = sess.UserID
	if in.RegisteredBy == 0 {
		in.RegisteredBy = core.AdminPersonID
	}
	if err := in.Validate(); err != nil {
		return err
	}
	available, known, err := l.src.CheckAvailability(ctx, in.AreaID, in.Date, format.Clock(in.Start), format.Clock(in.End))
	if err == nil && known && !available {
		return core.FormError(MsgAreaUnavailable)
	}
	return l.src.CreateReservation(ctx, in)
}

// Areas lists the bookable common areas for the resident booking form.
func (l *Loader) Areas(ctx context.Context) ([]Option, error) {
	areas, err := l.src.ListAreas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Option, 0, len(areas))
	for _, a := range areas {
		out = append(out, Option{Value: strconv.FormatInt(a.ID, 10), Label: a.Name})
	}
	return out, nil
}

// ErrPersonNotFound is returned by Person for an unknown id.
var ErrPersonNotFound = errors.New("person not found")

// Person looks up one person to prefill the edit form.
func (l *Loader) Person(ctx context.Context, id int64) (core.Person, error) {
	persons, err := l.src.ListPersons(ctx)
	if err != nil {
		return core.Person{}, err
	}
	for _, p := range persons {
		if p.ID == id {
			return p, nil
		}
	}
	return core.Person{}, ErrPersonNotFound
}
