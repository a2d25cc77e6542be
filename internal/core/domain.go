package core

import (
	"errors"
	"strings"
)

// Payment statuses as normalized for display.
const (
	PaymentPaid    PaymentStatus = "Pagado"
	PaymentPending PaymentStatus = "Pendiente"
	PaymentOverdue PaymentStatus = "Vencido"
	PaymentOther   PaymentStatus = "Otro"
)

// Reservation statuses as normalized for display.
const (
	ReservationPending   ReservationStatus = "pendiente"
	ReservationConfirmed ReservationStatus = "confirmada"
	ReservationCancelled ReservationStatus = "cancelada"
	ReservationRejected  ReservationStatus = "rechazada"
	ReservationOther     ReservationStatus = "otro"
)

// Cuota types known by the remote API.
const (
	CuotaMaintenance   = 1
	CuotaExtraordinary = 2
)

// Roles carried by a session.
const (
	RoleAdmin = "admin"
	RoleBoard = "mesa_directiva"
)

// AdminPersonID is the person record behind the administrator account.
const AdminPersonID = 1

type (
	PaymentStatus     string
	ReservationStatus string

	Person struct {
		ID            int64   `json:"id_persona" validate:"required"`
		GivenName     string  `json:"nombre"`
		FirstSurname  string  `json:"primer_apellido"`
		SecondSurname *string `json:"segundo_apellido"`
		Email         *string `json:"correo"`
		Phone         *string `json:"telefono"`
		ResidenceUnit *int64  `json:"no_residencia"`
	}

	Payment struct {
		TransactionID int64  `json:"no_transaccion" validate:"required"`
		Timestamp     string `json:"fecha_transaccion"`
		PersonID      int64  `json:"id_persona"`
		RegisteredBy  int64  `json:"id_usuario_registro"`
		CuotaType     int    `json:"id_tipo_cuota"`
		PaymentMethod int    `json:"cve_tipo_pago"`
		Total         string `json:"total"`
		Status        string `json:"estado"`
	}

	Announcement struct {
		ID           int64   `json:"id_aviso" validate:"required"`
		Title        string  `json:"titulo"`
		Message      string  `json:"mensaje"`
		Broadcast    bool    `json:"a_todos"`
		SenderUserID int64   `json:"id_usuario_emisor"`
		CreatedAt    string  `json:"creado_en"`
		SenderName   *string `json:"nombre_emisor"`
		Recipients   []int64 `json:"destinatarios,omitempty"`
	}

	Reservation struct {
		ID            int64  `json:"no_reserva" validate:"required"`
		AreaID        int64  `json:"cve_area"`
		AreaName      string `json:"area_nombre"`
		RequesterID   int64  `json:"id_persona_solicitante"`
		Date          string `json:"fecha_reserva"`
		Start         string `json:"hora_inicio"`
		End           string `json:"hora_fin"`
		Status        string `json:"estado"`
		RegisteredBy  int64  `json:"id_usuario_registro"`
		RequesterName string `json:"nombre_persona,omitempty"`
	}

	Area struct {
		ID   int64  `json:"cve_area" validate:"required"`
		Name string `json:"nombre"`
	}

	BoardMember struct {
		PersonID      int64   `json:"id_persona" validate:"required"`
		GivenName     string  `json:"nombre"`
		FirstSurname  string  `json:"primer_apellido"`
		SecondSurname *string `json:"segundo_apellido"`
		Email         *string `json:"correo"`
		Phone         *string `json:"telefono"`
		Role          string  `json:"cargo"`
		ResidenceUnit *int64  `json:"numero_residencia"`
	}

	// MonthlyCount is one bar of a per-month series.
	MonthlyCount struct {
		Year  int `json:"anio"`
		Month int `json:"mes"`
		Total int `json:"total"`
	}

	// Session is the authenticated identity of one console user.
	Session struct {
		UserID   int64    `json:"id_usuario" validate:"required"`
		PersonID int64    `json:"id_persona"`
		Email    string   `json:"correo"`
		FullName string   `json:"nombre_completo"`
		Roles    []string `json:"roles"`
	}
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrInvalidTime    = errors.New("invalid time of day")
	ErrEndBeforeStart = errors.New("end time must be after start time")
	ErrNoRecipients   = errors.New("at least one recipient is required")
)

// DisplayName joins the name parts with single spaces, skipping empty ones.
func (p Person) DisplayName() string {
	return joinName(p.GivenName, p.FirstSurname, p.SecondSurname)
}

func (p Person) EmailOrEmpty() string { return deref(p.Email) }
func (p Person) PhoneOrEmpty() string { return deref(p.Phone) }

func (m BoardMember) DisplayName() string {
	return joinName(m.GivenName, m.FirstSurname, m.SecondSurname)
}

func (m BoardMember) EmailOrEmpty() string { return deref(m.Email) }

// StatusLabel maps the raw payment status onto the four display buckets.
func (p Payment) StatusLabel() PaymentStatus {
	return NormalizePaymentStatus(p.Status)
}

// IsPaid reports whether the payment counts toward income.
func (p Payment) IsPaid() bool {
	return p.StatusLabel() == PaymentPaid
}

// Concept names the cuota the payment settles.
func (p Payment) Concept() string {
	switch p.CuotaType {
	case CuotaMaintenance:
		return "Cuota de Mantenimiento"
	case CuotaExtraordinary:
		return "Cuota Extraordinaria"
	default:
		return "Otro pago"
	}
}

// Amount parses Total. ok is false when the stored string is not a decimal.
func (p Payment) Amount() (Money, bool) {
	cents, err := ParseDecimalToCents(p.Total)
	if err != nil {
		return Money{}, false
	}
	return Money{Cents: cents}, true
}

func NormalizePaymentStatus(raw string) PaymentStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pagado":
		return PaymentPaid
	case "pendiente":
		return PaymentPending
	case "vencido", "fallido":
		return PaymentOverdue
	default:
		return PaymentOther
	}
}

func NormalizeReservationStatus(raw string) ReservationStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pendiente":
		return ReservationPending
	case "confirmada", "aprobada":
		return ReservationConfirmed
	case "cancelada":
		return ReservationCancelled
	case "rechazada":
		return ReservationRejected
	default:
		return ReservationOther
	}
}

// Label is the text shown in the status badge.
func (s ReservationStatus) Label() string {
	switch s {
	case ReservationPending:
		return "Pendiente"
	case ReservationConfirmed:
		return "Aprobada"
	case ReservationCancelled:
		return "Cancelada"
	case ReservationRejected:
		return "Rechazada"
	default:
		return "Otro"
	}
}

func (r Reservation) StatusLabel() ReservationStatus {
	return NormalizeReservationStatus(r.Status)
}

// SenderLabel falls back to a generic sender when the API did not resolve a name.
func (a Announcement) SenderLabel() string {
	if a.SenderName != nil && strings.TrimSpace(*a.SenderName) != "" {
		return *a.SenderName
	}
	return "Administración"
}

// HasRole compares roles case-insensitively.
func (s Session) HasRole(role string) bool {
	for _, r := range s.Roles {
		if strings.EqualFold(strings.TrimSpace(r), role) {
			return true
		}
	}
	return false
}

// HasAnyRole is true when roles is empty or any of them matches.
func (s Session) HasAnyRole(roles ...string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if s.HasRole(role) {
			return true
		}
	}
	return false
}

// HomePath is the landing screen for the session's highest role.
func (s Session) HomePath() string {
	switch {
	case s.HasRole(RoleAdmin):
		return "/admin"
	case s.HasRole(RoleBoard):
		return "/mesa"
	default:
		return "/residente"
	}
}

// Initial is the avatar letter.
func (s Session) Initial() string {
	name := strings.TrimSpace(s.FullName)
	if name == "" {
		return "U"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

func joinName(given, first string, second *string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{given, first, deref(second)} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
