package core

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidationError carries one message per offending field, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message is the single line shown above a form.
func (e *ValidationError) Message() string {
	if msg, ok := e.Fields["_"]; ok {
		return msg
	}
	return "Completa todos los campos."
}

// FormError is a ValidationError with only a form-level message.
func FormError(msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{"_": msg}}
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

// ValidateStruct runs the struct tags of v and converts failures into a ValidationError.
func ValidateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range ve {
		out.add(fe.Field(), tagMessage(fe))
	}
	return out
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Campo obligatorio"
	case "email":
		return "Correo no válido"
	case "min":
		return "Debe tener al menos " + fe.Param()
	case "max":
		return "Debe tener como máximo " + fe.Param()
	case "datetime":
		return "Formato no válido"
	case "gt", "gte":
		return "Valor no válido"
	default:
		return fe.Tag()
	}
}

type (
	PersonInput struct {
		GivenName     string  `json:"nombre" validate:"required,max=80"`
		FirstSurname  string  `json:"primer_apellido" validate:"required,max=80"`
		SecondSurname *string `json:"segundo_apellido" validate:"omitempty,max=80"`
		Email         *string `json:"correo" validate:"omitempty,email"`
		Phone         *string `json:"telefono" validate:"omitempty,max=20"`
		ResidenceUnit *int64  `json:"no_residencia" validate:"omitempty,gt=0"`
	}

	AnnouncementInput struct {
		SenderUserID int64   `json:"id_usuario_emisor" validate:"required"`
		Title        string  `json:"titulo" validate:"required,max=150"`
		Message      string  `json:"mensaje" validate:"required"`
		Broadcast    bool    `json:"a_todos"`
		Recipients   []int64 `json:"destinatarios"`
	}

	ReservationInput struct {
		AreaID       int64  `json:"cve_area" validate:"required"`
		RequesterID  int64  `json:"id_persona_solicitante" validate:"required"`
		RegisteredBy int64  `json:"id_usuario_registro" validate:"required"`
		Date         string `json:"fecha_reserva" validate:"required,datetime=2006-01-02"`
		Start        string `json:"hora_inicio" validate:"required"`
		End          string `json:"hora_fin" validate:"required"`
	}

	Credentials struct {
		Email    string `json:"correo" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	GoogleCredentials struct {
		IDToken string `json:"id_token" validate:"required"`
	}
)

// Validate trims the free-text fields, checks the tags and blanks optional values.
func (in *PersonInput) Validate() error {
	in.GivenName = strings.TrimSpace(in.GivenName)
	in.FirstSurname = strings.TrimSpace(in.FirstSurname)
	in.SecondSurname = blankToNil(in.SecondSurname)
	in.Email = blankToNil(in.Email)
	in.Phone = blankToNil(in.Phone)
	if err := ValidateStruct(in); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			_, given := ve.Fields["nombre"]
			_, surname := ve.Fields["primer_apellido"]
			if given || surname {
				ve.add("_", "Nombre y primer apellido son obligatorios")
			} else {
				ve.add("_", "Revisa los datos del residente.")
			}
		}
		return err
	}
	return nil
}

// Validate requires a title and a body, and recipients unless the announcement is broadcast.
// Recipients are dropped for broadcasts so the API receives null.
func (in *AnnouncementInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Broadcast {
		in.Recipients = nil
	}
	err := ValidateStruct(in)
	var ve *ValidationError
	if err != nil && !errors.As(err, &ve) {
		return err
	}
	if ve != nil {
		ve.add("_", "El título y el mensaje son obligatorios.")
	}
	if !in.Broadcast && len(in.Recipients) == 0 {
		if ve == nil {
			ve = &ValidationError{}
		}
		ve.add("destinatarios", ErrNoRecipients.Error())
		if _, ok := ve.Fields["_"]; !ok {
			ve.add("_", "Selecciona al menos un destinatario.")
		}
	}
	if ve != nil {
		return ve
	}
	return nil
}

// Validate requires every field and an end time strictly after the start time.
// On success Start and End are normalized to HH:MM:SS.
func (in *ReservationInput) Validate() error {
	if err := ValidateStruct(in); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.add("_", "Completa todos los campos.")
		}
		return err
	}
	start, err := ParseTimeOfDay(in.Start)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"hora_inicio": "Hora no válida", "_": "Hora no válida."}}
	}
	end, err := ParseTimeOfDay(in.End)
	if err != nil {
		return &ValidationError{Fields: map[string]string{"hora_fin": "Hora no válida", "_": "Hora no válida."}}
	}
	if end <= start {
		return &ValidationError{Fields: map[string]string{
			"hora_fin": ErrEndBeforeStart.Error(),
			"_":        "La hora de fin debe ser mayor que la de inicio.",
		}}
	}
	in.Start = NormalizeTime(in.Start)
	in.End = NormalizeTime(in.End)
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
