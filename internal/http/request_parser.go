// This file implements utilities for parsing and validating HTTP request data:
// month selectors, the console forms and the login body.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fracc/internal/core"
)

const maxBodyBytes = 64 << 10

// ParseMonthParams reads "periodo" (YYYY-MM, as sent by <input type="month">)
// or separate "year"/"month" fields, defaulting to the month of now.
// The result may be invalid; callers check Valid.
func ParseMonthParams(form url.Values, now time.Time) core.YearMonth {
	ym := core.YearMonth{Year: now.Year(), Month: now.Month()}

	if v := strings.TrimSpace(form.Get("periodo")); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			return core.YearMonth{}
		}
		return core.YearMonth{Year: t.Year(), Month: t.Month()}
	}
	if v := strings.TrimSpace(form.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}
		}
		ym.Year = y
	}
	if v := strings.TrimSpace(form.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}
		}
		ym.Month = time.Month(m)
	}
	return ym
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of the request body once.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseFormOrFail parses the request form and returns an error response on failure.
func ParseFormOrFail(w http.ResponseWriter, r *http.Request) *HTMXResponseBuilder {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return BadRequestError("Formato de solicitud no válido")
	}
	return nil
}

// ParseCredentials reads the password login body.
func ParseCredentials(p *RequestBodyParser) core.Credentials {
	return core.Credentials{
		Email:    strings.ToLower(p.Get("correo")),
		Password: p.Get("password"),
	}
}

// ParseGoogleCredentials accepts the id token as "id_token" or as the
// "credential" field Google Identity Services posts.
func ParseGoogleCredentials(p *RequestBodyParser) core.GoogleCredentials {
	token := p.Get("id_token")
	if token == "" {
		token = p.Get("credential")
	}
	return core.GoogleCredentials{IDToken: token}
}

// ParsePersonForm maps the resident form. Blank optional fields stay nil.
func ParsePersonForm(form url.Values) core.PersonInput {
	in := core.PersonInput{
		GivenName:     sanitizeInput(form.Get("nombre")),
		FirstSurname:  sanitizeInput(form.Get("primer_apellido")),
		SecondSurname: optional(form.Get("segundo_apellido")),
		Email:         optional(strings.ToLower(form.Get("correo"))),
		Phone:         optional(form.Get("telefono")),
	}
	if v := strings.TrimSpace(form.Get("no_residencia")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			in.ResidenceUnit = &n
		} else {
			// rejected by the gt=0 rule
			zero := int64(0)
			in.ResidenceUnit = &zero
		}
	}
	return in
}

// ParseAnnouncementForm maps the announcement form; "destinatarios" repeats
// once per selected person.
func ParseAnnouncementForm(form url.Values) core.AnnouncementInput {
	in := core.AnnouncementInput{
		Title:     sanitizeInput(form.Get("titulo")),
		Message:   sanitizeInput(form.Get("mensaje")),
		Broadcast: isChecked(form.Get("a_todos")),
	}
	for _, v := range form["destinatarios"] {
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id > 0 {
			in.Recipients = append(in.Recipients, id)
		}
	}
	return in
}

// ParseReservationForm maps the booking form. RegisteredBy is filled from
// the session by the loader.
func ParseReservationForm(form url.Values) core.ReservationInput {
	return core.ReservationInput{
		AreaID:      parseID(form.Get("cve_area")),
		RequesterID: parseID(form.Get("id_persona_solicitante")),
		Date:        strings.TrimSpace(form.Get("fecha_reserva")),
		Start:       strings.TrimSpace(form.Get("hora_inicio")),
		End:         strings.TrimSpace(form.Get("hora_fin")),
	}
}

func optional(s string) *string {
	s = sanitizeInput(s)
	if s == "" {
		return nil
	}
	return &s
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "1", "true", "si", "sí":
		return true
	}
	return false
}
