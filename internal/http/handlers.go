package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fracc/internal/amqp"
	applog "fracc/internal/log"
	"fracc/internal/session"
)

const (
	msgExportsDisabled = "Las exportaciones están deshabilitadas."
	msgPeriodInvalid   = "Selecciona un periodo válido."
	msgReportFailed    = "No se pudo solicitar el reporte. Intenta de nuevo."
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).String(),
	})
}

// handleReady checks the templates, the remote API and the session store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := make(map[string]string)
	check := func(name string, err error) {
		if err != nil {
			checks[name] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			code = http.StatusServiceUnavailable
			return
		}
		checks[name] = "ok"
	}

	if s.templates == nil {
		check("templates", fmt.Errorf("templates not loaded"))
	} else {
		check("templates", nil)
	}
	check("api", s.auth.Ping(ctx))
	check("sessions", s.sessions.Store().Ping(ctx))
	if s.reports == nil {
		checks["reports"] = "disabled"
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// handleRequestReport queues the export of one month of payments. The worker
// writes the spreadsheet; the console only confirms the request was accepted.
func (s *Server) handleRequestReport(w http.ResponseWriter, r *http.Request) {
	if s.reports == nil {
		ServiceUnavailableError(msgExportsDisabled).Write(w)
		return
	}
	if resp := ParseFormOrFail(w, r); resp != nil {
		resp.Write(w)
		return
	}
	ctx := r.Context()
	month := ParseMonthParams(r.PostForm, s.now().In(s.loader.Location()))
	if !month.Valid() {
		UnprocessableEntityError(msgPeriodInvalid).Write(w)
		return
	}

	sess, _ := session.FromContext(ctx)
	msg := amqp.NewReportRequest(month, sess)
	if err := s.reports.PublishReportRequest(ctx, msg); err != nil {
		s.events.LogError(ctx, "Failed to queue report", err, applog.ComponentAMQP, applog.OpExport,
			applog.NewFields().WithReport(msg.Year, msg.Month).WithUser(sess.UserID, sess.PersonID, sess.Roles))
		ErrorResponse(http.StatusBadGateway, msgReportFailed).
			TriggerErrorNotification(msgReportFailed).
			Write(w)
		return
	}
	s.metrics.ReportPublished()
	s.events.LogReportRequested(ctx, msg.Year, msg.Month, sess.UserID)

	text := fmt.Sprintf("Reporte de %s en preparación.", month)
	NewHTMXResponse().
		Status(http.StatusAccepted).
		TriggerSuccessNotification(text).
		BodyHTML([]byte(`<div class="alert alert-success" role="status">` + text + `</div>`)).
		Write(w)
}
