package http

import (
	"errors"
	"net/http"

	"fracc/internal/api"
	"fracc/internal/core"
	applog "fracc/internal/log"
	"fracc/internal/session"
)

const (
	msgLoginFailed   = "No se pudo iniciar sesión. Intenta de nuevo."
	msgLoginInvalid  = "Correo o contraseña incorrectos."
	msgGoogleInvalid = "No se pudo verificar la cuenta de Google."
	msgSessionFailed = "No se pudo guardar la sesión."
)

// requireRoles lets the request through when its session holds any of roles,
// or any session at all when roles is empty. Everyone else goes to /login.
func (s *Server) requireRoles(roles ...string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, ok := session.FromContext(r.Context())
			if !ok || (len(roles) > 0 && !sess.HasAnyRole(roles...)) {
				if ok {
					applog.FromContext(r.Context()).WarnContext(r.Context(), "Role check failed",
						applog.FieldUserID, sess.UserID,
						applog.FieldRoles, sess.Roles,
						applog.FieldPath, r.URL.Path)
				}
				redirect(w, r, "/login")
				return
			}
			next(w, r)
		}
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		redirect(w, r, sess.HomePath())
		return
	}
	redirect(w, r, "/login")
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		redirect(w, r, sess.HomePath())
		return
	}
	s.renderLogin(w, r, http.StatusOK, formState{})
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, status int, form formState) {
	s.render(w, r, status, "login", &pageData{
		Title:          "Iniciar sesión",
		Path:           "/login",
		Form:           form,
		GoogleClientID: s.googleClientID,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, formState{Message: "Formato de solicitud no válido"})
		return
	}
	creds := ParseCredentials(p)
	form := formState{Values: map[string][]string{"correo": {creds.Email}}}

	if err := core.ValidateStruct(creds); err != nil {
		var ve *core.ValidationError
		if errors.As(err, &ve) {
			form.Errors = ve.Fields
		}
		form.Message = "Ingresa tu correo y contraseña."
		s.renderLogin(w, r, http.StatusUnprocessableEntity, form)
		return
	}

	sess, err := s.auth.Login(r.Context(), creds)
	if err != nil {
		s.loginFailed(w, r, form, err, "password", msgLoginInvalid)
		return
	}
	s.startSession(w, r, form, sess, "password")
}

func (s *Server) handleLoginGoogle(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.renderLogin(w, r, http.StatusBadRequest, formState{Message: "Formato de solicitud no válido"})
		return
	}
	creds := ParseGoogleCredentials(p)
	if err := core.ValidateStruct(creds); err != nil {
		s.renderLogin(w, r, http.StatusUnprocessableEntity, formState{Message: msgGoogleInvalid})
		return
	}

	sess, err := s.auth.LoginGoogle(r.Context(), creds)
	if err != nil {
		s.loginFailed(w, r, formState{}, err, "google", msgGoogleInvalid)
		return
	}
	s.startSession(w, r, formState{}, sess, "google")
}

// loginFailed shows the rejection text for a 401, the API's own message for
// other 4xx answers and a generic line otherwise.
func (s *Server) loginFailed(w http.ResponseWriter, r *http.Request, form formState, err error, method, rejected string) {
	ctx := r.Context()
	applog.FromContext(ctx).WithComponent(applog.ComponentSession).WarnContext(ctx, "Login failed",
		"login_method", method,
		applog.FieldError, err,
		applog.FieldErrorKind, api.Kind(err))

	var status *api.StatusError
	if errors.As(err, &status) && status.Code >= 400 && status.Code < 500 {
		form.Message = rejected
		if status.Code != http.StatusUnauthorized {
			form.Message = status.Message()
		}
		s.renderLogin(w, r, http.StatusUnauthorized, form)
		return
	}
	form.Message = api.UserMessage(err, msgLoginFailed)
	s.renderLogin(w, r, http.StatusBadGateway, form)
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, form formState, sess core.Session, method string) {
	ctx := r.Context()
	if err := s.sessions.Start(ctx, w, sess); err != nil {
		s.events.LogError(ctx, "Failed to store session", err, applog.ComponentSession, applog.OpLogin, applog.NewFields())
		form.Message = msgSessionFailed
		s.renderLogin(w, r, http.StatusInternalServerError, form)
		return
	}
	s.events.LogLogin(ctx, method, sess.UserID, sess.PersonID, sess.Roles)
	redirect(w, r, sess.HomePath())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	if err := s.sessions.End(ctx, w, r); err != nil {
		s.events.LogError(ctx, "Failed to delete session", err, applog.ComponentSession, applog.OpLogout, applog.NewFields())
	}
	applog.FromContext(ctx).InfoContext(ctx, "User signed out",
		applog.FieldUserID, sess.UserID,
		applog.FieldOperation, applog.OpLogout)
	redirect(w, r, "/login")
}
