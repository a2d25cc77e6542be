package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"fracc/internal/core"
	applog "fracc/internal/log"
)

type ctxKey struct{}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	cookie string
	secure bool
	logger *slog.Logger
}

func NewManager(store Store, cookieName string, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cookieName == "" {
		cookieName = "fracc_session"
	}
	return &Manager{store: store, cookie: cookieName, secure: secure, logger: logger}
}

func (m *Manager) Store() Store { return m.store }

// Start stores s under a new token and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, s core.Session) error {
	token := NewToken()
	if err := m.store.Put(ctx, token, s); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.logger.InfoContext(ctx, "Session started",
		applog.FieldComponent, applog.ComponentSession,
		applog.FieldUserID, s.UserID,
		applog.FieldRoles, s.Roles)
	return nil
}

// End deletes the session behind the request cookie and clears the cookie.
func (m *Manager) End(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(m.cookie); err == nil && ValidToken(c.Value) {
		if err := m.store.Delete(ctx, c.Value); err != nil {
			return err
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Middleware reads the session once per request and injects it into the context.
// Requests without a valid session pass through anonymously.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(m.cookie)
		if err != nil || !ValidToken(c.Value) {
			next.ServeHTTP(w, r)
			return
		}
		s, err := m.store.Get(r.Context(), c.Value)
		switch {
		case errors.Is(err, ErrNotFound):
			next.ServeHTTP(w, r)
			return
		case err != nil:
			m.logger.ErrorContext(r.Context(), "Failed to load session",
				applog.FieldComponent, applog.ComponentSession,
				applog.FieldError, err)
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), s)))
	})
}

func WithSession(ctx context.Context, s core.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the request's session, if any.
func FromContext(ctx context.Context) (core.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(core.Session)
	return s, ok
}
