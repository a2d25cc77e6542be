package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"fracc/internal/amqp"
	"fracc/internal/core"
	applog "fracc/internal/log"
	"fracc/internal/middleware/ratelimit"
	"fracc/internal/middleware/security"
	"fracc/internal/middleware/trace"
	"fracc/internal/screens"
	"fracc/internal/session"
	"fracc/internal/telemetry"
	appweb "fracc/web"
)

// Authenticator signs users in against the residential API.
type Authenticator interface {
	Login(ctx context.Context, creds core.Credentials) (core.Session, error)
	LoginGoogle(ctx context.Context, creds core.GoogleCredentials) (core.Session, error)
	Ping(ctx context.Context) error
}

// ReportPublisher queues monthly report exports.
type ReportPublisher interface {
	PublishReportRequest(ctx context.Context, msg *amqp.ReportRequest) error
}

// Deps are the collaborators of the console server.
type Deps struct {
	Loader   *screens.Loader
	Auth     Authenticator
	Sessions *session.Manager
	// Reports is nil when exports are disabled.
	Reports ReportPublisher
	Metrics *telemetry.Metrics
	Logger  *applog.Logger

	RateLimitPerMinute int
	GoogleClientID     string

	// Assets defaults to the embedded web directory.
	Assets fs.FS
	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the console HTTP server.
type Server struct {
	http.Server

	templates *renderer
	loader    *screens.Loader
	auth      Authenticator
	sessions  *session.Manager
	reports   ReportPublisher
	metrics   *telemetry.Metrics
	logger    *applog.Logger
	events    *applog.StructuredLogger

	limiter  *ratelimit.Limiter
	detector *security.Detector

	googleClientID string
	now            func() time.Time
	started        time.Time
	shutdownOnce   sync.Once
}

// NewServer configures routes, templates and the middleware chain.
func NewServer(addr string, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = applog.FromContext(context.Background())
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Assets == nil {
		deps.Assets = appweb.FS
	}
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)

	s := &Server{
		loader:         deps.Loader,
		auth:           deps.Auth,
		sessions:       deps.Sessions,
		reports:        deps.Reports,
		metrics:        deps.Metrics,
		logger:         logger,
		events:         applog.NewStructuredLogger(logger),
		googleClientID: deps.GoogleClientID,
		now:            deps.Now,
		started:        time.Now(),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
			CleanupInterval:   5 * time.Minute,
		}),
		detector: security.NewDetector(deps.Metrics.Suspicious),
	}

	t, err := newRenderer(deps.Assets)
	if err != nil {
		logger.Error("Failed parsing templates", "error", err)
	}
	s.templates = t

	mux := http.NewServeMux()
	s.routes(mux, deps.Assets)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux, assets fs.FS) {
	if sub, err := fs.Sub(assets, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount static FS", "error", err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /login/google", s.handleLoginGoogle)
	mux.HandleFunc("POST /logout", s.handleLogout)

	for _, sec := range []section{adminSection, boardSection} {
		guard := s.requireRoles(sec.Roles...)
		mux.HandleFunc("GET "+sec.Base, guard(s.dashboardHandler(sec)))
		mux.HandleFunc("GET "+sec.Base+"/residentes", guard(s.residentsHandler(sec)))
		mux.HandleFunc("GET "+sec.Base+"/pagos", guard(s.paymentsHandler(sec)))
		mux.HandleFunc("GET "+sec.Base+"/avisos", guard(s.announcementsHandler(sec)))
		mux.HandleFunc("POST "+sec.Base+"/avisos", guard(s.createAnnouncementHandler(sec)))
		mux.HandleFunc("GET "+sec.Base+"/reservas", guard(s.reservationsHandler(sec)))
		mux.HandleFunc("POST "+sec.Base+"/reservas", guard(s.createReservationHandler(sec)))
	}

	admin := s.requireRoles(core.RoleAdmin)
	mux.HandleFunc("POST /admin/residentes", admin(s.handleSavePerson))
	mux.HandleFunc("GET /admin/residentes/{id}/editar", admin(s.handleEditPerson))
	mux.HandleFunc("POST /admin/residentes/{id}", admin(s.handleSavePerson))
	mux.HandleFunc("GET /admin/mesa-directiva", admin(s.handleBoardMembers))
	mux.HandleFunc("POST /admin/reportes", admin(s.handleRequestReport))

	anyone := s.requireRoles()
	mux.HandleFunc("GET /residente", anyone(s.handleResidentHome))
	mux.HandleFunc("GET /residente/reservar", anyone(s.handleBookingPage))
	mux.HandleFunc("POST /residente/reservar", anyone(s.handleResidentBooking))
}

// middleware wraps the mux, outermost first: tracing, request-scoped logger,
// security headers, probe detection, POST rate limiting, session lookup.
func (s *Server) middleware(next http.Handler) http.Handler {
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimited)
	postOnly := func(next http.Handler) http.Handler {
		limited := limit(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	h := s.sessions.Middleware(next)
	h = postOnly(h)
	h = s.detector.Middleware(s.logger.WithComponent(applog.ComponentSecurity).Slog())(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestID)(h)
	h = applog.Middleware(s.logger)(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP, s.logger, s.metrics).Middleware(h)
	return h
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RateLimited()
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo en un minuto.").
		TriggerErrorNotification("Demasiadas solicitudes. Intenta de nuevo en un minuto.").
		Write(w)
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Close stops the limiter without draining, for tests.
func (s *Server) Close() error {
	s.limiter.Stop()
	return s.Server.Close()
}

// render writes a full page, or only its "screen" block when htmx asks for it.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data *pageData) {
	name := "layout"
	if isHTMX(r) && r.Header.Get("HX-Target") == "screen" {
		name = "screen"
	}
	s.renderTemplate(w, r, NewHTMXResponse().Status(status), page, name, data)
}

// renderTemplate executes one named template of page into b and writes it.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, page, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		InternalServerError("Plantillas no disponibles").Write(w)
		return
	}
	body, err := s.templates.execute(page, name, data)
	if err != nil {
		applog.FromContext(r.Context()).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", page+"/"+name)
		InternalServerError("No se pudo mostrar la página").Write(w)
		return
	}
	b.BodyHTML(body).Write(w)
}
