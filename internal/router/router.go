package router

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sitecms/internal/config"
	"sitecms/internal/handlers"
	"sitecms/internal/middleware"
	"sitecms/internal/telemetry"
)

// RouterDependencies holds everything needed to register routes.
type RouterDependencies struct {
	Cfg          *config.Config
	Logger       *slog.Logger
	PostHandler  *handlers.PostHandler
	AuthHandler  *handlers.AuthHandler
	AssetHandler *handlers.AssetHandler
	Gate         *middleware.AccessGate
	Limiter      *middleware.IPRateLimiter
	AuthLimiter  *middleware.IPRateLimiter
	Tracer       trace.Tracer
	Metrics      *telemetry.Metrics
	CSRF         *middleware.CSRF
	CSP          *middleware.CSP
}

func NewRouter(deps RouterDependencies) http.Handler {
	appMux := http.NewServeMux()

	// static files and uploaded assets
	fs := http.FileServer(http.Dir("static"))
	appMux.Handle("GET /static/", http.StripPrefix("/static/", fs))
	appMux.Handle("GET /uploads/{name}", deps.AssetHandler)

	// posts API; excluded from the page gate, consumed by both surfaces
	appMux.Handle("GET /posts", deps.PostHandler.HandleList())
	appMux.Handle("POST /posts", deps.PostHandler.HandleCreate())
	appMux.Handle("PUT /posts/{id}", deps.PostHandler.HandleUpdate())
	appMux.Handle("DELETE /posts/{id}", deps.PostHandler.HandleDelete())
	appMux.Handle("DELETE /posts/{id}/image", deps.PostHandler.HandleDeleteImage())

	// auth: slow and tightly limited
	authDelay := 500 * time.Millisecond
	authStack := func(h http.Handler) http.Handler {
		h = middleware.SecureDelay(authDelay, deps.Metrics)(h)
		h = deps.AuthLimiter.Middleware(deps.Logger)(h)
		return h
	}

	appMux.Handle("POST /auth/register", authStack(deps.AuthHandler.HandleRegister()))
	appMux.Handle("POST /auth/login", authStack(deps.AuthHandler.HandleLogin()))
	appMux.Handle("POST /auth/logout", authStack(deps.AuthHandler.HandleLogout()))
	appMux.Handle("GET /auth/session", deps.AuthHandler.HandleSession())

	// gated page shells
	appMux.Handle("GET /login", handlers.HandlePage("Login"))
	appMux.Handle("GET /register", handlers.HandlePage("Register"))
	appMux.Handle("GET /dashboard", handlers.HandlePage("Dashboard"))
	appMux.Handle("GET /dashboard/", handlers.HandlePage("Dashboard"))
	appMux.Handle("GET /admin", handlers.HandlePage("Admin"))
	appMux.Handle("GET /admin/", handlers.HandlePage("Admin"))

	middlewareStack := []middleware.Middleware{
		middleware.Recover(deps.Logger),
	}

	if deps.Cfg.Metrics.EnableTelemetry {
		// order matters so don't append earlier
		middlewareStack = append(middlewareStack, middleware.Observability(deps.Tracer, deps.Metrics, deps.Logger))
	}

	middlewareStack = append(middlewareStack,
		deps.CSP.Middleware(),
		deps.Limiter.Middleware(deps.Logger),
		deps.Gate.Middleware(),
		deps.CSRF.Middleware(deps.Logger),
		middleware.Logger(deps.Logger), // inner logger (simple text logs)
	)

	appHandler := middleware.Chain(appMux, middlewareStack...)

	rootMux := http.NewServeMux()

	rootMux.Handle("GET /metrics", handlers.HandleStats())

	// lightweight for docker keepalive
	rootMux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	rootMux.Handle("/", appHandler)

	return rootMux
}
