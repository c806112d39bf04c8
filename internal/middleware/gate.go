package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"sitecms/internal/auth"
	"sitecms/internal/telemetry"
)

// PathClass decides what a request path demands before it may proceed.
type PathClass int

const (
	Public PathClass = iota
	Protected
	AuthOnly
	AdminOnly
)

const (
	loginPath     = "/login"
	dashboardPath = "/dashboard"
)

type pathRule struct {
	prefix string
	class  PathClass
}

// AccessGate runs ahead of every page request and decides allow, redirect or
// deny from the session credential and the path class. API and static asset
// paths are excluded from gating entirely.
type AccessGate struct {
	sessions *auth.Manager
	logger   *slog.Logger
	metrics  *telemetry.Metrics

	rules []pathRule
	skip  []string
}

func NewAccessGate(sessions *auth.Manager, logger *slog.Logger, metrics *telemetry.Metrics) *AccessGate {
	return &AccessGate{
		sessions: sessions,
		logger:   logger,
		metrics:  metrics,
		rules: []pathRule{
			{prefix: "/dashboard", class: Protected},
			{prefix: "/admin", class: AdminOnly},
			{prefix: "/login", class: AuthOnly},
			{prefix: "/register", class: AuthOnly},
		},
		skip: []string{
			"/posts",
			"/auth/",
			"/uploads/",
			"/static/",
			"/metrics",
			"/healthz",
			"/favicon.ico",
		},
	}
}

// Classify matches a request path to its class by prefix. Unmatched paths are
// Public.
func (g *AccessGate) Classify(path string) PathClass {
	for _, rule := range g.rules {
		if strings.HasPrefix(path, rule.prefix) {
			return rule.class
		}
	}
	return Public
}

func (g *AccessGate) skipped(path string) bool {
	for _, prefix := range g.skip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (g *AccessGate) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.skipped(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// fail closed: anything unexpected during the decision sends
			// the caller to the login page, never a raw fault
			defer func() {
				if err := recover(); err != nil {
					g.logger.Error("gate panic", "path", r.URL.Path, "err", err)
					g.redirect(w, r, loginPath)
				}
			}()

			class := g.Classify(r.URL.Path)
			if class == Public {
				next.ServeHTTP(w, r)
				return
			}

			// a cookie that does not decode is the same as no cookie
			session := g.sessions.FromRequest(r)

			switch class {
			case AuthOnly:
				if session != nil {
					g.redirect(w, r, dashboardPath)
					return
				}

			case Protected:
				if session == nil {
					g.redirect(w, r, loginPath)
					return
				}

			case AdminOnly:
				if session == nil {
					g.redirect(w, r, loginPath)
					return
				}
				if !session.IsAdmin() {
					g.redirect(w, r, dashboardPath)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *AccessGate) redirect(w http.ResponseWriter, r *http.Request, target string) {
	g.metrics.GateRedirectsTotal.Add(r.Context(), 1)
	g.logger.Debug("gate redirect", "path", r.URL.Path, "target", target)
	http.Redirect(w, r, target, http.StatusSeeOther)
}
