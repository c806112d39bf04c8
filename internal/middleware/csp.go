package middleware

import (
	"net/http"
)

type CSP struct {
	isProd          bool
	cspHeaderString string
}

func NewCSP(isProd bool) *CSP {
	// the backend serves JSON and uploaded images; nothing inline is needed
	cspHeader := "default-src 'self'; " +
		"script-src 'self'; " +
		"style-src 'self'; " +
		"img-src 'self' data:; " +
		"connect-src 'self'; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'; " +
		"form-action 'self'"

	return &CSP{
		isProd:          isProd,
		cspHeaderString: cspHeader,
	}
}

func (c *CSP) Middleware() Middleware {

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Content Security Policy
			w.Header().Set("Content-Security-Policy", c.cspHeaderString)

			// HSTS
			if c.isProd {
				w.Header().Set("Strict-Transport-Security", "max-age=63072000; includeSubDomains; preload")
			}

			// Other security headers
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
