package handlers

import (
	"fmt"
	"net/http"
)

// HandlePage serves a minimal shell for the admin pages. The real dashboard
// and auth forms are rendered by the frontend; these exist so the gated paths
// resolve to something during development and testing.
func HandlePage(title string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body><h1>%s</h1></body></html>", title, title)
	})
}
