// Package site handles requests to the server root.
package site

import (
	"context"
	"net/http"
)

// DocsPath is where the root redirects.
const DocsPath = "/api-docs"

// Register attaches the root route to mux. Only the exact path "/" is
// handled; other unknown paths stay 404.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /{$}", HandleRoot)
}

// HandleRoot redirects to the API reference.
func HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, DocsPath, http.StatusFound)
}
