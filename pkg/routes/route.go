// Package routes declares HTTP routes as data so domain handlers can
// describe their surface without touching the mux directly.
package routes

import "net/http"

// Route binds one HTTP method and path pattern to a handler.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
