// Package routes provides route grouping for HTTP handler registration.
package routes

import (
	"net/http"

	"github.com/JaimeStill/flipbook-lab/pkg/openapi"
)

// Route associates an HTTP method and pattern with its handler. The
// optional OpenAPI operation documents the route in the generated
// specification.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
	OpenAPI *openapi.Operation
}

// Group represents a collection of routes under a common URL prefix.
// Groups can contain child groups for hierarchical route organization.
// Tags default onto the OpenAPI operations of routes that carry none.
type Group struct {
	Prefix   string
	Tags     []string
	Routes   []Route
	Children []Group
}

// Mount registers the group's routes, and those of its children, on the mux.
func (g Group) Mount(mux *http.ServeMux) {
	g.mount(mux, "")
}

func (g Group) mount(mux *http.ServeMux, parent string) {
	prefix := parent + g.Prefix

	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}

	for _, child := range g.Children {
		child.mount(mux, prefix)
	}
}
