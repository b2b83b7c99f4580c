package main

import (
	"github.com/JaimeStill/flipbook-lab/pkg/openapi"
	"github.com/JaimeStill/flipbook-lab/pkg/routes"
)

const apiVersion = "0.1.0"

// generateSpec assembles the OpenAPI document from the mounted route groups.
func generateSpec(serverURL string, components *openapi.Components, groups ...routes.Group) *openapi.Spec {
	spec := &openapi.Spec{
		OpenAPI: "3.1.0",
		Info: &openapi.Info{
			Title:       "Flipbook Lab API",
			Version:     apiVersion,
			Description: "Document upload, conversion, and flipbook viewing service.",
		},
		Servers:    []*openapi.Server{{URL: serverURL}},
		Components: components,
		Paths:      make(map[string]*openapi.PathItem),
	}

	for _, group := range groups {
		processGroup(spec, "", group)
	}

	return spec
}

func processGroup(spec *openapi.Spec, parentPrefix string, group routes.Group) {
	prefix := parentPrefix + group.Prefix

	for _, route := range group.Routes {
		if route.OpenAPI == nil {
			continue
		}

		op := route.OpenAPI
		if len(op.Tags) == 0 {
			op.Tags = group.Tags
		}

		addOperation(spec, prefix+route.Pattern, route.Method, op)
	}

	for _, child := range group.Children {
		processGroup(spec, prefix, child)
	}
}

func addOperation(spec *openapi.Spec, path, method string, op *openapi.Operation) {
	if spec.Paths[path] == nil {
		spec.Paths[path] = &openapi.PathItem{}
	}

	switch method {
	case "GET":
		spec.Paths[path].Get = op
	case "POST":
		spec.Paths[path].Post = op
	case "PUT":
		spec.Paths[path].Put = op
	case "DELETE":
		spec.Paths[path].Delete = op
	}
}
