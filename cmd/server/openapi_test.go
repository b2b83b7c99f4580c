package main

import (
	"strings"
	"testing"

	"github.com/JaimeStill/flipbook-lab/pkg/openapi"
	"github.com/JaimeStill/flipbook-lab/pkg/routes"
)

func testGroups() routes.Group {
	return routes.Group{
		Prefix: "/api",
		Children: []routes.Group{
			{
				Prefix: "/flipbooks",
				Tags:   []string{"flipbooks"},
				Routes: []routes.Route{
					{Method: "GET", Pattern: "", OpenAPI: &openapi.Operation{Summary: "List documents"}},
					{Method: "POST", Pattern: "", OpenAPI: &openapi.Operation{Summary: "Upload a document"}},
					{Method: "DELETE", Pattern: "/{id}", OpenAPI: &openapi.Operation{
						Summary: "Delete a document",
						Tags:    []string{"admin"},
					}},
					{Method: "GET", Pattern: "/internal"},
				},
			},
		},
	}
}

func TestGenerateSpec_PathsAndMethods(t *testing.T) {
	spec := generateSpec("http://localhost:8080", nil, testGroups())

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("OpenAPI = %q, want 3.1.0", spec.OpenAPI)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("Servers = %+v, want configured origin", spec.Servers)
	}

	list := spec.Paths["/api/flipbooks"]
	if list == nil || list.Get == nil || list.Post == nil {
		t.Fatalf("collection path = %+v, want GET and POST operations", list)
	}
	if list.Get.Summary != "List documents" {
		t.Errorf("GET summary = %q", list.Get.Summary)
	}

	del := spec.Paths["/api/flipbooks/{id}"]
	if del == nil || del.Delete == nil {
		t.Fatal("item path missing DELETE operation")
	}
}

func TestGenerateSpec_GroupTagsDefault(t *testing.T) {
	spec := generateSpec("http://localhost:8080", nil, testGroups())

	got := spec.Paths["/api/flipbooks"].Get.Tags
	if len(got) != 1 || got[0] != "flipbooks" {
		t.Errorf("Tags = %v, want group tags applied", got)
	}

	kept := spec.Paths["/api/flipbooks/{id}"].Delete.Tags
	if len(kept) != 1 || kept[0] != "admin" {
		t.Errorf("Tags = %v, want route tags preserved", kept)
	}
}

func TestGenerateSpec_UndocumentedRoutesSkipped(t *testing.T) {
	spec := generateSpec("http://localhost:8080", nil, testGroups())

	if _, ok := spec.Paths["/api/flipbooks/internal"]; ok {
		t.Error("route without an operation appeared in the specification")
	}
}

func TestGenerateSpec_MarshalJSON(t *testing.T) {
	spec := generateSpec("http://localhost:8080", &openapi.Components{
		Responses: map[string]*openapi.Response{
			"NotFound": {Description: "Resource not found"},
		},
	}, testGroups())

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	doc := string(data)
	if !strings.Contains(doc, `"openapi": "3.1.0"`) {
		t.Errorf("document missing version, got %s", doc[:80])
	}
	if !strings.Contains(doc, `"NotFound"`) {
		t.Error("document missing components")
	}
}
