package openapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tavtun/docsys/pkg/openapi"
	"github.com/tavtun/docsys/pkg/routes"
)

func noop(http.ResponseWriter, *http.Request) {}

func sessions() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: noop},
			{Method: "GET", Pattern: "/{id}", Handler: noop},
			{Method: "PATCH", Pattern: "/{id}", Handler: noop},
			{Method: "DELETE", Pattern: "/{id}", Handler: noop},
		},
	}
}

func files() routes.Group {
	return routes.Group{
		Prefix: "/files",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/download/{path...}", Handler: noop},
		},
	}
}

func TestAddGroups(t *testing.T) {
	spec := openapi.NewSpec("docsys API", "0.1.0")
	spec.AddGroups(sessions(), files())

	item, ok := spec.Paths["/sessions/{id}"]
	if !ok {
		t.Fatalf("paths = %v", spec.Paths)
	}
	if item.Get == nil || item.Patch == nil || item.Delete == nil || item.Post != nil {
		t.Errorf("operations = %+v", item)
	}
	if p := item.Get.Parameters; len(p) != 1 || p[0].Name != "id" || p[0].Schema.Format != "uuid" {
		t.Errorf("parameters = %+v", p)
	}
	if item.Get.Tags[0] != "sessions" {
		t.Errorf("tags = %v", item.Get.Tags)
	}

	root := spec.Paths["/sessions"]
	if root == nil || root.Post == nil {
		t.Fatal("POST /sessions missing")
	}
	if _, ok := root.Post.Responses[http.StatusCreated]; !ok {
		t.Errorf("POST responses = %v", root.Post.Responses)
	}
	if _, ok := item.Delete.Responses[http.StatusNoContent]; !ok {
		t.Errorf("DELETE responses = %v", item.Delete.Responses)
	}

	dl := spec.Paths["/files/download/{path}"]
	if dl == nil || dl.Get == nil {
		t.Fatalf("catch-all path not converted: %v", spec.Paths)
	}
	if p := dl.Get.Parameters[0]; p.Name != "path" || p.Schema.Format != "" {
		t.Errorf("path parameter = %+v", p)
	}
}

func TestServeSpec(t *testing.T) {
	spec := openapi.NewSpec("docsys API", "0.1.0")
	spec.AddServer("/api")
	spec.AddGroups(sessions())

	data, err := openapi.MarshalJSON(spec)
	if err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	openapi.ServeSpec(data)(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var doc map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", doc["openapi"])
	}
	servers := doc["servers"].([]any)
	if servers[0].(map[string]any)["url"] != "/api" {
		t.Errorf("servers = %v", servers)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("DOCSYS_TEST_OPENAPI_TITLE", "Docs")

	var c openapi.Config
	c.Finalize(&openapi.ConfigEnv{Title: "DOCSYS_TEST_OPENAPI_TITLE"})
	if c.Title != "Docs" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Description == "" {
		t.Error("description default not applied")
	}
}
