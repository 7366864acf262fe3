package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestAvailable(t *testing.T) {
	if !Available() {
		t.Fatalf("expected document to be registered")
	}
}

func TestDocumentRenders(t *testing.T) {
	t.Cleanup(func() {
		Configure("/", false)
	})
	Configure("/courses/", true)

	raw, err := swag.ReadDoc(InstanceName)
	if err != nil {
		t.Fatalf("ReadDoc returned error: %v", err)
	}

	var doc struct {
		Schemes  []string `json:"schemes"`
		BasePath string   `json:"basePath"`
		Info     struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	if doc.Info.Title != "Project API" || doc.Info.Version != "1.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	if doc.BasePath != "/courses" {
		t.Fatalf("expected configured base path, got %s", doc.BasePath)
	}
	if len(doc.Schemes) != 1 || doc.Schemes[0] != "https" {
		t.Fatalf("expected https scheme, got %v", doc.Schemes)
	}
	if _, ok := doc.Paths["/api/info"]; !ok {
		t.Fatalf("expected /api/info to be documented")
	}
}

func TestConfigureKeepsRootBasePath(t *testing.T) {
	Configure("/", false)

	if SwaggerInfo.BasePath != "/" {
		t.Fatalf("expected root base path, got %s", SwaggerInfo.BasePath)
	}
	if len(SwaggerInfo.Schemes) != 1 || SwaggerInfo.Schemes[0] != "http" {
		t.Fatalf("expected http scheme, got %v", SwaggerInfo.Schemes)
	}
}
