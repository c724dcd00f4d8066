package targets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write targets file: %v", err)
	}
	return path
}

func TestLoadRegistryYAML(t *testing.T) {
	path := writeFile(t, "targets.yaml", `
targets:
  - id: " api "
    name: Public API
    url: https://api.example.com/health
    headers:
      " X-Probe ": " 1 "
  - id: admin
    url: http://admin.internal:8080/ping
    enabled: false
`)

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(reg.All()) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(reg.All()))
	}

	enabled := reg.Enabled()
	if len(enabled) != 1 || enabled[0].ID != "api" {
		t.Fatalf("unexpected enabled targets %+v", enabled)
	}
	if enabled[0].Headers["X-Probe"] != "1" {
		t.Fatalf("expected sanitised headers, got %v", enabled[0].Headers)
	}

	admin := reg.All()[1]
	if admin.ID != "admin" || admin.Name != "admin" {
		t.Fatalf("expected name to default to id, got %q", admin.Name)
	}
}

func TestLoadRegistryJSON(t *testing.T) {
	path := writeFile(t, "targets.json", `{"targets":[{"id":"a","url":"https://a.example"}]}`)
	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if all := reg.All(); len(all) != 1 || all[0].ID != "a" {
		t.Fatalf("expected target a, got %+v", all)
	}
}

func TestLoadRegistryRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"duplicate id": `
targets:
  - id: dup
    url: https://one.example
  - id: dup
    url: https://two.example
`,
		"missing url": `
targets:
  - id: nourl
`,
		"relative url": `
targets:
  - id: rel
    url: /health
`,
		"bad scheme": `
targets:
  - id: ftp
    url: ftp://files.example
`,
		"empty": `targets: []`,
	}
	for name, content := range cases {
		path := writeFile(t, "targets.yaml", content)
		if _, err := LoadRegistry(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestNewRegistryDropsBlankHeaders(t *testing.T) {
	reg, err := NewRegistry([]Target{{
		ID:      "api",
		URL:     "https://api.example.com",
		Headers: map[string]string{"X-Empty": " ", " ": "v"},
	}})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if h := reg.All()[0].Headers; h != nil {
		t.Fatalf("expected blank headers to be dropped, got %v", h)
	}
}

func TestLoadRegistryMissingPath(t *testing.T) {
	if _, err := LoadRegistry(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
