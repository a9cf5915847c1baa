package schemavalidation

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"imeshim/internal/config"
)

type schemaCase struct {
	name         string
	schemaPath   string
	instancePath string
}

func TestSchemaValidation(t *testing.T) {
	root := repoRoot(t)
	cases := []schemaCase{
		{
			name:         "dialog-preset",
			schemaPath:   filepath.Join(root, "docs", "schema", "dialog-preset-v1.schema.json"),
			instancePath: filepath.Join(root, "docs", "spec", "fixtures", "dialog-preset-v1.json"),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validateInstance(t, tc.schemaPath, tc.instancePath)
		})
	}
}

// The fixture must also pass the loader's own validation, so the schema
// and the Go-side checks cannot drift apart silently.
func TestFixtureLoadsAsConfig(t *testing.T) {
	root := repoRoot(t)
	path := filepath.Join(root, "docs", "spec", "fixtures", "dialog-preset-v1.json")

	cfg, err := config.NewLoader(path).Load()
	if err != nil {
		t.Fatalf("fixture failed to load: %v", err)
	}
	if cfg.Preset.MaxTextLen != 4 {
		t.Errorf("max_text_len = %d, want 4", cfg.Preset.MaxTextLen)
	}
	if !cfg.Preset.Numeric {
		t.Error("fixture preset should be numeric")
	}
}

func validateInstance(t *testing.T, schemaPath, instancePath string) {
	t.Helper()

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	instanceData, err := os.ReadFile(instancePath)
	if err != nil {
		t.Fatalf("read instance: %v", err)
	}

	var instance any
	if err := json.Unmarshal(instanceData, &instance); err != nil {
		t.Fatalf("unmarshal instance: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaPath, bytes.NewReader(schemaData)); err != nil {
		t.Fatalf("add schema resource: %v", err)
	}
	schema, err := compiler.Compile(schemaPath)
	if err != nil {
		t.Fatalf("compile schema: %v", err)
	}

	if err := schema.Validate(instance); err != nil {
		t.Fatalf("schema validation failed for %s: %v", filepath.Base(instancePath), err)
	}
}

func repoRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("unable to resolve caller path")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
