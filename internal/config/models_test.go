package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miru0/miru/internal/log"
)

func TestLoadModels_Unconfigured(t *testing.T) {
	if got := LoadModels(&Config{}, log.NewNop()); got != nil {
		t.Errorf("LoadModels() = %v, want nil when unconfigured", got)
	}
}

func TestLoadModels_InlineBareArray(t *testing.T) {
	cfg := &Config{ModelsInlineConfig: `[
		{"id": "qwen3", "name": "Qwen3", "tags": ["chat"], "supports_thinking": true},
		{"model": "qwen-plus", "description": "hosted"}
	]`}

	models := LoadModels(cfg, log.NewNop())
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
	if models[0].ID != "qwen3" || !models[0].SupportsThinking {
		t.Errorf("models[0] = %+v", models[0])
	}
	// ID falls back to "model" when "id" is absent.
	if models[1].ID != "qwen-plus" || models[1].ProviderModel != "qwen-plus" {
		t.Errorf("models[1] = %+v", models[1])
	}
}

func TestLoadModels_ObjectWithModelsKey(t *testing.T) {
	cfg := &Config{ModelsInlineConfig: `{"models": [{"id": "m1"}]}`}

	models := LoadModels(cfg, log.NewNop())
	if len(models) != 1 || models[0].ID != "m1" {
		t.Fatalf("models = %+v", models)
	}
}

func TestLoadModels_SkipsNonObjectEntries(t *testing.T) {
	cfg := &Config{ModelsInlineConfig: `[{"id": "m1"}, "junk", 42]`}

	models := LoadModels(cfg, log.NewNop())
	if len(models) != 1 {
		t.Fatalf("len(models) = %d, want 1", len(models))
	}
}

func TestLoadModels_InvalidInlineFallsBackToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	if err := os.WriteFile(path, []byte(`{"models":[{"id":"from-file"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := &Config{
		ModelsInlineConfig: `{broken`,
		ModelsConfigPath:   path,
	}

	models := LoadModels(cfg, log.NewNop())
	if len(models) != 1 || models[0].ID != "from-file" {
		t.Fatalf("models = %+v", models)
	}
}

func TestLoadModels_MissingFile(t *testing.T) {
	cfg := &Config{ModelsConfigPath: filepath.Join(t.TempDir(), "absent.json")}
	if got := LoadModels(cfg, log.NewNop()); got != nil {
		t.Errorf("LoadModels() = %v, want nil", got)
	}
}
