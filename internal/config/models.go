package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
)

// ModelInfo describes one selectable model as advertised by /api/models.
// Entries are sourced entirely from external configuration; no defaults
// are synthesized when the configuration is missing.
type ModelInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	Tags             []string `json:"tags"`
	SupportsThinking bool     `json:"supports_thinking"`
	ProviderModel    string   `json:"provider_model,omitempty"`
}

// LoadModels reads model capability definitions from MODELS_JSON (inline,
// preferred) or MODELS_CONFIG_PATH (file). Both accept either a bare JSON
// array or an object with a "models" key. Returns nil when unconfigured or
// invalid; parse failures are warnings, never errors.
func LoadModels(cfg *Config, logger *slog.Logger) []ModelInfo {
	raw := loadModelsRaw(cfg, logger)
	if raw == nil {
		return nil
	}

	entries, ok := modelEntries(raw)
	if !ok {
		logger.Warn("models config has unexpected format; expected list or 'models' key")
		return nil
	}

	models := make([]ModelInfo, 0, len(entries))
	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			logger.Warn("ignoring non-object model entry in config")
			continue
		}
		models = append(models, modelFromMap(m))
	}
	if len(models) == 0 {
		return nil
	}
	return models
}

// loadModelsRaw returns the decoded JSON document from inline config or,
// when inline is absent or invalid, from the configured file path.
func loadModelsRaw(cfg *Config, logger *slog.Logger) any {
	if cfg.ModelsInlineConfig != "" {
		var raw any
		if err := json.Unmarshal([]byte(cfg.ModelsInlineConfig), &raw); err != nil {
			logger.Warn("invalid MODELS_JSON content; falling back to file", "error", err)
		} else {
			return raw
		}
	}

	if cfg.ModelsConfigPath == "" {
		return nil
	}

	path := cfg.ModelsConfigPath
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read models config", "path", path, "error", err)
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		logger.Warn("failed to parse models config", "path", path, "error", err)
		return nil
	}
	return raw
}

// modelEntries accepts either {"models": [...]} or a bare array.
func modelEntries(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case []any:
		return v, true
	case map[string]any:
		if list, ok := v["models"].([]any); ok {
			return list, true
		}
	}
	return nil, false
}

// modelFromMap builds a ModelInfo from a loosely-typed config entry.
// ID falls back through id > model > name; Name through name > id.
func modelFromMap(m map[string]any) ModelInfo {
	id := stringField(m, "id", "model", "name")
	if id == "" {
		id = "unknown"
	}
	name := stringField(m, "name", "id")
	if name == "" {
		name = "unknown"
	}

	info := ModelInfo{
		ID:          id,
		Name:        name,
		Description: stringField(m, "description"),
		Tags:        stringSlice(m["tags"]),
	}
	if b, ok := m["supports_thinking"].(bool); ok {
		info.SupportsThinking = b
	}
	info.ProviderModel = stringField(m, "provider_model", "model")
	return info
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
