// Package config provides environment-sourced application configuration.
//
// All settings come from environment variables following the 12-factor
// methodology. Load() binds every variable explicitly, parses inline JSON
// blocks up front (malformed JSON degrades to "feature absent" with a
// warning, never a startup failure), and returns an immutable value that
// is passed into the components that need it. There is no ambient global
// configuration state.
//
// Security: sensitive fields (API keys) are masked in MarshalJSON/String.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Model backend types accepted in LLMModelType.
const (
	// ModelTypeOAI targets any OpenAI-compatible chat completions endpoint.
	ModelTypeOAI = "oai"
	// ModelTypeDashScope targets DashScope's managed Qwen API.
	ModelTypeDashScope = "qwen_dashscope"
)

// dashScopeCompatBaseURL is DashScope's OpenAI compatible mode endpoint.
const dashScopeCompatBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Config stores application configuration.
// SECURITY: Sensitive fields are explicitly masked in MarshalJSON().
// When adding new sensitive fields (API keys, tokens), update MarshalJSON.
type Config struct {
	// LLM backend identity and credentials
	DashScopeAPIKey string `json:"dashscope_api_key"` // SENSITIVE: masked in MarshalJSON
	LLMModelName    string `json:"llm_model_name"`
	LLMModelType    string `json:"llm_model_type"` // "oai" or "qwen_dashscope"
	LLMAPIBase      string `json:"llm_api_base"`
	LLMAPIKey       string `json:"llm_api_key"` // SENSITIVE: masked in MarshalJSON

	// HTTP server
	Addr        string   `json:"addr"`
	CORSOrigins []string `json:"cors_origins"`

	// Knowledge base / RAG
	KnowledgeBasePath string `json:"knowledge_base_path"`
	RAGTopK           int    `json:"rag_top_k"`

	// MCP external tool servers (file path or inline JSON)
	MCPConfigPath   string `json:"mcp_config_path"`
	MCPInlineConfig string `json:"mcp_inline_config"`

	// Model capability listing (file path or inline JSON)
	ModelsConfigPath   string `json:"models_config_path"`
	ModelsInlineConfig string `json:"models_inline_config"`

	// Provider-native web search defaults
	EnableSearch         bool           `json:"enable_search"`
	DefaultSearchOptions map[string]any `json:"default_search_options"`

	// Static generation-config overrides merged into every request
	InlineGenerateCfg map[string]any `json:"inline_generate_cfg"`
}

// Load reads configuration from the environment.
// Inline JSON blocks (SEARCH_OPTIONS_JSON, LLM_GENERATE_CFG_JSON) are parsed
// here; malformed content is logged as a warning and the feature is disabled.
func Load(logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := viper.New()
	setDefaults(v)
	bindEnvVariables(v)

	cfg := &Config{
		DashScopeAPIKey:    v.GetString("dashscope_api_key"),
		LLMModelName:       v.GetString("llm_model_name"),
		LLMModelType:       v.GetString("llm_model_type"),
		LLMAPIBase:         v.GetString("llm_api_base"),
		LLMAPIKey:          v.GetString("llm_api_key"),
		Addr:               v.GetString("addr"),
		CORSOrigins:        splitOrigins(v.GetString("cors_allow_origins")),
		KnowledgeBasePath:  v.GetString("knowledge_base_path"),
		RAGTopK:            v.GetInt("rag_top_k"),
		MCPConfigPath:      v.GetString("mcp_config_path"),
		MCPInlineConfig:    v.GetString("mcp_servers_json"),
		ModelsConfigPath:   v.GetString("models_config_path"),
		ModelsInlineConfig: v.GetString("models_json"),
		EnableSearch:       v.GetBool("enable_search"),
	}

	if cfg.RAGTopK <= 0 {
		cfg.RAGTopK = 3
	}

	if raw := v.GetString("search_options_json"); raw != "" {
		var opts map[string]any
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			logger.Warn("invalid SEARCH_OPTIONS_JSON, ignoring", "error", err)
		} else {
			cfg.DefaultSearchOptions = opts
		}
	}

	if raw := v.GetString("llm_generate_cfg_json"); raw != "" {
		var gen map[string]any
		if err := json.Unmarshal([]byte(raw), &gen); err != nil {
			logger.Warn("invalid LLM_GENERATE_CFG_JSON, ignoring", "error", err)
		} else {
			cfg.InlineGenerateCfg = gen
		}
	}

	return cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("llm_model_name", "qwen3")
	v.SetDefault("llm_model_type", ModelTypeOAI)
	v.SetDefault("llm_api_base", "http://localhost:11434/v1")
	v.SetDefault("addr", "127.0.0.1:8000")
	v.SetDefault("cors_allow_origins", "http://localhost:5173")
	v.SetDefault("knowledge_base_path", "data/knowledge_base.json")
	v.SetDefault("rag_top_k", 3)
}

// bindEnvVariables binds every configuration key to its environment variable.
// Explicit bindings keep the full inventory in one place.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("dashscope_api_key", "DASHSCOPE_API_KEY")
	mustBind("llm_model_name", "LLM_MODEL_NAME")
	mustBind("llm_model_type", "LLM_MODEL_TYPE")
	mustBind("llm_api_base", "LLM_API_BASE")
	mustBind("llm_api_key", "LLM_API_KEY")
	mustBind("addr", "MIRU_ADDR")
	mustBind("cors_allow_origins", "CORS_ALLOW_ORIGINS")
	mustBind("knowledge_base_path", "KNOWLEDGE_BASE_PATH")
	mustBind("rag_top_k", "RAG_TOP_K")
	mustBind("mcp_config_path", "MCP_CONFIG_PATH")
	mustBind("mcp_servers_json", "MCP_SERVERS_JSON")
	mustBind("models_config_path", "MODELS_CONFIG_PATH")
	mustBind("models_json", "MODELS_JSON")
	mustBind("enable_search", "ENABLE_SEARCH")
	mustBind("search_options_json", "SEARCH_OPTIONS_JSON")
	mustBind("llm_generate_cfg_json", "LLM_GENERATE_CFG_JSON")
}

// splitOrigins parses a comma-separated origin list, trimming whitespace.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// APIBase returns the effective OpenAI-compatible base URL for the
// configured backend type. DashScope uses its compatible-mode endpoint.
func (c *Config) APIBase() string {
	if c.LLMModelType == ModelTypeDashScope || c.LLMModelType == "dashscope" {
		return dashScopeCompatBaseURL
	}
	return c.LLMAPIBase
}

// APIKeyForBackend returns the credential matching the backend type.
func (c *Config) APIKeyForBackend() string {
	if c.LLMModelType == ModelTypeDashScope || c.LLMModelType == "dashscope" {
		return c.DashScopeAPIKey
	}
	return c.LLMAPIKey
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "***"

// maskSecret masks a secret string for safe logging.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	return maskedValue
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.DashScopeAPIKey = maskSecret(a.DashScopeAPIKey)
	a.LLMAPIKey = maskSecret(a.LLMAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
