package chat

import (
	"strings"

	oai "github.com/openai/openai-go"
)

// Backend describes the configured model backend for parameter merging.
type Backend struct {
	Model     string
	ModelType string // "oai" or "qwen_dashscope"
	APIBase   string
	APIKey    string

	// Server-side defaults for DashScope web search.
	EnableSearch  bool
	SearchOptions map[string]any

	// Deployment-level generate_cfg merged under per-request values.
	GenerateCfg map[string]any
}

// IsDashScope reports whether the backend targets DashScope, either via
// the native model type or an OpenAI-compatible DashScope endpoint.
func (b Backend) IsDashScope() bool {
	modelType := strings.ToLower(b.ModelType)
	if modelType == "qwen_dashscope" || modelType == "dashscope" {
		return true
	}
	return strings.Contains(strings.ToLower(b.APIBase), "dashscope")
}

// BuildLLMParams merges the static backend configuration with one
// request's options into a fresh parameter bag. The bag is rebuilt per
// request; neither the backend defaults nor the request options are
// mutated.
//
// Provider-native flags (enable_thinking, enable_search, search_options)
// live in the extra_body sub-map and only appear for DashScope backends.
// generate_cfg.thought_in_content is always set and always equals the
// request's deep_thinking flag.
func BuildLLMParams(b Backend, opts Options) map[string]any {
	params := map[string]any{
		"model":      b.Model,
		"model_type": b.ModelType,
	}
	switch strings.ToLower(b.ModelType) {
	case "oai":
		if b.APIBase != "" {
			params["api_base"] = b.APIBase
		}
		if b.APIKey != "" {
			params["api_key"] = b.APIKey
		}
	case "qwen_dashscope", "dashscope":
		if b.APIKey != "" {
			params["api_key"] = b.APIKey
		}
	}

	extraBody := map[string]any{}
	if b.IsDashScope() {
		if opts.DeepThinking {
			extraBody["enable_thinking"] = true
		}
		if opts.EnableSearch || b.EnableSearch {
			extraBody["enable_search"] = true
			searchOpts := b.SearchOptions
			if len(opts.SearchOptions) > 0 {
				searchOpts = opts.SearchOptions
			}
			if len(searchOpts) > 0 {
				extraBody["search_options"] = copyMap(searchOpts)
			}
		}
	}
	if len(extraBody) > 0 {
		params["extra_body"] = extraBody
	}

	generateCfg := copyMap(b.GenerateCfg)
	if generateCfg == nil {
		generateCfg = map[string]any{}
	}
	generateCfg["thought_in_content"] = opts.DeepThinking
	params["generate_cfg"] = generateCfg

	return params
}

// RequestConfig converts the parameter bag into the chat completion
// config understood by the OpenAI-compatible plugin. Provider-native
// flags from extra_body travel as extra JSON body fields; generate_cfg
// is consumed locally and never sent.
func RequestConfig(params map[string]any) any {
	extraBody, _ := params["extra_body"].(map[string]any)
	if len(extraBody) == 0 {
		return nil
	}

	cfg := &oai.ChatCompletionNewParams{}
	fields := make(map[string]any, len(extraBody))
	for k, v := range extraBody {
		fields[k] = v
	}
	cfg.SetExtraFields(fields)
	return cfg
}

// thoughtInContent reads generate_cfg.thought_in_content from the bag.
func thoughtInContent(params map[string]any) bool {
	generateCfg, _ := params["generate_cfg"].(map[string]any)
	v, _ := generateCfg["thought_in_content"].(bool)
	return v
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
