package chat

import (
	"reflect"
	"testing"
)

func dashScopeBackend() Backend {
	return Backend{
		Model:     "qwen3",
		ModelType: "qwen_dashscope",
		APIKey:    "sk-secret",
	}
}

func oaiBackend() Backend {
	return Backend{
		Model:     "qwen3",
		ModelType: "oai",
		APIBase:   "http://localhost:11434/v1",
		APIKey:    "ollama",
	}
}

func TestBackend_IsDashScope(t *testing.T) {
	tests := []struct {
		name    string
		backend Backend
		want    bool
	}{
		{"native model type", Backend{ModelType: "qwen_dashscope"}, true},
		{"plain dashscope type", Backend{ModelType: "dashscope"}, true},
		{"uppercase type", Backend{ModelType: "QWEN_DASHSCOPE"}, true},
		{"compatible-mode base", Backend{ModelType: "oai", APIBase: "https://dashscope.aliyuncs.com/compatible-mode/v1"}, true},
		{"ollama", Backend{ModelType: "oai", APIBase: "http://localhost:11434/v1"}, false},
		{"empty", Backend{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.backend.IsDashScope(); got != tt.want {
				t.Errorf("IsDashScope() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildLLMParams_OAIBackend(t *testing.T) {
	params := BuildLLMParams(oaiBackend(), DefaultOptions())

	if params["model"] != "qwen3" || params["model_type"] != "oai" {
		t.Errorf("model identity = %v/%v", params["model"], params["model_type"])
	}
	if params["api_base"] != "http://localhost:11434/v1" {
		t.Errorf("api_base = %v", params["api_base"])
	}
	if _, ok := params["extra_body"]; ok {
		t.Error("extra_body present for non-DashScope backend")
	}
}

func TestBuildLLMParams_DeepThinkingOnDashScope(t *testing.T) {
	opts := DefaultOptions()
	opts.DeepThinking = true

	params := BuildLLMParams(dashScopeBackend(), opts)

	extraBody := params["extra_body"].(map[string]any)
	if extraBody["enable_thinking"] != true {
		t.Error("enable_thinking missing for deep thinking on DashScope")
	}
}

func TestBuildLLMParams_DeepThinkingOffDashScope(t *testing.T) {
	opts := DefaultOptions()
	opts.DeepThinking = true

	params := BuildLLMParams(oaiBackend(), opts)

	if _, ok := params["extra_body"]; ok {
		t.Error("extra_body must stay empty when the backend is not DashScope")
	}
	// thought_in_content is backend-independent.
	if !thoughtInContent(params) {
		t.Error("thought_in_content = false, want true")
	}
}

func TestBuildLLMParams_ThoughtInContentTracksRequest(t *testing.T) {
	backend := dashScopeBackend()
	backend.GenerateCfg = map[string]any{"thought_in_content": true, "top_p": 0.8}

	// The flag must equal the request's deep_thinking even when the
	// deployment config says otherwise.
	params := BuildLLMParams(backend, DefaultOptions())
	if thoughtInContent(params) {
		t.Error("thought_in_content inherited from config, must follow request")
	}

	generateCfg := params["generate_cfg"].(map[string]any)
	if generateCfg["top_p"] != 0.8 {
		t.Errorf("top_p = %v, inline generate_cfg values must survive", generateCfg["top_p"])
	}
}

func TestBuildLLMParams_EnableSearch(t *testing.T) {
	tests := []struct {
		name           string
		backendDefault bool
		requestFlag    bool
		want           bool
	}{
		{"both off", false, false, false},
		{"request on", false, true, true},
		{"default on", true, false, true},
		{"both on", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := dashScopeBackend()
			backend.EnableSearch = tt.backendDefault
			opts := DefaultOptions()
			opts.EnableSearch = tt.requestFlag

			params := BuildLLMParams(backend, opts)
			extraBody, _ := params["extra_body"].(map[string]any)
			got := extraBody["enable_search"] == true
			if got != tt.want {
				t.Errorf("enable_search = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildLLMParams_SearchOptionsPrecedence(t *testing.T) {
	backend := dashScopeBackend()
	backend.EnableSearch = true
	backend.SearchOptions = map[string]any{"forced_search": false}

	// Default options used when the request carries none.
	params := BuildLLMParams(backend, DefaultOptions())
	extraBody := params["extra_body"].(map[string]any)
	got := extraBody["search_options"].(map[string]any)
	if got["forced_search"] != false {
		t.Errorf("search_options = %v, want backend default", got)
	}

	// Request override wins.
	opts := DefaultOptions()
	opts.SearchOptions = map[string]any{"forced_search": true}
	params = BuildLLMParams(backend, opts)
	extraBody = params["extra_body"].(map[string]any)
	got = extraBody["search_options"].(map[string]any)
	if got["forced_search"] != true {
		t.Errorf("search_options = %v, want request override", got)
	}
}

func TestBuildLLMParams_DoesNotMutateBackend(t *testing.T) {
	backend := dashScopeBackend()
	backend.GenerateCfg = map[string]any{"top_p": 0.8}
	backend.SearchOptions = map[string]any{"forced_search": true}
	backend.EnableSearch = true

	opts := DefaultOptions()
	opts.DeepThinking = true
	_ = BuildLLMParams(backend, opts)

	if _, ok := backend.GenerateCfg["thought_in_content"]; ok {
		t.Error("BuildLLMParams mutated backend.GenerateCfg")
	}
	if !reflect.DeepEqual(backend.SearchOptions, map[string]any{"forced_search": true}) {
		t.Error("BuildLLMParams mutated backend.SearchOptions")
	}
}

func TestRequestConfig(t *testing.T) {
	opts := DefaultOptions()
	opts.DeepThinking = true
	params := BuildLLMParams(dashScopeBackend(), opts)

	if cfg := RequestConfig(params); cfg == nil {
		t.Error("RequestConfig() = nil, want config carrying extra body fields")
	}

	params = BuildLLMParams(oaiBackend(), DefaultOptions())
	if cfg := RequestConfig(params); cfg != nil {
		t.Errorf("RequestConfig() = %v, want nil without extra_body", cfg)
	}
}
