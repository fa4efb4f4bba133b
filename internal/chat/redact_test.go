package chat

import (
	"reflect"
	"testing"
)

func TestRedact_SensitiveKeys(t *testing.T) {
	input := map[string]any{
		"model":   "qwen3",
		"api_key": "sk-secret",
		"nested": map[string]any{
			"Authorization": "Bearer abc",
			"timeout":       30,
		},
		"list": []any{
			map[string]any{"token": "xyz", "name": "ok"},
		},
	}

	got := Redact(input).(map[string]any)

	if got["api_key"] != "***" {
		t.Errorf("api_key = %v, want ***", got["api_key"])
	}
	if got["model"] != "qwen3" {
		t.Errorf("model = %v, want untouched", got["model"])
	}

	nested := got["nested"].(map[string]any)
	if nested["Authorization"] != "***" {
		t.Errorf("Authorization = %v, want *** (case-insensitive match)", nested["Authorization"])
	}
	if nested["timeout"] != 30 {
		t.Errorf("timeout = %v, want untouched", nested["timeout"])
	}

	item := got["list"].([]any)[0].(map[string]any)
	if item["token"] != "***" {
		t.Errorf("token = %v, want ***", item["token"])
	}
	if item["name"] != "ok" {
		t.Errorf("name = %v, want untouched", item["name"])
	}
}

func TestRedact_DoesNotMutateInput(t *testing.T) {
	input := map[string]any{"api_key": "sk-secret"}
	_ = Redact(input)
	if input["api_key"] != "sk-secret" {
		t.Error("Redact mutated its input")
	}
}

func TestRedact_NonContainerPassThrough(t *testing.T) {
	for _, v := range []any{"text", 42, true, nil} {
		if got := Redact(v); !reflect.DeepEqual(got, v) {
			t.Errorf("Redact(%v) = %v, want unchanged", v, got)
		}
	}
}
