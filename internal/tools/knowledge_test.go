package tools

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/miru0/miru/internal/knowledge"
)

func testKnowledge(t *testing.T) *Knowledge {
	t.Helper()
	store := knowledge.NewFromDocuments([]knowledge.Document{
		{ID: 1, Title: "DashScope", Content: "DashScope provides an OpenAI compatible mode for Qwen models."},
		{ID: 2, Title: "Ollama", Content: "Ollama serves local models behind an OpenAI compatible endpoint."},
		{ID: 3, Title: "MCP", Content: "The Model Context Protocol connects external tool servers."},
	})
	return NewKnowledge(store, 3, slog.New(slog.DiscardHandler))
}

func TestLookup_ReturnsScoredDocuments(t *testing.T) {
	k := testKnowledge(t)

	result, err := k.Lookup(toolCtx(), KnowledgeLookupInput{Query: "DashScope Qwen compatible mode", TopK: 2})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if result["query"] != "DashScope Qwen compatible mode" {
		t.Errorf("query = %v", result["query"])
	}

	results, ok := result["results"].([]map[string]any)
	if !ok {
		t.Fatalf("results has type %T", result["results"])
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0]["title"] != "DashScope" {
		t.Errorf("top result title = %v, want DashScope", results[0]["title"])
	}
	if _, ok := results[0]["score"].(float64); !ok {
		t.Errorf("score has type %T, want float64", results[0]["score"])
	}
}

func TestLookup_EmptyQuery(t *testing.T) {
	k := testKnowledge(t)

	_, err := k.Lookup(toolCtx(), KnowledgeLookupInput{Query: "\t "})
	if err == nil {
		t.Fatal("Lookup(empty query) expected error, got nil")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Errorf("error type = %T, want *ToolError", err)
	}
}

func TestLookup_TopKClamped(t *testing.T) {
	k := testKnowledge(t)

	result, err := k.Lookup(toolCtx(), KnowledgeLookupInput{Query: "models", TopK: 99})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	results := result["results"].([]map[string]any)
	// Clamp is 5, corpus has 3.
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestLookup_DefaultTopK(t *testing.T) {
	k := testKnowledge(t)

	result, err := k.Lookup(toolCtx(), KnowledgeLookupInput{Query: "models"})
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	results := result["results"].([]map[string]any)
	if len(results) != 3 {
		t.Errorf("got %d results, want default top_k 3", len(results))
	}
}
