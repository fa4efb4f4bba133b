package tools

import (
	"log/slog"
	"math"
	"strings"

	"github.com/firebase/genkit/go/ai"

	"github.com/miru0/miru/internal/knowledge"
)

// KnowledgeLookupName is the Genkit tool name for knowledge-base retrieval.
const KnowledgeLookupName = "knowledge_base_lookup"

const maxKnowledgeTopK = 5

// KnowledgeLookupInput defines input for the knowledge_base_lookup tool.
type KnowledgeLookupInput struct {
	Query string `json:"query" jsonschema_description:"Natural language question to match against the knowledge base."`
	TopK  int    `json:"top_k,omitempty" jsonschema_description:"Maximum number of documents to retrieve (1-5). Defaults to 3."`
}

// Knowledge exposes the local knowledge base as a retrieval tool.
type Knowledge struct {
	store       *knowledge.Store
	defaultTopK int
	logger      *slog.Logger
}

// NewKnowledge creates the knowledge lookup handler. defaultTopK is
// used when the model omits top_k.
func NewKnowledge(store *knowledge.Store, defaultTopK int, logger *slog.Logger) *Knowledge {
	if defaultTopK < 1 {
		defaultTopK = 3
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Knowledge{store: store, defaultTopK: defaultTopK, logger: logger}
}

// Lookup retrieves the top_k most relevant documents for the query.
// An empty query is rejected; top_k is clamped to 1-5.
func (k *Knowledge) Lookup(_ *ai.ToolContext, input KnowledgeLookupInput) (map[string]any, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, NewInvalidArgumentsError("query must not be empty")
	}

	topK := input.TopK
	if topK == 0 {
		topK = k.defaultTopK
	}
	if topK < 1 {
		topK = 1
	}
	if topK > maxKnowledgeTopK {
		topK = maxKnowledgeTopK
	}

	k.logger.Debug("Lookup called", "top_k", topK)

	matches := k.store.Search(query, topK)
	formatted := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		formatted = append(formatted, map[string]any{
			"id":      m.Document.ID,
			"title":   m.Document.Title,
			"content": m.Document.Content,
			"score":   math.Round(m.Score*10000) / 10000,
		})
	}

	return map[string]any{
		"query":   query,
		"results": formatted,
	}, nil
}
