// Package app provides application initialization and dependency wiring.
//
// Setup builds every long-lived component in dependency order: the Genkit
// runtime with its OpenAI-compatible model plugin, the knowledge store,
// the local tool registry, optional MCP tool connections, and finally the
// conversation service the HTTP layer talks to.
package app

import (
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/miru0/miru/internal/chat"
	"github.com/miru0/miru/internal/config"
	"github.com/miru0/miru/internal/knowledge"
	"github.com/miru0/miru/internal/tools"
)

// App is the initialized application container.
type App struct {
	Config *config.Config
	Logger *slog.Logger

	Genkit    *genkit.Genkit
	Knowledge *knowledge.Store
	Registry  *tools.Registry
	MCPTools  []ai.Tool

	Chat   *chat.Service
	Models []config.ModelInfo
}
