package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/mcp"
	"github.com/openai/openai-go/option"

	"github.com/miru0/miru/internal/chat"
	"github.com/miru0/miru/internal/config"
	"github.com/miru0/miru/internal/knowledge"
	"github.com/miru0/miru/internal/tools"
)

// modelProvider is the Genkit provider prefix of the OpenAI-compatible
// plugin; every configured model is addressed as "openai/<name>".
const modelProvider = "openai"

// Setup creates and initializes the application. A missing or malformed
// knowledge base is fatal; MCP server failures are not.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := knowledge.New(cfg.KnowledgeBasePath)
	if err != nil {
		return nil, fmt.Errorf("loading knowledge base: %w", err)
	}
	logger.Info("knowledge base loaded", "path", cfg.KnowledgeBasePath, "documents", store.Size())

	registry, err := tools.RegisterAll(g, tools.RegisterDeps{
		Store:       store,
		DefaultTopK: cfg.RAGTopK,
		Logger:      logger.With("component", "tools"),
	})
	if err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	mcpTools := provideMCPTools(ctx, g, cfg, logger)

	svc, err := chat.New(chat.Config{
		Genkit:    g,
		Registry:  registry,
		MCPTools:  mcpTools,
		Logger:    logger.With("component", "chat"),
		ModelName: modelProvider + "/" + cfg.LLMModelName,
		Backend:   backendFromConfig(cfg),
	})
	if err != nil {
		return nil, fmt.Errorf("creating chat service: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    logger,
		Genkit:    g,
		Knowledge: store,
		Registry:  registry,
		MCPTools:  mcpTools,
		Chat:      svc,
		Models:    config.LoadModels(cfg, logger),
	}, nil
}

// provideGenkit initializes Genkit with the OpenAI-compatible plugin
// pointed at the configured backend and registers the configured model.
func provideGenkit(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*genkit.Genkit, error) {
	apiKey := cfg.APIKeyForBackend()
	if apiKey == "" {
		// Local OpenAI-compatible servers (Ollama, vLLM) accept any
		// key, but the client library refuses an empty one.
		apiKey = "EMPTY"
	}

	plugin := &openai.OpenAI{
		APIKey: apiKey,
		Opts:   []option.RequestOption{option.WithBaseURL(cfg.APIBase())},
	}

	g := genkit.Init(ctx, genkit.WithPlugins(plugin))
	if g == nil {
		return nil, errors.New("initializing genkit with openai-compatible provider")
	}

	plugin.DefineModel(cfg.LLMModelName, ai.ModelOptions{
		Label: cfg.LLMModelName,
		Supports: &ai.ModelSupports{
			Multiturn:  true,
			Tools:      true,
			SystemRole: true,
		},
	})

	logger.Info("initialized Genkit with openai-compatible provider",
		"model", cfg.LLMModelName, "api_base", cfg.APIBase(), "model_type", cfg.LLMModelType)
	return g, nil
}

// provideMCPTools connects the configured MCP servers and collects their
// tools. Every failure here is a warning: the local tool set keeps the
// backend useful without external servers.
func provideMCPTools(ctx context.Context, g *genkit.Genkit, cfg *config.Config, logger *slog.Logger) []ai.Tool {
	servers := config.LoadMCPConfigs(cfg, logger)
	if len(servers) == 0 {
		return nil
	}

	clientOpts := make([]mcp.MCPServerConfig, 0, len(servers))
	for _, s := range servers {
		clientOpts = append(clientOpts, mcp.MCPServerConfig{Name: s.Name, Config: s.ClientOptions})
	}

	host, err := mcp.NewMCPHost(g, mcp.MCPHostOptions{
		Name:       "miru",
		MCPServers: clientOpts,
	})
	if err != nil {
		logger.Warn("connecting MCP servers failed, continuing without them", "error", err)
		return nil
	}

	mcpTools, err := host.GetActiveTools(ctx, g)
	if err != nil {
		logger.Warn("listing MCP tools failed, continuing without them", "error", err)
		return nil
	}

	logger.Info("MCP tools loaded", "servers", len(servers), "tools", len(mcpTools))
	return mcpTools
}

// backendFromConfig maps static configuration onto the chat backend
// descriptor used for per-request parameter merging.
func backendFromConfig(cfg *config.Config) chat.Backend {
	return chat.Backend{
		Model:         cfg.LLMModelName,
		ModelType:     cfg.LLMModelType,
		APIBase:       cfg.APIBase(),
		APIKey:        cfg.APIKeyForBackend(),
		EnableSearch:  cfg.EnableSearch,
		SearchOptions: cfg.DefaultSearchOptions,
		GenerateCfg:   cfg.InlineGenerateCfg,
	}
}
