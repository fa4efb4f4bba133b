package tools

import (
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/genkit"

	"github.com/miru0/miru/internal/knowledge"
)

// RegisterDeps carries the dependencies of the local tool set.
type RegisterDeps struct {
	Store       *knowledge.Store
	DefaultTopK int
	Logger      *slog.Logger
}

// RegisterAll registers every local tool with Genkit and returns a
// registry of their capability descriptors. Tools are defined once at
// startup; per-request variation happens through Registry.Select, not
// re-registration.
func RegisterAll(g *genkit.Genkit, deps RegisterDeps) (*Registry, error) {
	if g == nil {
		return nil, fmt.Errorf("genkit instance is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("knowledge store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	img := NewImage(logger)
	kb := NewKnowledge(deps.Store, deps.DefaultTopK, logger)
	network := NewNetwork(logger)
	search := NewSearch(logger)

	registry := NewRegistry()

	registry.Add(Descriptor{
		Name:       ImageGeneratorName,
		Capability: CapabilityImage,
		Tool: genkit.DefineTool(g, ImageGeneratorName,
			"Generate an image for the user prompt. Returns a public URL and "+
				"optionally an inline Base64 thumbnail for previews.",
			img.Generate),
	})
	registry.Add(Descriptor{
		Name:       KnowledgeLookupName,
		Capability: CapabilityKnowledge,
		Tool: genkit.DefineTool(g, KnowledgeLookupName,
			"Access the local project knowledge base to ground answers with factual context. "+
				"Useful for questions about the demo setup, tooling integrations or DashScope usage.",
			kb.Lookup),
	})
	registry.Add(Descriptor{
		Name:       CurrentTimeName,
		Capability: CapabilityUtility,
		Tool: genkit.DefineTool(g, CurrentTimeName,
			"Get the current time. Returns ISO timestamp in the requested timezone "+
				"and optionally the unix epoch seconds.",
			CurrentTime),
	})
	registry.Add(Descriptor{
		Name:       GeoLocationName,
		Capability: CapabilityUtility,
		Tool: genkit.DefineTool(g, GeoLocationName,
			"Get the user's approximate geographic location by IP. "+
				"If an IP is provided (via parameter or context), use it; otherwise fallback to server IP. "+
				"Returns city, region, country, coordinates and timezone.",
			network.GeoLocation),
	})
	registry.Add(Descriptor{
		Name:       PublicIPName,
		Capability: CapabilityUtility,
		Tool: genkit.DefineTool(g, PublicIPName,
			"Get the server's public IP address using a public API provider. "+
				"Returns the IP and the provider used. Note: This is the backend server IP.",
			network.PublicIP),
	})
	registry.Add(Descriptor{
		Name:       WebSearchName,
		Capability: CapabilityWebSearch,
		Tool: genkit.DefineTool(g, WebSearchName,
			"Use DuckDuckGo web search to gather recent information. Best suited "+
				"for facts, news and general knowledge questions.",
			search.WebSearch),
	})

	logger.Info("local tools registered", "count", registry.Count())
	return registry, nil
}
