package tools

import "github.com/firebase/genkit/go/ai"

// Descriptor binds a registered tool to its capability tag.
type Descriptor struct {
	Name       string
	Capability Capability
	Tool       ai.ToolRef
}

// FilterOptions controls per-request tool selection. A false gate
// excludes its capability, so the zero value hides both image and web
// search tools; callers set the gates from the request options, whose
// decoding defaults them to true.
type FilterOptions struct {
	AllowImage     bool
	AllowWebSearch bool
}

// Registry holds the local tool descriptors and selects the per-request
// tool set by capability. It is populated once at startup and read-only
// afterwards, so it is safe for concurrent use.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a descriptor. Registration order is preserved in Select.
func (r *Registry) Add(d Descriptor) {
	r.descriptors = append(r.descriptors, d)
}

// Select returns the tools visible to one request. Image tools are
// excluded when opts.AllowImage is false and web search tools when
// opts.AllowWebSearch is false; every other capability always passes.
func (r *Registry) Select(opts FilterOptions) []ai.ToolRef {
	refs := make([]ai.ToolRef, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		switch d.Capability {
		case CapabilityImage:
			if !opts.AllowImage {
				continue
			}
		case CapabilityWebSearch:
			if !opts.AllowWebSearch {
				continue
			}
		}
		refs = append(refs, d.Tool)
	}
	return refs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		names = append(names, d.Name)
	}
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	return len(r.descriptors)
}
