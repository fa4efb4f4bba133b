package tools

import (
	"reflect"
	"testing"

	"github.com/firebase/genkit/go/ai"
)

// stubToolRef satisfies ai.ToolRef without a Genkit instance.
type stubToolRef string

func (s stubToolRef) Name() string { return string(s) }

func testRegistry() *Registry {
	r := NewRegistry()
	for _, d := range []Descriptor{
		{Name: "image_generator", Capability: CapabilityImage, Tool: stubToolRef("image_generator")},
		{Name: "knowledge_base_lookup", Capability: CapabilityKnowledge, Tool: stubToolRef("knowledge_base_lookup")},
		{Name: "current_time", Capability: CapabilityUtility, Tool: stubToolRef("current_time")},
		{Name: "web_search", Capability: CapabilityWebSearch, Tool: stubToolRef("web_search")},
	} {
		r.Add(d)
	}
	return r
}

func selectedNames(refs []ai.ToolRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name())
	}
	return names
}

func TestRegistry_SelectAll(t *testing.T) {
	r := testRegistry()

	got := selectedNames(r.Select(FilterOptions{AllowImage: true, AllowWebSearch: true}))
	want := []string{"image_generator", "knowledge_base_lookup", "current_time", "web_search"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Select(all) = %v, want %v", got, want)
	}
}

func TestRegistry_SelectFilters(t *testing.T) {
	r := testRegistry()

	tests := []struct {
		name string
		opts FilterOptions
		want []string
	}{
		{
			name: "no image",
			opts: FilterOptions{AllowImage: false, AllowWebSearch: true},
			want: []string{"knowledge_base_lookup", "current_time", "web_search"},
		},
		{
			name: "no web search",
			opts: FilterOptions{AllowImage: true, AllowWebSearch: false},
			want: []string{"image_generator", "knowledge_base_lookup", "current_time"},
		},
		{
			name: "neither",
			opts: FilterOptions{},
			want: []string{"knowledge_base_lookup", "current_time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectedNames(r.Select(tt.opts))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Select(%+v) = %v, want %v", tt.opts, got, tt.want)
			}
		})
	}
}

func TestRegistry_Names(t *testing.T) {
	r := testRegistry()

	want := []string{"image_generator", "knowledge_base_lookup", "current_time", "web_search"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
	if r.Count() != 4 {
		t.Errorf("Count() = %d, want 4", r.Count())
	}
}
