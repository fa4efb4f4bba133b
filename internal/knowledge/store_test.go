package knowledge

import (
	"os"
	"path/filepath"
	"testing"
)

func testCorpus() []Document {
	return []Document{
		{ID: 1, Title: "Go", Content: "Go is a statically typed compiled programming language designed at Google."},
		{ID: 2, Title: "Python", Content: "Python is an interpreted high level programming language known for readability."},
		{ID: 3, Title: "Coffee", Content: "Coffee is a brewed drink prepared from roasted coffee beans."},
	}
}

func TestNew_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	data := `[{"id": 1, "title": "Go", "content": "Go is a programming language."}]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	store, err := New(path)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}

func TestNew_MissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("New(missing file) expected error, got nil")
	}
}

func TestNew_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kb.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := New(path); err == nil {
		t.Fatal("New(malformed) expected error, got nil")
	}
}

func TestSearch_RanksByRelevance(t *testing.T) {
	store := NewFromDocuments(testCorpus())

	results := store.Search("compiled programming language", 3)
	if len(results) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(results))
	}
	if results[0].Document.Title != "Go" {
		t.Errorf("top result = %q, want %q", results[0].Document.Title, "Go")
	}
	if results[0].Score <= results[2].Score {
		t.Errorf("scores not descending: %v vs %v", results[0].Score, results[2].Score)
	}
}

func TestSearch_IncludesZeroScores(t *testing.T) {
	store := NewFromDocuments(testCorpus())

	// "coffee" matches one document; the other two come back with score 0.
	results := store.Search("coffee", 3)
	if len(results) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(results))
	}
	if results[0].Document.Title != "Coffee" {
		t.Errorf("top result = %q, want %q", results[0].Document.Title, "Coffee")
	}
	if results[0].Score <= 0 {
		t.Errorf("top score = %v, want > 0", results[0].Score)
	}
	if results[2].Score != 0 {
		t.Errorf("last score = %v, want 0", results[2].Score)
	}
}

func TestSearch_TopKClampsToCorpus(t *testing.T) {
	store := NewFromDocuments(testCorpus())

	results := store.Search("language", 10)
	if len(results) != 3 {
		t.Errorf("Search(topK=10) returned %d results, want 3", len(results))
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	store := NewFromDocuments(testCorpus())

	for _, q := range []string{"", "   ", "\t\n"} {
		if got := store.Search(q, 3); got != nil {
			t.Errorf("Search(%q) = %v, want nil", q, got)
		}
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	store := NewFromDocuments(testCorpus())

	upper := store.Search("COFFEE", 1)
	lower := store.Search("coffee", 1)
	if len(upper) != 1 || len(lower) != 1 {
		t.Fatal("expected one result each")
	}
	if upper[0].Score != lower[0].Score {
		t.Errorf("case sensitivity in scores: %v vs %v", upper[0].Score, lower[0].Score)
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	store := NewFromDocuments(nil)
	if got := store.Search("anything", 3); got != nil {
		t.Errorf("Search on empty corpus = %v, want nil", got)
	}
}
