package knowledge

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Store is an in-memory TF-IDF index over a small document corpus.
// Built once at startup; read-only afterwards.
type Store struct {
	docs    []Document
	idf     map[string]float64
	vectors []map[string]float64 // L2-normalized TF-IDF vectors, one per doc
}

// New loads the knowledge base file and builds the index.
// The file must contain a JSON array of {id, title, content} documents;
// a missing or malformed file is a startup error.
func New(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("knowledge base file not found: %w", err)
	}

	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("knowledge base must be a JSON array of documents: %w", err)
	}

	return NewFromDocuments(docs), nil
}

// NewFromDocuments builds an index over an in-memory corpus.
func NewFromDocuments(docs []Document) *Store {
	s := &Store{
		docs: docs,
		idf:  make(map[string]float64),
	}

	termCounts := make([]map[string]float64, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		counts := make(map[string]float64)
		for _, term := range tokenize(doc.Content) {
			counts[term]++
		}
		termCounts[i] = counts
		for term := range counts {
			df[term]++
		}
	}

	// Smoothed IDF: ln((1+n)/(1+df)) + 1, so terms present in every
	// document still contribute a little weight.
	n := float64(len(docs))
	for term, count := range df {
		s.idf[term] = math.Log((1+n)/(1+float64(count))) + 1
	}

	s.vectors = make([]map[string]float64, len(docs))
	for i, counts := range termCounts {
		s.vectors[i] = s.normalizedVector(counts)
	}
	return s
}

// Size returns the number of indexed documents.
func (s *Store) Size() int {
	return len(s.docs)
}

// Search returns the topK most similar documents to the query, ranked by
// descending cosine similarity. An empty or whitespace query returns nil.
// The full corpus is always ranked, so zero-score documents can appear
// when topK exceeds the number of matching documents.
func (s *Store) Search(query string, topK int) []Result {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK <= 0 || len(s.docs) == 0 {
		return nil
	}

	counts := make(map[string]float64)
	for _, term := range tokenize(query) {
		counts[term]++
	}
	queryVec := s.normalizedVector(counts)

	results := make([]Result, len(s.docs))
	for i, vec := range s.vectors {
		results[i] = Result{
			Document: s.docs[i],
			Score:    dot(queryVec, vec),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK]
}

// normalizedVector turns raw term counts into an L2-normalized TF-IDF
// vector. Terms absent from the corpus vocabulary are dropped.
func (s *Store) normalizedVector(counts map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(counts))
	var norm float64
	for term, tf := range counts {
		idf, ok := s.idf[term]
		if !ok {
			continue
		}
		w := tf * idf
		vec[term] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for term, w := range vec {
		vec[term] = w / norm
	}
	return vec
}

// dot computes the dot product of two sparse vectors. Both inputs are
// L2-normalized, so the result is the cosine similarity.
func dot(a, b map[string]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for term, w := range a {
		sum += w * b[term]
	}
	return sum
}

// tokenize splits text into lowercase alphanumeric terms, dropping
// English stop words.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

// stopWords is a compact English stop word list, enough to keep common
// filler terms from dominating the small demo corpus.
var stopWords = map[string]struct{}{
	"a": {}, "about": {}, "after": {}, "all": {}, "also": {}, "an": {},
	"and": {}, "any": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"because": {}, "been": {}, "before": {}, "being": {}, "between": {},
	"both": {}, "but": {}, "by": {}, "can": {}, "could": {}, "did": {},
	"do": {}, "does": {}, "during": {}, "each": {}, "for": {}, "from": {},
	"further": {}, "had": {}, "has": {}, "have": {}, "having": {}, "he": {},
	"her": {}, "here": {}, "him": {}, "his": {}, "how": {}, "i": {},
	"if": {}, "in": {}, "into": {}, "is": {}, "it": {}, "its": {},
	"just": {}, "more": {}, "most": {}, "my": {}, "no": {}, "nor": {},
	"not": {}, "now": {}, "of": {}, "off": {}, "on": {}, "once": {},
	"only": {}, "or": {}, "other": {}, "our": {}, "out": {}, "over": {},
	"own": {}, "same": {}, "she": {}, "should": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {},
	"those": {}, "through": {}, "to": {}, "too": {}, "under": {},
	"until": {}, "up": {}, "very": {}, "was": {}, "we": {}, "were": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"who": {}, "why": {}, "will": {}, "with": {}, "would": {}, "you": {},
	"your": {},
}
