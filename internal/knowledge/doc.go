// Package knowledge provides the local knowledge base used by the
// knowledge_base_lookup tool.
//
// Documents are loaded once at startup from a JSON file and indexed in
// memory with TF-IDF term weighting. Search ranks documents by cosine
// similarity against the query vector. The index is immutable after
// construction and safe for concurrent reads.
package knowledge
