// Package vectorstore holds embedded chunk content and serves similarity
// search over it, independent of the metadata store that tracks which
// files and repositories exist. It mirrors a ChromaDB-style collection
// contract: documents are upserted with a string id and a metadata map,
// and queries are by text (embedding happens internally via an injected
// Embedder) rather than by a pre-computed vector.
package vectorstore

// Document is a single chunk of text to be embedded and stored, keyed by
// an opaque id unique within its collection.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// QueryResult is a single hit from a similarity search.
type QueryResult struct {
	ID       string
	Document string
	Metadata map[string]string
	Distance float32
}
