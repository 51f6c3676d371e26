package vectorstore

import "context"

// Store is a collection-oriented embedded-document store, modeled on a
// ChromaDB collection: documents are addressed by opaque string ids
// within a named collection, and similarity search is by text (the
// store embeds the query itself via its Embedder).
type Store interface {
	// Upsert inserts or replaces documents in a collection, creating the
	// collection (and its vector index) on first use.
	Upsert(ctx context.Context, collection string, docs []Document) error

	// DeleteIDs removes documents by id from a collection.
	DeleteIDs(ctx context.Context, collection string, ids []string) error

	// DeleteWhere removes every document in a collection whose metadata
	// matches all of the given key/value equality constraints.
	DeleteWhere(ctx context.Context, collection string, where map[string]string) error

	// Query embeds queryText and returns the topK nearest documents in
	// the collection, ordered by ascending distance.
	Query(ctx context.Context, collection string, queryText string, topK int) ([]QueryResult, error)

	// DeleteCollection removes a collection and all its documents.
	DeleteCollection(ctx context.Context, collection string) error

	Close() error
}
