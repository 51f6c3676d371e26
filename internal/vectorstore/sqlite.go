package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"

	"github.com/dkazen/meridian/internal/errs"
)

func init() {
	sqlite_vec.Auto()
}

var collectionNameRe = regexp.MustCompile(`^[a-z0-9_]{1,63}$`)

// SQLiteStore implements Store using SQLite for document/metadata rows
// and sqlite-vec virtual tables for the embedding index, one pair of
// tables per collection.
type SQLiteStore struct {
	db       *sql.DB
	embedder Embedder
	mu       sync.RWMutex
}

// Open opens (creating if needed) the SQLite database at path. embedder
// is used to turn document and query text into vectors; the store never
// accepts pre-computed vectors from callers.
func Open(path string, embedder Embedder) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create vectorstore directory: %w: %v", errs.ErrIOFailure, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open vectorstore: %w: %v", errs.ErrStoreFailure, err)
	}

	log.Debug("opened vectorstore", "path", path)
	return &SQLiteStore{db: db, embedder: embedder}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func tableNames(collection string) (docs, vec string, err error) {
	name := strings.ReplaceAll(collection, "-", "_")
	if !collectionNameRe.MatchString(name) {
		return "", "", fmt.Errorf("invalid collection name %q: %w", collection, errs.ErrBadInput)
	}
	return "coll_" + name + "_docs", "coll_" + name + "_vec", nil
}

func (s *SQLiteStore) ensureCollection(docsTable, vecTable string) error {
	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s" (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			doc_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}'
		);
	`, docsTable)); err != nil {
		return fmt.Errorf("create documents table: %w: %v", errs.ErrSchemaFailure, err)
	}

	if _, err := s.db.Exec(fmt.Sprintf(`
		CREATE VIRTUAL TABLE IF NOT EXISTS "%s" USING vec0(
			embedding float[%d] distance_metric=cosine
		);
	`, vecTable, s.embedder.Dimensions())); err != nil {
		return fmt.Errorf("create vector table: %w: %v", errs.ErrSchemaFailure, err)
	}
	return nil
}

// Upsert inserts or replaces documents, embedding their content via the
// store's Embedder. An existing document with the same id is fully
// replaced (content, metadata, and embedding).
func (s *SQLiteStore) Upsert(ctx context.Context, collection string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	docsTable, vecTable, err := tableNames(collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureCollection(docsTable, vecTable); err != nil {
		return err
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w: %v", errs.ErrStoreFailure, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin upsert: %w: %v", errs.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	for i, d := range docs {
		metaJSON, err := json.Marshal(d.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for %q: %w: %v", d.ID, errs.ErrBadInput, err)
		}

		var existingRowID int64
		err = tx.QueryRow(fmt.Sprintf(`SELECT rowid FROM "%s" WHERE doc_id = ?`, docsTable), d.ID).Scan(&existingRowID)
		switch {
		case err == sql.ErrNoRows:
			result, err := tx.Exec(fmt.Sprintf(
				`INSERT INTO "%s" (doc_id, content, metadata) VALUES (?, ?, ?)`, docsTable,
			), d.ID, d.Content, string(metaJSON))
			if err != nil {
				return fmt.Errorf("insert document %q: %w: %v", d.ID, errs.ErrStoreFailure, err)
			}
			existingRowID, _ = result.LastInsertId()
		case err == nil:
			if _, err := tx.Exec(fmt.Sprintf(
				`UPDATE "%s" SET content = ?, metadata = ? WHERE rowid = ?`, docsTable,
			), d.Content, string(metaJSON), existingRowID); err != nil {
				return fmt.Errorf("update document %q: %w: %v", d.ID, errs.ErrStoreFailure, err)
			}
			if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s" WHERE rowid = ?`, vecTable), existingRowID); err != nil {
				return fmt.Errorf("clear old vector for %q: %w: %v", d.ID, errs.ErrStoreFailure, err)
			}
		default:
			return fmt.Errorf("lookup document %q: %w: %v", d.ID, errs.ErrStoreFailure, err)
		}

		if _, err := tx.Exec(fmt.Sprintf(
			`INSERT INTO "%s" (rowid, embedding) VALUES (?, ?)`, vecTable,
		), existingRowID, serializeEmbedding(embeddings[i])); err != nil {
			return fmt.Errorf("insert vector for %q: %w: %v", d.ID, errs.ErrStoreFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w: %v", errs.ErrStoreFailure, err)
	}
	return nil
}

// DeleteIDs removes documents by id. Ids that don't exist are ignored.
func (s *SQLiteStore) DeleteIDs(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	docsTable, vecTable, err := tableNames(collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.collectionExists(docsTable) {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w: %v", errs.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	rows, err := tx.Query(fmt.Sprintf(`SELECT rowid FROM "%s" WHERE doc_id IN (%s)`, docsTable, placeholders), args...)
	if err != nil {
		return fmt.Errorf("find documents to delete: %w: %v", errs.ErrStoreFailure, err)
	}
	var rowIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan rowid: %w: %v", errs.ErrStoreFailure, err)
		}
		rowIDs = append(rowIDs, id)
	}
	rows.Close()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s" WHERE doc_id IN (%s)`, docsTable, placeholders), args...); err != nil {
		return fmt.Errorf("delete documents: %w: %v", errs.ErrStoreFailure, err)
	}
	for _, rowID := range rowIDs {
		if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM "%s" WHERE rowid = ?`, vecTable), rowID); err != nil {
			return fmt.Errorf("delete vector for rowid %d: %w: %v", rowID, errs.ErrStoreFailure, err)
		}
	}

	return tx.Commit()
}

// DeleteWhere removes every document whose metadata matches all given
// key/value constraints. Metadata is opaque JSON to SQLite, so the match
// is evaluated in Go after a full-collection scan.
func (s *SQLiteStore) DeleteWhere(ctx context.Context, collection string, where map[string]string) error {
	docsTable, _, err := tableNames(collection)
	if err != nil {
		return err
	}

	s.mu.RLock()
	exists := s.collectionExists(docsTable)
	s.mu.RUnlock()
	if !exists {
		return nil
	}

	s.mu.RLock()
	rows, err := s.db.Query(fmt.Sprintf(`SELECT doc_id, metadata FROM "%s"`, docsTable))
	if err != nil {
		s.mu.RUnlock()
		return fmt.Errorf("scan collection %q: %w: %v", collection, errs.ErrStoreFailure, err)
	}
	var matches []string
	for rows.Next() {
		var id, metaJSON string
		if err := rows.Scan(&id, &metaJSON); err != nil {
			rows.Close()
			s.mu.RUnlock()
			return fmt.Errorf("scan metadata row: %w: %v", errs.ErrStoreFailure, err)
		}
		var meta map[string]string
		if err := json.Unmarshal([]byte(metaJSON), &meta); err != nil {
			continue
		}
		if metadataMatches(meta, where) {
			matches = append(matches, id)
		}
	}
	rows.Close()
	s.mu.RUnlock()

	return s.DeleteIDs(ctx, collection, matches)
}

func metadataMatches(meta, where map[string]string) bool {
	for k, v := range where {
		if meta[k] != v {
			return false
		}
	}
	return true
}

// Query embeds queryText and returns its nearest neighbors in the
// collection by cosine distance, ascending.
func (s *SQLiteStore) Query(ctx context.Context, collection string, queryText string, topK int) ([]QueryResult, error) {
	docsTable, vecTable, err := tableNames(collection)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.collectionExists(docsTable) {
		return nil, nil
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %v", errs.ErrStoreFailure, err)
	}

	kForVec := topK * 10
	if kForVec > 1000 {
		kForVec = 1000
	}
	if kForVec < 1 {
		kForVec = 1
	}

	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT d.doc_id, d.content, d.metadata, v.distance
		FROM "%s" v
		JOIN "%s" d ON d.rowid = v.rowid
		WHERE v.embedding MATCH ? AND k = ?
		ORDER BY v.distance ASC
		LIMIT ?
	`, vecTable, docsTable), serializeEmbedding(queryVec), kForVec, topK)
	if err != nil {
		return nil, fmt.Errorf("query collection %q: %w: %v", collection, errs.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []QueryResult
	for rows.Next() {
		var r QueryResult
		var metaJSON string
		if err := rows.Scan(&r.ID, &r.Document, &metaJSON, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan query result: %w: %v", errs.ErrStoreFailure, err)
		}
		_ = json.Unmarshal([]byte(metaJSON), &r.Metadata)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteCollection drops a collection's tables entirely.
func (s *SQLiteStore) DeleteCollection(ctx context.Context, collection string) error {
	docsTable, vecTable, err := tableNames(collection)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, vecTable)); err != nil {
		return fmt.Errorf("drop vector table for %q: %w: %v", collection, errs.ErrStoreFailure, err)
	}
	if _, err := s.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, docsTable)); err != nil {
		return fmt.Errorf("drop documents table for %q: %w: %v", collection, errs.ErrStoreFailure, err)
	}
	return nil
}

func (s *SQLiteStore) collectionExists(docsTable string) bool {
	var name string
	err := s.db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, docsTable).Scan(&name)
	return err == nil
}
