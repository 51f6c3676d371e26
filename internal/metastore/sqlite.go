package metastore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"

	"github.com/dkazen/meridian/internal/errs"
)

// Store is the process-wide metadata store. Open it once per process and
// reuse it; two Stores pointed at the same path are undefined behavior
// (the same constraint the SQLite connection itself carries under WAL).
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (creating if needed) the SQLite database at path with WAL
// journaling and foreign keys enabled, and applies any pending migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metastore directory: %w: %v", errs.ErrIOFailure, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open metastore: %w: %v", errs.ErrStoreFailure, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate metastore: %w: %v", errs.ErrSchemaFailure, err)
	}

	log.Debug("opened metastore", "path", path)
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRepository creates a repository record and returns its id.
func (s *Store) CreateRepository(name, path, collectionName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := newUUID()
	_, err := s.db.Exec(
		`INSERT INTO repositories (id, name, path, collection_name) VALUES (?, ?, ?, ?)`,
		id, name, path, collectionName,
	)
	if err != nil {
		return "", fmt.Errorf("create repository %q: %w: %v", name, errs.ErrStoreFailure, err)
	}
	return id, nil
}

func scanRepository(row interface{ Scan(...any) error }) (*Repository, error) {
	var r Repository
	var ingestedAt sql.NullString
	if err := row.Scan(&r.ID, &r.Name, &r.Path, &r.CollectionName, &ingestedAt); err != nil {
		return nil, err
	}
	if ingestedAt.Valid {
		t, err := time.Parse(time.RFC3339, ingestedAt.String)
		if err == nil {
			r.IngestedAt = &t
		}
	}
	return &r, nil
}

// GetRepositoryByName looks up a repository by its unique name. Returns
// (nil, nil) if not found.
func (s *Store) GetRepositoryByName(name string) (*Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, name, path, collection_name, ingested_at FROM repositories WHERE name = ?`, name,
	)
	r, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository %q: %w: %v", name, errs.ErrStoreFailure, err)
	}
	return r, nil
}

// GetRepositoryByPath looks up a repository by its absolute path. Returns
// (nil, nil) if not found.
func (s *Store) GetRepositoryByPath(path string) (*Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(
		`SELECT id, name, path, collection_name, ingested_at FROM repositories WHERE path = ?`, path,
	)
	r, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get repository at %q: %w: %v", path, errs.ErrStoreFailure, err)
	}
	return r, nil
}

// ListRepositories returns all repositories, ordered by name.
func (s *Store) ListRepositories() ([]Repository, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, path, collection_name, ingested_at FROM repositories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w: %v", errs.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []Repository
	for rows.Next() {
		r, err := scanRepository(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w: %v", errs.ErrStoreFailure, err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// UpdateRepositoryIngestedAt sets a repository's last-ingest timestamp to now.
func (s *Store) UpdateRepositoryIngestedAt(repositoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`UPDATE repositories SET ingested_at = ? WHERE id = ?`, now, repositoryID)
	if err != nil {
		return fmt.Errorf("update ingested_at for %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	return nil
}

// DeleteRepository deletes a repository and (via ON DELETE CASCADE) its
// files and merkle nodes.
func (s *Store) DeleteRepository(repositoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM repositories WHERE id = ?`, repositoryID)
	if err != nil {
		return fmt.Errorf("delete repository %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	return nil
}

// UpsertFile inserts or updates a tracked file.
func (s *Store) UpsertFile(f File) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lastModified any
	if f.LastModified != nil {
		lastModified = f.LastModified.UTC().Format(time.RFC3339)
	}
	var language any
	if f.Language != "" {
		language = f.Language
	}

	_, err := s.db.Exec(`
		INSERT INTO files (repository_id, file_path, content_hash, size_bytes, language, chunk_count, skipped, last_modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, file_path) DO UPDATE SET
			content_hash = excluded.content_hash,
			size_bytes = excluded.size_bytes,
			language = excluded.language,
			chunk_count = excluded.chunk_count,
			skipped = excluded.skipped,
			last_modified = excluded.last_modified
	`, f.RepositoryID, f.FilePath, f.ContentHash, f.SizeBytes, language, f.ChunkCount, boolToInt(f.Skipped), lastModified)
	if err != nil {
		return fmt.Errorf("upsert file %q: %w: %v", f.FilePath, errs.ErrStoreFailure, err)
	}
	return nil
}

func scanFile(row interface{ Scan(...any) error }) (*File, error) {
	var f File
	var language, lastModified sql.NullString
	var skipped int
	if err := row.Scan(&f.RepositoryID, &f.FilePath, &f.ContentHash, &f.SizeBytes, &language, &f.ChunkCount, &skipped, &lastModified); err != nil {
		return nil, err
	}
	f.Language = language.String
	f.Skipped = skipped != 0
	if lastModified.Valid {
		if t, err := time.Parse(time.RFC3339, lastModified.String); err == nil {
			f.LastModified = &t
		}
	}
	return &f, nil
}

// ListFiles returns all tracked files for a repository, ordered by path.
func (s *Store) ListFiles(repositoryID string) ([]File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT repository_id, file_path, content_hash, size_bytes, language, chunk_count, skipped, last_modified
		FROM files WHERE repository_id = ? ORDER BY file_path
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list files for %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w: %v", errs.ErrStoreFailure, err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// GetFile returns a single file record, or (nil, nil) if not tracked.
func (s *Store) GetFile(repositoryID, filePath string) (*File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`
		SELECT repository_id, file_path, content_hash, size_bytes, language, chunk_count, skipped, last_modified
		FROM files WHERE repository_id = ? AND file_path = ?
	`, repositoryID, filePath)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get file %q: %w: %v", filePath, errs.ErrStoreFailure, err)
	}
	return f, nil
}

// DeleteFilesByPaths removes file records by path. Returns the count deleted.
func (s *Store) DeleteFilesByPaths(repositoryID string, filePaths []string) (int64, error) {
	if len(filePaths) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(filePaths)), ",")
	args := make([]any, 0, len(filePaths)+1)
	args = append(args, repositoryID)
	for _, p := range filePaths {
		args = append(args, p)
	}

	result, err := s.db.Exec(
		fmt.Sprintf(`DELETE FROM files WHERE repository_id = ? AND file_path IN (%s)`, placeholders), args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete files: %w: %v", errs.ErrStoreFailure, err)
	}
	return result.RowsAffected()
}

// GetFileCount returns the number of tracked files in a repository.
func (s *Store) GetFileCount(repositoryID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM files WHERE repository_id = ?`, repositoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count files for %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	return count, nil
}

// BatchUpsertMerkleNodes upserts many merkle nodes in one transaction.
func (s *Store) BatchUpsertMerkleNodes(repositoryID string, nodes []MerkleNode) error {
	if len(nodes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin merkle upsert: %w: %v", errs.ErrStoreFailure, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO merkle_nodes (repository_id, node_path, node_hash, is_directory, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repository_id, node_path) DO UPDATE SET
			node_hash = excluded.node_hash,
			is_directory = excluded.is_directory,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("prepare merkle upsert: %w: %v", errs.ErrStoreFailure, err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, n := range nodes {
		if _, err := stmt.Exec(repositoryID, n.NodePath, n.NodeHash, boolToInt(n.IsDirectory), now); err != nil {
			return fmt.Errorf("upsert merkle node %q: %w: %v", n.NodePath, errs.ErrStoreFailure, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merkle upsert: %w: %v", errs.ErrStoreFailure, err)
	}
	return nil
}

// GetMerkleNodes returns every stored merkle node for a repository.
func (s *Store) GetMerkleNodes(repositoryID string) ([]MerkleNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT repository_id, node_path, node_hash, is_directory, updated_at
		FROM merkle_nodes WHERE repository_id = ? ORDER BY node_path
	`, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list merkle nodes for %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	defer rows.Close()

	var out []MerkleNode
	for rows.Next() {
		var n MerkleNode
		var isDir int
		var updatedAt string
		if err := rows.Scan(&n.RepositoryID, &n.NodePath, &n.NodeHash, &isDir, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan merkle node: %w: %v", errs.ErrStoreFailure, err)
		}
		n.IsDirectory = isDir != 0
		n.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteMerkleNodesByPaths removes merkle nodes by path. Returns the count deleted.
func (s *Store) DeleteMerkleNodesByPaths(repositoryID string, nodePaths []string) (int64, error) {
	if len(nodePaths) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(nodePaths)), ",")
	args := make([]any, 0, len(nodePaths)+1)
	args = append(args, repositoryID)
	for _, p := range nodePaths {
		args = append(args, p)
	}

	result, err := s.db.Exec(
		fmt.Sprintf(`DELETE FROM merkle_nodes WHERE repository_id = ? AND node_path IN (%s)`, placeholders), args...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete merkle nodes: %w: %v", errs.ErrStoreFailure, err)
	}
	return result.RowsAffected()
}

// ClearMerkleTree removes every merkle node for a repository.
func (s *Store) ClearMerkleTree(repositoryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM merkle_nodes WHERE repository_id = ?`, repositoryID)
	if err != nil {
		return fmt.Errorf("clear merkle tree for %q: %w: %v", repositoryID, errs.ErrStoreFailure, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
