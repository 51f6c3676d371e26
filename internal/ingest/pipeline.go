// Package ingest wires the walker, chunker, differ, metadata store, and
// vector store together into the two entry points that actually populate
// an index: a full/incremental repository ingest, and a forced ingest of
// specific files.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dkazen/meridian/internal/chunk"
	"github.com/dkazen/meridian/internal/differ"
	"github.com/dkazen/meridian/internal/merkle"
	"github.com/dkazen/meridian/internal/metastore"
	"github.com/dkazen/meridian/internal/vectorstore"
	"github.com/dkazen/meridian/internal/walker"
)

// upsertBatchSize caps how many documents go to the vector store in a
// single call, matching the batching the original pipeline applies when
// talking to its document store.
const upsertBatchSize = 500

// Options controls chunking and file-selection behavior for a single
// ingest call. It is the ingest package's view of a repository's
// resolved configuration — independent of how that configuration is
// loaded or overridden.
type Options struct {
	TokenTarget      int
	OverlapTokens    int
	ChunkThreshold   int
	MaxFileSizeBytes int64
}

// Summary reports what an ingest call did.
type Summary struct {
	Added    int
	Modified int
	Deleted  int
	Chunks   int
	Skipped  int
}

// ProgressFunc receives human-readable progress messages during a long
// ingest.
type ProgressFunc func(message string)

// Pipeline bundles the metadata store and the vector store that an
// ingest reconciles a repository against.
type Pipeline struct {
	Meta   *metastore.Store
	Vector vectorstore.Store
}

func (p *Pipeline) log(fn ProgressFunc, format string, args ...any) {
	if fn != nil {
		fn(fmt.Sprintf(format, args...))
	}
}

// slugify converts a repository name into a valid collection name: 3-63
// chars, lowercase alphanumeric plus hyphens/underscores.
func slugify(name string) string {
	slug := regexp.MustCompile(`[\s/.]+`).ReplaceAllString(strings.ToLower(name), "-")

	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	slug = b.String()

	for len(slug) < 3 {
		slug += "_"
	}
	if len(slug) > 63 {
		slug = slug[:63]
	}
	return slug
}

// IngestRepo performs a full or incremental ingest of repoPath. On the
// first call for a given name it creates the repository record; on
// later calls it only processes what the differ reports changed, unless
// force is set.
func (p *Pipeline) IngestRepo(ctx context.Context, repoPath, name string, force bool, opts Options, onProgress ProgressFunc) (Summary, error) {
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return Summary{}, fmt.Errorf("resolve repository path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.IsDir() {
		return Summary{}, fmt.Errorf("not a directory: %s", absPath)
	}

	repoName := name
	if repoName == "" {
		repoName = filepath.Base(absPath)
	}
	collectionName := slugify(repoName)

	repo, err := p.Meta.GetRepositoryByName(repoName)
	if err != nil {
		return Summary{}, fmt.Errorf("look up repository %q: %w", repoName, err)
	}

	var repoID string
	if repo == nil {
		repoID, err = p.Meta.CreateRepository(repoName, absPath, collectionName)
		if err != nil {
			return Summary{}, fmt.Errorf("create repository %q: %w", repoName, err)
		}
		p.log(onProgress, "created repository %q", repoName)
	} else {
		repoID = repo.ID
		collectionName = repo.CollectionName
	}

	p.log(onProgress, "scanning files...")
	walkResult, err := walker.Walk(absPath, walker.Options{
		TokenTarget:      opts.TokenTarget,
		ChunkThreshold:   opts.ChunkThreshold,
		MaxFileSizeBytes: opts.MaxFileSizeBytes,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("walk %s: %w", absPath, err)
	}
	if len(walkResult.Skipped) > 0 {
		p.log(onProgress, "skipped %d files", len(walkResult.Skipped))
	}

	p.log(onProgress, "computing file hashes...")
	fileHashes := make(map[string]string, len(walkResult.Files))
	for _, f := range walkResult.Files {
		h, err := hashFile(f.AbsPath)
		if err != nil {
			log.Warn("failed to hash file", "path", f.AbsPath, "err", err)
			continue
		}
		fileHashes[f.RelPath] = h
	}

	var changeset differ.Changeset
	if force {
		for rel := range fileHashes {
			changeset.Added = append(changeset.Added, rel)
		}
		p.log(onProgress, "force mode — re-indexing all files")
	} else {
		stored, err := p.storedFileHashes(repoID)
		if err != nil {
			return Summary{}, err
		}
		changeset = differ.Compute(stored, fileHashes)
		if !changeset.HasChanges() {
			p.log(onProgress, "no changes detected")
			if err := p.Meta.UpdateRepositoryIngestedAt(repoID); err != nil {
				return Summary{}, err
			}
			return Summary{Skipped: len(walkResult.Skipped)}, nil
		}
		p.log(onProgress, "changes: +%d ~%d -%d", len(changeset.Added), len(changeset.Modified), len(changeset.Deleted))
	}

	totalChunks := 0
	toProcess := append(append([]string{}, changeset.Added...), changeset.Modified...)
	modifiedSet := make(map[string]bool, len(changeset.Modified))
	for _, m := range changeset.Modified {
		modifiedSet[m] = true
	}

	for i, relPath := range toProcess {
		p.log(onProgress, "[%d/%d] %s", i+1, len(toProcess), relPath)

		absFile := filepath.Join(absPath, relPath)
		content, err := os.ReadFile(absFile)
		if err != nil {
			p.log(onProgress, "  could not read %s, skipping", relPath)
			continue
		}

		if modifiedSet[relPath] {
			if err := p.Vector.DeleteWhere(ctx, collectionName, map[string]string{"file_path": relPath}); err != nil {
				return Summary{}, fmt.Errorf("delete old chunks for %s: %w", relPath, err)
			}
		}

		chunks := chunk.File(string(content), relPath, opts.TokenTarget, opts.OverlapTokens)
		if err := p.upsertChunks(ctx, collectionName, chunks, relPath); err != nil {
			return Summary{}, err
		}
		totalChunks += len(chunks)

		stat, err := os.Stat(absFile)
		if err != nil {
			return Summary{}, fmt.Errorf("stat %s: %w", absFile, err)
		}
		modTime := stat.ModTime().UTC()
		if err := p.Meta.UpsertFile(metastore.File{
			RepositoryID: repoID,
			FilePath:     relPath,
			ContentHash:  fileHashes[relPath],
			SizeBytes:    stat.Size(),
			Language:     walker.DetectLanguage(filepath.Ext(relPath)),
			ChunkCount:   len(chunks),
			Skipped:      false,
			LastModified: &modTime,
		}); err != nil {
			return Summary{}, fmt.Errorf("record file %s: %w", relPath, err)
		}
	}

	for _, relPath := range changeset.Deleted {
		if err := p.Vector.DeleteWhere(ctx, collectionName, map[string]string{"file_path": relPath}); err != nil {
			return Summary{}, fmt.Errorf("delete chunks for removed file %s: %w", relPath, err)
		}
	}
	if len(changeset.Deleted) > 0 {
		if _, err := p.Meta.DeleteFilesByPaths(repoID, changeset.Deleted); err != nil {
			return Summary{}, err
		}
		p.log(onProgress, "removed %d deleted files", len(changeset.Deleted))
	}

	for _, skipped := range walkResult.Skipped {
		absFile := filepath.Join(absPath, skipped.RelPath)
		stat, err := os.Stat(absFile)
		if err != nil {
			continue
		}
		modTime := stat.ModTime().UTC()
		_ = p.Meta.UpsertFile(metastore.File{
			RepositoryID: repoID,
			FilePath:     skipped.RelPath,
			SizeBytes:    stat.Size(),
			Language:     walker.DetectLanguage(filepath.Ext(skipped.RelPath)),
			Skipped:      true,
			LastModified: &modTime,
		})
	}

	p.log(onProgress, "updating merkle tree...")
	nodes := merkle.BuildTree(fileHashes)
	merkleNodes := make([]metastore.MerkleNode, 0, len(nodes))
	for path, node := range nodes {
		merkleNodes = append(merkleNodes, metastore.MerkleNode{
			NodePath:    path,
			NodeHash:    node.Hash,
			IsDirectory: node.IsDir,
			UpdatedAt:   time.Now().UTC(),
		})
	}
	if err := p.Meta.BatchUpsertMerkleNodes(repoID, merkleNodes); err != nil {
		return Summary{}, fmt.Errorf("update merkle tree: %w", err)
	}
	if len(changeset.Deleted) > 0 {
		if _, err := p.Meta.DeleteMerkleNodesByPaths(repoID, changeset.Deleted); err != nil {
			return Summary{}, err
		}
	}

	if err := p.Meta.UpdateRepositoryIngestedAt(repoID); err != nil {
		return Summary{}, err
	}

	return Summary{
		Added:    len(changeset.Added),
		Modified: len(changeset.Modified),
		Deleted:  len(changeset.Deleted),
		Chunks:   totalChunks,
		Skipped:  len(walkResult.Skipped),
	}, nil
}

// IngestFiles force-ingests specific files of an already-ingested
// repository, bypassing the walker's chunk-threshold skip.
func (p *Pipeline) IngestFiles(ctx context.Context, repoName string, filePaths []string, opts Options) (Summary, error) {
	repo, err := p.Meta.GetRepositoryByName(repoName)
	if err != nil {
		return Summary{}, fmt.Errorf("look up repository %q: %w", repoName, err)
	}
	if repo == nil {
		return Summary{}, fmt.Errorf("repository %q not found, run ingest first", repoName)
	}

	totalChunks := 0
	processed := 0

	for _, fp := range filePaths {
		absFile, err := filepath.Abs(fp)
		if err != nil {
			continue
		}
		info, err := os.Stat(absFile)
		if err != nil || info.IsDir() {
			continue
		}

		relPath, err := filepath.Rel(repo.Path, absFile)
		if err != nil {
			continue
		}

		content, err := os.ReadFile(absFile)
		if err != nil {
			continue
		}

		if err := p.Vector.DeleteWhere(ctx, repo.CollectionName, map[string]string{"file_path": relPath}); err != nil {
			return Summary{}, fmt.Errorf("delete old chunks for %s: %w", relPath, err)
		}

		chunks := chunk.File(string(content), relPath, opts.TokenTarget, opts.OverlapTokens)
		if err := p.upsertChunks(ctx, repo.CollectionName, chunks, relPath); err != nil {
			return Summary{}, err
		}
		totalChunks += len(chunks)

		hash, err := hashFile(absFile)
		if err != nil {
			return Summary{}, fmt.Errorf("hash %s: %w", relPath, err)
		}
		modTime := info.ModTime().UTC()
		if err := p.Meta.UpsertFile(metastore.File{
			RepositoryID: repo.ID,
			FilePath:     relPath,
			ContentHash:  hash,
			SizeBytes:    info.Size(),
			Language:     walker.DetectLanguage(filepath.Ext(relPath)),
			ChunkCount:   len(chunks),
			LastModified: &modTime,
		}); err != nil {
			return Summary{}, fmt.Errorf("record file %s: %w", relPath, err)
		}
		processed++
	}

	return Summary{Added: processed, Chunks: totalChunks}, nil
}

func (p *Pipeline) upsertChunks(ctx context.Context, collection string, chunks []chunk.Chunk, filePath string) error {
	if len(chunks) == 0 {
		return nil
	}

	docs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		meta := map[string]string{
			"file_path":   filePath,
			"start_line":  fmt.Sprintf("%d", c.StartLine),
			"end_line":    fmt.Sprintf("%d", c.EndLine),
			"chunk_index": fmt.Sprintf("%d", c.ChunkIndex),
		}
		if c.Language != "" {
			meta["language"] = c.Language
		}
		if c.SymbolName != "" {
			meta["symbol_name"] = c.SymbolName
		}
		if c.SymbolType != "" {
			meta["symbol_type"] = c.SymbolType
		}
		docs[i] = vectorstore.Document{ID: c.ChunkHash, Content: c.Content, Metadata: meta}
	}

	for i := 0; i < len(docs); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := p.Vector.Upsert(ctx, collection, docs[i:end]); err != nil {
			return fmt.Errorf("upsert chunks for %s: %w", filePath, err)
		}
	}
	return nil
}

// storedFileHashes returns the stored side of the differ's set-diff: the
// repository's Merkle leaf nodes, keyed by path. The Files metadata table
// is not an acceptable substitute: IngestFiles updates it without
// maintaining the Merkle tree, so comparing against Files would mask that
// gap instead of converging on the next full ingest.
func (p *Pipeline) storedFileHashes(repositoryID string) (map[string]string, error) {
	nodes, err := p.Meta.GetMerkleNodes(repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list merkle nodes: %w", err)
	}
	hashes := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if n.IsDirectory {
			continue
		}
		hashes[n.NodePath] = n.NodeHash
	}
	return hashes, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return merkle.HashBytes(f)
}
