// Package metastore persists repository, file, and merkle-node metadata in
// SQLite — the system of record for what has been ingested, independent of
// the vector store holding the actual embedded chunk content.
package metastore

import "time"

// Repository is a single indexed project.
type Repository struct {
	ID             string
	Name           string
	Path           string
	CollectionName string
	IngestedAt     *time.Time
}

// File is a single tracked file within a repository. ContentHash is empty
// and Skipped is true for files the walker declined to chunk.
type File struct {
	RepositoryID string
	FilePath     string
	ContentHash  string
	SizeBytes    int64
	Language     string
	ChunkCount   int
	Skipped      bool
	LastModified *time.Time
}

// MerkleNode is a single node (file leaf or directory rollup) in a
// repository's stored merkle tree.
type MerkleNode struct {
	RepositoryID string
	NodePath     string
	NodeHash     string
	IsDirectory  bool
	UpdatedAt    time.Time
}
