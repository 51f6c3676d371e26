// Package walker discovers the indexable files under a repository root,
// applying the ignore-directory list, a root .gitignore, hidden-file
// skipping, binary detection, a size cap, and a chunk-count estimate cap.
// Files left out as binary, oversized, or over the chunk estimate are
// recorded with a reason; ignored directories, .gitignore matches, and
// hidden files are left out without a record.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ignoredDirNames are always skipped regardless of .gitignore contents.
var ignoredDirNames = map[string]bool{
	"node_modules": true,
	"__pycache__":  true,
	"venv":         true,
	".venv":        true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".git":         true,
}

// Options configures a single walk.
type Options struct {
	TokenTarget      int
	ChunkThreshold   int
	MaxFileSizeBytes int64
}

// File is a single indexable file discovered by Walk.
type File struct {
	AbsPath string
	RelPath string
	Size    int64
}

// Skipped records a file that was left out, and why.
type Skipped struct {
	RelPath string
	Reason  string
}

// Result is the outcome of a single Walk call.
type Result struct {
	Files   []File
	Skipped []Skipped
}

// Walk traverses root and classifies every file under it.
func Walk(root string, opts Options) (*Result, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	ignore := loadGitignore(root)
	result := &Result{}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || ignoredDirNames[name] {
				return filepath.SkipDir
			}
			if ignore != nil && ignore.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if ignore != nil && ignore.MatchesPath(rel) {
			return nil
		}

		// IsBinaryFile never actually returns a non-nil error (open/read
		// failures are folded into its bool result); this branch is kept
		// for when that changes rather than dropped as dead.
		binary, err := IsBinaryFile(path)
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{RelPath: rel, Reason: "unreadable"})
			return nil
		}
		if binary {
			result.Skipped = append(result.Skipped, Skipped{RelPath: rel, Reason: "binary"})
			return nil
		}

		info, err := d.Info()
		if err != nil {
			result.Skipped = append(result.Skipped, Skipped{RelPath: rel, Reason: "unreadable"})
			return nil
		}

		if opts.MaxFileSizeBytes > 0 && info.Size() > opts.MaxFileSizeBytes {
			result.Skipped = append(result.Skipped, Skipped{
				RelPath: rel,
				Reason:  fmt.Sprintf("too large (%d bytes)", info.Size()),
			})
			return nil
		}

		estimated := EstimateChunks(info.Size(), opts.TokenTarget)
		if opts.ChunkThreshold > 0 && estimated > opts.ChunkThreshold {
			result.Skipped = append(result.Skipped, Skipped{
				RelPath: rel,
				Reason:  fmt.Sprintf("estimated %d chunks > threshold %d", estimated, opts.ChunkThreshold),
			})
			return nil
		}

		result.Files = append(result.Files, File{AbsPath: path, RelPath: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return result, nil
}

// loadGitignore loads a .gitignore from the repository root only — nested
// .gitignore files are not consulted. Returns nil if none exists or it
// can't be parsed.
func loadGitignore(root string) *gitignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	gi, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil
	}
	return gi
}
