package merkle

import (
	"sort"
	"strings"
)

// Node is a single entry in a merkle tree: either a file leaf or a
// directory rollup.
type Node struct {
	Hash  string
	IsDir bool
}

// BuildTree rolls a flat map of relative file paths to content hashes up
// into a full tree: every file path plus every directory prefix (using "."
// for the repository root), each with its own hash.
//
// A directory's hash is SHA256 of its direct children's hashes, "|"-joined
// in path-sorted order. Children are discovered by walking every
// path-separator prefix of every file path, so a directory with only
// subdirectories (no direct file children, only deeper ones) still gets a
// hash once its subdirectories have theirs.
//
// Directories are processed in strict descending-depth order (deepest
// first) so every directory's full child set — files and subdirectories
// alike — is guaranteed to already be in the result before that
// directory's own hash is computed. A naive depth sort that special-cases
// "." incorrectly (as opposed to giving it the shallowest depth) can place
// a directory ahead of children it hasn't seen yet and silently drop it
// from the tree; this does not do that.
func BuildTree(fileHashes map[string]string) map[string]Node {
	nodes := make(map[string]Node, len(fileHashes)*2)

	for path, hash := range fileHashes {
		nodes[path] = Node{Hash: hash, IsDir: false}
	}

	children := make(map[string][]string)
	seen := make(map[string]map[string]bool)

	for path := range fileHashes {
		parts := strings.Split(path, "/")
		for i := range parts {
			child := strings.Join(parts[:i+1], "/")
			parent := "."
			if i > 0 {
				parent = strings.Join(parts[:i], "/")
			}
			if seen[parent] == nil {
				seen[parent] = make(map[string]bool)
			}
			if !seen[parent][child] {
				seen[parent][child] = true
				children[parent] = append(children[parent], child)
			}
		}
	}

	dirs := make([]string, 0, len(children))
	for d := range children {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool {
		di, dj := depth(dirs[i]), depth(dirs[j])
		if di != dj {
			return di > dj // deepest first
		}
		return dirs[i] < dirs[j]
	})

	for _, dir := range dirs {
		kids := append([]string(nil), children[dir]...)
		sort.Strings(kids)

		hashes := make([]string, 0, len(kids))
		for _, kid := range kids {
			if n, ok := nodes[kid]; ok {
				hashes = append(hashes, n.Hash)
			}
		}
		if len(hashes) == 0 {
			continue
		}
		nodes[dir] = Node{Hash: HashString(strings.Join(hashes, "|")), IsDir: true}
	}

	return nodes
}

// depth returns a directory path's sort depth: "." (the repository root)
// is shallowest, everything else is its path-separator count plus one.
func depth(path string) int {
	if path == "." {
		return 0
	}
	return strings.Count(path, "/") + 1
}
