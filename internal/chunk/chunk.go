// Package chunk splits file content into overlapping, language-aware
// chunks for embedding and retrieval.
package chunk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dkazen/meridian/internal/merkle"
	"github.com/dkazen/meridian/internal/walker"
)

// Chunk is a single slice of a file's content plus its metadata.
type Chunk struct {
	Content    string
	StartLine  int
	EndLine    int
	ChunkIndex int
	ChunkHash  string
	Language   string
	SymbolName string
	SymbolType string
}

// Func is the shared contract every chunking strategy implements.
type Func func(content, filePath string, tokenTarget, overlapTokens int) []Chunk

// EstimateTokens estimates a token count at roughly 4 characters per token.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

var byExtension = map[string]Func{
	".ts": chunkTypeScript, ".tsx": chunkTypeScript,
	".js": chunkTypeScript, ".jsx": chunkTypeScript,
	".mjs": chunkTypeScript, ".cjs": chunkTypeScript,
	".py": chunkPython, ".pyw": chunkPython, ".pyx": chunkPython, ".pyi": chunkPython,
	".java": chunkJava, ".kt": chunkJava, ".kts": chunkJava,
	".go": chunkGo,
}

// File chunks content using the strategy appropriate for filePath's
// extension, falling back to the generic strategy for anything else. The
// returned chunks have Language set and ChunkHash recomputed from
// (filePath, chunkIndex, content) so identical content in two files (or two
// positions of the same file) never collides.
func File(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
	ext := strings.ToLower(filepath.Ext(filePath))
	fn, ok := byExtension[ext]
	if !ok {
		fn = chunkGeneric
	}

	chunks := fn(content, filePath, tokenTarget, overlapTokens)
	lang := walker.DetectLanguage(ext)
	for i := range chunks {
		chunks[i].Language = lang
		chunks[i].ChunkHash = merkle.HashString(fmt.Sprintf("%s\x00%d\x00%s", filePath, chunks[i].ChunkIndex, chunks[i].Content))
	}
	return chunks
}
