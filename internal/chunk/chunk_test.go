package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTokensFloor(t *testing.T) {
	assert.Equal(t, 1, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abc"))
	assert.Equal(t, 2, EstimateTokens(strings.Repeat("a", 8)))
}

func TestFileDispatchesByExtensionAndSetsLanguage(t *testing.T) {
	src := "package main\n\nfunc Hello() {\n\treturn\n}\n"
	chunks := File(src, "hello.go", 500, 64)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.Equal(t, "go", c.Language)
		assert.NotEmpty(t, c.ChunkHash)
	}
}

func TestFileUnknownExtensionUsesGeneric(t *testing.T) {
	chunks := File("hello\nworld\n", "notes.xyz123", 500, 64)
	require.NotEmpty(t, chunks)
	assert.Equal(t, "", chunks[0].Language)
}

func TestChunkHashDependsOnFilePathAndIndex(t *testing.T) {
	a := File("same content\n", "a.txt", 500, 64)
	b := File("same content\n", "b.txt", 500, 64)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].ChunkHash, b[0].ChunkHash)
}

func TestChunkGoExtractsFunctionAndMethodSymbols(t *testing.T) {
	src := `package demo

func Standalone() int {
	return 1
}

type Greeter struct {
	Name string
}

func (g *Greeter) Greet() string {
	return "hi " + g.Name
}
`
	chunks := chunkGo(src, "demo.go", 500, 64)
	require.NotEmpty(t, chunks)

	var sawFunction, sawMethod bool
	for _, c := range chunks {
		if c.SymbolName == "Standalone" && c.SymbolType == "function" {
			sawFunction = true
		}
		if c.SymbolName == "Greeter.Greet" && c.SymbolType == "method" {
			sawMethod = true
		}
	}
	assert.True(t, sawFunction, "expected to find Standalone function chunk")
	assert.True(t, sawMethod, "expected to find Greeter.Greet method chunk")
}

func TestChunkPythonKeepsDecoratorWithFunction(t *testing.T) {
	src := "import os\n\n\n@app.route(\"/\")\ndef index():\n    return os.getcwd()\n"
	chunks := chunkPython(src, "app.py", 500, 64)
	require.NotEmpty(t, chunks)

	var found bool
	for _, c := range chunks {
		if c.SymbolName == "index" {
			found = true
			assert.True(t, strings.Contains(c.Content, "@app.route"))
		}
	}
	assert.True(t, found)
}

func TestChunkGenericSplitsOnTokenTarget(t *testing.T) {
	line := strings.Repeat("x", 40) + "\n"
	content := strings.Repeat(line, 50)
	chunks := chunkGeneric(content, "big.log", 50, 10)
	require.True(t, len(chunks) > 1, "expected multiple chunks from a long file")
}

func TestChunkEmptyContentYieldsNoChunks(t *testing.T) {
	assert.Empty(t, chunkGeneric("   \n\n", "empty.txt", 500, 64))
	assert.Empty(t, chunkGo("", "empty.go", 500, 64))
	assert.Empty(t, chunkPython("\n", "empty.py", 500, 64))
}
