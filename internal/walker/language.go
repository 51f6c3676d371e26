package walker

// textExtensions is the allowlist of extensions (and a few bare filenames)
// treated as text without needing to sniff file contents. Anything outside
// this set falls through to magic-byte detection.
var textExtensions = map[string]bool{
	// Code
	".py": true, ".pyw": true, ".pyx": true, ".pyi": true,
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true,
	".java": true, ".kt": true, ".kts": true,
	".go": true,
	".rs": true,
	".c": true, ".h": true, ".cpp": true, ".cc": true, ".cxx": true, ".hpp": true, ".hxx": true,
	".cs":  true,
	".rb":  true,
	".erb": true,
	".php": true,
	".swift": true,
	".scala":  true,
	".lua":    true,
	".r": true, ".R": true,
	".pl": true, ".pm": true,
	".sh": true, ".bash": true, ".zsh": true, ".fish": true,
	".ps1": true, ".psm1": true,
	".bat": true, ".cmd": true,

	// Config / data
	".json": true, ".jsonc": true, ".json5": true,
	".yaml": true, ".yml": true,
	".toml": true,
	".ini": true, ".cfg": true, ".conf": true,
	".xml": true, ".xsl": true, ".xslt": true,
	".csv": true, ".tsv": true,
	".env":        true,
	".properties": true,

	// Web
	".html": true, ".htm": true, ".xhtml": true,
	".css": true, ".scss": true, ".sass": true, ".less": true,
	".svg": true,

	// Docs
	".md": true, ".mdx": true, ".markdown": true,
	".rst": true, ".txt": true, ".text": true,
	".adoc": true,
	".tex":  true, ".latex": true,

	// SQL
	".sql": true,

	// Other
	".graphql": true, ".gql": true,
	".proto": true,
	".tf": true, ".hcl": true,
	".vim": true,
	".el": true, ".lisp": true, ".clj": true, ".cljs": true, ".edn": true,
	".ex": true, ".exs": true,
	".erl": true, ".hrl": true,
	".hs":  true,
	".ml":  true, ".mli": true,
	".nim": true,
	".zig": true,
	".v":   true,
	".dart": true,
	".groovy": true,
	".gradle": true,

	// Build / CI: bare filenames, plus the .mk extension
	"Makefile":    true,
	"Dockerfile":  true,
	"Jenkinsfile": true,
	"Vagrantfile": true,
	".mk":         true,
}

// languageByExtension maps an extension to the chunker/metadata language
// identifier. Extensions absent from this map have no detected language
// (chunking still falls back to the generic strategy).
var languageByExtension = map[string]string{
	".py": "python", ".pyw": "python", ".pyx": "python", ".pyi": "python",
	".ts": "typescript", ".tsx": "typescript",
	".js": "javascript", ".jsx": "javascript", ".mjs": "javascript", ".cjs": "javascript",
	".java": "java", ".kt": "kotlin", ".kts": "kotlin",
	".go": "go",
	".rs": "rust",
	".c":  "c", ".h": "c",
	".cpp": "cpp", ".cc": "cpp", ".cxx": "cpp", ".hpp": "cpp",
	".rb":   "ruby",
	".php":  "php",
	".swift": "swift",
	".sql":  "sql",
	".sh": "shell", ".bash": "shell", ".zsh": "shell",
	".md": "markdown", ".mdx": "markdown",
	".json": "json", ".yaml": "yaml", ".yml": "yaml",
	".toml": "toml",
	".html": "html", ".css": "css",
	".xml": "xml",
}

// DetectLanguage returns the language identifier for a file extension
// (including the leading dot), or "" if none is known.
func DetectLanguage(ext string) string {
	return languageByExtension[ext]
}

// IsTextExtension reports whether ext (or name, for extension-less files
// like "Makefile") is on the known-text allowlist.
func IsTextExtension(ext, name string) bool {
	return textExtensions[ext] || textExtensions[name]
}
