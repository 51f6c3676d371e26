package chunk

import "strings"

// splitLinesKeepEnds splits content into lines the way Python's
// str.splitlines(keepends=True) does for "\n"-terminated text: each
// element keeps its trailing newline except possibly the last. Unlike
// splitlines, it only breaks on "\n"; bare "\r" or Unicode line
// separators pass through unsplit. Fine for LF-terminated source, which
// is what this chunks in practice.
func splitLinesKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	parts := strings.SplitAfter(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
