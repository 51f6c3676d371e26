package chunk

import (
	"regexp"
	"strings"
)

var javaBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\s*(public|private|protected|static|\s)*\s*(class|interface|enum|record)\s+(\w+)`),
	regexp.MustCompile(`^\s*(public|private|protected|static|final|abstract|synchronized|native|\s)*\s*(<[\w<>,\s]+>\s+)?(\w+(\[\])*)\s+(\w+)\s*\(`),
	regexp.MustCompile(`^\s*@\w+`),
	regexp.MustCompile(`^\s*import\s`),
	regexp.MustCompile(`^\s*package\s`),
}

var javaTypeKeywordRes = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"class", regexp.MustCompile(`class\s+(\w+)`)},
	{"interface", regexp.MustCompile(`interface\s+(\w+)`)},
	{"enum", regexp.MustCompile(`enum\s+(\w+)`)},
	{"record", regexp.MustCompile(`record\s+(\w+)`)},
}

var javaMethodRe = regexp.MustCompile(`(\w+)\s*\(`)

var javaControlKeywords = map[string]bool{
	"if": true, "while": true, "for": true, "switch": true, "catch": true,
}

func isJavaBlockStart(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	indent := len(line) - len(stripped)
	if indent > 8 {
		return false
	}
	for _, p := range javaBlockPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

func extractJavaSymbol(line string) (name, kind string) {
	stripped := strings.TrimLeft(line, " \t")
	for _, kw := range javaTypeKeywordRes {
		if m := kw.re.FindStringSubmatch(stripped); m != nil {
			return m[1], kw.kind
		}
	}
	if m := javaMethodRe.FindStringSubmatch(stripped); m != nil && !javaControlKeywords[m[1]] {
		return m[1], "method"
	}
	return "", ""
}

// chunkJava splits Java/Kotlin source at class/method boundaries, peeling
// off the package/import/javadoc header, gating a block split on the
// current buffer holding more than 0.3x the token target, and
// force-splitting (no overlap) at 1.5x the target.
func chunkJava(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := splitLinesKeepEnds(content)
	var chunks []Chunk

	var header []string
	codeStart := 0
headerLoop:
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "package "),
			strings.HasPrefix(stripped, "import "),
			stripped == "",
			strings.HasPrefix(stripped, "//"),
			strings.HasPrefix(stripped, "/*"),
			strings.HasPrefix(stripped, "*"):
			header = append(header, line)
			codeStart = i + 1
		default:
			break headerLoop
		}
	}

	if len(header) > 0 && EstimateTokens(strings.Join(header, "")) > 10 {
		chunks = append(chunks, Chunk{
			Content: strings.Join(header, ""), StartLine: 1, EndLine: codeStart, ChunkIndex: 0,
		})
	}

	var current []string
	currentStart := codeStart + 1
	var currentSymbol, currentSymbolType string
	currentTokens := 0
	splitGate := int(float64(tokenTarget) * 0.3)
	forceSplit := int(float64(tokenTarget) * 1.5)

	for i := codeStart; i < len(lines); i++ {
		line := lines[i]
		lineNum := i + 1
		lineTokens := EstimateTokens(line)

		if isJavaBlockStart(line) && len(current) > 0 && currentTokens > splitGate {
			text := strings.Join(current, "")
			if strings.TrimSpace(text) != "" {
				chunks = append(chunks, Chunk{
					Content: text, StartLine: currentStart, EndLine: lineNum - 1,
					ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
				})
			}
			current = []string{line}
			currentStart = lineNum
			currentSymbol, currentSymbolType = extractJavaSymbol(line)
			currentTokens = lineTokens
			continue
		}

		if currentTokens+lineTokens > forceSplit && len(current) > 0 {
			text := strings.Join(current, "")
			if strings.TrimSpace(text) != "" {
				chunks = append(chunks, Chunk{
					Content: text, StartLine: currentStart, EndLine: lineNum - 1,
					ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
				})
			}
			current = []string{line}
			currentStart = lineNum
			currentSymbol, currentSymbolType = "", ""
			currentTokens = lineTokens
			continue
		}

		if len(current) == 0 {
			currentSymbol, currentSymbolType = extractJavaSymbol(line)
		}
		current = append(current, line)
		currentTokens += lineTokens
	}

	if len(current) > 0 {
		text := strings.Join(current, "")
		if strings.TrimSpace(text) != "" {
			chunks = append(chunks, Chunk{
				Content: text, StartLine: currentStart, EndLine: len(lines),
				ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
			})
		}
	}

	return chunks
}
