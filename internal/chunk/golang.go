package chunk

import (
	"regexp"
	"strings"
)

var goBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^func\s`),
	regexp.MustCompile(`^func\s*\(\w+\s+\*?\w+\)`),
	regexp.MustCompile(`^type\s+\w+\s+struct\b`),
	regexp.MustCompile(`^type\s+\w+\s+interface\b`),
	regexp.MustCompile(`^type\s+\w+\s`),
	regexp.MustCompile(`^var\s`),
	regexp.MustCompile(`^const\s`),
	regexp.MustCompile(`^import\s`),
	regexp.MustCompile(`^package\s`),
}

var (
	goMethodRe = regexp.MustCompile(`^func\s*\(\w+\s+\*?(\w+)\)\s+(\w+)`)
	goFuncRe   = regexp.MustCompile(`^func\s+(\w+)`)
	goTypeKind = regexp.MustCompile(`^type\s+(\w+)\s+(struct|interface)`)
	goTypeRe   = regexp.MustCompile(`^type\s+(\w+)\s`)
)

func isGoBlockStart(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	if len(line)-len(stripped) > 0 {
		return false // Go top-level only
	}
	for _, p := range goBlockPatterns {
		if p.MatchString(stripped) {
			return true
		}
	}
	return false
}

func extractGoSymbol(line string) (name, kind string) {
	s := strings.TrimSpace(line)

	if m := goMethodRe.FindStringSubmatch(s); m != nil {
		return m[1] + "." + m[2], "method"
	}
	if m := goFuncRe.FindStringSubmatch(s); m != nil {
		return m[1], "function"
	}
	if m := goTypeKind.FindStringSubmatch(s); m != nil {
		return m[1], m[2]
	}
	if m := goTypeRe.FindStringSubmatch(s); m != nil {
		return m[1], "type"
	}
	return "", ""
}

// chunkGo splits Go source at top-level func/type/var/const boundaries,
// peeling off the package clause and import block as a header chunk, and
// force-splitting (no overlap) at 1.5x the token target.
func chunkGo(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := splitLinesKeepEnds(content)
	var chunks []Chunk

	var header []string
	codeStart := 0
	inImportBlock := false
headerLoop:
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "package "):
			header = append(header, line)
			codeStart = i + 1
		case stripped == "import (" || strings.HasPrefix(stripped, "import "):
			inImportBlock = stripped == "import ("
			header = append(header, line)
			codeStart = i + 1
		case inImportBlock:
			header = append(header, line)
			codeStart = i + 1
			if stripped == ")" {
				inImportBlock = false
			}
		case stripped == "" || strings.HasPrefix(stripped, "//"):
			header = append(header, line)
			codeStart = i + 1
		default:
			break headerLoop
		}
	}

	if len(header) > 0 && EstimateTokens(strings.Join(header, "")) > 10 {
		chunks = append(chunks, Chunk{
			Content:    strings.Join(header, ""),
			StartLine:  1,
			EndLine:    codeStart,
			ChunkIndex: 0,
		})
	}

	var current []string
	currentStart := codeStart + 1
	var currentSymbol, currentSymbolType string
	currentTokens := 0

	for i := codeStart; i < len(lines); i++ {
		line := lines[i]
		lineNum := i + 1
		lineTokens := EstimateTokens(line)

		if isGoBlockStart(line) && len(current) > 0 && currentTokens > 0 {
			text := strings.Join(current, "")
			if strings.TrimSpace(text) != "" {
				chunks = append(chunks, Chunk{
					Content: text, StartLine: currentStart, EndLine: lineNum - 1,
					ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
				})
			}
			current = []string{line}
			currentStart = lineNum
			currentSymbol, currentSymbolType = extractGoSymbol(line)
			currentTokens = lineTokens
			continue
		}

		if currentTokens+lineTokens > int(float64(tokenTarget)*1.5) && len(current) > 0 {
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
			currentSymbol, currentSymbolType = extractGoSymbol(line)
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
