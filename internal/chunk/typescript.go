package chunk

import (
	"regexp"
	"strings"
)

var tsBlockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^export\s+(default\s+)?(async\s+)?function\s`),
	regexp.MustCompile(`^export\s+(default\s+)?class\s`),
	regexp.MustCompile(`^export\s+(default\s+)?interface\s`),
	regexp.MustCompile(`^export\s+(default\s+)?type\s`),
	regexp.MustCompile(`^export\s+(default\s+)?enum\s`),
	regexp.MustCompile(`^export\s+(default\s+)?const\s`),
	regexp.MustCompile(`^export\s+(default\s+)?let\s`),
	regexp.MustCompile(`^export\s+\{`),
	regexp.MustCompile(`^(async\s+)?function\s`),
	regexp.MustCompile(`^class\s`),
	regexp.MustCompile(`^interface\s`),
	regexp.MustCompile(`^type\s+\w+\s*=`),
	regexp.MustCompile(`^enum\s`),
	regexp.MustCompile(`^const\s+\w+\s*=\s*(async\s+)?\(`),
	regexp.MustCompile(`^const\s+\w+\s*=\s*(async\s+)?function`),
	regexp.MustCompile(`^import\s`),
}

var (
	tsFunctionRe   = regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?(?:async\s+)?function\s+(\w+)`)
	tsTypeAliasRe  = regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?type\s+(\w+)\s*=`)
	tsArrowFuncRe  = regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?(?:const|let)\s+(\w+)\s*=\s*(?:async\s+)?\(`)
)

var tsKeywordRes = []struct {
	kind string
	re   *regexp.Regexp
}{
	{"class", regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?class\s+(\w+)`)},
	{"interface", regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?interface\s+(\w+)`)},
	{"enum", regexp.MustCompile(`^(?:export\s+(?:default\s+)?)?enum\s+(\w+)`)},
}

func isTSBlockStart(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	for _, p := range tsBlockPatterns {
		if p.MatchString(stripped) {
			return true
		}
	}
	return false
}

func extractTSSymbol(line string) (name, kind string) {
	stripped := strings.TrimLeft(line, " \t")

	if m := tsFunctionRe.FindStringSubmatch(stripped); m != nil {
		return m[1], "function"
	}
	for _, kw := range tsKeywordRes {
		if m := kw.re.FindStringSubmatch(stripped); m != nil {
			return m[1], kw.kind
		}
	}
	if m := tsTypeAliasRe.FindStringSubmatch(stripped); m != nil {
		return m[1], "type"
	}
	if m := tsArrowFuncRe.FindStringSubmatch(stripped); m != nil {
		return m[1], "function"
	}
	return "", ""
}

// chunkTypeScript splits TypeScript/JavaScript source at logical
// declaration boundaries, peeling off the leading import block, and
// force-splitting WITH trailing-line overlap at 1.5x the token target
// (unlike the other language chunkers, which don't overlap forced splits).
func chunkTypeScript(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := splitLinesKeepEnds(content)
	var chunks []Chunk

	var importLines []string
	codeStart := 0
importLoop:
	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "import "), strings.HasPrefix(stripped, "from "),
			stripped == "", strings.HasPrefix(stripped, "//"):
			importLines = append(importLines, line)
			codeStart = i + 1
		default:
			break importLoop
		}
	}

	if len(importLines) > 0 && EstimateTokens(strings.Join(importLines, "")) > 10 {
		chunks = append(chunks, Chunk{
			Content: strings.Join(importLines, ""), StartLine: 1, EndLine: codeStart, ChunkIndex: 0,
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

		if isTSBlockStart(line) && len(current) > 0 && currentTokens > 0 {
			text := strings.Join(current, "")
			if strings.TrimSpace(text) != "" {
				chunks = append(chunks, Chunk{
					Content: text, StartLine: currentStart, EndLine: lineNum - 1,
					ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
				})
			}
			current = []string{line}
			currentStart = lineNum
			currentSymbol, currentSymbolType = extractTSSymbol(line)
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

			var overlapLines []string
			overlapTok := 0
			for j := len(current) - 1; j >= 0; j-- {
				lt := EstimateTokens(current[j])
				if overlapTok+lt > overlapTokens {
					break
				}
				overlapLines = append([]string{current[j]}, overlapLines...)
				overlapTok += lt
			}

			current = append(append([]string{}, overlapLines...), line)
			currentStart = lineNum - len(overlapLines)
			currentSymbol, currentSymbolType = "", ""
			currentTokens = overlapTok + lineTokens
			continue
		}

		if len(current) == 0 {
			currentSymbol, currentSymbolType = extractTSSymbol(line)
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
