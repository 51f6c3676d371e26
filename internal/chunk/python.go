package chunk

import (
	"regexp"
	"strings"
)

var (
	pyDefRe       = regexp.MustCompile(`^(async\s+)?def\s+(\w+)`)
	pyClassRe     = regexp.MustCompile(`^class\s+(\w+)`)
	pyDecoratorRe = regexp.MustCompile(`^@\w+`)
)

func isPyBlockStart(line string) bool {
	stripped := strings.TrimLeft(line, " \t")
	indent := len(line) - len(stripped)
	if indent > 4 {
		return false
	}
	return pyDefRe.MatchString(stripped) || pyClassRe.MatchString(stripped) || pyDecoratorRe.MatchString(stripped)
}

func extractPySymbol(line string) (name, kind string) {
	stripped := strings.TrimLeft(line, " \t")
	if m := pyDefRe.FindStringSubmatch(stripped); m != nil {
		return m[2], "function"
	}
	if m := pyClassRe.FindStringSubmatch(stripped); m != nil {
		return m[1], "class"
	}
	return "", ""
}

// chunkPython splits Python source at def/class boundaries, keeping
// decorators attached to the definition they decorate, peeling off the
// leading import/docstring header, and force-splitting (no overlap) at
// 1.5x the token target.
func chunkPython(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
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
		case strings.HasPrefix(stripped, "import "),
			strings.HasPrefix(stripped, "from "),
			stripped == "",
			strings.HasPrefix(stripped, "#"),
			strings.HasPrefix(stripped, `"""`),
			strings.HasPrefix(stripped, "'''"):
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
	inDecoratorBlock := false

	hasDecoratorLine := func(ls []string) bool {
		for _, l := range ls {
			if pyDecoratorRe.MatchString(strings.TrimLeft(l, " \t")) {
				return true
			}
		}
		return false
	}

	for i := codeStart; i < len(lines); i++ {
		line := lines[i]
		lineNum := i + 1
		lineTokens := EstimateTokens(line)
		stripped := strings.TrimLeft(line, " \t")
		indent := len(line) - len(stripped)

		if strings.HasPrefix(stripped, "@") && indent <= 4 {
			if !inDecoratorBlock && len(current) > 0 && currentTokens > 0 {
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
			} else {
				current = append(current, line)
				currentTokens += lineTokens
			}
			inDecoratorBlock = true
			continue
		}

		isDefOrClass := (pyDefRe.MatchString(stripped) || pyClassRe.MatchString(stripped)) && indent <= 4

		if isDefOrClass {
			inDecoratorBlock = false
			if len(current) > 0 && currentTokens > 0 && !hasDecoratorLine(current) {
				text := strings.Join(current, "")
				if strings.TrimSpace(text) != "" {
					chunks = append(chunks, Chunk{
						Content: text, StartLine: currentStart, EndLine: lineNum - 1,
						ChunkIndex: len(chunks), SymbolName: currentSymbol, SymbolType: currentSymbolType,
					})
				}
				current = []string{line}
				currentStart = lineNum
				currentSymbol, currentSymbolType = extractPySymbol(line)
				currentTokens = lineTokens
				continue
			}
			currentSymbol, currentSymbolType = extractPySymbol(line)
			current = append(current, line)
			currentTokens += lineTokens
			continue
		}

		inDecoratorBlock = false

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
