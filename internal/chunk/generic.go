package chunk

import "strings"

// chunkGeneric splits text into blank-line-separated blocks, respecting a
// soft token target with a 1.2x hard cap and trailing-line overlap on
// forced splits. Used as the fallback for any extension without a
// dedicated strategy.
func chunkGeneric(content, filePath string, tokenTarget, overlapTokens int) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	lines := splitLinesKeepEnds(content)
	var chunks []Chunk

	var current []string
	currentStart := 1
	currentTokens := 0

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		lineNum := i + 1
		lineTokens := EstimateTokens(line)

		if currentTokens+lineTokens > int(float64(tokenTarget)*1.2) && len(current) > 0 {
			chunks = append(chunks, Chunk{
				Content:    strings.Join(current, ""),
				StartLine:  currentStart,
				EndLine:    lineNum - 1,
				ChunkIndex: len(chunks),
			})

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
			currentTokens = overlapTok + lineTokens
			continue
		}

		if strings.TrimSpace(line) == "" && currentTokens >= int(float64(tokenTarget)*0.6) && len(current) > 0 {
			chunks = append(chunks, Chunk{
				Content:    strings.Join(current, ""),
				StartLine:  currentStart,
				EndLine:    lineNum - 1,
				ChunkIndex: len(chunks),
			})
			current = nil
			currentStart = lineNum + 1
			currentTokens = 0
			continue
		}

		current = append(current, line)
		currentTokens += lineTokens
	}

	if len(current) > 0 {
		chunks = append(chunks, Chunk{
			Content:    strings.Join(current, ""),
			StartLine:  currentStart,
			EndLine:    currentStart + len(current) - 1,
			ChunkIndex: len(chunks),
		})
	}

	return chunks
}
