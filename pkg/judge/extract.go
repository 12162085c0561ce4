package judge

import "strings"

// extractJSON pulls a JSON object out of a model response that may wrap it in
// markdown fences or surrounding prose. Best effort: if no object can be
// located the trimmed input is returned and left for the decoder to reject.
func extractJSON(responseText string) string {
	trimmed := strings.TrimSpace(responseText)

	if block, ok := fencedBlock(trimmed); ok {
		trimmed = block
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed
	}

	// Fall back to the widest brace span in the text.
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}

	return trimmed
}

func fencedBlock(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	var content []string
	inBlock := false

	for _, line := range lines {
		marker := strings.TrimSpace(line)
		if !inBlock && (marker == "```json" || marker == "```") {
			inBlock = true
			continue
		}
		if inBlock && marker == "```" {
			break
		}
		if inBlock {
			content = append(content, line)
		}
	}

	if !inBlock || len(content) == 0 {
		return "", false
	}
	return strings.TrimSpace(strings.Join(content, "\n")), true
}
