package llm

import "strings"

// extractJSON pulls the first top-level JSON object out of free-form LLM
// text by brace matching, the same approach the RAG planner's
// extractActionPlan/extractJSON helpers use rather than regex-parsing
// prose (per the design note forbidding regex parsing of LLM output).
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
