package analyzer

import (
	"fmt"
	"strings"

	"analytics-assistant-be/pkg/artifact"
)

// composePrompt follows the teacher's buildGroundedPrompt shape: a
// grounded-reference-material block the model must treat as its only data
// source, section-marked per product, followed by strict task rules.
func composePrompt(question string, accessLog *AccessLog, summaries []*artifact.Summary) string {
	var b strings.Builder

	b.WriteString("<grounded_reference_material>\n")
	b.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n")
	b.WriteString("Structure: each product's data is separated by headers. Treat them as distinct sources.\n\n")

	for _, s := range summaries {
		fmt.Fprintf(&b, "--- CONTENT OF: %s ---\n", s.ProductID)
		b.WriteString(s.Render())
		fmt.Fprintf(&b, "\n--- END OF: %s ---\n\n", s.ProductID)
	}
	b.WriteString("</grounded_reference_material>\n\n")

	if len(accessLog.Entries) > 0 {
		b.WriteString("<access_log>\n")
		for _, e := range accessLog.Entries {
			fmt.Fprintf(&b, "- %s: shape (%d, %d), source=%s\n", e.ProductID, e.Shape[0], e.Shape[1], e.Source)
		}
		b.WriteString("</access_log>\n\n")
	}

	b.WriteString("<task_instructions>\n")
	b.WriteString("You are an analytics assistant answering strictly from the reference material above.\n")
	b.WriteString("RULES:\n")
	b.WriteString("1. Ground every claim in the data shown above. Never invent a product not listed in access_log.\n")
	b.WriteString("2. Cite concrete numbers from the summaries where relevant.\n")
	b.WriteString("3. List the specific metrics your answer relies on in key_metrics.\n")
	b.WriteString("4. Give 1-7 rationale bullets, each a short sentence citing a number from the data above.\n")
	b.WriteString("</task_instructions>\n\n")

	fmt.Fprintf(&b, "<question>\n%s\n</question>\n\n", question)

	b.WriteString("<output_format>\n")
	b.WriteString("Respond with ONLY valid JSON in this exact shape:\n")
	b.WriteString(`{"answer": "...", "rationale": ["...", "..."], "key_metrics": ["..."]}` + "\n")
	b.WriteString("No preamble, no explanation outside the JSON.\n")
	b.WriteString("</output_format>\n")

	return b.String()
}
