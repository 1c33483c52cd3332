package planner

import "fmt"

// composePrompt follows the same XML-tagged structure the RAG search
// planner used for intent classification, narrowed to the single decision
// this Planner makes: which catalog products, if any, are worth loading.
func composePrompt(catalogDescription, sampleContext, question string) string {
	return fmt.Sprintf(`<system_role>
You are a planning assistant for an analytics dashboard. Given a question
and a catalog of available data products, choose the products worth
loading to answer it.
</system_role>

<catalog>
%s
</catalog>

<sample_context>
%s
</sample_context>

<rules>
- Select only product ids that appear in <catalog>. Never invent an id.
- Choose between 1 and 3 products, ordered by relevance.
- Give exactly one sentence of reason per choice.
</rules>

<question>
%s
</question>

<output_format>
Respond with ONLY valid JSON in this exact shape:
{"plan": [{"product_id": "...", "reason": "..."}]}
No preamble, no explanation outside the JSON.
</output_format>`, catalogDescription, sampleContext, question)
}
