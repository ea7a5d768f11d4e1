package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage prompt builders. Each stage gets an instruction block plus the
// stage-specific input so a plain chat completion endpoint can drive the
// whole pipeline without tool calling.

func buildPlanPrompt(query string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`You are a planning agent tasked with creating a concise, actionable research plan for any user query.
- Analyze the query to identify its intent and key topics (e.g., events, updates, definitions).
- Generate a plan with 4-5 focused, numbered steps (e.g., '1. Search for...', '2. Identify...').
- Include steps to search primary or official sources, extract key details, and validate with secondary or community sources.
- Prioritize information from %d for recency.
- Return only the plan as plain text, with each step on a new line. Avoid narrative, reports, or extra content.

Generate a research plan for: %s`, year, query)
}

func buildSearchPrompt(plan, query string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`You are a web search expert. Receive a research plan and the original query.
- For each plan step, identify relevant, recent results.
- Return a JSON list of objects with fields: title, description, url, published_at, source, icon.
- Ensure results are relevant, have valid URLs, and prioritize %d data.
- If no results, return an empty list.
- Output only the JSON list. Do NOT return narratives, reports, or text summaries.

Search the web based on this plan:
%s
Original query: %s`, year, plan, query)
}

func buildReportPrompt(query string, results []SearchResult) string {
	year := time.Now().Year()
	resultsJSON, err := json.Marshal(results)
	if err != nil {
		resultsJSON = []byte("[]")
	}
	return fmt.Sprintf(`You are a reporting agent specializing in concise, professional reports. Receive search results (JSON list) and the original query.
- Synthesize results into a markdown report with sections:
  - **Introduction**: One sentence stating the query and purpose.
  - **Key Findings**: 3-5 bullet points summarizing critical details, prioritizing %d data.
  - **Analysis**: Note any inconsistencies, gaps, or source biases in 1-2 sentences.
  - **Conclusion**: One sentence summarizing findings and next steps.
  - **Citations**: List sources (title, source, URL) in a numbered list.
- Keep the report concise (150-200 words), professional, and query-focused.
Return the report as plain text in markdown format.

Generate a report for query '%s' using these results:
%s`, year, query, string(resultsJSON))
}
