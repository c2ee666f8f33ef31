package feedback

import (
	"bytes"
	"fmt"
	"text/template"
)

const systemPrompt = "You are an expert code reviewer."

const reviewPromptRaw = `You are an expert code reviewer. Based on the following content and context, provide detailed feedback and suggestions.

Content:
{{.Content}}

Context:
{{.Context}}

Please cover:
1) Strengths
2) Weaknesses
3) Optimization suggestions
4) Refactoring recommendations
5) Security and best-practice notes

Format your feedback as clear, concise, actionable bullet points.
`

// reviewTemplate is parsed once and reused for every request.
// text/template performs no escaping, so inputs land verbatim.
var reviewTemplate = template.Must(template.New("review").Parse(reviewPromptRaw))

// RenderPrompt builds the user message for a review request.
func RenderPrompt(req Request) (string, error) {
	var buf bytes.Buffer
	if err := reviewTemplate.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
