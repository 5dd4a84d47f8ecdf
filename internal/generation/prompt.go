package generation

import (
	"strings"
	"text/template"
)

var promptTemplate = template.Must(template.New("lesson").Parse(
	`Create a short micro-lesson about "{{.Topic}}" for a {{.Level}} learner, followed by a quiz that checks understanding of it.

Respond with a single JSON object and nothing else: no markdown fences, no commentary before or after it.
Use exactly this shape:
{
  "lesson": "the lesson text",
  "quiz": [
    {
      "question": "a question about the lesson",
      "options": ["option A", "option B", "option C", "option D"],
      "answer": "the correct option, copied exactly from options"
    }
  ]
}
Include three to five quiz questions.`))

// BuildPrompt renders the lesson prompt for a sanitized input.
func BuildPrompt(in Input) (string, error) {
	var b strings.Builder
	if err := promptTemplate.Execute(&b, in); err != nil {
		return "", err
	}
	return b.String(), nil
}
