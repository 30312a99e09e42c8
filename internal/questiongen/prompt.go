package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You write multiple-choice quiz questions for school students.

Rules:
- Respond with a single JSON object and nothing else.
- The object has one key "questions" holding an array.
- Every element has "question" (string), "options" (array of exactly 4 distinct strings) and "correctAnswer" (string equal to one of the options).
- Keep questions short, clear and age-appropriate for the requested difficulty.
- Distractors should reflect common mistakes, not random values.
- Do not repeat any question from the "already asked" list.`

// buildPrompt constructs the user message for a batch request.
func buildPrompt(req Request, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Subject category: %s\n", req.Category)
	if req.Topic != "" {
		fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	}
	if req.Lesson != "" {
		fmt.Fprintf(&b, "Lesson: %s\n", req.Lesson)
	}
	fmt.Fprintf(&b, "Difficulty: %s\n", req.Difficulty)
	fmt.Fprintf(&b, "Number of questions: %d\n", max(req.Count, 1))

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(req.ExcludePrompts, cfg.MaxPriorQuestions))

	b.WriteString("\n\nRespond as {\"questions\":[{\"question\":\"...\",\"options\":[\"...\",\"...\",\"...\",\"...\"],\"correctAnswer\":\"...\"}]}")
	return b.String()
}

// buildDedup lists the most recent prompts, newest last.
func buildDedup(prior []string, limit int) string {
	if len(prior) == 0 {
		return "None"
	}
	if limit > 0 && len(prior) > limit {
		prior = prior[len(prior)-limit:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
