package adapter

import "context"

// AIAdapter answers one-shot prompts. Used for budget analysis and product
// Q&A; callers supply the system framing per use.
type AIAdapter interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}
