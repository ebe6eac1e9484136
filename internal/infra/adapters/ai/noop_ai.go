package ai

import (
	"context"
	"log"
	"time"

	"github.com/misterioso013/meu-orcamento-bot/internal/domain/ports/adapter"
)

var _ adapter.AIAdapter = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.AIAdapter for local/dev runs. It logs the
// prompt and returns a canned answer.
type NoopAIAdapter struct{}

func NewNoopAIAdapter() *NoopAIAdapter {
	return &NoopAIAdapter{}
}

func (a *NoopAIAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	log.Printf("[noop-ai] system=%q prompt=%q\n", system, prompt)
	return "This is a noop AI response.", nil
}
