// Package answerer generates grounded answers from retrieved passages.
package answerer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/provider"
)

// Canonical refusal sentences the model is instructed to emit verbatim.
// Downstream retry logic keys on these, so the exact wording matters.
const (
	RefusalInsufficient = "Nie posiadam wystarczających informacji, aby odpowiedzieć na to pytanie."
	RefusalTooGeneral   = "Proszę zadać bardziej szczegółowe pytanie."
)

// refusalMarker is matched case-insensitively against generated answers.
// Only the insufficient-information refusal triggers a retry; asking for a
// more specific question is a final answer.
const refusalMarker = "nie posiadam wystarczających informacji"

const systemPrompt = "Jesteś uprzejmym i rzeczowym urzędnikiem państwowym. " +
	"Twoim obowiązkiem jest udzielanie kulturalnych, konkretnych i precyzyjnych odpowiedzi " +
	"obywatelom na podstawie dostępnych danych. " +
	"Jeśli nie posiadasz wystarczających informacji, jasno to zakomunikuj."

const answerPrompt = `
Odpowiadaj wyłącznie na podstawie dostarczonych danych kontekstowych.
Nie zgaduj. Jeśli kontekst nie zawiera odpowiedzi, napisz:
"%s"

Jeśli pytanie jest zbyt ogólne, napisz:
"%s"

Kontekst:
%s

Pytanie:
%s
`

// Answerer turns a question plus retrieved passages into a grounded answer.
type Answerer struct {
	generator provider.Generator
	logger    *zap.Logger
}

func New(gen provider.Generator, logger *zap.Logger) *Answerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Answerer{generator: gen, logger: logger}
}

// Answer generates an answer to the question using only the given passages
// as context. Passages are concatenated in retrieval order; an empty passage
// set still produces a call so the model can refuse explicitly.
func (a *Answerer) Answer(ctx context.Context, question string, passages []models.Passage) (string, error) {
	prompt := fmt.Sprintf(answerPrompt,
		RefusalInsufficient, RefusalTooGeneral, renderContext(passages), question)

	reply, err := a.generator.Generate(ctx, provider.GenerateRequest{
		System:      systemPrompt,
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("answer generation: %w", err)
	}
	answer := strings.TrimSpace(reply)
	a.logger.Debug("generated answer",
		zap.Int("passages", len(passages)),
		zap.Bool("refusal", IsRefusal(answer)))
	return answer, nil
}

// IsRefusal reports whether the answer is the insufficient-information
// refusal. Matching is case-insensitive and tolerates surrounding prose.
func IsRefusal(answer string) bool {
	return strings.Contains(strings.ToLower(answer), refusalMarker)
}

func renderContext(passages []models.Passage) string {
	if len(passages) == 0 {
		return ""
	}
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = p.Content
	}
	return strings.Join(parts, "\n\n")
}
