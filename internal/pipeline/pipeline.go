// Package pipeline wires routing, retrieval and answering into one
// question-answering flow.
package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/answerer"
	"github.com/civiclab/radca/internal/models"
	"github.com/civiclab/radca/internal/retriever"
	"github.com/civiclab/radca/internal/router"
)

// MaxAttempts bounds how many times a question is retried when the model
// refuses for lack of information. The last attempt's answer is returned
// even when it is still a refusal.
const MaxAttempts = 3

// Pipeline answers questions over the indexed domain collections.
type Pipeline struct {
	router    *router.Router
	retriever *retriever.Retriever
	answerer  *answerer.Answerer
	logger    *zap.Logger
}

func New(r *router.Router, ret *retriever.Retriever, a *answerer.Answerer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{router: r, retriever: ret, answerer: a, logger: logger}
}

// Ask routes the question to a domain, retrieves supporting passages and
// generates an answer. An insufficient-information refusal triggers a full
// re-retrieve and re-generate, up to MaxAttempts; any provider or store
// failure aborts immediately. Routing failures, including
// router.ErrUnresolved, are returned as-is.
func (p *Pipeline) Ask(ctx context.Context, query models.AskQuery) (*models.AskResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	domainID, err := p.router.Route(ctx, query.Question)
	if err != nil {
		return nil, err
	}

	result, err := p.attempt(ctx, domainID, query.Question)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	p.logger.Info("answered question",
		zap.String("domain", domainID),
		zap.Int("attempts", result.Attempts),
		zap.Duration("took", elapsed))

	return &models.AskResponse{
		Domain:    domainID,
		Answer:    result.Text,
		Sources:   models.Sources(result.Passages),
		Attempts:  result.Attempts,
		QueryTime: elapsed.Milliseconds(),
	}, nil
}

// attempt runs the bounded retrieve-and-answer loop, returning either the
// first non-refusing attempt or the last attempt once the bound is reached.
func (p *Pipeline) attempt(ctx context.Context, domainID, question string) (models.AnswerResult, error) {
	var result models.AnswerResult
	for result.Attempts < MaxAttempts {
		result.Attempts++
		passages, err := p.retriever.Retrieve(ctx, domainID, question)
		if err != nil {
			return models.AnswerResult{}, err
		}
		answer, err := p.answerer.Answer(ctx, question, passages)
		if err != nil {
			return models.AnswerResult{}, err
		}
		result.AnswerAttempt = models.AnswerAttempt{Text: answer, Passages: passages}
		if !answerer.IsRefusal(answer) {
			break
		}
		p.logger.Debug("refusal, retrying",
			zap.String("domain", domainID),
			zap.Int("attempt", result.Attempts))
	}
	return result, nil
}
