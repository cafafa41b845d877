// Package router selects the data domain a question belongs to.
package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/civiclab/radca/internal/catalog"
	"github.com/civiclab/radca/internal/provider"
)

// ErrUnresolved is returned when the model's choice does not name any
// catalog domain. Callers should ask the user to rephrase rather than
// guess a domain.
var ErrUnresolved = errors.New("could not resolve a data domain for the question")

const selectPrompt = `Twoim zadaniem jest wybrać najbardziej odpowiednią kolekcję danych spośród dostępnych,
 w oparciu o zapytanie użytkownika i poniższe opisy:
%s

Na podstawie pytania: "%s", zwróć **tylko nazwę kolekcji** (np. '%s').`

// Router classifies questions into catalog domains using a language model.
type Router struct {
	catalog   *catalog.Catalog
	generator provider.Generator
	logger    *zap.Logger
}

func New(cat *catalog.Catalog, gen provider.Generator, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{catalog: cat, generator: gen, logger: logger}
}

// Route returns the ID of the domain the question belongs to. The model is
// shown every domain's description and asked to return a bare domain name;
// the reply is normalized and checked against the catalog. A reply that
// matches no domain yields ErrUnresolved.
func (r *Router) Route(ctx context.Context, question string) (string, error) {
	example := r.catalog.IDs()[0]
	prompt := fmt.Sprintf(selectPrompt, r.catalog.Describe(), question, example)

	reply, err := r.generator.Generate(ctx, provider.GenerateRequest{
		Prompt:      prompt,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("domain classification: %w", err)
	}

	domainID := normalize(reply)
	if !r.catalog.Has(domainID) {
		r.logger.Warn("unresolved domain choice",
			zap.String("reply", reply),
			zap.String("question", question))
		return "", ErrUnresolved
	}
	r.logger.Debug("routed question",
		zap.String("domain", domainID),
		zap.String("question", question))
	return domainID, nil
}

// normalize strips whitespace and the quoting models tend to wrap short
// answers in.
func normalize(reply string) string {
	s := strings.TrimSpace(reply)
	s = strings.Trim(s, "'\"`")
	return strings.TrimSpace(s)
}
