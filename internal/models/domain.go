// Package models defines core data structures for domains, documents, and answers.
package models

// Domain is a named partition of knowledge with its own vector collection.
// The description is the only routing signal and is injected into the
// classification prompt verbatim.
type Domain struct {
	ID          string `json:"id" yaml:"id"`
	Description string `json:"description" yaml:"description"`
}
