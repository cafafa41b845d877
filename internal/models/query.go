package models

import (
	"fmt"
	"strings"
)

// AskQuery represents one incoming question.
type AskQuery struct {
	Question string `json:"question"`
}

// Validate trims the question and returns an error when it is empty.
// No other normalization is applied.
func (q *AskQuery) Validate() error {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return fmt.Errorf("question cannot be empty")
	}
	return nil
}
