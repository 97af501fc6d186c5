package dto

import (
	"strings"

	"github.com/finpipe/statement-ledger/internal/domain"
)

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
}

// Validate reports whether the request carries a question.
func (r *AskRequest) Validate() error {
	if strings.TrimSpace(r.Question) == "" {
		return domain.ErrEmptyQuestion
	}
	return nil
}
