package dto

import (
	"github.com/finpipe/statement-ledger/internal/usecase"
)

// AskResponse is the body returned by POST /ask. Absent steps are null.
type AskResponse struct {
	GeneratedSQL *string          `json:"generated_sql"`
	SQLResults   []map[string]any `json:"sql_results"`
	Analysis     *string          `json:"analysis"`
}

// AskResponseFromAnswer converts a usecase answer.
func AskResponseFromAnswer(a *usecase.Answer) AskResponse {
	if a == nil {
		return AskResponse{}
	}
	return AskResponse{
		GeneratedSQL: a.SQL,
		SQLResults:   a.Results,
		Analysis:     a.Analysis,
	}
}

// FlashResponse is a rendered flash message.
type FlashResponse struct {
	Category string
	Message  string
}

// FlashesFromUseCase converts stored flashes for templates.
func FlashesFromUseCase(flashes []usecase.Flash) []FlashResponse {
	out := make([]FlashResponse, 0, len(flashes))
	for _, f := range flashes {
		out = append(out, FlashResponse{Category: f.Category, Message: f.Message})
	}
	return out
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// TransformResponse reports a classification run.
type TransformResponse struct {
	RunID string `json:"run_id"`
	Rows  int    `json:"rows"`
}

// TransformFromResult converts a usecase classification result.
func TransformFromResult(r *usecase.ClassifyResult) *TransformResponse {
	if r == nil {
		return nil
	}
	return &TransformResponse{RunID: r.RunID, Rows: r.Rows}
}

// IngestResponse is returned by POST /api/v1/statements.
type IngestResponse struct {
	File           string             `json:"file"`
	Rows           int                `json:"rows"`
	Warnings       []string           `json:"warnings,omitempty"`
	Transform      *TransformResponse `json:"transform,omitempty"`
	TransformError string             `json:"transform_error,omitempty"`
}
