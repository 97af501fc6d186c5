package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/adapter/http/dto"
	"github.com/finpipe/statement-ledger/internal/infrastructure/logger"
	"github.com/finpipe/statement-ledger/internal/usecase"
)

// QuestionAnswerer answers natural-language questions over the classified data.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*usecase.Answer, error)
}

// AnalystHandler serves the analyst page and the ask endpoint.
type AnalystHandler struct {
	analyst QuestionAnswerer
	logger  zerolog.Logger
}

// NewAnalystHandler creates a new AnalystHandler.
func NewAnalystHandler(analyst QuestionAnswerer, logger zerolog.Logger) *AnalystHandler {
	return &AnalystHandler{analyst: analyst, logger: logger}
}

// Page renders the analyst form.
func (h *AnalystHandler) Page(w http.ResponseWriter, r *http.Request) {
	renderPage(w, h.logger, "analyst.html", nil)
}

// Ask answers a question posted as JSON.
func (h *AnalystHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req dto.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, mapDomainError(err), err.Error(), "")
		return
	}

	answer, err := h.analyst.Ask(r.Context(), req.Question)
	if err != nil {
		log := logger.FromContext(r.Context(), h.logger)
		log.Error().Err(err).Msg("failed to answer question")
		writeError(w, mapDomainError(err), "failed to answer question", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AskResponseFromAnswer(answer))
}
