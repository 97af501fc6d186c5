package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/domain"
	"github.com/finpipe/statement-ledger/internal/infrastructure/metrics"
)

// AnalystUseCase answers natural-language questions over the classified data.
type AnalystUseCase struct {
	model   LanguageModel
	queries QueryRunner
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewAnalystUseCase creates a new AnalystUseCase.
func NewAnalystUseCase(model LanguageModel, queries QueryRunner, m *metrics.Metrics, logger zerolog.Logger) *AnalystUseCase {
	return &AnalystUseCase{
		model:   model,
		queries: queries,
		metrics: m,
		logger:  logger,
	}
}

// Answer holds the outcome of a question. Nil fields mean the step did not run
// or produced nothing.
type Answer struct {
	SQL      *string
	Results  []map[string]any
	Analysis *string
}

// Ask generates SQL for the question, runs it and narrates the results.
//
// An empty SQL string stops the flow with nil fields. A failing query yields
// nil results and no analysis. Only model transport errors are returned.
func (uc *AnalystUseCase) Ask(ctx context.Context, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	raw, err := uc.generate(ctx, "sql", sqlPrompt(question))
	if err != nil {
		return nil, err
	}

	answer := &Answer{}

	query := CleanSQL(raw)
	if query == "" {
		uc.logger.Warn().Str("question", question).Msg("model returned no SQL")
		return answer, nil
	}
	answer.SQL = &query

	rows, err := uc.queries.RunReadOnly(ctx, query)
	if err != nil {
		uc.logger.Error().Err(err).Str("sql", query).Msg("failed to execute generated SQL")
		return answer, nil
	}
	answer.Results = rows

	if len(rows) == 0 {
		return answer, nil
	}

	analysis, err := uc.generate(ctx, "analysis", analysisPrompt(rows))
	if err != nil {
		return nil, err
	}
	analysis = strings.TrimSpace(analysis)
	answer.Analysis = &analysis

	return answer, nil
}

func (uc *AnalystUseCase) generate(ctx context.Context, kind, prompt string) (string, error) {
	start := time.Now()

	text, err := uc.model.Generate(ctx, prompt)
	if err != nil {
		uc.metrics.ModelRequest(kind, "error", time.Since(start))
		uc.logger.Error().Err(err).Str("kind", kind).Msg("language model request failed")
		return "", fmt.Errorf("%w: %v", domain.ErrModelFailure, err)
	}

	uc.metrics.ModelRequest(kind, "ok", time.Since(start))
	return text, nil
}
