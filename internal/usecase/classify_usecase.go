package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/domain"
	"github.com/finpipe/statement-ledger/internal/infrastructure/metrics"
)

// ClassifyUseCase enriches raw movements and appends them to the classified table.
//
// Every run reprocesses the whole raw table. Nothing tracks which ids were
// already classified, so a second run appends duplicates.
type ClassifyUseCase struct {
	schema         SchemaManager
	rawRepo        RawMovementRepository
	classifiedRepo ClassifiedMovementRepository
	classifier     *domain.Classifier
	idGen          IDGenerator
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	batchSize      int
}

// NewClassifyUseCase creates a new ClassifyUseCase.
func NewClassifyUseCase(
	schema SchemaManager,
	rawRepo RawMovementRepository,
	classifiedRepo ClassifiedMovementRepository,
	classifier *domain.Classifier,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ClassifyUseCase {
	return &ClassifyUseCase{
		schema:         schema,
		rawRepo:        rawRepo,
		classifiedRepo: classifiedRepo,
		classifier:     classifier,
		idGen:          idGen,
		metrics:        m,
		logger:         logger,
		batchSize:      DefaultBatchSize,
	}
}

// ClassifyResult reports a finished classification run.
type ClassifyResult struct {
	RunID string
	Rows  int
}

// Run classifies every raw movement and appends the results.
func (uc *ClassifyUseCase) Run(ctx context.Context) (*ClassifyResult, error) {
	runID := uc.idGen.Generate()
	log := uc.logger.With().Str("run_id", runID).Logger()

	if err := uc.schema.EnsureSchema(ctx); err != nil {
		uc.metrics.ClassificationRun("failed")
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaUnavailable, err)
	}

	raw, err := uc.rawRepo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read raw movements")
		uc.metrics.ClassificationRun("failed")
		return nil, fmt.Errorf("read raw movements: %w", err)
	}
	log.Info().Int("rows", len(raw)).Msg("raw movements loaded")

	classified := uc.classifier.ClassifyAll(raw)

	for i := 0; i < len(classified); i += uc.batchSize {
		end := min(i+uc.batchSize, len(classified))
		if err := uc.classifiedRepo.AppendBatch(ctx, classified[i:end]); err != nil {
			log.Error().Err(err).Int("batch_start", i).Msg("failed to append classified batch")
			uc.metrics.ClassificationRun("failed")
			return nil, fmt.Errorf("append classified rows %d-%d: %w", i, end-1, err)
		}
		uc.metrics.BatchWritten("classified")
		for _, c := range classified[i:end] {
			uc.metrics.Classified(string(c.Category))
		}
	}

	uc.metrics.ClassificationRun("success")
	log.Info().Int("rows", len(classified)).Msg("classification finished")

	return &ClassifyResult{RunID: runID, Rows: len(classified)}, nil
}
