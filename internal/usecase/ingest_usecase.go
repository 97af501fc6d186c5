package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpipe/statement-ledger/internal/domain"
	"github.com/finpipe/statement-ledger/internal/infrastructure/metrics"
)

// IngestUseCase turns statement files into raw movements.
type IngestUseCase struct {
	schema    SchemaManager
	parser    StatementParser
	rawRepo   RawMovementRepository
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	batchSize int
	now       func() time.Time
}

// IngestOption configures an IngestUseCase.
type IngestOption func(*IngestUseCase)

// WithIngestBatchSize overrides the append batch size.
func WithIngestBatchSize(n int) IngestOption {
	return func(uc *IngestUseCase) {
		if n > 0 {
			uc.batchSize = n
		}
	}
}

// WithIngestMetrics sets the metrics recorder.
func WithIngestMetrics(m *metrics.Metrics) IngestOption {
	return func(uc *IngestUseCase) { uc.metrics = m }
}

// WithIngestClock overrides the capture time source.
func WithIngestClock(now func() time.Time) IngestOption {
	return func(uc *IngestUseCase) { uc.now = now }
}

// NewIngestUseCase creates a new IngestUseCase.
func NewIngestUseCase(
	schema SchemaManager,
	parser StatementParser,
	rawRepo RawMovementRepository,
	logger zerolog.Logger,
	opts ...IngestOption,
) *IngestUseCase {
	uc := &IngestUseCase{
		schema:    schema,
		parser:    parser,
		rawRepo:   rawRepo,
		logger:    logger,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// IngestResult reports a successful file ingestion.
type IngestResult struct {
	SourceFile string
	Rows       int
	Warnings   []string
}

// IngestFile parses the file at path and appends its rows to the raw table.
//
// Rows are written in independent batches. When a batch fails the remaining
// batches are skipped and an error is returned; earlier batches stay written.
func (uc *IngestUseCase) IngestFile(ctx context.Context, path, sourceFile string) (*IngestResult, error) {
	start := uc.now()
	log := uc.logger.With().Str("file", sourceFile).Logger()

	if err := uc.CheckConnection(ctx); err != nil {
		log.Error().Err(err).Msg("database connectivity check failed")
		uc.fail("connection", start)
		return nil, err
	}

	if err := uc.schema.EnsureSchema(ctx); err != nil {
		log.Error().Err(err).Msg("failed to create or verify tables")
		uc.fail("schema", start)
		return nil, fmt.Errorf("%w: %v", domain.ErrSchemaUnavailable, err)
	}

	stmt, err := uc.parser.Parse(ctx, path)
	if err != nil {
		uc.fail("parse", start)
		if errors.Is(err, domain.ErrUnsupportedFormat) || errors.Is(err, domain.ErrNoData) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNoData, err)
	}
	if stmt == nil || len(stmt.Rows) == 0 {
		uc.fail("parse", start)
		return nil, domain.ErrNoData
	}

	movements := domain.CoerceStatement(stmt, sourceFile, uc.now())

	for i := 0; i < len(movements); i += uc.batchSize {
		end := min(i+uc.batchSize, len(movements))
		if err := uc.rawRepo.AppendBatch(ctx, movements[i:end]); err != nil {
			log.Error().Err(err).Int("batch_start", i).Int("rows", len(movements)).Msg("failed to append batch")
			uc.fail("persist", start)
			return nil, fmt.Errorf("append rows %d-%d: %w", i, end-1, err)
		}
		uc.metrics.BatchWritten("raw")
	}

	uc.metrics.ObserveIngest("success", len(movements), len(stmt.Warnings), uc.now().Sub(start))
	log.Info().Int("rows", len(movements)).Int("warnings", len(stmt.Warnings)).Msg("statement ingested")

	return &IngestResult{
		SourceFile: sourceFile,
		Rows:       len(movements),
		Warnings:   stmt.Warnings,
	}, nil
}

// CheckConnection checks that the database is reachable within DefaultConnCheckTimeout.
func (uc *IngestUseCase) CheckConnection(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, DefaultConnCheckTimeout)
	defer cancel()

	if err := uc.schema.CheckConnection(checkCtx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDatabaseUnavailable, err)
	}
	return nil
}

func (uc *IngestUseCase) fail(stage string, start time.Time) {
	uc.metrics.IngestFailed(stage)
	uc.metrics.ObserveIngest("failed", 0, 0, uc.now().Sub(start))
}
