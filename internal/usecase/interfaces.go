package usecase

import (
	"context"

	"github.com/finpipe/statement-ledger/internal/domain"
)

// RawMovementRepository defines data access for the raw statement table.
type RawMovementRepository interface {
	// AppendBatch inserts one batch of movements as a single independent write.
	AppendBatch(ctx context.Context, movements []*domain.RawMovement) error
	ListAll(ctx context.Context) ([]*domain.RawMovement, error)
}

// ClassifiedMovementRepository defines data access for the classified table.
type ClassifiedMovementRepository interface {
	AppendBatch(ctx context.Context, movements []*domain.ClassifiedMovement) error
}

// SchemaManager checks connectivity and creates tables when absent.
type SchemaManager interface {
	CheckConnection(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
}

// QueryRunner executes ad-hoc read queries.
type QueryRunner interface {
	RunReadOnly(ctx context.Context, query string) ([]map[string]any, error)
}

// StatementParser extracts the data region of a statement file.
type StatementParser interface {
	Parse(ctx context.Context, path string) (*domain.ParsedStatement, error)
}

// LanguageModel generates text from a prompt.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Flash is a one-shot message shown on the next page render.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// FlashStore keeps flash messages between a redirect and the next page.
type FlashStore interface {
	Push(ctx context.Context, session string, flashes []Flash) error
	// Pop returns and removes every pending message for session.
	Pop(ctx context.Context, session string) ([]Flash, error)
}
