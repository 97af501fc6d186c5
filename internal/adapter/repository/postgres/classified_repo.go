package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finpipe/statement-ledger/internal/domain"
)

var classifiedColumns = []string{
	"id",
	"data",
	"descricao",
	"valor",
	"valor_original",
	"motivo",
	"tipo",
	"tipo_movimentacao",
}

// ClassifiedMovementRepository implements usecase.ClassifiedMovementRepository.
type ClassifiedMovementRepository struct {
	conn pgxConn
}

// NewClassifiedMovementRepository creates a new ClassifiedMovementRepository.
func NewClassifiedMovementRepository(pool *pgxpool.Pool) *ClassifiedMovementRepository {
	return newClassifiedMovementRepository(pool)
}

func newClassifiedMovementRepository(conn pgxConn) *ClassifiedMovementRepository {
	return &ClassifiedMovementRepository{conn: conn}
}

// AppendBatch copies classified movements into the classified table.
func (r *ClassifiedMovementRepository) AppendBatch(ctx context.Context, movements []*domain.ClassifiedMovement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			m.ID,
			dateToPg(m.Date),
			textOrNull(m.Description),
			nullDecimalToNumeric(m.Amount),
			nullDecimalToNumeric(m.SignedAmountOriginal),
			textOrNull(m.Reason),
			textOrNull(string(m.Category)),
			textOrNull(string(m.MovementType)),
		})
	}

	n, err := r.conn.CopyFrom(ctx, pgx.Identifier{ClassifiedTable}, classifiedColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", ClassifiedTable, err)
	}
	if int(n) != len(movements) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", ClassifiedTable, n, len(movements))
	}

	return nil
}
