package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finpipe/statement-ledger/internal/domain"
)

var rawColumns = []string{
	"data",
	"descricao",
	"documento",
	"valor",
	"valor_original",
	"saldo",
	"arquivo_origem",
	"tipo_movimentacao",
	"data_processamento",
}

const listRawMovementsSQL = `SELECT id, data, descricao, documento, valor, valor_original, saldo,
	arquivo_origem, tipo_movimentacao, data_processamento
FROM extrato_conta_corrente
ORDER BY id`

// RawMovementRepository implements usecase.RawMovementRepository.
type RawMovementRepository struct {
	conn pgxConn
}

// NewRawMovementRepository creates a new RawMovementRepository.
func NewRawMovementRepository(pool *pgxpool.Pool) *RawMovementRepository {
	return newRawMovementRepository(pool)
}

func newRawMovementRepository(conn pgxConn) *RawMovementRepository {
	return &RawMovementRepository{conn: conn}
}

// AppendBatch copies movements into the raw table in a single COPY.
func (r *RawMovementRepository) AppendBatch(ctx context.Context, movements []*domain.RawMovement) error {
	if len(movements) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, []any{
			dateToPg(m.Date),
			textOrNull(m.Description),
			textOrNull(m.DocumentRef),
			nullDecimalToNumeric(m.Amount),
			nullDecimalToNumeric(m.SignedAmountOriginal),
			nullDecimalToNumeric(m.RunningBalance),
			textOrNull(m.SourceFile),
			textOrNull(string(m.MovementType)),
			pgtype.Timestamp{Time: m.IngestedAt, Valid: !m.IngestedAt.IsZero()},
		})
	}

	n, err := r.conn.CopyFrom(ctx, pgx.Identifier{RawTable}, rawColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", RawTable, err)
	}
	if int(n) != len(movements) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", RawTable, n, len(movements))
	}

	return nil
}

// ListAll returns every raw movement ordered by id.
func (r *RawMovementRepository) ListAll(ctx context.Context) ([]*domain.RawMovement, error) {
	rows, err := r.conn.Query(ctx, listRawMovementsSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", RawTable, err)
	}
	defer rows.Close()

	var movements []*domain.RawMovement
	for rows.Next() {
		var (
			id                                 int64
			date                               pgtype.Date
			description, document, source, typ pgtype.Text
			amount, original, balance          pgtype.Numeric
			ingestedAt                         pgtype.Timestamp
		)
		if err := rows.Scan(&id, &date, &description, &document, &amount, &original, &balance, &source, &typ, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", RawTable, err)
		}

		m := &domain.RawMovement{
			ID:                   id,
			Date:                 pgToDate(date),
			Description:          description.String,
			DocumentRef:          document.String,
			Amount:               numericToNullDecimal(amount),
			SignedAmountOriginal: numericToNullDecimal(original),
			RunningBalance:       numericToNullDecimal(balance),
			SourceFile:           source.String,
			MovementType:         domain.MovementType(typ.String),
			IngestedAt:           ingestedAt.Time,
		}

		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", RawTable, err)
	}

	return movements, nil
}
