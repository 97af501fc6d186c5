package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Table and view names shared with the analyst prompts.
const (
	RawTable        = "extrato_conta_corrente"
	ClassifiedTable = "contas_principais"
	AnalystView     = "view_operacoes_financeiras"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS extrato_conta_corrente (
		id                 BIGSERIAL PRIMARY KEY,
		data               DATE,
		descricao          TEXT,
		documento          TEXT,
		valor              NUMERIC(15, 2),
		valor_original     NUMERIC(15, 2),
		saldo              NUMERIC(15, 2),
		arquivo_origem     TEXT,
		tipo_movimentacao  TEXT,
		data_processamento TIMESTAMP
	)`,
	// id mirrors extrato_conta_corrente.id and is not unique.
	`CREATE TABLE IF NOT EXISTS contas_principais (
		id                BIGINT,
		data              DATE,
		descricao         TEXT,
		valor             NUMERIC(15, 2),
		valor_original    NUMERIC(15, 2),
		motivo            TEXT,
		tipo              TEXT,
		tipo_movimentacao TEXT
	)`,
	`CREATE OR REPLACE VIEW view_operacoes_financeiras AS
		SELECT id, tipo_movimentacao, tipo AS categoria, motivo, valor, data
		FROM contas_principais`,
}

// SchemaManager implements usecase.SchemaManager.
type SchemaManager struct {
	conn pgxConn
}

// NewSchemaManager creates a new SchemaManager.
func NewSchemaManager(pool *pgxpool.Pool) *SchemaManager {
	return newSchemaManager(pool)
}

func newSchemaManager(conn pgxConn) *SchemaManager {
	return &SchemaManager{conn: conn}
}

// CheckConnection checks that the database answers a trivial query.
func (s *SchemaManager) CheckConnection(ctx context.Context) error {
	_, err := s.conn.Exec(ctx, "SELECT 1")
	return err
}

// EnsureSchema creates the tables and the analyst view when missing.
func (s *SchemaManager) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
