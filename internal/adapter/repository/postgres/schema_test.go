package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestSchemaManagerCheckConnection(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec(regexp.QuoteMeta("SELECT 1")).WillReturnResult(pgxmock.NewResult("SELECT", 1))

	if err := newSchemaManager(mockPool).CheckConnection(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestSchemaManagerCheckConnectionFailure(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("connection refused")
	mockPool.ExpectExec(regexp.QuoteMeta("SELECT 1")).WillReturnError(mockErr)

	err := newSchemaManager(mockPool).CheckConnection(context.Background())
	if !errors.Is(err, mockErr) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestSchemaManagerEnsureSchema(t *testing.T) {
	mockPool := newMockPool(t)
	mockPool.ExpectExec("CREATE TABLE IF NOT EXISTS extrato_conta_corrente").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mockPool.ExpectExec("CREATE TABLE IF NOT EXISTS contas_principais").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mockPool.ExpectExec("CREATE OR REPLACE VIEW view_operacoes_financeiras").WillReturnResult(pgxmock.NewResult("CREATE VIEW", 0))

	if err := newSchemaManager(mockPool).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertExpectations(t, mockPool)
}

func TestSchemaManagerEnsureSchemaStopsOnError(t *testing.T) {
	mockPool := newMockPool(t)
	mockErr := errors.New("permission denied")
	mockPool.ExpectExec("CREATE TABLE IF NOT EXISTS extrato_conta_corrente").WillReturnError(mockErr)

	err := newSchemaManager(mockPool).EnsureSchema(context.Background())
	if !errors.Is(err, mockErr) {
		t.Fatalf("expected schema error, got %v", err)
	}

	assertExpectations(t, mockPool)
}
