package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"

	"github.com/finpipe/statement-ledger/internal/domain"
	"github.com/finpipe/statement-ledger/internal/usecase"
	"github.com/finpipe/statement-ledger/internal/usecase/mocks"
)

func TestCleanSQL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"```sql\nSELECT 1;\n```", "SELECT 1;"},
		{"```SQL\nSELECT 1\n```", "SELECT 1"},
		{"  SELECT * FROM t  ", "SELECT * FROM t"},
		{"```\n```", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := usecase.CleanSQL(tt.raw); got != tt.want {
			t.Errorf("CleanSQL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestAnalystUseCase_Ask(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := mocks.NewMockLanguageModel(ctrl)
	queries := mocks.NewMockQueryRunner(ctrl)

	rows := []map[string]any{{"motivo": "Internet", "total": "240.00"}}

	gomock.InOrder(
		model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, "How much did I spend on internet?") {
				t.Errorf("sql prompt does not carry the question: %s", prompt)
			}
			return "```sql\nSELECT motivo, SUM(valor) AS total FROM view_operacoes_financeiras GROUP BY motivo\n```", nil
		}),
		queries.EXPECT().RunReadOnly(gomock.Any(), "SELECT motivo, SUM(valor) AS total FROM view_operacoes_financeiras GROUP BY motivo").Return(rows, nil),
		model.EXPECT().Generate(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
			if !strings.Contains(prompt, `"motivo":"Internet"`) {
				t.Errorf("analysis prompt does not carry the rows: %s", prompt)
			}
			return "  Internet is a recurring expense.  ", nil
		}),
	)

	uc := usecase.NewAnalystUseCase(model, queries, nil, zerolog.Nop())

	answer, err := uc.Ask(context.Background(), "How much did I spend on internet?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.SQL == nil || !strings.HasPrefix(*answer.SQL, "SELECT motivo") {
		t.Errorf("unexpected SQL: %v", answer.SQL)
	}
	if len(answer.Results) != 1 {
		t.Errorf("expected 1 result row, got %d", len(answer.Results))
	}
	if answer.Analysis == nil || *answer.Analysis != "Internet is a recurring expense." {
		t.Errorf("unexpected analysis: %v", answer.Analysis)
	}
}

func TestAnalystUseCase_Ask_EmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := usecase.NewAnalystUseCase(mocks.NewMockLanguageModel(ctrl), mocks.NewMockQueryRunner(ctrl), nil, zerolog.Nop())

	_, err := uc.Ask(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyQuestion) {
		t.Errorf("expected ErrEmptyQuestion, got %v", err)
	}
}

func TestAnalystUseCase_Ask_EmptySQL(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := mocks.NewMockLanguageModel(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("```sql\n```", nil)
	queries := mocks.NewMockQueryRunner(ctrl)

	uc := usecase.NewAnalystUseCase(model, queries, nil, zerolog.Nop())

	answer, err := uc.Ask(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.SQL != nil || answer.Results != nil || answer.Analysis != nil {
		t.Errorf("expected all fields nil, got %+v", answer)
	}
}

func TestAnalystUseCase_Ask_QueryFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := mocks.NewMockLanguageModel(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("SELECT nope FROM missing", nil)
	queries := mocks.NewMockQueryRunner(ctrl)
	queries.EXPECT().RunReadOnly(gomock.Any(), "SELECT nope FROM missing").Return(nil, errors.New("relation does not exist"))

	uc := usecase.NewAnalystUseCase(model, queries, nil, zerolog.Nop())

	answer, err := uc.Ask(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.SQL == nil || *answer.SQL != "SELECT nope FROM missing" {
		t.Errorf("expected SQL to be reported, got %v", answer.SQL)
	}
	if answer.Results != nil || answer.Analysis != nil {
		t.Errorf("expected no results and no analysis, got %+v", answer)
	}
}

func TestAnalystUseCase_Ask_NoRowsSkipsAnalysis(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := mocks.NewMockLanguageModel(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("SELECT 1 WHERE false", nil).Times(1)
	queries := mocks.NewMockQueryRunner(ctrl)
	queries.EXPECT().RunReadOnly(gomock.Any(), gomock.Any()).Return([]map[string]any{}, nil)

	uc := usecase.NewAnalystUseCase(model, queries, nil, zerolog.Nop())

	answer, err := uc.Ask(context.Background(), "anything")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Analysis != nil {
		t.Errorf("expected no analysis, got %q", *answer.Analysis)
	}
}

func TestAnalystUseCase_Ask_ModelFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	model := mocks.NewMockLanguageModel(ctrl)
	model.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("", errors.New("quota exceeded"))

	uc := usecase.NewAnalystUseCase(model, mocks.NewMockQueryRunner(ctrl), nil, zerolog.Nop())

	_, err := uc.Ask(context.Background(), "anything")
	if !errors.Is(err, domain.ErrModelFailure) {
		t.Errorf("expected ErrModelFailure, got %v", err)
	}
}
