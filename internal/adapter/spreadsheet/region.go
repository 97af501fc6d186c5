package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/finpipe/statement-ledger/internal/domain"
)

// Layout constants of the bank's statement export.
const (
	MetadataRows   = 10
	SentinelMarker = "saldo da conta"
)

// StatementHeaders are the fixed names assigned to the data columns, in order.
var StatementHeaders = []string{"date", "description", "document_ref", "amount", "balance"}

// LocateRegion finds the data region of a statement sheet.
//
// The first MetadataRows rows are skipped. Scanning stops at the first fully
// blank row or at the first row holding the sentinel marker; that row and
// everything after it are dropped. A column count other than five is reported
// as a warning, never as an error.
func LocateRegion(rows [][]string) (*domain.ParsedStatement, error) {
	if len(rows) <= MetadataRows {
		return nil, domain.ErrNoData
	}

	var region [][]string
	for _, row := range rows[MetadataRows:] {
		if isBlankRow(row) || hasSentinel(row) {
			break
		}
		region = append(region, row)
	}

	if len(region) == 0 {
		return nil, domain.ErrNoData
	}

	width := 0
	for _, row := range region {
		width = max(width, len(row))
	}

	columns, warnings := assignHeaders(width)

	stmt := &domain.ParsedStatement{
		Columns:  columns,
		Rows:     make([]domain.StatementRow, 0, len(region)),
		Warnings: warnings,
	}
	for _, row := range region {
		stmt.Rows = append(stmt.Rows, toStatementRow(row))
	}

	return stmt, nil
}

func assignHeaders(width int) ([]string, []string) {
	if width == len(StatementHeaders) {
		return append([]string(nil), StatementHeaders...), nil
	}

	warning := fmt.Sprintf("column count (%d) does not match header count (%d)", width, len(StatementHeaders))

	if width < len(StatementHeaders) {
		return append([]string(nil), StatementHeaders[:width]...), []string{warning}
	}

	columns := append([]string(nil), StatementHeaders...)
	for i := 0; i < width-len(StatementHeaders); i++ {
		columns = append(columns, fmt.Sprintf("column_%d", i+1))
	}
	return columns, []string{warning}
}

func toStatementRow(row []string) domain.StatementRow {
	cell := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	return domain.StatementRow{
		Date:        cell(0),
		Description: cell(1),
		DocumentRef: cell(2),
		Amount:      cell(3),
		Balance:     cell(4),
	}
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func hasSentinel(row []string) bool {
	for _, cell := range row {
		if strings.EqualFold(strings.TrimSpace(cell), SentinelMarker) {
			return true
		}
	}
	return false
}
