package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Coercion constants
const (
	StatementDateLayout           = "02/01/2006"
	InvestmentTransferDescription = "aplic.financ.aviso previo"
)

// NormalizeDescription strips digits, lowercases and trims a description.
// The result is the lookup key used by the classifier.
func NormalizeDescription(s string) string {
	s = strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(strings.ToLower(s))
}

// ParseStatementDate parses a day/month/year date. Unparseable input returns nil.
func ParseStatementDate(s string) *time.Time {
	t, err := time.Parse(StatementDateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// ParseAmount parses a currency cell such as "R$ -1.234,56" or "109".
// Anything that does not parse yields an invalid NullDecimal.
func ParseAmount(s string) decimal.NullDecimal {
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.NullDecimal{}
	}

	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		// thousands separator is '.', decimal separator is ','
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// DeriveMovementType classifies the direction of a movement from its signed amount.
// A missing amount is Neutral.
func DeriveMovementType(description string, signed decimal.NullDecimal) MovementType {
	if description == InvestmentTransferDescription {
		return MovementTransferToInvestment
	}
	if !signed.Valid {
		return MovementNeutral
	}

	switch signed.Decimal.Sign() {
	case 1:
		return MovementInflow
	case -1:
		return MovementOutflow
	default:
		return MovementNeutral
	}
}

// CoerceRow turns a text row into a RawMovement ready to be stored.
func CoerceRow(row StatementRow, sourceFile string, ingestedAt time.Time) *RawMovement {
	description := NormalizeDescription(row.Description)
	signed := ParseAmount(row.Amount)

	amount := signed
	if amount.Valid {
		amount.Decimal = amount.Decimal.Abs()
	}

	return &RawMovement{
		Date:                 ParseStatementDate(row.Date),
		Description:          description,
		DocumentRef:          strings.TrimSpace(row.DocumentRef),
		Amount:               amount,
		SignedAmountOriginal: signed,
		RunningBalance:       ParseAmount(row.Balance),
		SourceFile:           sourceFile,
		MovementType:         DeriveMovementType(description, signed),
		IngestedAt:           ingestedAt,
	}
}

// CoerceStatement coerces every row of a parsed statement with a single capture time.
func CoerceStatement(stmt *ParsedStatement, sourceFile string, ingestedAt time.Time) []*RawMovement {
	movements := make([]*RawMovement, 0, len(stmt.Rows))
	for _, row := range stmt.Rows {
		movements = append(movements, CoerceRow(row, sourceFile, ingestedAt))
	}
	return movements
}
