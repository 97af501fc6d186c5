package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType is the direction of a statement movement.
type MovementType string

const (
	MovementTransferToInvestment MovementType = "Transfer-to-Investment"
	MovementInflow               MovementType = "Inflow"
	MovementOutflow              MovementType = "Outflow"
	MovementNeutral              MovementType = "Neutral"
)

// Category is the coarse bucket a classified movement falls into.
type Category string

const (
	CategoryInvestment Category = "Investment"
	CategorySalary     Category = "Salary"
	CategoryFixedBill  Category = "FixedBill"
	CategoryCreditCard Category = "CreditCard"
	CategoryOther      Category = "Other"
)

// RawMovement is one statement row as extracted and coerced from an uploaded file.
// Amount holds the absolute value; the signed value is kept in SignedAmountOriginal.
type RawMovement struct {
	IngestedAt           time.Time
	Date                 *time.Time
	ID                   int64
	Description          string
	DocumentRef          string
	SourceFile           string
	MovementType         MovementType
	Amount               decimal.NullDecimal
	SignedAmountOriginal decimal.NullDecimal
	RunningBalance       decimal.NullDecimal
}

// ClassifiedMovement is a raw movement enriched with a reason and a category.
// ID references the raw movement and is not unique in the classified table.
type ClassifiedMovement struct {
	Date                 *time.Time
	ID                   int64
	Description          string
	Reason               string
	Category             Category
	MovementType         MovementType
	Amount               decimal.NullDecimal
	SignedAmountOriginal decimal.NullDecimal
}

// StatementRow holds the text cells of one data row, already mapped to the
// fixed statement headers.
type StatementRow struct {
	Date        string
	Description string
	DocumentRef string
	Amount      string
	Balance     string
}

// ParsedStatement is the tabular region extracted from a statement spreadsheet.
type ParsedStatement struct {
	Columns  []string
	Rows     []StatementRow
	Warnings []string
}
