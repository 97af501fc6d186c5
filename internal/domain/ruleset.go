package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SpecialCase assigns a reason by amount and, optionally, description.
// A case without an amount never matches.
type SpecialCase struct {
	Amount      *decimal.Decimal `yaml:"amount"`
	Description string           `yaml:"description"`
	Reason      string           `yaml:"reason"`
}

// AmountCase marks a movement as a fixed bill by amount and, optionally, description.
type AmountCase struct {
	Amount      decimal.Decimal `yaml:"amount"`
	Description string          `yaml:"description"`
}

// RuleSet is the static classification configuration.
// Build a Classifier from it once at startup; the classifier keeps its own copy.
type RuleSet struct {
	Reasons           map[string]string `yaml:"reasons"`
	SpecialCases      []SpecialCase     `yaml:"special_cases"`
	FixedBills        []string          `yaml:"fixed_bills"`
	FixedBillAmounts  []AmountCase      `yaml:"fixed_bill_amounts"`
	Investments       []string          `yaml:"investments"`
	Salaries          []string          `yaml:"salaries"`
	CreditCardPayment string            `yaml:"credit_card_payment"`
	FallbackReason    string            `yaml:"fallback_reason"`
}

// Validate checks that the rule set can be turned into a classifier.
func (rs *RuleSet) Validate() error {
	for key, reason := range rs.Reasons {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: empty description in reasons table", ErrInvalidRuleSet)
		}
		if strings.TrimSpace(reason) == "" {
			return fmt.Errorf("%w: empty reason for %q", ErrInvalidRuleSet, key)
		}
	}

	for i, sc := range rs.SpecialCases {
		if sc.Amount == nil && sc.Description == "" {
			return fmt.Errorf("%w: special case %d has neither amount nor description", ErrInvalidRuleSet, i)
		}
		if strings.TrimSpace(sc.Reason) == "" {
			return fmt.Errorf("%w: special case %d has no reason", ErrInvalidRuleSet, i)
		}
	}

	if strings.TrimSpace(rs.FallbackReason) == "" {
		return fmt.Errorf("%w: fallback reason is required", ErrInvalidRuleSet)
	}

	return nil
}

func amountPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// DefaultRuleSet returns the built-in rules for the checking account statements.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		Reasons: map[string]string{
			"pagto fatura master":                "Credit card payment",
			"aplic.financ.aviso previo":          "Outflow to investment",
			"credito folha pgto.":                "Salary 25",
			"liquidacao boleto sicredi  ziani e": "Condominium",
			"adto. salario mes":                  "Salary 10",
			"liquidacao boleto  pjbank pagament": "Rent",
			"resg.aplic.fin.aviso prev":          "Investment redemption",
			"liquidacao boleto sicredi  rede co": "Internet",
			"pagamento pix sicredi  rede conesu": "Internet",
			"debito convenios  rge sul-g":        "Electricity",
			"debito convenios id  adm.c":         "Consortium",
			"liquidacao boleto  pjbank":          "Rent",
			"pagamento pix  pjbank pagamentos s": "Rent",
			"pagamento bolsa auxilio":            "Internship salary",
			"liquidacao boleto  lopes planos":    "Health plan (Angelus)",
		},
		SpecialCases: []SpecialCase{
			{Amount: amountPtr(109), Reason: "Gym"},
			{Amount: amountPtr(95), Description: "pagamento pix sicredi  rafael mardega", Reason: "Gym"},
			{Amount: amountPtr(65), Description: "pagamento pix  ana paula zalamena", Reason: "Mother's transport plan (Vans)"},
			{Description: "pagamento pix sicredi  carla cristian", Reason: "Pastry shop (Carla)"},
		},
		FixedBills: []string{
			"liquidacao boleto sicredi  ziani e",
			"liquidacao boleto  pjbank pagament",
			"liquidacao boleto sicredi  rede co",
			"pagamento pix sicredi  rede conesu",
			"debito convenios  rge sul-g",
			"debito convenios id  adm.c",
			"liquidacao boleto  pjbank",
			"pagamento pix  pjbank pagamentos s",
			"liquidacao boleto  lopes planos",
		},
		FixedBillAmounts: []AmountCase{
			{Amount: decimal.NewFromInt(109)},
			{Amount: decimal.NewFromInt(95), Description: "pagamento pix sicredi  rafael mardega"},
			{Amount: decimal.NewFromInt(65), Description: "pagamento pix  ana paula zalamena"},
		},
		Investments: []string{
			"aplic.financ.aviso previo",
			"resg.aplic.fin.aviso prev",
		},
		Salaries: []string{
			"credito folha pgto.",
			"adto. salario mes",
			"pagamento bolsa auxilio",
		},
		CreditCardPayment: "pagto fatura master",
		FallbackReason:    "Other",
	}
}
