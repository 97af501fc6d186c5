package domain

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"
)

// Rule pairs a predicate with the result it yields when the predicate holds.
type Rule[T any] struct {
	Name   string
	Result func(m *RawMovement) (T, bool)
}

// RuleChain evaluates rules in order; the first match wins.
type RuleChain[T any] struct {
	rules    []Rule[T]
	fallback T
}

// NewRuleChain creates a chain that returns fallback when nothing matches.
func NewRuleChain[T any](fallback T, rules ...Rule[T]) RuleChain[T] {
	return RuleChain[T]{rules: rules, fallback: fallback}
}

// Evaluate returns the first matching result and the name of the rule that produced it.
// The name is "fallback" when no rule matched.
func (c RuleChain[T]) Evaluate(m *RawMovement) (T, string) {
	for _, r := range c.rules {
		if v, ok := r.Result(m); ok {
			return v, r.Name
		}
	}
	return c.fallback, "fallback"
}

// Classifier assigns reasons and categories to raw movements.
type Classifier struct {
	reasons    RuleChain[string]
	categories RuleChain[Category]
}

// NewClassifier builds the reason and category chains from a rule set.
// The rule set is copied; later changes to it do not affect the classifier.
func NewClassifier(rs RuleSet) *Classifier {
	reasonTable := maps.Clone(rs.Reasons)
	specialCases := slices.Clone(rs.SpecialCases)
	fixedBills := toSet(rs.FixedBills)
	fixedBillAmounts := slices.Clone(rs.FixedBillAmounts)
	investments := toSet(rs.Investments)
	salaries := toSet(rs.Salaries)
	creditCard := rs.CreditCardPayment

	reasons := NewRuleChain(rs.FallbackReason,
		Rule[string]{
			Name: "description table",
			Result: func(m *RawMovement) (string, bool) {
				reason, ok := reasonTable[m.Description]
				return reason, ok
			},
		},
		Rule[string]{
			Name: "special cases",
			Result: func(m *RawMovement) (string, bool) {
				for _, sc := range specialCases {
					if sc.Amount == nil || !amountEquals(m.Amount, *sc.Amount) {
						continue
					}
					if sc.Description == "" || sc.Description == m.Description {
						return sc.Reason, true
					}
				}
				return "", false
			},
		},
	)

	categories := NewRuleChain(CategoryOther,
		Rule[Category]{
			Name: "fixed bills",
			Result: func(m *RawMovement) (Category, bool) {
				if fixedBills[m.Description] {
					return CategoryFixedBill, true
				}
				for _, ac := range fixedBillAmounts {
					if amountEquals(m.Amount, ac.Amount) && (ac.Description == "" || ac.Description == m.Description) {
						return CategoryFixedBill, true
					}
				}
				return "", false
			},
		},
		memberRule("investments", investments, CategoryInvestment),
		memberRule("salaries", salaries, CategorySalary),
		Rule[Category]{
			Name: "credit card",
			Result: func(m *RawMovement) (Category, bool) {
				return CategoryCreditCard, creditCard != "" && m.Description == creditCard
			},
		},
	)

	return &Classifier{reasons: reasons, categories: categories}
}

// Reason returns the reason label for a movement.
func (c *Classifier) Reason(m *RawMovement) string {
	reason, _ := c.reasons.Evaluate(m)
	return reason
}

// Category returns the category for a movement.
func (c *Classifier) Category(m *RawMovement) Category {
	category, _ := c.categories.Evaluate(m)
	return category
}

// Explain returns the names of the reason and category rules that match a movement.
func (c *Classifier) Explain(m *RawMovement) (reasonRule, categoryRule string) {
	_, reasonRule = c.reasons.Evaluate(m)
	_, categoryRule = c.categories.Evaluate(m)
	return reasonRule, categoryRule
}

// Classify enriches a raw movement.
func (c *Classifier) Classify(m *RawMovement) *ClassifiedMovement {
	return &ClassifiedMovement{
		ID:                   m.ID,
		Date:                 m.Date,
		Description:          m.Description,
		Amount:               m.Amount,
		SignedAmountOriginal: m.SignedAmountOriginal,
		Reason:               c.Reason(m),
		Category:             c.Category(m),
		MovementType:         m.MovementType,
	}
}

// ClassifyAll classifies movements in order.
func (c *Classifier) ClassifyAll(movements []*RawMovement) []*ClassifiedMovement {
	out := make([]*ClassifiedMovement, 0, len(movements))
	for _, m := range movements {
		out = append(out, c.Classify(m))
	}
	return out
}

func memberRule(name string, set map[string]bool, category Category) Rule[Category] {
	return Rule[Category]{
		Name: name,
		Result: func(m *RawMovement) (Category, bool) {
			return category, set[m.Description]
		},
	}
}

func amountEquals(amount decimal.NullDecimal, want decimal.Decimal) bool {
	return amount.Valid && amount.Decimal.Equal(want)
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
