package bureau

import (
	"math/rand"

	"github.com/okian/tribureau/internal/domain/model"
)

// span is an integer range [Base, Base+Spread).
type span struct{ Base, Spread int }

func (s span) draw(rng *rand.Rand) int {
	if s.Spread <= 0 {
		return s.Base
	}
	return s.Base + rng.Intn(s.Spread)
}

// profile describes how one simulated bureau shapes its reports.
type profile struct {
	failureRate    float64
	minScore       int
	maxScore       int
	maxUtilization float64
	accounts       span
	delinquent     span
	inquiries      span
	oldestMonths   span
	debtBase       float64
	debtSpread     float64
	paymentBase    float64
	paymentSpread  float64
	publicRecords  span
	derogatory     span
	onTime         span
	late30         span
	late60         span
	late90         span
	revolving      span
	installment    span
	mortgage       span
	open           span
	extraKey       string
	extra          span
}

// profiles are the per-source defaults. Score ranges are inclusive and
// differ per source.
var profiles = map[model.Source]profile{
	model.SourceExperian: {
		failureRate: 0.10, minScore: 600, maxScore: 849, maxUtilization: 0.7,
		accounts: span{5, 15}, delinquent: span{0, 3}, inquiries: span{0, 5}, oldestMonths: span{24, 120},
		debtBase: 10000, debtSpread: 90000, paymentBase: 500, paymentSpread: 2500,
		publicRecords: span{0, 2}, derogatory: span{0, 3},
		onTime: span{90, 10}, late30: span{0, 5}, late60: span{0, 3}, late90: span{0, 2},
		revolving: span{2, 5}, installment: span{1, 3}, mortgage: span{0, 2}, open: span{3, 7},
		extraKey: "tax_liens", extra: span{0, 2},
	},
	model.SourceEquifax: {
		failureRate: 0.15, minScore: 580, maxScore: 849, maxUtilization: 0.8,
		accounts: span{4, 16}, delinquent: span{0, 4}, inquiries: span{0, 6}, oldestMonths: span{18, 140},
		debtBase: 12000, debtSpread: 88000, paymentBase: 400, paymentSpread: 2600,
		publicRecords: span{0, 2}, derogatory: span{0, 4},
		onTime: span{88, 12}, late30: span{0, 6}, late60: span{0, 4}, late90: span{0, 3},
		revolving: span{1, 6}, installment: span{1, 4}, mortgage: span{0, 2}, open: span{2, 8},
		extraKey: "bankruptcies", extra: span{0, 2},
	},
	model.SourceTransUnion: {
		failureRate: 0.12, minScore: 590, maxScore: 849, maxUtilization: 0.75,
		accounts: span{3, 17}, delinquent: span{0, 3}, inquiries: span{0, 5}, oldestMonths: span{20, 130},
		debtBase: 11000, debtSpread: 89000, paymentBase: 450, paymentSpread: 2550,
		publicRecords: span{0, 2}, derogatory: span{0, 3},
		onTime: span{89, 11}, late30: span{0, 5}, late60: span{0, 3}, late90: span{0, 2},
		revolving: span{2, 5}, installment: span{1, 3}, mortgage: span{0, 2}, open: span{3, 7},
		extraKey: "collections_count", extra: span{0, 2},
	},
}

// DefaultFailureRate returns the built-in failure probability for src.
func DefaultFailureRate(src model.Source) float64 {
	return profiles[src].failureRate
}

// DefaultScoreRange returns the built-in inclusive score range for src.
func DefaultScoreRange(src model.Source) (int, int) {
	p := profiles[src]
	return p.minScore, p.maxScore
}

func (p profile) metrics(src model.Source, rng *rand.Rand) *model.Metrics {
	return &model.Metrics{
		Score:                   p.minScore + rng.Intn(p.maxScore-p.minScore+1),
		UtilizationRate:         rng.Float64() * p.maxUtilization,
		AccountsCount:           p.accounts.draw(rng),
		DelinquentAccountsCount: p.delinquent.draw(rng),
		InquiriesLast6Months:    p.inquiries.draw(rng),
		OldestAccountAgeMonths:  p.oldestMonths.draw(rng),
		TotalDebt:               p.debtBase + rng.Float64()*p.debtSpread,
		MonthlyPayments:         p.paymentBase + rng.Float64()*p.paymentSpread,
		PublicRecords:           p.publicRecords.draw(rng),
		DerogatoryMarks:         p.derogatory.draw(rng),
		PaymentHistory: model.PaymentHistory{
			OnTime: p.onTime.draw(rng),
			Late30: p.late30.draw(rng),
			Late60: p.late60.draw(rng),
			Late90: p.late90.draw(rng),
		},
		CreditMix: model.CreditMix{
			Revolving:   p.revolving.draw(rng),
			Installment: p.installment.draw(rng),
			Mortgage:    p.mortgage.draw(rng),
			Open:        p.open.draw(rng),
		},
		Extra: map[string]any{
			"source":      src.DisplayName(),
			"report_type": "Standard",
			p.extraKey:    p.extra.draw(rng),
		},
	}
}
