package aggregation

import "github.com/okian/tribureau/internal/domain/model"

type band struct {
	min      int
	category model.RiskCategory
}

// Bands are matched in descending order; the last entry catches everything.
var riskBands = []band{
	{800, model.RiskExcellent},
	{740, model.RiskVeryGood},
	{670, model.RiskGood},
	{580, model.RiskFair},
	{500, model.RiskPoor},
}

// Classify maps a combined score to its risk category.
func Classify(score int) model.RiskCategory {
	for _, b := range riskBands {
		if score >= b.min {
			return b.category
		}
	}
	return model.RiskVeryPoor
}

// Recommendation texts keyed by score tier.
const (
	RecommendPremium  = "Excellent candidate for premium loans with favorable rates and terms."
	RecommendStandard = "Good candidate for standard loan products with competitive rates."
	RecommendHigher   = "May qualify for loans with higher interest rates. Consider improving credit before major applications."
	RecommendRepair   = "Limited loan options available. Focus on credit repair and building positive history."
)

// Recommend returns lending guidance for a combined score.
func Recommend(score int) string {
	switch {
	case score >= 740:
		return RecommendPremium
	case score >= 670:
		return RecommendStandard
	case score >= 580:
		return RecommendHigher
	default:
		return RecommendRepair
	}
}
