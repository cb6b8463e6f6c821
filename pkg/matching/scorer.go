package matching

import (
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/taxonomy"
)

// Scorer computes how well a profile's attributes satisfy a set of criteria.
//
// Each attribute family contributes (weight, achieved fraction) to a running
// total; a family is skipped entirely when either side lacks the data. The
// denominator is therefore the sum of weights of applicable families only, so
// a profile missing many optional fields is never penalized against one with
// few.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with the given weight tuning.
func NewScorer(weights Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score returns a match percentage in [0, 100] and the per-family breakdown.
// It is pure and deterministic: 0 when no family is applicable, never NaN.
func (s *Scorer) Score(attrs *models.Attributes, criteria *models.Criteria) (float64, []models.FactorScore) {
	var totalWeight float64
	var scoreSum float64
	breakdown := make([]models.FactorScore, 0, 13)

	add := func(factor string, weight, achieved float64) {
		if weight <= 0 {
			return
		}
		totalWeight += weight
		scoreSum += weight * achieved
		breakdown = append(breakdown, models.FactorScore{Factor: factor, Weight: weight, Achieved: achieved})
	}

	// Category overlap, three independent levels. Each level applies only
	// when both sides resolve at least one tag at that level.
	if len(attrs.InvestmentFocus) > 0 && len(criteria.InvestmentFocus) > 0 {
		attrMain, attrSub, attrSpecific := taxonomy.LevelSets(attrs.InvestmentFocus)
		critMain, critSub, critSpecific := taxonomy.LevelSets(criteria.InvestmentFocus)

		if len(attrMain) > 0 && len(critMain) > 0 {
			add(FactorCategoryMain, s.weights.CategoryMain, boolFraction(anyOverlap(attrMain, critMain)))
		}
		if len(attrSub) > 0 && len(critSub) > 0 {
			add(FactorCategorySub, s.weights.CategorySub, overlapFraction(attrSub, critSub))
		}
		if len(attrSpecific) > 0 && len(critSpecific) > 0 {
			add(FactorCategorySpecific, s.weights.CategorySpecific, overlapFraction(attrSpecific, critSpecific))
		}
	}

	// Exact-match fields
	if attrs.FundType != nil && criteria.FundType != nil {
		add(FactorFundType, s.weights.FundType, boolFraction(strings.EqualFold(*attrs.FundType, *criteria.FundType)))
	}
	if attrs.RiskProfile != nil && criteria.RiskProfile != nil {
		add(FactorRiskProfile, s.weights.RiskProfile, boolFraction(*attrs.RiskProfile == *criteria.RiskProfile))
	}

	// Range-containment fields; an absent bound is unbounded on that side.
	if attrs.FundSize != nil && (criteria.FundSizeMin != nil || criteria.FundSizeMax != nil) {
		add(FactorFundSize, s.weights.FundSize, boolFraction(inRange(*attrs.FundSize, criteria.FundSizeMin, criteria.FundSizeMax)))
	}
	if point := investmentSizePoint(attrs); point != nil && (criteria.InvestmentSizeMin != nil || criteria.InvestmentSizeMax != nil) {
		add(FactorInvestmentSize, s.weights.InvestmentSize, boolFraction(inRange(*point, criteria.InvestmentSizeMin, criteria.InvestmentSizeMax)))
	}
	if attrs.TypicalDealSize != nil && (criteria.DealSizeMin != nil || criteria.DealSizeMax != nil) {
		add(FactorDealSize, s.weights.DealSize, boolFraction(inRange(*attrs.TypicalDealSize, criteria.DealSizeMin, criteria.DealSizeMax)))
	}
	if attrs.InvestmentHorizonYears != nil && (criteria.HorizonMinYears != nil || criteria.HorizonMaxYears != nil) {
		horizon := float64(*attrs.InvestmentHorizonYears)
		add(FactorHorizon, s.weights.Horizon, boolFraction(inRange(horizon, intBound(criteria.HorizonMinYears), intBound(criteria.HorizonMaxYears))))
	}

	// Threshold fields
	if attrs.HistoricalReturns != nil && criteria.MinHistoricalReturns != nil {
		add(FactorReturns, s.weights.Returns, boolFraction(*attrs.HistoricalReturns >= *criteria.MinHistoricalReturns))
	}
	if attrs.YearsExperience != nil && criteria.MinYearsExperience != nil {
		add(FactorExperience, s.weights.Experience, boolFraction(*attrs.YearsExperience >= *criteria.MinYearsExperience))
	}

	// Set-overlap fields
	if len(attrs.Sectors) > 0 && len(criteria.Sectors) > 0 {
		add(FactorSectors, s.weights.Sectors, overlapFraction(stringSet(attrs.Sectors), stringSet(criteria.Sectors)))
	}

	// Boolean fields. An explicit "not required" is fully achieved; when the
	// requirement is set the profile must carry the attribute for the family
	// to apply.
	if criteria.RequireTrackRecord != nil {
		if !*criteria.RequireTrackRecord {
			add(FactorTrackRecord, s.weights.TrackRecord, 1.0)
		} else if attrs.TrackRecord != nil {
			add(FactorTrackRecord, s.weights.TrackRecord, boolFraction(*attrs.TrackRecord))
		}
	}

	if totalWeight == 0 {
		return 0, nil
	}

	percentage := 100 * scoreSum / totalWeight
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	return percentage, breakdown
}

// investmentSizePoint picks the profile value compared against the
// investment-size range: the typical size when stated, otherwise the minimum.
func investmentSizePoint(attrs *models.Attributes) *float64 {
	if attrs.TypicalInvestmentSize != nil {
		return attrs.TypicalInvestmentSize
	}
	return attrs.MinimumInvestment
}

func boolFraction(ok bool) float64 {
	if ok {
		return 1.0
	}
	return 0.0
}

func inRange(value float64, min, max *float64) bool {
	if min != nil && value < *min {
		return false
	}
	if max != nil && value > *max {
		return false
	}
	return true
}

func intBound(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return set
}

func anyOverlap(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// overlapFraction is |intersection| / |criteria-side set|.
func overlapFraction(attrSet, criteriaSet map[string]struct{}) float64 {
	if len(criteriaSet) == 0 {
		return 0
	}
	matched := 0
	for k := range criteriaSet {
		if _, ok := attrSet[k]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(criteriaSet))
}
