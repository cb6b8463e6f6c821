package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func sptr(v string) *string   { return &v }
func bptr(v bool) *bool       { return &v }

func riskptr(v models.RiskProfile) *models.RiskProfile { return &v }

func TestScoreNoApplicableFamilies(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	score, breakdown := scorer.Score(&models.Attributes{}, &models.Criteria{})

	assert.Equal(t, 0.0, score)
	assert.Empty(t, breakdown)
}

func TestScoreSkipsFamilyWhenEitherSideLacksData(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	t.Run("criteria without fund size bounds", func(t *testing.T) {
		attrs := &models.Attributes{FundSize: fptr(10_000_000)}
		score, breakdown := scorer.Score(attrs, &models.Criteria{})
		assert.Equal(t, 0.0, score)
		assert.Empty(t, breakdown)
	})

	t.Run("profile without fund size", func(t *testing.T) {
		criteria := &models.Criteria{FundSizeMin: fptr(1_000_000)}
		score, breakdown := scorer.Score(&models.Attributes{}, criteria)
		assert.Equal(t, 0.0, score)
		assert.Empty(t, breakdown)
	})
}

func TestScoreIdentityIsPerfect(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	profile := &models.Profile{
		ID:   "a",
		Role: models.RoleFundManager,
		Attributes: models.Attributes{
			FundType:               sptr("Buyout Fund"),
			FundSize:               fptr(250_000_000),
			InvestmentFocus:        []string{"Private Equity", "Buyout"},
			HistoricalReturns:      fptr(14.5),
			RiskProfile:            riskptr(models.RiskModerate),
			InvestmentHorizonYears: iptr(7),
			TypicalDealSize:        fptr(20_000_000),
			Sectors:                []string{"Healthcare", "Technology"},
			YearsExperience:        iptr(12),
			TrackRecord:            bptr(true),
		},
	}

	criteria := CriteriaFromProfile(profile)
	score, breakdown := scorer.Score(&profile.Attributes, &criteria)

	assert.InDelta(t, 100.0, score, 1e-9)
	assert.NotEmpty(t, breakdown)
	for _, fs := range breakdown {
		assert.Equal(t, 1.0, fs.Achieved, "factor %s", fs.Factor)
	}
}

func TestScoreExactMatchFields(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	t.Run("fund type is case insensitive", func(t *testing.T) {
		attrs := &models.Attributes{FundType: sptr("buyout fund")}
		criteria := &models.Criteria{FundType: sptr("Buyout Fund")}
		score, _ := scorer.Score(attrs, criteria)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("risk profile mismatch scores zero", func(t *testing.T) {
		attrs := &models.Attributes{RiskProfile: riskptr(models.RiskConservative)}
		criteria := &models.Criteria{RiskProfile: riskptr(models.RiskAggressive)}
		score, breakdown := scorer.Score(attrs, criteria)
		assert.Equal(t, 0.0, score)
		require.Len(t, breakdown, 1)
		assert.Equal(t, FactorRiskProfile, breakdown[0].Factor)
		assert.Equal(t, 0.0, breakdown[0].Achieved)
	})
}

func TestScoreRangeContainment(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	cases := []struct {
		name string
		min  *float64
		max  *float64
		want float64
	}{
		{"inside both bounds", fptr(5_000_000), fptr(50_000_000), 100},
		{"below minimum", fptr(20_000_000), fptr(50_000_000), 0},
		{"above maximum", fptr(1_000_000), fptr(5_000_000), 0},
		{"nil minimum is unbounded below", nil, fptr(50_000_000), 100},
		{"nil maximum is unbounded above", fptr(5_000_000), nil, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			attrs := &models.Attributes{FundSize: fptr(10_000_000)}
			criteria := &models.Criteria{FundSizeMin: tc.min, FundSizeMax: tc.max}
			score, _ := scorer.Score(attrs, criteria)
			assert.InDelta(t, tc.want, score, 1e-9)
		})
	}
}

func TestScoreWideningRangeNeverLowersScore(t *testing.T) {
	scorer := NewScorer(DefaultWeights())
	attrs := &models.Attributes{
		FundSize:    fptr(10_000_000),
		RiskProfile: riskptr(models.RiskModerate),
	}

	narrow := &models.Criteria{
		FundSizeMin: fptr(20_000_000),
		FundSizeMax: fptr(50_000_000),
		RiskProfile: riskptr(models.RiskModerate),
	}
	wide := &models.Criteria{
		FundSizeMin: fptr(1_000_000),
		FundSizeMax: fptr(50_000_000),
		RiskProfile: riskptr(models.RiskModerate),
	}

	narrowScore, _ := scorer.Score(attrs, narrow)
	wideScore, _ := scorer.Score(attrs, wide)

	assert.GreaterOrEqual(t, wideScore, narrowScore)
}

func TestScoreThresholds(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	t.Run("returns at threshold count", func(t *testing.T) {
		attrs := &models.Attributes{HistoricalReturns: fptr(12.0)}
		criteria := &models.Criteria{MinHistoricalReturns: fptr(12.0)}
		score, _ := scorer.Score(attrs, criteria)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("experience below threshold scores zero", func(t *testing.T) {
		attrs := &models.Attributes{YearsExperience: iptr(4)}
		criteria := &models.Criteria{MinYearsExperience: iptr(10)}
		score, _ := scorer.Score(attrs, criteria)
		assert.Equal(t, 0.0, score)
	})
}

func TestScoreSectorOverlap(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	attrs := &models.Attributes{Sectors: []string{"Healthcare", "Energy"}}
	criteria := &models.Criteria{Sectors: []string{"healthcare", "technology", "consumer", "energy"}}

	score, breakdown := scorer.Score(attrs, criteria)

	// 2 of 4 requested sectors present
	assert.InDelta(t, 50.0, score, 1e-9)
	require.Len(t, breakdown, 1)
	assert.Equal(t, FactorSectors, breakdown[0].Factor)
	assert.InDelta(t, 0.5, breakdown[0].Achieved, 1e-9)
}

func TestScoreCategoryLevels(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	t.Run("main level is boolean overlap", func(t *testing.T) {
		attrs := &models.Attributes{InvestmentFocus: []string{"Private Equity"}}
		criteria := &models.Criteria{InvestmentFocus: []string{"Private Equity", "Private Credit"}}
		score, breakdown := scorer.Score(attrs, criteria)
		assert.InDelta(t, 100.0, score, 1e-9)
		require.Len(t, breakdown, 1)
		assert.Equal(t, FactorCategoryMain, breakdown[0].Factor)
	})

	t.Run("sub level is fractional", func(t *testing.T) {
		attrs := &models.Attributes{InvestmentFocus: []string{"Buyout"}}
		criteria := &models.Criteria{InvestmentFocus: []string{"Buyout", "Growth Equity"}}
		score, breakdown := scorer.Score(attrs, criteria)

		var sub *models.FactorScore
		for i := range breakdown {
			if breakdown[i].Factor == FactorCategorySub {
				sub = &breakdown[i]
			}
		}
		require.NotNil(t, sub)
		assert.InDelta(t, 0.5, sub.Achieved, 1e-9)
		assert.Less(t, score, 100.0)
	})

	t.Run("specific level applies only when both sides name one", func(t *testing.T) {
		attrs := &models.Attributes{InvestmentFocus: []string{"Seed"}}
		criteria := &models.Criteria{InvestmentFocus: []string{"Venture Capital"}}
		_, breakdown := scorer.Score(attrs, criteria)
		for _, fs := range breakdown {
			assert.NotEqual(t, FactorCategorySpecific, fs.Factor)
		}
	})

	t.Run("unresolvable tags contribute nothing", func(t *testing.T) {
		attrs := &models.Attributes{InvestmentFocus: []string{"Beanie Babies"}}
		criteria := &models.Criteria{InvestmentFocus: []string{"Private Equity"}}
		score, breakdown := scorer.Score(attrs, criteria)
		assert.Equal(t, 0.0, score)
		assert.Empty(t, breakdown)
	})
}

func TestScoreTrackRecord(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	t.Run("not required is fully achieved", func(t *testing.T) {
		criteria := &models.Criteria{RequireTrackRecord: bptr(false)}
		score, _ := scorer.Score(&models.Attributes{}, criteria)
		assert.InDelta(t, 100.0, score, 1e-9)
	})

	t.Run("required and absent skips the family", func(t *testing.T) {
		criteria := &models.Criteria{RequireTrackRecord: bptr(true)}
		score, breakdown := scorer.Score(&models.Attributes{}, criteria)
		assert.Equal(t, 0.0, score)
		assert.Empty(t, breakdown)
	})

	t.Run("required and present compares the flag", func(t *testing.T) {
		criteria := &models.Criteria{RequireTrackRecord: bptr(true)}

		score, _ := scorer.Score(&models.Attributes{TrackRecord: bptr(true)}, criteria)
		assert.InDelta(t, 100.0, score, 1e-9)

		score, _ = scorer.Score(&models.Attributes{TrackRecord: bptr(false)}, criteria)
		assert.Equal(t, 0.0, score)
	})
}

func TestScoreFundManagerAgainstLimitedPartner(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	manager := &models.Profile{
		ID:   "fm",
		Role: models.RoleFundManager,
		Attributes: models.Attributes{
			FundSize:        fptr(50_000_000),
			InvestmentFocus: []string{"Private Equity", "Buyout"},
			RiskProfile:     riskptr(models.RiskModerate),
		},
	}
	investor := models.Attributes{
		MinimumInvestment: fptr(2_000_000),
		InvestmentFocus:   []string{"Private Equity", "Buyout"},
		RiskProfile:       riskptr(models.RiskModerate),
	}

	criteria := CriteriaFromProfile(manager)
	score, breakdown := scorer.Score(&investor, &criteria)

	// The investor has no fund size of its own so that family is skipped,
	// while the minimum investment sits comfortably under the fund's capacity.
	assert.InDelta(t, 100.0, score, 1e-9)

	factors := make(map[string]float64, len(breakdown))
	for _, fs := range breakdown {
		factors[fs.Factor] = fs.Achieved
	}
	assert.NotContains(t, factors, FactorFundSize)
	assert.Equal(t, 1.0, factors[FactorInvestmentSize])
	assert.Equal(t, 1.0, factors[FactorRiskProfile])
	assert.Equal(t, 1.0, factors[FactorCategoryMain])
	assert.Equal(t, 1.0, factors[FactorCategorySub])
}

func TestScoreZeroWeights(t *testing.T) {
	scorer := NewScorer(Weights{})

	attrs := &models.Attributes{RiskProfile: riskptr(models.RiskModerate)}
	criteria := &models.Criteria{RiskProfile: riskptr(models.RiskModerate)}

	score, breakdown := scorer.Score(attrs, criteria)
	assert.Equal(t, 0.0, score)
	assert.Empty(t, breakdown)
}

func TestCriteriaFromProfile(t *testing.T) {
	t.Run("point values become degenerate ranges", func(t *testing.T) {
		profile := &models.Profile{
			Role: models.RoleLimitedPartner,
			Attributes: models.Attributes{
				TypicalInvestmentSize:  fptr(5_000_000),
				TypicalDealSize:        fptr(10_000_000),
				InvestmentHorizonYears: iptr(5),
			},
		}

		criteria := CriteriaFromProfile(profile)

		assert.Equal(t, 5_000_000.0, *criteria.InvestmentSizeMin)
		assert.Equal(t, 5_000_000.0, *criteria.InvestmentSizeMax)
		assert.Equal(t, 10_000_000.0, *criteria.DealSizeMin)
		assert.Equal(t, 10_000_000.0, *criteria.DealSizeMax)
		assert.Equal(t, 5, *criteria.HorizonMinYears)
		assert.Equal(t, 5, *criteria.HorizonMaxYears)
	})

	t.Run("fund manager fund size caps investment size", func(t *testing.T) {
		profile := &models.Profile{
			Role:       models.RoleFundManager,
			Attributes: models.Attributes{FundSize: fptr(100_000_000)},
		}

		criteria := CriteriaFromProfile(profile)

		assert.Nil(t, criteria.InvestmentSizeMin)
		assert.Equal(t, 100_000_000.0, *criteria.InvestmentSizeMax)
	})

	t.Run("thresholds copy through", func(t *testing.T) {
		profile := &models.Profile{
			Role: models.RoleFundManager,
			Attributes: models.Attributes{
				HistoricalReturns: fptr(15.0),
				YearsExperience:   iptr(8),
				TrackRecord:       bptr(true),
			},
		}

		criteria := CriteriaFromProfile(profile)

		assert.Equal(t, 15.0, *criteria.MinHistoricalReturns)
		assert.Equal(t, 8, *criteria.MinYearsExperience)
		assert.True(t, *criteria.RequireTrackRecord)
	})
}
