package matching

import "github.com/Ramsey-B/clover/pkg/models"

// CriteriaFromProfile projects a subject's attributes into criteria form so
// candidates can be scored against them. Point values become degenerate
// ranges or exact requirements; a fund manager's fund size additionally caps
// the investment-size range so a counterparty's stake must fit the fund's
// scale.
func CriteriaFromProfile(p *models.Profile) models.Criteria {
	attrs := p.Attributes

	criteria := models.Criteria{
		Role:            p.Role,
		FundType:        attrs.FundType,
		InvestmentFocus: attrs.InvestmentFocus,
		RiskProfile:     attrs.RiskProfile,
		Sectors:         attrs.Sectors,
	}

	if attrs.FundSize != nil {
		criteria.FundSizeMin = attrs.FundSize
		criteria.FundSizeMax = attrs.FundSize
	}

	switch {
	case attrs.TypicalInvestmentSize != nil:
		criteria.InvestmentSizeMin = attrs.TypicalInvestmentSize
		criteria.InvestmentSizeMax = attrs.TypicalInvestmentSize
	case p.Role == models.RoleFundManager && attrs.FundSize != nil:
		criteria.InvestmentSizeMax = attrs.FundSize
	}

	if attrs.TypicalDealSize != nil {
		criteria.DealSizeMin = attrs.TypicalDealSize
		criteria.DealSizeMax = attrs.TypicalDealSize
	}

	if attrs.InvestmentHorizonYears != nil {
		criteria.HorizonMinYears = attrs.InvestmentHorizonYears
		criteria.HorizonMaxYears = attrs.InvestmentHorizonYears
	}

	if attrs.HistoricalReturns != nil {
		criteria.MinHistoricalReturns = attrs.HistoricalReturns
	}

	if attrs.YearsExperience != nil {
		criteria.MinYearsExperience = attrs.YearsExperience
	}

	if attrs.TrackRecord != nil {
		criteria.RequireTrackRecord = attrs.TrackRecord
	}

	return criteria
}
