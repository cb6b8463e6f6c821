package matching

// Factor names used in score breakdowns.
const (
	FactorCategoryMain     = "category_main"
	FactorCategorySub      = "category_sub"
	FactorCategorySpecific = "category_specific"
	FactorFundType         = "fund_type"
	FactorRiskProfile      = "risk_profile"
	FactorFundSize         = "fund_size"
	FactorInvestmentSize   = "investment_size"
	FactorDealSize         = "deal_size"
	FactorHorizon          = "investment_horizon"
	FactorReturns          = "historical_returns"
	FactorExperience       = "years_experience"
	FactorSectors          = "sectors"
	FactorTrackRecord      = "track_record"
)

// Weights assigns a relative weight to each attribute family. The values are
// tuning parameters; the comparison rule per family is the contract. A family
// only enters the denominator when both sides carry data for it.
type Weights struct {
	CategoryMain     float64
	CategorySub      float64
	CategorySpecific float64
	FundType         float64
	RiskProfile      float64
	FundSize         float64
	InvestmentSize   float64
	DealSize         float64
	Horizon          float64
	Returns          float64
	Experience       float64
	Sectors          float64
	TrackRecord      float64
}

// DefaultWeights returns the standard tuning. Category levels split roughly
// 40/40/20 within the categorical share.
func DefaultWeights() Weights {
	return Weights{
		CategoryMain:     8,
		CategorySub:      8,
		CategorySpecific: 4,
		FundType:         10,
		RiskProfile:      10,
		FundSize:         10,
		InvestmentSize:   10,
		DealSize:         8,
		Horizon:          6,
		Returns:          8,
		Experience:       6,
		Sectors:          8,
		TrackRecord:      4,
	}
}
