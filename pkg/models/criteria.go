package models

// Criteria carries the same attribute shape as a profile, but every field is
// optional and numeric fields are expressed as bounds rather than point
// values. A nil bound is unbounded on that side.
type Criteria struct {
	Role Role `json:"role,omitempty"`

	FundType        *string  `json:"fund_type,omitempty"`
	InvestmentFocus []string `json:"investment_focus,omitempty"`

	FundSizeMin *float64 `json:"fund_size_min,omitempty"`
	FundSizeMax *float64 `json:"fund_size_max,omitempty"`

	InvestmentSizeMin *float64 `json:"investment_size_min,omitempty"`
	InvestmentSizeMax *float64 `json:"investment_size_max,omitempty"`

	DealSizeMin *float64 `json:"deal_size_min,omitempty"`
	DealSizeMax *float64 `json:"deal_size_max,omitempty"`

	HorizonMinYears *int `json:"horizon_min_years,omitempty"`
	HorizonMaxYears *int `json:"horizon_max_years,omitempty"`

	MinHistoricalReturns *float64 `json:"min_historical_returns,omitempty"`
	MinYearsExperience   *int     `json:"min_years_experience,omitempty"`

	RiskProfile *RiskProfile `json:"risk_profile,omitempty"`
	Sectors     []string     `json:"sectors,omitempty"`

	RequireTrackRecord *bool `json:"require_track_record,omitempty"`
}
