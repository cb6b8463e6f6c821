package models

import "time"

// Role identifies the side of the marketplace a profile belongs to.
type Role string

const (
	RoleFundManager    Role = "fund_manager"
	RoleLimitedPartner Role = "limited_partner"
	RoleCapitalRaiser  Role = "capital_raiser"
	RoleFundOfFunds    Role = "fund_of_funds"
)

// Valid reports whether the role is one of the known marketplace roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFundManager, RoleLimitedPartner, RoleCapitalRaiser, RoleFundOfFunds:
		return true
	}
	return false
}

// RiskProfile is an ordered appetite scale.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskModerate     RiskProfile = "moderate"
	RiskAggressive   RiskProfile = "aggressive"
)

// Level returns the position on the ordered scale, or -1 for unknown values.
func (r RiskProfile) Level() int {
	switch r {
	case RiskConservative:
		return 0
	case RiskModerate:
		return 1
	case RiskAggressive:
		return 2
	}
	return -1
}

// Attributes is the open attribute bag attached to a profile. Every field is
// optional; a nil pointer or empty slice means "not applicable to scoring",
// not zero.
type Attributes struct {
	FundType               *string      `json:"fund_type,omitempty"`
	FundSize               *float64     `json:"fund_size,omitempty"`
	InvestmentFocus        []string     `json:"investment_focus,omitempty"`
	HistoricalReturns      *float64     `json:"historical_returns,omitempty"`
	RiskProfile            *RiskProfile `json:"risk_profile,omitempty"`
	InvestmentHorizonYears *int         `json:"investment_horizon_years,omitempty"`
	TypicalInvestmentSize  *float64     `json:"typical_investment_size,omitempty"`
	MinimumInvestment      *float64     `json:"minimum_investment,omitempty"`
	TypicalDealSize        *float64     `json:"typical_deal_size,omitempty"`
	Sectors                []string     `json:"sectors,omitempty"`
	YearsExperience        *int         `json:"years_experience,omitempty"`
	TrackRecord            *bool        `json:"track_record,omitempty"`
}

// Profile is a marketplace participant.
type Profile struct {
	ID         string     `db:"id" json:"id"`
	TenantID   string     `db:"tenant_id" json:"tenant_id"`
	Role       Role       `db:"role" json:"role"`
	Name       string     `db:"name" json:"name"`
	Attributes Attributes `db:"-" json:"attributes"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt  *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// CreateProfileRequest is the payload for creating a profile.
type CreateProfileRequest struct {
	Role       Role       `json:"role" validate:"required,oneof=fund_manager limited_partner capital_raiser fund_of_funds"`
	Name       string     `json:"name" validate:"required,max=255"`
	Attributes Attributes `json:"attributes"`
}

// UpdateProfileRequest is the payload for updating a profile.
type UpdateProfileRequest struct {
	Name       *string     `json:"name,omitempty" validate:"omitempty,max=255"`
	Attributes *Attributes `json:"attributes,omitempty"`
}
