package models

// MatchPreferences controls filtering and truncation of a ranking pass.
type MatchPreferences struct {
	MinMatchPercentage       float64 `json:"min_match_percentage" validate:"gte=0,lte=100"`
	IncludeRoles             []Role  `json:"include_roles,omitempty" validate:"dive,oneof=fund_manager limited_partner capital_raiser fund_of_funds"`
	ExcludePreviouslyMatched bool    `json:"exclude_previously_matched"`
	MaxResults               int     `json:"max_results" validate:"gte=0"`
}

// DefaultMatchPreferences returns the preferences applied when a subject has
// none stored.
func DefaultMatchPreferences() MatchPreferences {
	return MatchPreferences{
		MinMatchPercentage: 0,
		MaxResults:         50,
	}
}

// FactorScore is the per-family breakdown behind a match percentage.
type FactorScore struct {
	Factor   string  `json:"factor"`
	Weight   float64 `json:"weight"`
	Achieved float64 `json:"achieved"`
}

// MatchResult is one ranked candidate with its score and narrative.
type MatchResult struct {
	Profile              Profile       `json:"profile"`
	MatchPercentage      float64       `json:"match_percentage"`
	CompatibilityFactors []string      `json:"compatibility_factors"`
	PotentialSynergies   []string      `json:"potential_synergies"`
	Breakdown            []FactorScore `json:"breakdown,omitempty"`
}

// SearchMatchesRequest is the payload for criteria-driven match search.
type SearchMatchesRequest struct {
	Criteria    Criteria          `json:"criteria"`
	Preferences *MatchPreferences `json:"preferences,omitempty"`
}

// RecordMatchRequest is the payload for recording a match to the ledger.
type RecordMatchRequest struct {
	ProfileAID string `json:"profile_a_id" validate:"required,uuid4"`
	ProfileBID string `json:"profile_b_id" validate:"required,uuid4"`
}
