package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Ramsey-B/clover/pkg/models"
)

// Explain derives the human-readable compatibility factors and potential
// synergies for a pair of profiles. It inspects the same attribute pairs as
// the scorer but never re-derives the numeric score. Role-pair rules run
// first, then rules common to every pair; both lists may be empty and order
// is insertion order.
func Explain(a, b *models.Profile) (factors []string, synergies []string) {
	factors = []string{}
	synergies = []string{}

	addRolePairNarrative(a, b, &factors, &synergies)
	addCommonNarrative(a, b, &factors, &synergies)

	return factors, synergies
}

func addRolePairNarrative(a, b *models.Profile, factors, synergies *[]string) {
	if fm, lp, ok := rolePair(a, b, models.RoleFundManager, models.RoleLimitedPartner); ok {
		addFundManagerLimitedPartner(fm, lp, factors, synergies)
		return
	}

	if fm, cr, ok := rolePair(a, b, models.RoleFundManager, models.RoleCapitalRaiser); ok {
		addFundManagerCapitalRaiser(fm, cr, factors, synergies)
		return
	}

	if a.Role == models.RoleFundOfFunds || b.Role == models.RoleFundOfFunds {
		*synergies = append(*synergies, "Portfolio diversification through a fund-of-funds allocation")
	}
}

func addFundManagerLimitedPartner(fm, lp *models.Profile, factors, synergies *[]string) {
	if fm.Attributes.FundSize != nil && lp.Attributes.MinimumInvestment != nil &&
		*fm.Attributes.FundSize >= *lp.Attributes.MinimumInvestment {
		*factors = append(*factors, "Fund size is sufficient for the investor's minimum investment")
	}

	if fm.Attributes.FundSize != nil && lp.Attributes.TypicalInvestmentSize != nil &&
		*lp.Attributes.TypicalInvestmentSize <= *fm.Attributes.FundSize {
		*synergies = append(*synergies, "Typical investment size fits within the fund's capacity")
	}

	if fm.Attributes.HistoricalReturns != nil && lp.Attributes.HistoricalReturns != nil &&
		*fm.Attributes.HistoricalReturns >= *lp.Attributes.HistoricalReturns {
		*factors = append(*factors, "Historical returns meet the investor's past performance benchmark")
	}
}

func addFundManagerCapitalRaiser(fm, cr *models.Profile, factors, synergies *[]string) {
	if fm.Attributes.FundSize != nil && cr.Attributes.TypicalDealSize != nil &&
		*cr.Attributes.TypicalDealSize <= *fm.Attributes.FundSize {
		*factors = append(*factors, "Typical deal size fits within the fund's deployment range")
	}

	if fm.Attributes.TypicalDealSize != nil && cr.Attributes.TypicalDealSize != nil {
		*synergies = append(*synergies, "Both parties are active in similarly sized transactions")
	}
}

func addCommonNarrative(a, b *models.Profile, factors, synergies *[]string) {
	if shared := sharedTags(a.Attributes.InvestmentFocus, b.Attributes.InvestmentFocus); len(shared) > 0 {
		*factors = append(*factors, fmt.Sprintf("Shared investment focus: %s", strings.Join(shared, ", ")))
	}

	if a.Attributes.RiskProfile != nil && b.Attributes.RiskProfile != nil {
		levelA := a.Attributes.RiskProfile.Level()
		levelB := b.Attributes.RiskProfile.Level()
		if levelA >= 0 && levelB >= 0 {
			distance := levelA - levelB
			if distance < 0 {
				distance = -distance
			}
			switch distance {
			case 0:
				*factors = append(*factors, fmt.Sprintf("Aligned risk profiles (%s)", *a.Attributes.RiskProfile))
			case 1:
				*factors = append(*factors, "Compatible risk profiles within one step of each other")
			}
		}
	}

	if shared := sharedTags(a.Attributes.Sectors, b.Attributes.Sectors); len(shared) > 0 {
		*synergies = append(*synergies, fmt.Sprintf("Sector alignment: %s", strings.Join(shared, ", ")))
	}

	if a.Attributes.YearsExperience != nil && b.Attributes.YearsExperience != nil {
		gap := *a.Attributes.YearsExperience - *b.Attributes.YearsExperience
		if gap < 0 {
			gap = -gap
		}
		switch {
		case gap <= 3:
			*factors = append(*factors, "Peer-level industry experience")
		case gap <= 7:
			*synergies = append(*synergies, "Complementary experience levels suited to a mentorship dynamic")
		}
	}
}

// rolePair orients two profiles to the (first, second) role order, matching
// either direction.
func rolePair(a, b *models.Profile, first, second models.Role) (*models.Profile, *models.Profile, bool) {
	if a.Role == first && b.Role == second {
		return a, b, true
	}
	if a.Role == second && b.Role == first {
		return b, a, true
	}
	return nil, nil, false
}

// sharedTags returns the case-insensitive intersection of two tag sets,
// sorted for deterministic output, using the first slice's casing.
func sharedTags(a, b []string) []string {
	bSet := stringSet(b)

	seen := make(map[string]struct{})
	var shared []string
	for _, tag := range a {
		key := strings.ToLower(strings.TrimSpace(tag))
		if _, ok := bSet[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		shared = append(shared, strings.TrimSpace(tag))
	}

	sort.Strings(shared)
	return shared
}
