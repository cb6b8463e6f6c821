package matching

import (
	"context"
	"sort"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// History is the read side of the match history ledger consulted during
// ranking.
type History interface {
	WasMatched(ctx context.Context, tenantID, subjectID, candidateID string) (bool, error)
}

// Ranker runs the scoring pipeline over a candidate pool. Apart from History
// reads it is a pure function of its inputs.
type Ranker struct {
	scorer *Scorer
	logger ectologger.Logger
}

// NewRanker creates a ranker around the given scorer.
func NewRanker(scorer *Scorer, logger ectologger.Logger) *Ranker {
	return &Ranker{
		scorer: scorer,
		logger: logger,
	}
}

// Rank scores every candidate against the subject's attributes projected into
// criteria form, applies the preference filters, and returns results sorted
// by score descending. Ties preserve candidate input order and the output is
// truncated to MaxResults.
func (r *Ranker) Rank(ctx context.Context, tenantID string, subject *models.Profile, candidates []models.Profile, prefs models.MatchPreferences, history History) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Ranker.Rank")
	defer span.End()

	criteria := CriteriaFromProfile(subject)

	var includeRoles map[models.Role]struct{}
	if len(prefs.IncludeRoles) > 0 {
		includeRoles = make(map[models.Role]struct{}, len(prefs.IncludeRoles))
		for _, role := range prefs.IncludeRoles {
			includeRoles[role] = struct{}{}
		}
	}

	results := make([]models.MatchResult, 0, len(candidates))

	for i := range candidates {
		candidate := candidates[i]

		if candidate.ID == subject.ID {
			continue
		}

		if includeRoles != nil {
			if _, ok := includeRoles[candidate.Role]; !ok {
				continue
			}
		}

		if !Compatible(subject.Role, candidate.Role) {
			continue
		}

		if prefs.ExcludePreviouslyMatched && history != nil {
			matched, err := history.WasMatched(ctx, tenantID, subject.ID, candidate.ID)
			if err != nil {
				r.logger.WithContext(ctx).WithError(err).WithField("candidate_id", candidate.ID).Error("Failed to check match history")
				return nil, err
			}
			if matched {
				continue
			}
		}

		score, breakdown := r.scorer.Score(&candidate.Attributes, &criteria)
		if score < prefs.MinMatchPercentage {
			continue
		}

		factors, synergies := Explain(subject, &candidate)

		results = append(results, models.MatchResult{
			Profile:              candidate,
			MatchPercentage:      score,
			CompatibilityFactors: factors,
			PotentialSynergies:   synergies,
			Breakdown:            breakdown,
		})
	}

	// Stable sort: ties keep candidate input order.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercentage > results[j].MatchPercentage
	})

	maxResults := prefs.MaxResults
	if maxResults <= 0 {
		maxResults = models.DefaultMatchPreferences().MaxResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results, nil
}

// RankByCriteria scores a pool against an explicit criteria object, the
// search-filter variant of the pipeline. There is no subject, so no self or
// history exclusion applies and no narrative is attached.
func (r *Ranker) RankByCriteria(ctx context.Context, criteria models.Criteria, candidates []models.Profile, prefs models.MatchPreferences) []models.MatchResult {
	ctx, span := tracing.StartSpan(ctx, "matching.Ranker.RankByCriteria")
	defer span.End()
	_ = ctx

	results := make([]models.MatchResult, 0, len(candidates))

	for i := range candidates {
		candidate := candidates[i]

		if criteria.Role != "" && candidate.Role != criteria.Role {
			continue
		}

		score, breakdown := r.scorer.Score(&candidate.Attributes, &criteria)
		if score < prefs.MinMatchPercentage {
			continue
		}

		results = append(results, models.MatchResult{
			Profile:              candidate,
			MatchPercentage:      score,
			CompatibilityFactors: []string{},
			PotentialSynergies:   []string{},
			Breakdown:            breakdown,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchPercentage > results[j].MatchPercentage
	})

	maxResults := prefs.MaxResults
	if maxResults <= 0 {
		maxResults = models.DefaultMatchPreferences().MaxResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return results
}
