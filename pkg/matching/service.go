// Package matching implements the match scoring and compatibility engine:
// role gating, adaptively normalized weighted scoring, narrative generation,
// and the ranking pipeline over a candidate pool.
package matching

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ProfileStore supplies the subject and the candidate pool.
type ProfileStore interface {
	Get(ctx context.Context, tenantID, id string) (*models.Profile, error)
	ListByRoles(ctx context.Context, tenantID string, roles []models.Role, limit int) ([]models.Profile, error)
}

// PreferenceStore persists MatchPreferences per subject. Get returns nil when
// nothing is stored.
type PreferenceStore interface {
	Get(ctx context.Context, tenantID, profileID string) (*models.MatchPreferences, error)
}

// Ledger is the match history ledger: append-only, symmetric, idempotent.
type Ledger interface {
	History
	Record(ctx context.Context, tenantID, subjectID, candidateID string) error
}

// Emitter publishes match lifecycle events. Optional.
type Emitter interface {
	EmitMatchRecorded(ctx context.Context, tenantID, profileAID, profileBID string) error
}

// Network mirrors recorded matches into the relationship graph. Optional.
type Network interface {
	UpsertMatch(ctx context.Context, tenantID, profileAID, profileBID string) error
}

// Config contains tuning for the matching service.
type Config struct {
	MaxResults       int     // default result cap when preferences carry none
	MinPercentage    float64 // default minimum score when preferences carry none
	CandidatePoolCap int     // upper bound on candidates loaded per search
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxResults:       50,
		MinPercentage:    0,
		CandidatePoolCap: 1000,
	}
}

// Service orchestrates the profile, preference and history stores around the
// pure engine.
type Service struct {
	log      ectologger.Logger
	profiles ProfileStore
	prefs    PreferenceStore
	ledger   Ledger
	emitter  Emitter
	network  Network
	ranker   *Ranker
	cfg      Config
}

// NewService creates a new matching service. emitter and network may be nil.
func NewService(
	log ectologger.Logger,
	profiles ProfileStore,
	prefs PreferenceStore,
	ledger Ledger,
	emitter Emitter,
	network Network,
	cfg Config,
) *Service {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	if cfg.CandidatePoolCap <= 0 {
		cfg.CandidatePoolCap = DefaultConfig().CandidatePoolCap
	}

	return &Service{
		log:      log,
		profiles: profiles,
		prefs:    prefs,
		ledger:   ledger,
		emitter:  emitter,
		network:  network,
		ranker:   NewRanker(NewScorer(DefaultWeights()), log),
		cfg:      cfg,
	}
}

// ValidatePreferences rejects malformed preferences before ranking runs.
func ValidatePreferences(prefs models.MatchPreferences) error {
	if prefs.MaxResults < 0 {
		return httperror.NewHTTPError(http.StatusBadRequest, "max_results must not be negative")
	}
	if prefs.MinMatchPercentage < 0 || prefs.MinMatchPercentage > 100 {
		return httperror.NewHTTPError(http.StatusBadRequest, "min_match_percentage must be between 0 and 100")
	}
	for _, role := range prefs.IncludeRoles {
		if !role.Valid() {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown role %q in include_roles", role)
		}
	}
	return nil
}

// FindMatches ranks the candidate pool against a subject profile. When
// overrides is nil the subject's stored preferences apply, falling back to
// the service defaults.
func (s *Service) FindMatches(ctx context.Context, tenantID, subjectID string, overrides *models.MatchPreferences) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.FindMatches")
	defer span.End()

	start := time.Now()
	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":  tenantID,
		"subject_id": subjectID,
	})

	subject, err := s.profiles.Get(ctx, tenantID, subjectID)
	if err != nil {
		return nil, err
	}

	prefs, err := s.resolvePreferences(ctx, tenantID, subjectID, overrides)
	if err != nil {
		return nil, err
	}
	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}

	poolRoles := s.poolRoles(subject.Role, prefs.IncludeRoles)
	if len(poolRoles) == 0 {
		return []models.MatchResult{}, nil
	}

	candidates, err := s.profiles.ListByRoles(ctx, tenantID, poolRoles, s.cfg.CandidatePoolCap)
	if err != nil {
		log.WithError(err).Error("Failed to load candidate pool")
		metrics.RecordMatchSearch(tenantID, "error", 0, 0, time.Since(start).Seconds())
		return nil, err
	}

	results, err := s.ranker.Rank(ctx, tenantID, subject, candidates, prefs, s.ledger)
	if err != nil {
		metrics.RecordMatchSearch(tenantID, "error", len(candidates), 0, time.Since(start).Seconds())
		return nil, err
	}

	log.WithFields(map[string]any{
		"candidate_count": len(candidates),
		"match_count":     len(results),
	}).Debug("Ranked candidate pool")

	metrics.RecordMatchSearch(tenantID, "ok", len(candidates), len(results), time.Since(start).Seconds())
	return results, nil
}

// SearchByCriteria ranks the pool against an explicit criteria object, the
// search-filter entry point sharing the same scorer as FindMatches.
func (s *Service) SearchByCriteria(ctx context.Context, tenantID string, criteria models.Criteria, prefs models.MatchPreferences) ([]models.MatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.SearchByCriteria")
	defer span.End()

	start := time.Now()

	if err := ValidatePreferences(prefs); err != nil {
		return nil, err
	}
	if criteria.Role != "" && !criteria.Role.Valid() {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown role %q", criteria.Role)
	}

	var poolRoles []models.Role
	if criteria.Role != "" {
		poolRoles = []models.Role{criteria.Role}
	}

	candidates, err := s.profiles.ListByRoles(ctx, tenantID, poolRoles, s.cfg.CandidatePoolCap)
	if err != nil {
		metrics.RecordMatchSearch(tenantID, "error", 0, 0, time.Since(start).Seconds())
		return nil, err
	}

	results := s.ranker.RankByCriteria(ctx, criteria, candidates, prefs)

	metrics.RecordMatchSearch(tenantID, "ok", len(candidates), len(results), time.Since(start).Seconds())
	return results, nil
}

// RecordMatch appends the pair to the history ledger, then mirrors the match
// into the graph and emits an event. Ledger failure fails the call; graph and
// event failures are logged and swallowed.
func (s *Service) RecordMatch(ctx context.Context, tenantID, profileAID, profileBID string) error {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.RecordMatch")
	defer span.End()

	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":    tenantID,
		"profile_a_id": profileAID,
		"profile_b_id": profileBID,
	})

	if profileAID == profileBID {
		return httperror.NewHTTPError(http.StatusBadRequest, "a profile cannot be matched with itself")
	}

	// Both sides must exist before the pair enters the ledger.
	if _, err := s.profiles.Get(ctx, tenantID, profileAID); err != nil {
		return err
	}
	if _, err := s.profiles.Get(ctx, tenantID, profileBID); err != nil {
		return err
	}

	if err := s.ledger.Record(ctx, tenantID, profileAID, profileBID); err != nil {
		metrics.RecordMatchRecorded(tenantID, "error")
		return err
	}

	if s.network != nil {
		if err := s.network.UpsertMatch(ctx, tenantID, profileAID, profileBID); err != nil {
			log.WithError(err).Warn("Failed to mirror match into the graph")
		}
	}

	if s.emitter != nil {
		if err := s.emitter.EmitMatchRecorded(ctx, tenantID, profileAID, profileBID); err != nil {
			log.WithError(err).Warn("Failed to emit match.recorded event")
		}
	}

	metrics.RecordMatchRecorded(tenantID, "ok")
	log.Info("Recorded match")
	return nil
}

// WasMatched exposes the ledger read for the presentation layer.
func (s *Service) WasMatched(ctx context.Context, tenantID, profileAID, profileBID string) (bool, error) {
	return s.ledger.WasMatched(ctx, tenantID, profileAID, profileBID)
}

func (s *Service) resolvePreferences(ctx context.Context, tenantID, subjectID string, overrides *models.MatchPreferences) (models.MatchPreferences, error) {
	if overrides != nil {
		return *overrides, nil
	}

	stored, err := s.prefs.Get(ctx, tenantID, subjectID)
	if err != nil {
		return models.MatchPreferences{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	prefs := models.DefaultMatchPreferences()
	prefs.MaxResults = s.cfg.MaxResults
	prefs.MinMatchPercentage = s.cfg.MinPercentage
	return prefs, nil
}

// poolRoles narrows the candidate pool query to roles that can both pass the
// compatibility gate and the include-roles allow-list.
func (s *Service) poolRoles(subjectRole models.Role, includeRoles []models.Role) []models.Role {
	compatible := CompatibleRoles(subjectRole)
	if len(includeRoles) == 0 {
		return compatible
	}

	allowed := make(map[models.Role]struct{}, len(includeRoles))
	for _, role := range includeRoles {
		allowed[role] = struct{}{}
	}

	var roles []models.Role
	for _, role := range compatible {
		if _, ok := allowed[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}
