package matching

import (
	"context"
	"net/http"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

type fakeProfileStore struct {
	profiles map[string]*models.Profile
	listErr  error
}

func (f *fakeProfileStore) Get(_ context.Context, _, id string) (*models.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "profile %s not found", id)
	}
	return profile, nil
}

func (f *fakeProfileStore) ListByRoles(_ context.Context, _ string, roles []models.Role, limit int) ([]models.Profile, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	var out []models.Profile
	for _, profile := range f.profiles {
		if len(roles) > 0 {
			if _, ok := allowed[profile.Role]; !ok {
				continue
			}
		}
		out = append(out, *profile)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakePreferenceStore struct {
	prefs map[string]*models.MatchPreferences
}

func (f *fakePreferenceStore) Get(_ context.Context, _, profileID string) (*models.MatchPreferences, error) {
	return f.prefs[profileID], nil
}

type fakeLedger struct {
	pairs   map[string]struct{}
	records int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{pairs: map[string]struct{}{}}
}

func (f *fakeLedger) key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

func (f *fakeLedger) Record(_ context.Context, _, subjectID, candidateID string) error {
	f.records++
	f.pairs[f.key(subjectID, candidateID)] = struct{}{}
	return nil
}

func (f *fakeLedger) WasMatched(_ context.Context, _, subjectID, candidateID string) (bool, error) {
	_, ok := f.pairs[f.key(subjectID, candidateID)]
	return ok, nil
}

type fakeEmitter struct {
	emitted [][2]string
}

func (f *fakeEmitter) EmitMatchRecorded(_ context.Context, _, a, b string) error {
	f.emitted = append(f.emitted, [2]string{a, b})
	return nil
}

type fakeNetwork struct {
	upserts int
}

func (f *fakeNetwork) UpsertMatch(_ context.Context, _, _, _ string) error {
	f.upserts++
	return nil
}

func newTestService(profiles *fakeProfileStore, prefs *fakePreferenceStore, ledger *fakeLedger) (*Service, *fakeEmitter, *fakeNetwork) {
	if prefs == nil {
		prefs = &fakePreferenceStore{}
	}
	if ledger == nil {
		ledger = newFakeLedger()
	}
	emitter := &fakeEmitter{}
	network := &fakeNetwork{}
	svc := NewService(testLogger(), profiles, prefs, ledger, emitter, network, DefaultConfig())
	return svc, emitter, network
}

func TestFindMatchesUnknownSubject(t *testing.T) {
	svc, _, _ := newTestService(&fakeProfileStore{profiles: map[string]*models.Profile{}}, nil, nil)

	_, err := svc.FindMatches(context.Background(), "t1", "missing", nil)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
}

func TestFindMatchesInvalidOverrides(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"subject": {ID: "subject", Role: models.RoleLimitedPartner},
	}}
	svc, _, _ := newTestService(store, nil, nil)

	cases := []struct {
		name  string
		prefs models.MatchPreferences
	}{
		{"negative max results", models.MatchPreferences{MaxResults: -1}},
		{"percentage above 100", models.MatchPreferences{MinMatchPercentage: 101}},
		{"unknown include role", models.MatchPreferences{IncludeRoles: []models.Role{"venture_tourist"}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.FindMatches(context.Background(), "t1", "subject", &tc.prefs)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
		})
	}
}

func TestFindMatchesUsesStoredPreferences(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"subject": {
			ID:         "subject",
			Role:       models.RoleLimitedPartner,
			Attributes: models.Attributes{RiskProfile: riskptr(models.RiskModerate)},
		},
		"aligned": {
			ID:         "aligned",
			Role:       models.RoleFundManager,
			Attributes: models.Attributes{RiskProfile: riskptr(models.RiskModerate)},
		},
		"mismatched": {
			ID:         "mismatched",
			Role:       models.RoleFundManager,
			Attributes: models.Attributes{RiskProfile: riskptr(models.RiskAggressive)},
		},
	}}
	prefs := &fakePreferenceStore{prefs: map[string]*models.MatchPreferences{
		"subject": {MinMatchPercentage: 50, MaxResults: 10},
	}}
	svc, _, _ := newTestService(store, prefs, nil)

	results, err := svc.FindMatches(context.Background(), "t1", "subject", nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "aligned", results[0].Profile.ID)
}

func TestFindMatchesIncludeRolesOutsideCompatibilitySet(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"subject": {ID: "subject", Role: models.RoleLimitedPartner},
		"lp":      {ID: "lp", Role: models.RoleLimitedPartner},
	}}
	svc, _, _ := newTestService(store, nil, nil)

	// Limited partners never match each other, so the allow-list leaves no
	// pool roles at all.
	overrides := &models.MatchPreferences{
		IncludeRoles: []models.Role{models.RoleLimitedPartner},
		MaxResults:   10,
	}

	results, err := svc.FindMatches(context.Background(), "t1", "subject", overrides)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindMatchesExcludesRecordedPairs(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"subject": {ID: "subject", Role: models.RoleLimitedPartner},
		"seen":    {ID: "seen", Role: models.RoleFundManager},
		"fresh":   {ID: "fresh", Role: models.RoleFundManager},
	}}
	ledger := newFakeLedger()
	svc, _, _ := newTestService(store, nil, ledger)

	require.NoError(t, svc.RecordMatch(context.Background(), "t1", "subject", "seen"))

	overrides := &models.MatchPreferences{ExcludePreviouslyMatched: true, MaxResults: 10}
	results, err := svc.FindMatches(context.Background(), "t1", "subject", overrides)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fresh", results[0].Profile.ID)
}

func TestSearchByCriteria(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"fm": {
			ID:         "fm",
			Role:       models.RoleFundManager,
			Attributes: models.Attributes{InvestmentFocus: []string{"Private Equity"}},
		},
		"lp": {ID: "lp", Role: models.RoleLimitedPartner},
	}}
	svc, _, _ := newTestService(store, nil, nil)

	criteria := models.Criteria{
		Role:            models.RoleFundManager,
		InvestmentFocus: []string{"Private Equity"},
	}

	results, err := svc.SearchByCriteria(context.Background(), "t1", criteria, models.MatchPreferences{MaxResults: 10})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fm", results[0].Profile.ID)
}

func TestSearchByCriteriaUnknownRole(t *testing.T) {
	svc, _, _ := newTestService(&fakeProfileStore{profiles: map[string]*models.Profile{}}, nil, nil)

	_, err := svc.SearchByCriteria(context.Background(), "t1", models.Criteria{Role: "astronaut"}, models.MatchPreferences{})

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
}

func TestRecordMatch(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"a": {ID: "a", Role: models.RoleFundManager},
		"b": {ID: "b", Role: models.RoleLimitedPartner},
	}}
	ledger := newFakeLedger()

	t.Run("records and fans out", func(t *testing.T) {
		svc, emitter, network := newTestService(store, nil, ledger)

		require.NoError(t, svc.RecordMatch(context.Background(), "t1", "a", "b"))

		matched, err := svc.WasMatched(context.Background(), "t1", "a", "b")
		require.NoError(t, err)
		assert.True(t, matched)
		assert.Equal(t, 1, network.upserts)
		assert.Len(t, emitter.emitted, 1)
	})

	t.Run("symmetric", func(t *testing.T) {
		svc, _, _ := newTestService(store, nil, ledger)

		matched, err := svc.WasMatched(context.Background(), "t1", "b", "a")
		require.NoError(t, err)
		assert.True(t, matched)
	})

	t.Run("self match rejected", func(t *testing.T) {
		svc, _, _ := newTestService(store, nil, ledger)

		err := svc.RecordMatch(context.Background(), "t1", "a", "a")
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	})

	t.Run("unknown side rejected", func(t *testing.T) {
		svc, _, _ := newTestService(store, nil, ledger)

		err := svc.RecordMatch(context.Background(), "t1", "a", "ghost")
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	})
}

func TestRecordMatchNilEmitterAndNetwork(t *testing.T) {
	store := &fakeProfileStore{profiles: map[string]*models.Profile{
		"a": {ID: "a", Role: models.RoleFundManager},
		"b": {ID: "b", Role: models.RoleLimitedPartner},
	}}
	svc := NewService(testLogger(), store, &fakePreferenceStore{}, newFakeLedger(), nil, nil, DefaultConfig())

	assert.NoError(t, svc.RecordMatch(context.Background(), "t1", "a", "b"))
}
