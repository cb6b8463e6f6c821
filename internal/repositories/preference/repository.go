package preference

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

type row struct {
	ProfileID   string                                  `db:"profile_id"`
	TenantID    string                                  `db:"tenant_id"`
	Preferences database.JSONB[models.MatchPreferences] `db:"preferences"`
	CreatedAt   time.Time                               `db:"created_at"`
	UpdatedAt   time.Time                               `db:"updated_at"`
}

// PreferenceRepository is the stored match preference surface the routes
// depend on. A nil result with a nil error from Get means nothing is stored.
type PreferenceRepository interface {
	Get(ctx context.Context, tenantID, profileID string) (*models.MatchPreferences, error)
	Upsert(ctx context.Context, tenantID, profileID string, prefs models.MatchPreferences) error
}

// Repository implements PreferenceRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new preference repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves the stored preferences for a profile. A nil result with a nil
// error means nothing is stored.
func (r *Repository) Get(ctx context.Context, tenantID, profileID string) (*models.MatchPreferences, error) {
	ctx, span := tracing.StartSpan(ctx, "preference.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("profile_id", "tenant_id", "preferences", "created_at", "updated_at")
	sb.From("match_preferences")
	sb.Where(
		sb.Equal("profile_id", profileID),
		sb.Equal("tenant_id", tenantID),
	)

	query, args := sb.Build()
	var record row
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get match preferences")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get match preferences")
	}

	prefs := record.Preferences.GetValue()
	return &prefs, nil
}

// Upsert stores the preferences for a profile, replacing any previous value.
func (r *Repository) Upsert(ctx context.Context, tenantID, profileID string, prefs models.MatchPreferences) error {
	ctx, span := tracing.StartSpan(ctx, "preference.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("match_preferences")
	sb.Cols("profile_id", "tenant_id", "preferences", "created_at", "updated_at")
	sb.Values(profileID, tenantID, database.JSONB[models.MatchPreferences]{Data: prefs}, now, now)
	sb.SQL("ON CONFLICT (profile_id) DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at")

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to store match preferences")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store match preferences")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":  tenantID,
		"profile_id": profileID,
	}).Info("Stored match preferences")
	return nil
}
