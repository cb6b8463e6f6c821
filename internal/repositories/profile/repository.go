package profile

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var columns = []string{"id", "tenant_id", "role", "name", "attributes", "created_at", "updated_at", "deleted_at"}

// row maps the profiles table; attributes live in a jsonb column.
type row struct {
	ID         string                            `db:"id"`
	TenantID   string                            `db:"tenant_id"`
	Role       models.Role                       `db:"role"`
	Name       string                            `db:"name"`
	Attributes database.JSONB[models.Attributes] `db:"attributes"`
	CreatedAt  time.Time                         `db:"created_at"`
	UpdatedAt  time.Time                         `db:"updated_at"`
	DeletedAt  *time.Time                        `db:"deleted_at"`
}

func (r row) toModel() models.Profile {
	return models.Profile{
		ID:         r.ID,
		TenantID:   r.TenantID,
		Role:       r.Role,
		Name:       r.Name,
		Attributes: r.Attributes.GetValue(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		DeletedAt:  r.DeletedAt,
	}
}

// ProfileRepository is the persistence surface the routes depend on
type ProfileRepository interface {
	Create(ctx context.Context, tenantID string, req models.CreateProfileRequest) (*models.Profile, error)
	Get(ctx context.Context, tenantID string, id string) (*models.Profile, error)
	ListByRoles(ctx context.Context, tenantID string, roles []models.Role, limit int) ([]models.Profile, error)
	Update(ctx context.Context, tenantID string, id string, req models.UpdateProfileRequest) (*models.Profile, error)
	Delete(ctx context.Context, tenantID string, id string) error
}

// Repository implements ProfileRepository
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new profile repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new profile
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateProfileRequest) (*models.Profile, error) {
	ctx, span := tracing.StartSpan(ctx, "profile.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"role":      req.Role,
		"name":      req.Name,
	})

	id := uuid.New().String()
	now := time.Now().UTC()

	profile := &models.Profile{
		ID:         id,
		TenantID:   tenantID,
		Role:       req.Role,
		Name:       req.Name,
		Attributes: req.Attributes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("profiles")
	sb.Cols("id", "tenant_id", "role", "name", "attributes", "created_at", "updated_at")
	sb.Values(profile.ID, profile.TenantID, profile.Role, profile.Name, database.JSONB[models.Attributes]{Data: profile.Attributes}, profile.CreatedAt, profile.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create profile")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created profile")
	return profile, nil
}

// Get retrieves a profile by ID
func (r *Repository) Get(ctx context.Context, tenantID string, id string) (*models.Profile, error) {
	ctx, span := tracing.StartSpan(ctx, "profile.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("profiles")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var record row
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("profile %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get profile")
	}

	profile := record.toModel()
	return &profile, nil
}

// ListByRoles retrieves active profiles whose role is in the given set. An
// empty role set means every role. Rows whose attributes fail to parse are
// skipped with a warning rather than failing the whole pool.
func (r *Repository) ListByRoles(ctx context.Context, tenantID string, roles []models.Role, limit int) ([]models.Profile, error) {
	ctx, span := tracing.StartSpan(ctx, "profile.Repository.ListByRoles")
	defer span.End()

	start := time.Now()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("profiles")
	where := []string{
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	}
	if len(roles) > 0 {
		values := make([]any, 0, len(roles))
		for _, role := range roles {
			values = append(values, role)
		}
		where = append(where, sb.In("role", values...))
	}
	sb.Where(where...)
	sb.OrderBy("created_at ASC")
	if limit > 0 {
		sb.Limit(limit)
	}

	query, args := sb.Build()
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list profiles")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list profiles")
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var record row
		if err := rows.StructScan(&record); err != nil {
			r.logger.WithContext(ctx).WithError(err).Warn("Skipping profile with unreadable attributes")
			metrics.MalformedCandidatesSkipped.Inc()
			continue
		}
		profiles = append(profiles, record.toModel())
	}
	if err := rows.Err(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read profile rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list profiles")
	}

	metrics.DatabaseQueryDuration.WithLabelValues("profiles.list_by_roles").Observe(time.Since(start).Seconds())
	return profiles, nil
}

// Update updates a profile. The read and the write run in one transaction so
// concurrent updates cannot interleave between them.
func (r *Repository) Update(ctx context.Context, tenantID string, id string, req models.UpdateProfileRequest) (*models.Profile, error) {
	ctx, span := tracing.StartSpan(ctx, "profile.Repository.Update")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("profiles")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var record row
	if err := tx.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("profile %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update profile")
	}

	existing := record.toModel()
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Attributes != nil {
		existing.Attributes = *req.Attributes
	}
	existing.UpdatedAt = time.Now().UTC()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("profiles")
	ub.Set(
		ub.Assign("name", existing.Name),
		ub.Assign("attributes", database.JSONB[models.Attributes]{Data: existing.Attributes}),
		ub.Assign("updated_at", existing.UpdatedAt),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("tenant_id", tenantID),
	)

	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update profile")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update profile")
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit profile update")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update profile")
	}

	return &existing, nil
}

// Delete soft deletes a profile
func (r *Repository) Delete(ctx context.Context, tenantID string, id string) error {
	ctx, span := tracing.StartSpan(ctx, "profile.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("profiles")
	sb.Set(sb.Assign("deleted_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete profile")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete profile")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("profile %s not found", id))
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted profile")
	return nil
}
