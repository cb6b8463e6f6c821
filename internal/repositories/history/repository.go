package history

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// setStore is the slice of the redis client the ledger needs.
type setStore interface {
	SAddPipelined(ctx context.Context, adds map[string][]any) error
	SIsMember(ctx context.Context, key string, member any) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repository is the match history ledger backed by redis sets. Each profile
// owns a set of counterpart IDs; a recorded pair writes both directions, so
// reads are symmetric and repeat writes are no-ops.
type Repository struct {
	store  setStore
	logger ectologger.Logger
}

// NewRepository creates a new history ledger
func NewRepository(store setStore, logger ectologger.Logger) *Repository {
	return &Repository{
		store:  store,
		logger: logger,
	}
}

func key(tenantID, profileID string) string {
	return fmt.Sprintf("match:history:%s:%s", tenantID, profileID)
}

// Record appends the pair to the ledger. Idempotent.
func (r *Repository) Record(ctx context.Context, tenantID, profileAID, profileBID string) error {
	ctx, span := tracing.StartSpan(ctx, "history.Repository.Record")
	defer span.End()

	start := time.Now()

	adds := map[string][]any{
		key(tenantID, profileAID): {profileBID},
		key(tenantID, profileBID): {profileAID},
	}
	if err := r.store.SAddPipelined(ctx, adds); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to record match history")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to record match")
	}

	metrics.RedisOperationDuration.WithLabelValues("history.record").Observe(time.Since(start).Seconds())
	return nil
}

// WasMatched reports whether the pair was ever recorded, in either order.
func (r *Repository) WasMatched(ctx context.Context, tenantID, profileAID, profileBID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "history.Repository.WasMatched")
	defer span.End()

	start := time.Now()

	matched, err := r.store.SIsMember(ctx, key(tenantID, profileAID), profileBID)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read match history")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to read match history")
	}

	metrics.RedisOperationDuration.WithLabelValues("history.was_matched").Observe(time.Since(start).Seconds())
	return matched, nil
}

// Matched returns every counterpart ever recorded for a profile.
func (r *Repository) Matched(ctx context.Context, tenantID, profileID string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "history.Repository.Matched")
	defer span.End()

	members, err := r.store.SMembers(ctx, key(tenantID, profileID))
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list match history")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list match history")
	}

	return members, nil
}
