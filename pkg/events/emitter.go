// Package events maps domain actions onto the Kafka event stream.
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
)

// SchemaVersion is stamped on every emitted event.
const SchemaVersion = "1.0"

const (
	EventMatchRecorded  = "match.recorded"
	EventProfileCreated = "profile.created"
	EventProfileUpdated = "profile.updated"
	EventProfileDeleted = "profile.deleted"
)

// Emitter publishes domain events through the Kafka producer.
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitMatchRecorded publishes a match.recorded event
func (e *Emitter) EmitMatchRecorded(ctx context.Context, tenantID, profileAID, profileBID string) error {
	return e.producer.PublishMatchEvent(ctx, &kafka.MatchEvent{
		EventType:     EventMatchRecorded,
		TenantID:      tenantID,
		ProfileAID:    profileAID,
		ProfileBID:    profileBID,
		SchemaVersion: SchemaVersion,
	})
}

// EmitProfileCreated publishes a profile.created event
func (e *Emitter) EmitProfileCreated(ctx context.Context, profile *models.Profile) error {
	return e.emitProfileEvent(ctx, EventProfileCreated, profile)
}

// EmitProfileUpdated publishes a profile.updated event
func (e *Emitter) EmitProfileUpdated(ctx context.Context, profile *models.Profile) error {
	return e.emitProfileEvent(ctx, EventProfileUpdated, profile)
}

// EmitProfileDeleted publishes a profile.deleted event
func (e *Emitter) EmitProfileDeleted(ctx context.Context, tenantID, profileID string) error {
	return e.producer.PublishProfileEvent(ctx, &kafka.ProfileEvent{
		EventType:     EventProfileDeleted,
		TenantID:      tenantID,
		ProfileID:     profileID,
		SchemaVersion: SchemaVersion,
	})
}

func (e *Emitter) emitProfileEvent(ctx context.Context, eventType string, profile *models.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to serialize profile event payload")
		return err
	}

	return e.producer.PublishProfileEvent(ctx, &kafka.ProfileEvent{
		EventType:     eventType,
		TenantID:      profile.TenantID,
		ProfileID:     profile.ID,
		Role:          string(profile.Role),
		Data:          data,
		SchemaVersion: SchemaVersion,
	})
}
