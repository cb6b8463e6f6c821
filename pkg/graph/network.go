package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Network is the graph surface the routes depend on
type Network interface {
	UpsertMatch(ctx context.Context, tenantID, profileAID, profileBID string) error
	SetProfile(ctx context.Context, tenantID, profileID, role, name string) error
	MatchedPartners(ctx context.Context, tenantID, profileID string) ([]MatchedPartner, error)
}

// MatchNetwork implements Network by mirroring the match history ledger into
// the graph so matches can be traversed as relationships.
type MatchNetwork struct {
	client *Client
	logger ectologger.Logger
}

// NewMatchNetwork creates a new match network service
func NewMatchNetwork(client *Client, logger ectologger.Logger) *MatchNetwork {
	return &MatchNetwork{
		client: client,
		logger: logger,
	}
}

// MatchedPartner is one hop in a profile's match network.
type MatchedPartner struct {
	ProfileID string    `json:"profile_id"`
	Role      string    `json:"role,omitempty"`
	Name      string    `json:"name,omitempty"`
	MatchedAt time.Time `json:"matched_at"`
}

// UpsertMatch records a match edge between two profiles. The pair is stored
// once under canonical ordering so either direction resolves to the same
// relationship.
func (n *MatchNetwork) UpsertMatch(ctx context.Context, tenantID, profileAID, profileBID string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.MatchNetwork.UpsertMatch")
	defer span.End()

	log := n.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":    tenantID,
		"profile_a_id": profileAID,
		"profile_b_id": profileBID,
	})

	first, second := profileAID, profileBID
	if second < first {
		first, second = second, first
	}

	cypher := `
		MERGE (a:Profile {id: $first, tenant_id: $tenant_id})
		MERGE (b:Profile {id: $second, tenant_id: $tenant_id})
		MERGE (a)-[r:MATCHED_WITH {tenant_id: $tenant_id}]->(b)
		ON CREATE SET r.matched_at = datetime()
		RETURN r
	`

	_, err := n.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"first":     first,
			"second":    second,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		log.WithError(err).Error("Failed to upsert match in graph")
		return fmt.Errorf("failed to upsert match in graph: %w", err)
	}

	log.Debug("Upserted match in graph")
	return nil
}

// SetProfile stores display properties on a profile node so network queries
// can return them without a round trip to postgres.
func (n *MatchNetwork) SetProfile(ctx context.Context, tenantID, profileID, role, name string) error {
	ctx, span := tracing.StartSpan(ctx, "graph.MatchNetwork.SetProfile")
	defer span.End()

	cypher := `
		MERGE (p:Profile {id: $id, tenant_id: $tenant_id})
		SET p.role = $role, p.name = $name
		RETURN p
	`

	_, err := n.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        profileID,
			"tenant_id": tenantID,
			"role":      role,
			"name":      name,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		n.logger.WithContext(ctx).WithError(err).Error("Failed to set profile node in graph")
		return fmt.Errorf("failed to set profile node in graph: %w", err)
	}

	return nil
}

// MatchedPartners returns every profile matched with the given one, in either
// edge direction.
func (n *MatchNetwork) MatchedPartners(ctx context.Context, tenantID, profileID string) ([]MatchedPartner, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.MatchNetwork.MatchedPartners")
	defer span.End()

	cypher := `
		MATCH (p:Profile {id: $id, tenant_id: $tenant_id})-[r:MATCHED_WITH]-(partner:Profile)
		WHERE r.tenant_id = $tenant_id
		RETURN partner, r.matched_at AS matched_at
	`

	result, err := n.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, map[string]any{
			"id":        profileID,
			"tenant_id": tenantID,
		})
		if err != nil {
			return nil, err
		}

		var partners []MatchedPartner
		for result.Next(ctx) {
			record := result.Record()
			partnerNode, _ := record.Get("partner")
			node, ok := partnerNode.(neo4j.Node)
			if !ok {
				continue
			}

			partner := MatchedPartner{}
			if id, ok := node.Props["id"].(string); ok {
				partner.ProfileID = id
			}
			if role, ok := node.Props["role"].(string); ok {
				partner.Role = role
			}
			if name, ok := node.Props["name"].(string); ok {
				partner.Name = name
			}
			if matchedAt, ok := record.Get("matched_at"); ok {
				if t, ok := matchedAt.(time.Time); ok {
					partner.MatchedAt = t
				}
			}
			partners = append(partners, partner)
		}
		return partners, result.Err()
	})

	if err != nil {
		n.logger.WithContext(ctx).WithError(err).Error("Failed to query match network")
		return nil, fmt.Errorf("failed to query match network: %w", err)
	}

	return result.([]MatchedPartner), nil
}
