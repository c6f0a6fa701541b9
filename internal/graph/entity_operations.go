package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// upsertEntityPairQuery builds the Cypher for merging a pair of entity nodes
// and the relationship between them. Labels and relationship types cannot be
// passed as query parameters, so they are validated and interpolated directly.
func upsertEntityPairQuery(sourceType, destinationType, relationship string) (string, error) {
	srcLabel, err := sanitizeType(sourceType)
	if err != nil {
		return "", err
	}
	dstLabel, err := sanitizeType(destinationType)
	if err != nil {
		return "", err
	}
	relType, err := sanitizeType(relationship)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		MERGE (n:%s {name: $source_name, user_id: $user_id})
		ON CREATE SET n.created = timestamp(), n.embedding = $source_embedding
		ON MATCH SET n.embedding = $source_embedding
		MERGE (m:%s {name: $dest_name, user_id: $user_id})
		ON CREATE SET m.created = timestamp(), m.embedding = $dest_embedding
		ON MATCH SET m.embedding = $dest_embedding
		MERGE (n)-[rel:%s]->(m)
		ON CREATE SET rel.created = timestamp()
		RETURN n, rel, m`, srcLabel, dstLabel, relType)

	return query, nil
}

// UpsertEntityPair merges the source and destination nodes for a user and the
// relationship between them, refreshing node embeddings on every call
func (s *Store) UpsertEntityPair(ctx context.Context, userID string, pair EntityPair) error {
	query, err := upsertEntityPairQuery(pair.SourceType, pair.DestinationType, pair.Relationship)
	if err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"source_name":      Normalize(pair.Source),
		"dest_name":        Normalize(pair.Destination),
		"source_embedding": pair.SourceEmbedding,
		"dest_embedding":   pair.DestinationEmbedding,
		"user_id":          userID,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert entity pair: %w", err)
	}
	if _, err := result.Consume(ctx); err != nil {
		return fmt.Errorf("failed to upsert entity pair: %w", err)
	}

	s.logger.Debug("upserted entity pair",
		zap.String("source", pair.Source),
		zap.String("relationship", pair.Relationship),
		zap.String("destination", pair.Destination),
		zap.String("user_id", userID))

	return nil
}
