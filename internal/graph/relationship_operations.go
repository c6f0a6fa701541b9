package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ErrEndpointsNotFound indicates a relationship rewrite returned no rows,
// meaning one or both endpoint nodes could not be matched for the user
type ErrEndpointsNotFound struct {
	Source      string
	Destination string
}

func (e ErrEndpointsNotFound) Error() string {
	return fmt.Sprintf("failed to replace relationship between %s and %s", e.Source, e.Destination)
}

// createRelationshipQuery builds the Cypher that connects two existing nodes
// with a freshly created typed relationship
func createRelationshipQuery(relationship string) (string, error) {
	relType, err := sanitizeType(relationship)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		MATCH (n1 {name: $source, user_id: $user_id}), (n2 {name: $target, user_id: $user_id})
		CREATE (n1)-[r:%s]->(n2)
		RETURN n1, r, n2`, relType)

	return query, nil
}

// ReplaceRelationship rewires the relationship between two nodes: both
// endpoints are merged so they exist, every edge from source to target is
// deleted, and a single edge with the new type is created in its place
func (s *Store) ReplaceRelationship(ctx context.Context, userID, source, target, relationship string) error {
	source = Normalize(source)
	target = Normalize(target)
	createQuery, err := createRelationshipQuery(relationship)
	if err != nil {
		return err
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	params := map[string]interface{}{
		"source":  source,
		"target":  target,
		"user_id": userID,
	}

	mergeResult, err := session.Run(ctx, `
		MERGE (n1 {name: $source, user_id: $user_id})
		MERGE (n2 {name: $target, user_id: $user_id})`, params)
	if err != nil {
		return fmt.Errorf("failed to merge relationship endpoints: %w", err)
	}
	if _, err := mergeResult.Consume(ctx); err != nil {
		return fmt.Errorf("failed to merge relationship endpoints: %w", err)
	}

	deleteResult, err := session.Run(ctx, `
		MATCH (n1 {name: $source, user_id: $user_id})-[r]->(n2 {name: $target, user_id: $user_id})
		DELETE r`, params)
	if err != nil {
		return fmt.Errorf("failed to delete existing relationships: %w", err)
	}
	if _, err := deleteResult.Consume(ctx); err != nil {
		return fmt.Errorf("failed to delete existing relationships: %w", err)
	}

	createResult, err := session.Run(ctx, createQuery, params)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	created := createResult.Next(ctx)
	if err := createResult.Err(); err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}
	if !created {
		return ErrEndpointsNotFound{Source: source, Destination: target}
	}
	if _, err := createResult.Consume(ctx); err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}

	s.logger.Debug("replaced relationship",
		zap.String("source", source),
		zap.String("relationship", relationship),
		zap.String("target", target),
		zap.String("user_id", userID))

	return nil
}
