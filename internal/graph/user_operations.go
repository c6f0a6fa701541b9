package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// ListEdges returns every relationship in the user's subgraph as
// source, relationship and target names
func (s *Store) ListEdges(ctx context.Context, userID string) ([]Triple, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n {user_id: $user_id})-[r]->(m {user_id: $user_id})
		RETURN n.name AS source, type(r) AS relationship, m.name AS target`,
		map[string]interface{}{
			"user_id": userID,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list edges: %w", err)
	}

	var triples []Triple
	for result.Next(ctx) {
		record := result.Record()
		triples = append(triples, Triple{
			Source:       getStringFromRecord(record, "source"),
			Relationship: getStringFromRecord(record, "relationship"),
			Target:       getStringFromRecord(record, "target"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}

	return triples, nil
}

// DeleteUser removes every node belonging to the user along with all
// attached relationships
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (n {user_id: $user_id})
		DETACH DELETE n`,
		map[string]interface{}{
			"user_id": userID,
		})
	if err != nil {
		return fmt.Errorf("failed to delete user graph: %w", err)
	}
	summary, err := result.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete user graph: %w", err)
	}

	s.logger.Info("deleted user graph",
		zap.String("user_id", userID),
		zap.Int("nodes_deleted", summary.Counters().NodesDeleted()))

	return nil
}
