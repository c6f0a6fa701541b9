package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// cosineSimilarityStage scores every embedded node belonging to the user
// against the query embedding and keeps those at or above the threshold.
// A zero-magnitude vector on either side yields a similarity of 0.0 instead
// of a division-by-zero error.
const cosineSimilarityStage = `
	MATCH (n)
	WHERE n.embedding IS NOT NULL AND n.user_id = $user_id
	WITH n,
		reduce(dot = 0.0, i IN range(0, size(n.embedding)-1) | dot + n.embedding[i] * $n_embedding[i]) AS dot,
		sqrt(reduce(l2 = 0.0, i IN range(0, size(n.embedding)-1) | l2 + n.embedding[i] * n.embedding[i])) *
		sqrt(reduce(l2 = 0.0, i IN range(0, size($n_embedding)-1) | l2 + $n_embedding[i] * $n_embedding[i])) AS norm
	WITH n, CASE WHEN norm = 0.0 THEN 0.0 ELSE round(dot / norm, 4) END AS similarity
	WHERE similarity >= $threshold`

// similarEdgesQuery collects the relationships touching each matched node in
// both directions so that incoming edges surface alongside outgoing ones
const similarEdgesQuery = cosineSimilarityStage + `
	MATCH (n)-[r]->(m)
	RETURN n.name AS source, elementId(n) AS source_id, type(r) AS relation, elementId(r) AS relation_id,
		m.name AS destination, elementId(m) AS destination_id, similarity
	UNION` + cosineSimilarityStage + `
	MATCH (m)-[r]->(n)
	RETURN m.name AS source, elementId(m) AS source_id, type(r) AS relation, elementId(r) AS relation_id,
		n.name AS destination, elementId(n) AS destination_id, similarity
	ORDER BY similarity DESC`

// SimilarEdges finds every relationship attached to a node whose embedding is
// close enough to the query embedding, for a single user's subgraph
func (s *Store) SimilarEdges(ctx context.Context, userID string, embedding []float64, threshold float64) ([]RelationEntry, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, similarEdgesQuery, map[string]interface{}{
		"n_embedding": embedding,
		"threshold":   threshold,
		"user_id":     userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search similar edges: %w", err)
	}

	var entries []RelationEntry
	for result.Next(ctx) {
		record := result.Record()
		entries = append(entries, RelationEntry{
			Source:        getStringFromRecord(record, "source"),
			SourceID:      getStringFromRecord(record, "source_id"),
			Relation:      getStringFromRecord(record, "relation"),
			RelationID:    getStringFromRecord(record, "relation_id"),
			Destination:   getStringFromRecord(record, "destination"),
			DestinationID: getStringFromRecord(record, "destination_id"),
			Similarity:    getFloat64FromRecord(record, "similarity"),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read similar edges: %w", err)
	}

	s.logger.Debug("similarity search finished",
		zap.String("user_id", userID),
		zap.Float64("threshold", threshold),
		zap.Int("matches", len(entries)))

	return entries, nil
}
