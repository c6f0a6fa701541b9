package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// getStringFromRecord safely extracts a string value from a Neo4j record
func getStringFromRecord(record *neo4j.Record, key string) string {
	if value, ok := record.Get(key); ok && value != nil {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return ""
}

// getFloat64FromRecord safely extracts a float64 value from a Neo4j record
func getFloat64FromRecord(record *neo4j.Record, key string) float64 {
	if value, ok := record.Get(key); ok && value != nil {
		switch v := value.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		}
	}
	return 0
}
