package graph

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graphmem/pkg/logger"
)

// Store handles all Neo4j operations for the per-user knowledge graph
type Store struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewStore creates a new graph store on top of an existing driver
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the Neo4j driver connection
func (s *Store) Close() error {
	return s.driver.Close(context.Background())
}
