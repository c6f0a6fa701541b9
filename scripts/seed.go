package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
	"graphmem/internal/embedding"
	"graphmem/internal/graph"
	"graphmem/pkg/config"
	"graphmem/pkg/logger"
)

func main() {
	userID := flag.String("user-id", "demo", "User whose graph gets seeded")
	force := flag.Bool("force", false, "Wipe the user's existing graph before seeding")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	// Create indexes for better performance
	log.Info("Creating indexes...")
	if err := createIndexes(ctx, driver); err != nil {
		log.Warn("Failed to create some indexes (may already exist)", zap.Error(err))
	}

	store := graph.NewStore(driver)

	if *force {
		log.Info("Wiping existing graph", zap.String("user_id", *userID))
		if err := store.DeleteUser(ctx, *userID); err != nil {
			log.Fatal("Failed to wipe user graph", zap.Error(err))
		}
	}

	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, skipping demo facts. Indexes are in place.")
		return
	}

	embedder := embedding.New(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel)

	demoFacts := []struct {
		source          string
		sourceType      string
		relationship    string
		destination     string
		destinationType string
	}{
		{*userID, "person", "works_at", "acme", "organization"},
		{*userID, "person", "lives_in", "berlin", "location"},
		{*userID, "person", "likes", "hiking", "activity"},
	}

	for _, fact := range demoFacts {
		log.Info("Seeding fact",
			zap.String("source", fact.source),
			zap.String("relationship", fact.relationship),
			zap.String("destination", fact.destination),
		)

		sourceEmbedding, err := embedder.Embed(ctx, fact.source)
		if err != nil {
			log.Fatal("Failed to embed source", zap.Error(err))
		}
		destinationEmbedding, err := embedder.Embed(ctx, fact.destination)
		if err != nil {
			log.Fatal("Failed to embed destination", zap.Error(err))
		}

		err = store.UpsertEntityPair(ctx, *userID, graph.EntityPair{
			Source:               fact.source,
			SourceType:           fact.sourceType,
			Relationship:         fact.relationship,
			Destination:          fact.destination,
			DestinationType:      fact.destinationType,
			SourceEmbedding:      sourceEmbedding,
			DestinationEmbedding: destinationEmbedding,
		})
		if err != nil {
			log.Fatal("Failed to seed fact", zap.Error(err))
		}
	}

	triples, err := store.ListEdges(ctx, *userID)
	if err != nil {
		log.Fatal("Failed to verify seeded graph", zap.Error(err))
	}

	log.Info("Seed completed",
		zap.String("user_id", *userID),
		zap.Int("relationships", len(triples)),
	)
}

// createIndexes creates Neo4j indexes for better query performance. Entity
// labels are dynamic, so the common types the extractor emits are covered
// explicitly.
func createIndexes(ctx context.Context, driver neo4j.DriverWithContext) error {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	indexes := []string{
		"CREATE INDEX person_user_id IF NOT EXISTS FOR (n:person) ON (n.user_id)",
		"CREATE INDEX person_name IF NOT EXISTS FOR (n:person) ON (n.name)",
		"CREATE INDEX organization_user_id IF NOT EXISTS FOR (n:organization) ON (n.user_id)",
		"CREATE INDEX organization_name IF NOT EXISTS FOR (n:organization) ON (n.name)",
		"CREATE INDEX location_user_id IF NOT EXISTS FOR (n:location) ON (n.user_id)",
		"CREATE INDEX location_name IF NOT EXISTS FOR (n:location) ON (n.name)",
		"CREATE INDEX event_user_id IF NOT EXISTS FOR (n:event) ON (n.user_id)",
	}

	for _, idx := range indexes {
		_, err := session.Run(ctx, idx, nil)
		if err != nil {
			// Indexes may already exist
			continue
		}
	}

	return nil
}
