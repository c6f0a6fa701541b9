package memory

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"graphmem/internal/graph"
	"graphmem/internal/llm"
	"graphmem/internal/rank"
	"graphmem/pkg/logger"
)

const (
	// DefaultThreshold is the minimum cosine similarity for a node to count
	// as a match during retrieval
	DefaultThreshold = 0.7

	// searchResultLimit caps how many reranked relationships a search returns
	searchResultLimit = 5
)

// Store persists and queries the per-user knowledge graph
type Store interface {
	UpsertEntityPair(ctx context.Context, userID string, pair graph.EntityPair) error
	SimilarEdges(ctx context.Context, userID string, embedding []float64, threshold float64) ([]graph.RelationEntry, error)
	ReplaceRelationship(ctx context.Context, userID, source, target, relationship string) error
	ListEdges(ctx context.Context, userID string) ([]graph.Triple, error)
	DeleteUser(ctx context.Context, userID string) error
}

// LLM generates tool-calling model responses
type LLM interface {
	Generate(ctx context.Context, messages []llm.Message, tools []llm.Tool) (*llm.Response, error)
}

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Memory maintains a per-user knowledge graph derived from conversational
// text. New facts are extracted by a language model, reconciled against the
// user's existing graph and merged into the store.
type Memory struct {
	store        Store
	llm          LLM
	embedder     Embedder
	dialect      llm.Dialect
	threshold    float64
	customPrompt string
	logger       *zap.Logger
}

// Options tune the memory service. A zero Threshold falls back to
// DefaultThreshold.
type Options struct {
	Dialect      llm.Dialect
	Threshold    float64
	CustomPrompt string
}

// New creates a memory service on top of the given store and model clients
func New(store Store, llmClient LLM, embedder Embedder, opts Options) *Memory {
	threshold := opts.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	return &Memory{
		store:        store,
		llm:          llmClient,
		embedder:     embedder,
		dialect:      opts.Dialect,
		threshold:    threshold,
		customPrompt: opts.CustomPrompt,
		logger:       logger.Get(),
	}
}

// Add extracts entities and relationships from data and merges them into the
// user's graph. The user's existing related memories are retrieved first so
// the reconciliation step can decide between adding, updating and ignoring
// each candidate fact. Returns the number of newly added relationships.
func (m *Memory) Add(ctx context.Context, data string, filters Filters) (int, error) {
	if err := filters.validate(); err != nil {
		return 0, err
	}

	searchOutput, err := m.retrieve(ctx, data, filters)
	if err != nil {
		return 0, err
	}

	entities, err := m.extractEntities(ctx, data, filters.UserID)
	if err != nil {
		return 0, err
	}
	m.logger.Debug("extracted entities",
		zap.Int("count", len(entities)),
		zap.String("user_id", filters.UserID))

	added, err := m.reconcile(ctx, searchOutput, entities, filters)
	if err != nil {
		return added, err
	}

	m.logger.Info("added new memories to the graph",
		zap.Int("count", added),
		zap.String("user_id", filters.UserID))

	return added, nil
}

// Search returns up to five of the user's relationships, reranked lexically
// against the query text
func (m *Memory) Search(ctx context.Context, query string, filters Filters) ([]SearchResult, error) {
	if err := filters.validate(); err != nil {
		return nil, err
	}

	searchOutput, err := m.retrieve(ctx, query, filters)
	if err != nil {
		return nil, err
	}
	if len(searchOutput) == 0 {
		return []SearchResult{}, nil
	}

	documents := make([][]string, 0, len(searchOutput))
	for _, entry := range searchOutput {
		documents = append(documents, []string{entry.Source, entry.Relation, entry.Destination})
	}

	bm := rank.NewBM25(documents)
	top := bm.TopN(strings.Split(query, " "), searchResultLimit)

	results := make([]SearchResult, 0, len(top))
	for _, idx := range top {
		results = append(results, SearchResult{
			Source:      searchOutput[idx].Source,
			Relation:    searchOutput[idx].Relation,
			Destination: searchOutput[idx].Destination,
		})
	}

	m.logger.Info("returned search results",
		zap.Int("count", len(results)),
		zap.String("user_id", filters.UserID))

	return results, nil
}

// GetAll returns every relationship in the user's graph
func (m *Memory) GetAll(ctx context.Context, filters Filters) ([]graph.Triple, error) {
	if err := filters.validate(); err != nil {
		return nil, err
	}

	triples, err := m.store.ListEdges(ctx, filters.UserID)
	if err != nil {
		return nil, err
	}

	m.logger.Info("retrieved relationships",
		zap.Int("count", len(triples)),
		zap.String("user_id", filters.UserID))

	return triples, nil
}

// DeleteAll removes the user's entire graph
func (m *Memory) DeleteAll(ctx context.Context, filters Filters) error {
	if err := filters.validate(); err != nil {
		return err
	}
	return m.store.DeleteUser(ctx, filters.UserID)
}

// retrieve finds the user's existing relationships that are semantically
// close to the entities mentioned in the query text. The model proposes
// candidate node names, each name is embedded and matched against stored
// node embeddings, and the matches' edges are collected in both directions.
func (m *Memory) retrieve(ctx context.Context, query string, filters Filters) ([]graph.RelationEntry, error) {
	resp, err := m.llm.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: searchPrompt(filters.UserID)},
		{Role: llm.RoleUser, Content: query},
	}, m.dialect.SearchTools())
	if err != nil {
		return nil, err
	}

	var nodes, relations []string
	for _, call := range resp.ToolCalls {
		if call.Name != llm.ToolSearch {
			continue
		}
		nodes = append(nodes, stringSlice(call.Arguments["nodes"])...)
		relations = append(relations, stringSlice(call.Arguments["relations"])...)
	}

	nodes = normalizeUnique(nodes)
	relations = normalizeUnique(relations)
	m.logger.Debug("node list for search query",
		zap.Strings("nodes", nodes),
		zap.Strings("relations", relations))

	var results []graph.RelationEntry
	for _, node := range nodes {
		embedding, err := m.embedder.Embed(ctx, node)
		if err != nil {
			return nil, err
		}

		entries, err := m.store.SimilarEdges(ctx, filters.UserID, embedding, m.threshold)
		if err != nil {
			return nil, err
		}
		results = append(results, entries...)
	}

	return results, nil
}

// extractEntities asks the model for the (entity, entity_type) pairs present
// in the text. A missing or empty tool call yields no entities rather than
// an error.
func (m *Memory) extractEntities(ctx context.Context, data, userID string) ([]Entity, error) {
	resp, err := m.llm.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: extractionPrompt(userID, m.customPrompt)},
		{Role: llm.RoleUser, Content: data},
	}, m.dialect.ExtractionTools())
	if err != nil {
		return nil, err
	}

	if len(resp.ToolCalls) == 0 {
		return nil, nil
	}

	// Only the first tool call carries the entity payload
	items, _ := resp.ToolCalls[0].Arguments["entities"].([]interface{})

	var entities []Entity
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := fields["entity"].(string)
		if name == "" {
			continue
		}
		entityType, _ := fields["entity_type"].(string)
		entities = append(entities, Entity{Name: name, Type: entityType})
	}

	return entities, nil
}

// reconcile lets the model decide how the extracted entities merge with the
// retrieved context. Relationship updates are applied immediately in
// response order; additions are queued and created after every update has
// been applied.
func (m *Memory) reconcile(ctx context.Context, existing []graph.RelationEntry, entities []Entity, filters Filters) (int, error) {
	resp, err := m.llm.Generate(ctx, updateMemoryMessages(existing, entities), m.dialect.ReconcileTools())
	if err != nil {
		return 0, err
	}

	var toAdd []llm.ToolCall
	for _, call := range resp.ToolCalls {
		switch call.Name {
		case llm.ToolAddGraphMemory:
			toAdd = append(toAdd, call)
		case llm.ToolUpdateGraphMemory:
			source, _ := call.Arguments["source"].(string)
			destination, _ := call.Arguments["destination"].(string)
			relationship, _ := call.Arguments["relationship"].(string)
			if err := m.updateRelationship(ctx, source, destination, relationship, filters); err != nil {
				return 0, err
			}
		case llm.ToolNoop:
			continue
		}
	}

	added := 0
	for _, call := range toAdd {
		source, _ := call.Arguments["source"].(string)
		sourceType, _ := call.Arguments["source_type"].(string)
		relationship, _ := call.Arguments["relationship"].(string)
		destination, _ := call.Arguments["destination"].(string)
		destinationType, _ := call.Arguments["destination_type"].(string)

		if err := m.addEntityPair(ctx, source, sourceType, relationship, destination, destinationType, filters); err != nil {
			return added, err
		}
		added++
	}

	return added, nil
}

// addEntityPair normalizes a candidate fact, embeds its endpoint names and
// merges the pair into the user's graph
func (m *Memory) addEntityPair(ctx context.Context, source, sourceType, relationship, destination, destinationType string, filters Filters) error {
	source = graph.Normalize(source)
	sourceType = graph.Normalize(sourceType)
	relationship = graph.Normalize(relationship)
	destination = graph.Normalize(destination)
	destinationType = graph.Normalize(destinationType)

	sourceEmbedding, err := m.embedder.Embed(ctx, source)
	if err != nil {
		return err
	}
	destinationEmbedding, err := m.embedder.Embed(ctx, destination)
	if err != nil {
		return err
	}

	return m.store.UpsertEntityPair(ctx, filters.UserID, graph.EntityPair{
		Source:               source,
		SourceType:           sourceType,
		Relationship:         relationship,
		Destination:          destination,
		DestinationType:      destinationType,
		SourceEmbedding:      sourceEmbedding,
		DestinationEmbedding: destinationEmbedding,
	})
}

// updateRelationship normalizes the endpoints and relationship before
// rewiring the edge between them
func (m *Memory) updateRelationship(ctx context.Context, source, destination, relationship string, filters Filters) error {
	m.logger.Info("updating relationship",
		zap.String("source", source),
		zap.String("relationship", relationship),
		zap.String("destination", destination),
		zap.String("user_id", filters.UserID))

	return m.store.ReplaceRelationship(ctx, filters.UserID,
		graph.Normalize(source), graph.Normalize(destination), graph.Normalize(relationship))
}

// normalizeUnique removes duplicates preserving first occurrence, then
// normalizes each value
func normalizeUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var unique []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}

	for i, v := range unique {
		unique[i] = graph.Normalize(v)
	}
	return unique
}

// stringSlice converts a decoded JSON array into a string slice, skipping
// values of any other type
func stringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}

	var out []string
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
