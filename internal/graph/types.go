package graph

// EntityPair describes one source-relationship-destination addition, with the
// embeddings of both endpoint names already computed.
type EntityPair struct {
	Source               string
	SourceType           string
	Relationship         string
	Destination          string
	DestinationType      string
	SourceEmbedding      []float64
	DestinationEmbedding []float64
}

// RelationEntry is one edge row returned by similarity retrieval. Source and
// destination identifiers are the store's element IDs.
type RelationEntry struct {
	Source        string  `json:"source"`
	SourceID      string  `json:"source_id"`
	Relation      string  `json:"relation"`
	RelationID    string  `json:"relation_id"`
	Destination   string  `json:"destination"`
	DestinationID string  `json:"destination_id"`
	Similarity    float64 `json:"similarity"`
}

// Triple is one edge row from the full listing of a user's graph.
type Triple struct {
	Source       string `json:"source"`
	Relationship string `json:"relationship"`
	Target       string `json:"target"`
}
