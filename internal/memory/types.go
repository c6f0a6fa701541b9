package memory

import "fmt"

// Entity is a named node candidate extracted from conversational text
type Entity struct {
	Name string `json:"entity"`
	Type string `json:"entity_type"`
}

// Filters scope an operation to a single user's subgraph
type Filters struct {
	UserID string `json:"user_id"`
}

func (f Filters) validate() error {
	if f.UserID == "" {
		return fmt.Errorf("user_id filter is required")
	}
	return nil
}

// SearchResult is one relationship returned by a reranked search
type SearchResult struct {
	Source      string `json:"source"`
	Relation    string `json:"relation"`
	Destination string `json:"destination"`
}
