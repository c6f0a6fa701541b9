package memory

import (
	"fmt"
	"strings"

	"graphmem/internal/graph"
	"graphmem/internal/llm"
)

const extractEntitiesPrompt = `You are an advanced algorithm designed to extract structured information from text to construct knowledge graphs. Your goal is to capture comprehensive information while maintaining accuracy. Follow these key principles:

1. Extract only explicitly stated information from the text.
2. Identify nodes (entities/concepts), their types, and relationships.
3. Use "USER_ID" as the source node for any self-references (I, me, my, etc.) in user messages.
CUSTOM_PROMPT

Nodes and types:
- Aim for precision in node type classification.
- Prefer basic types such as "person", "organization", "location" or "event" over niche ones.

Relationships:
- Use consistent, general, and timeless relationship types.
- Example: prefer "works_at" over "became_employee_of".

Strive for a coherent, easily understandable knowledge graph by establishing clear and sensible connections between entities.`

const updateGraphPrompt = `You are an AI expert specializing in graph memory management and optimization. Your task is to analyze existing graph memories alongside newly extracted information and keep the graph accurate, current and coherent.

For each piece of new information decide between these actions:
1. If it contradicts or refines an existing relationship between the same two nodes, call update_graph_memory with the new relationship.
2. If it describes a relationship not present in the graph, call add_graph_memory.
3. If the graph already represents it, call noop.

Existing graph memories:
%s

New information:
%s`

// extractionPrompt builds the system prompt for the entity extraction step.
// The caller's userID replaces self-references in the text, and an optional
// custom instruction is appended as a fourth principle.
func extractionPrompt(userID, customPrompt string) string {
	custom := ""
	if customPrompt != "" {
		custom = "4. " + customPrompt
	}
	return strings.NewReplacer("USER_ID", userID, "CUSTOM_PROMPT", custom).Replace(extractEntitiesPrompt)
}

// searchPrompt builds the system prompt for pulling candidate nodes and
// relations out of a query
func searchPrompt(userID string) string {
	return fmt.Sprintf("You are a smart assistant who understands the entities, their types, and relations in a given text. "+
		"If user message contains self reference such as 'I', 'me', 'my' etc. then use %s as the source node. "+
		"Extract the entities.", userID)
}

// updateMemoryMessages renders the retrieved graph context and the freshly
// extracted entities into the reconciliation prompt
func updateMemoryMessages(existing []graph.RelationEntry, entities []Entity) []llm.Message {
	existingLines := make([]string, 0, len(existing))
	for _, entry := range existing {
		existingLines = append(existingLines, fmt.Sprintf("%s -[%s]-> %s", entry.Source, entry.Relation, entry.Destination))
	}

	entityLines := make([]string, 0, len(entities))
	for _, entity := range entities {
		entityLines = append(entityLines, fmt.Sprintf("%s (%s)", entity.Name, entity.Type))
	}

	content := fmt.Sprintf(updateGraphPrompt,
		strings.Join(existingLines, "\n"),
		strings.Join(entityLines, "\n"))

	return []llm.Message{{Role: llm.RoleUser, Content: content}}
}
