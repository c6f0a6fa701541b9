package llm

// Tool names dispatched on by callers
const (
	ToolExtractEntities   = "extract_entities"
	ToolSearch            = "search"
	ToolAddGraphMemory    = "add_graph_memory"
	ToolUpdateGraphMemory = "update_graph_memory"
	ToolNoop              = "noop"
)

func extractEntitiesTool(strict bool) Tool {
	entityItem := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"entity": map[string]interface{}{
				"type":        "string",
				"description": "The name or identifier of the entity.",
			},
			"entity_type": map[string]interface{}{
				"type":        "string",
				"description": "The type or category of the entity.",
			},
		},
		"required": []string{"entity", "entity_type"},
	}
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"entities": map[string]interface{}{
				"type":        "array",
				"description": "An array of entities with their types.",
				"items":       entityItem,
			},
		},
		"required": []string{"entities"},
	}
	if strict {
		entityItem["additionalProperties"] = false
		params["additionalProperties"] = false
	}

	return Tool{
		Type: "function",
		Function: FunctionDefinition{
			Name:        ToolExtractEntities,
			Description: "Extract entities and their types from the text.",
			Strict:      strict,
			Parameters:  params,
		},
	}
}

func searchTool(strict bool) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"nodes": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "List of node names extracted from the query.",
			},
			"relations": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "List of relation names extracted from the query.",
			},
		},
		"required": []string{"nodes", "relations"},
	}
	if strict {
		params["additionalProperties"] = false
	}

	return Tool{
		Type: "function",
		Function: FunctionDefinition{
			Name:        ToolSearch,
			Description: "Search for nodes and relations in the graph.",
			Strict:      strict,
			Parameters:  params,
		},
	}
}

func addGraphMemoryTool(strict bool) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source": map[string]interface{}{
				"type":        "string",
				"description": "The identifier of the source node in the new relationship.",
			},
			"destination": map[string]interface{}{
				"type":        "string",
				"description": "The identifier of the destination node in the new relationship.",
			},
			"relationship": map[string]interface{}{
				"type":        "string",
				"description": "The type of relationship between the source and destination nodes.",
			},
			"source_type": map[string]interface{}{
				"type":        "string",
				"description": "The type or category of the source node.",
			},
			"destination_type": map[string]interface{}{
				"type":        "string",
				"description": "The type or category of the destination node.",
			},
		},
		"required": []string{"source", "destination", "relationship", "source_type", "destination_type"},
	}
	if strict {
		params["additionalProperties"] = false
	}

	return Tool{
		Type: "function",
		Function: FunctionDefinition{
			Name: ToolAddGraphMemory,
			Description: "Add a new graph memory to the knowledge graph. This function creates a new relationship " +
				"between two nodes, potentially creating new nodes if they don't exist.",
			Strict:     strict,
			Parameters: params,
		},
	}
}

func updateGraphMemoryTool(strict bool) Tool {
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source": map[string]interface{}{
				"type":        "string",
				"description": "The identifier of the source node in the relationship to be updated. This should match an existing node in the graph.",
			},
			"destination": map[string]interface{}{
				"type":        "string",
				"description": "The identifier of the destination node in the relationship to be updated. This should match an existing node in the graph.",
			},
			"relationship": map[string]interface{}{
				"type":        "string",
				"description": "The new or updated relationship between the source and destination nodes.",
			},
		},
		"required": []string{"source", "destination", "relationship"},
	}
	if strict {
		params["additionalProperties"] = false
	}

	return Tool{
		Type: "function",
		Function: FunctionDefinition{
			Name: ToolUpdateGraphMemory,
			Description: "Update the relationship key of an existing graph memory based on new information. " +
				"The update should only be performed if the new information is more recent, more accurate, or " +
				"provides additional context compared to the existing information. The source and destination " +
				"nodes of the relationship must remain the same; only the relationship itself can change.",
			Strict:     strict,
			Parameters: params,
		},
	}
}

func noopTool(strict bool) Tool {
	params := map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
		"required":   []string{},
	}
	if strict {
		params["additionalProperties"] = false
	}

	return Tool{
		Type: "function",
		Function: FunctionDefinition{
			Name: ToolNoop,
			Description: "No operation should be performed on the graph. This function is called when the " +
				"current input requires no changes or additions.",
			Strict:     strict,
			Parameters: params,
		},
	}
}
