package llm

// Dialect selects which tool-schema flavor is sent to the model. Structured
// output providers require strict schemas with every property listed as
// required and no additional properties allowed; plain providers accept the
// looser standard schemas.
type Dialect int

const (
	DialectDefault Dialect = iota
	DialectStructured
)

// DialectForProvider maps a configured provider name to its schema dialect
func DialectForProvider(provider string) Dialect {
	switch provider {
	case "openai_structured", "azure_openai_structured":
		return DialectStructured
	default:
		return DialectDefault
	}
}

func (d Dialect) String() string {
	if d == DialectStructured {
		return "structured"
	}
	return "default"
}

func (d Dialect) strict() bool {
	return d == DialectStructured
}

// ExtractionTools returns the tool set for entity extraction from text
func (d Dialect) ExtractionTools() []Tool {
	return []Tool{extractEntitiesTool(d.strict())}
}

// SearchTools returns the tool set for pulling candidate nodes and relations
// out of a search query
func (d Dialect) SearchTools() []Tool {
	return []Tool{searchTool(d.strict())}
}

// ReconcileTools returns the tool set for deciding how newly extracted facts
// merge into the existing graph
func (d Dialect) ReconcileTools() []Tool {
	return []Tool{
		updateGraphMemoryTool(d.strict()),
		addGraphMemoryTool(d.strict()),
		noopTool(d.strict()),
	}
}
