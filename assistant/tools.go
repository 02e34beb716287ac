package assistant

import "fmt"

// ToolParameter describes one argument a tool accepts. The metadata doubles
// as a schema the completion service can reason about when deciding which
// tool to call.
type ToolParameter struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     interface{}
}

// ToolDefinition is the static description of one operation the completion
// service may request. Definitions are pure data; the dispatcher owns the
// behavior behind each name.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  []ToolParameter
	// Mutating marks tools that write through the persistence layer. At most
	// one mutating invocation per turn runs, serialized after the reads.
	Mutating bool
}

// ToolResult pairs an invocation with the payload the dispatcher produced for
// it. Payload is always JSON-safe; dispatch failures arrive as structured
// error payloads, never as absent results.
type ToolResult struct {
	InvocationID string
	ToolName     string
	Payload      map[string]interface{}
}

// ToolRegistry is the process-lifetime catalog advertised to the completion
// service. It is populated once at startup and read-only afterwards.
type ToolRegistry struct {
	defs   []ToolDefinition
	byName map[string]ToolDefinition
}

// NewToolRegistry builds a registry from the given definitions. Duplicate
// names are a configuration error surfaced at startup.
func NewToolRegistry(defs ...ToolDefinition) (*ToolRegistry, error) {
	r := &ToolRegistry{byName: make(map[string]ToolDefinition, len(defs))}
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition missing name")
		}
		if _, exists := r.byName[def.Name]; exists {
			return nil, fmt.Errorf("tool %s already registered", def.Name)
		}
		r.byName[def.Name] = def
		r.defs = append(r.defs, def)
	}
	return r, nil
}

// All returns the definitions in registration order.
func (r *ToolRegistry) All() []ToolDefinition {
	out := make([]ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Get fetches a definition by name.
func (r *ToolRegistry) Get(name string) (ToolDefinition, bool) {
	def, ok := r.byName[name]
	return def, ok
}
