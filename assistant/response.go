package assistant

// Bubble is one chat bubble the UI renders.
type Bubble struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// Action is a chip the UI offers as a follow-up.
type Action struct {
	Label   string                 `json:"label"`
	Action  string                 `json:"action"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// AgentResponse is the only artifact a turn returns to the caller. Bubbles is
// never empty: even a total failure yields a single user-safe bubble.
type AgentResponse struct {
	Bubbles []Bubble `json:"bubbles"`
	Bullets []string `json:"bullets"`
	Actions []Action `json:"actions"`
	Raw     string   `json:"raw"`
	Intent  *string  `json:"intencion"`
}

// NewAgentResponse builds a renderable response around the given raw text.
// Bullets and Actions start empty but non-nil so the wire form is always
// `[]`, never `null`.
func NewAgentResponse(raw string) *AgentResponse {
	return &AgentResponse{
		Bubbles: []Bubble{},
		Bullets: []string{},
		Actions: []Action{},
		Raw:     raw,
	}
}

// FailureResponse is the terminal-state answer: one apologetic bubble, no
// bullets, no actions.
func FailureResponse(text string) *AgentResponse {
	resp := NewAgentResponse(text)
	resp.Bubbles = append(resp.Bubbles, Bubble{From: RoleAssistant, Text: text})
	return resp
}
