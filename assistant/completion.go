package assistant

import "context"

// ToolChoice controls whether the completion service may request tool calls.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call a tool.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forces a final answer; the model must not request tools.
	ToolChoiceNone ToolChoice = "none"
)

// Completion is the decoded output of one completion call: final text, zero
// or more requested tool calls, or both.
type Completion struct {
	Text         string
	ToolCalls    []ToolCall
	FinishReason string
	Usage        map[string]int
}

// CompletionService abstracts the external text-completion provider. The
// orchestrator makes at most two calls per turn through this interface: an
// initial call with ToolChoiceAuto and, when tools were requested, a
// follow-up with ToolChoiceNone.
type CompletionService interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition, choice ToolChoice) (*Completion, error)
}
