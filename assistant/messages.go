package assistant

// Message roles used on the completion wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of a completion conversation. Tool-role messages carry
// the id of the invocation they answer so the completion service can pair
// results with the calls it requested.
type Message struct {
	Role       string
	Content    string
	Name       string
	ToolCallID string
	ToolCalls  []ToolCall
}

// ToolCall is a single invocation requested by the completion service. Raw
// holds the argument text exactly as the service produced it; Args is the
// lenient parse of that text (empty map when the text is not valid JSON).
type ToolCall struct {
	ID   string
	Name string
	Raw  string
	Args map[string]interface{}
}

// Transcript is an immutable, append-only message list. Each phase of a turn
// derives a new transcript from the previous one, so the message state at any
// transition can be snapshotted and asserted without defensive copying at the
// call sites.
type Transcript struct {
	messages []Message
}

// NewTranscript builds a transcript from the given messages.
func NewTranscript(messages ...Message) Transcript {
	return Transcript{}.Append(messages...)
}

// Append returns a new transcript with the messages added. The receiver is
// never modified.
func (t Transcript) Append(messages ...Message) Transcript {
	if len(messages) == 0 {
		return t
	}
	next := make([]Message, 0, len(t.messages)+len(messages))
	next = append(next, t.messages...)
	next = append(next, messages...)
	return Transcript{messages: next}
}

// Messages returns a copy of the ordered message list.
func (t Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len reports how many messages the transcript holds.
func (t Transcript) Len() int {
	return len(t.messages)
}
