package agents

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/tools"
)

func TestTurnWithoutToolCalls(t *testing.T) {
	completion := &scriptedCompletion{
		responses: []*assistant.Completion{
			{Text: `{"bubbles":[{"from":"assistant","text":"Hola Ana"}]}`},
		},
	}
	orch := newTestOrchestrator(completion, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "hola", MemberID: 1})

	require.Equal(t, 1, completion.calls)
	require.Equal(t, assistant.ToolChoiceAuto, completion.choices[0])
	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, "Hola Ana", resp.Bubbles[0].Text)
	require.JSONEq(t, `{"bubbles":[{"from":"assistant","text":"Hola Ana"}]}`, resp.Raw)
}

func TestTurnToolRoundTrip(t *testing.T) {
	completion := &scriptedCompletion{
		responses: []*assistant.Completion{
			{
				ToolCalls: []assistant.ToolCall{
					{ID: "call_1", Name: tools.ToolPendingTasks, Args: map[string]interface{}{}},
					{ID: "call_2", Name: tools.ToolEvents, Args: map[string]interface{}{"filtro": "semana"}},
				},
			},
			{Text: `{"bubbles":[{"from":"assistant","text":"Tienes 3 tareas pendientes."}]}`},
		},
	}
	orch := newTestOrchestrator(completion, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "¿qué tengo pendiente?", MemberID: 1})

	require.Equal(t, 2, completion.calls)
	require.Equal(t, assistant.ToolChoiceNone, completion.choices[1])

	// The follow-up request carries the assistant echo plus exactly one tool
	// message per invocation, each tagged with its own call id.
	followup := completion.requests[1]
	var toolMsgs []assistant.Message
	var echo *assistant.Message
	for i, msg := range followup {
		switch msg.Role {
		case assistant.RoleTool:
			toolMsgs = append(toolMsgs, msg)
		case assistant.RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				echo = &followup[i]
			}
		}
	}
	require.NotNil(t, echo)
	require.Len(t, echo.ToolCalls, 2)
	require.Len(t, toolMsgs, 2)
	seen := map[string]string{}
	for _, msg := range toolMsgs {
		seen[msg.ToolCallID] = msg.Name
		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(msg.Content), &payload))
		require.Equal(t, true, payload["success"])
	}
	require.Equal(t, tools.ToolPendingTasks, seen["call_1"])
	require.Equal(t, tools.ToolEvents, seen["call_2"])

	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, "Tienes 3 tareas pendientes.", resp.Bubbles[0].Text)
}

func TestTurnSecondMutatingCallRefused(t *testing.T) {
	st := defaultMemStore()
	completion := &scriptedCompletion{
		responses: []*assistant.Completion{
			{
				ToolCalls: []assistant.ToolCall{
					{ID: "call_1", Name: tools.ToolCreateTask, Args: map[string]interface{}{"titulo": "Barrer"}},
					{ID: "call_2", Name: tools.ToolCreateTask, Args: map[string]interface{}{"titulo": "Fregar"}},
				},
			},
			{Text: "listo"},
		},
	}
	orch := newTestOrchestrator(completion, st)

	orch.Turn(context.Background(), TurnRequest{Utterance: "crea dos tareas", MemberID: 1})

	require.Len(t, st.created, 1)
	require.Equal(t, "Barrer", st.created[0].Title)

	followup := completion.requests[1]
	var refusal map[string]interface{}
	for _, msg := range followup {
		if msg.Role == assistant.RoleTool && msg.ToolCallID == "call_2" {
			require.NoError(t, json.Unmarshal([]byte(msg.Content), &refusal))
		}
	}
	require.Equal(t, false, refusal["success"])
	require.Contains(t, refusal["error"], "una operación de escritura")
}

func TestTurnCompletionFailure(t *testing.T) {
	completion := &scriptedCompletion{err: errScripted}
	orch := newTestOrchestrator(completion, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "hola", MemberID: 1})

	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, msgAssistantOffline, resp.Bubbles[0].Text)
	require.Nil(t, resp.Intent)
}

func TestTurnFollowupFailure(t *testing.T) {
	inner := &scriptedCompletion{
		responses: []*assistant.Completion{
			{ToolCalls: []assistant.ToolCall{{ID: "call_1", Name: tools.ToolPendingTasks}}},
		},
	}
	orch := newTestOrchestrator(&failSecond{inner: inner}, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "tareas", MemberID: 1})

	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, msgAssistantOffline, resp.Bubbles[0].Text)
}

// failSecond delegates the first call and fails every later one.
type failSecond struct {
	inner *scriptedCompletion
}

func (f *failSecond) Complete(ctx context.Context, messages []assistant.Message, defs []assistant.ToolDefinition, choice assistant.ToolChoice) (*assistant.Completion, error) {
	if f.inner.calls >= 1 {
		return nil, errScripted
	}
	return f.inner.Complete(ctx, messages, defs, choice)
}

func TestTurnUnknownMember(t *testing.T) {
	completion := &scriptedCompletion{}
	orch := newTestOrchestrator(completion, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "hola", MemberID: 99})

	require.Equal(t, 0, completion.calls)
	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, msgUnknownMember, resp.Bubbles[0].Text)
}

func TestTurnGroundingFailure(t *testing.T) {
	st := defaultMemStore()
	st.groundingErr = errScripted
	completion := &scriptedCompletion{}
	orch := newTestOrchestrator(completion, st)

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "hola", MemberID: 1})

	require.Equal(t, 0, completion.calls)
	require.Equal(t, msgAssistantOffline, resp.Bubbles[0].Text)
}

func TestTurnUnknownToolSurvives(t *testing.T) {
	completion := &scriptedCompletion{
		responses: []*assistant.Completion{
			{ToolCalls: []assistant.ToolCall{{ID: "call_1", Name: "consultar_clima"}}},
			{Text: "No tengo esa herramienta."},
		},
	}
	orch := newTestOrchestrator(completion, defaultMemStore())

	resp := orch.Turn(context.Background(), TurnRequest{Utterance: "¿va a llover?", MemberID: 1})

	require.Equal(t, 2, completion.calls)
	var payload map[string]interface{}
	for _, msg := range completion.requests[1] {
		if msg.Role == assistant.RoleTool {
			require.NoError(t, json.Unmarshal([]byte(msg.Content), &payload))
		}
	}
	require.Equal(t, false, payload["success"])
	require.Equal(t, true, payload["no_implementada"])
	require.Equal(t, "No tengo esa herramienta.", resp.Bubbles[0].Text)
}

func TestTurnTranscriptShape(t *testing.T) {
	completion := &scriptedCompletion{
		responses: []*assistant.Completion{{Text: "hola"}},
	}
	orch := newTestOrchestrator(completion, defaultMemStore())

	orch.Turn(context.Background(), TurnRequest{
		Utterance:          "¿y mañana?",
		MemberID:           1,
		History:            []ConversationTurn{{Role: "user", Content: "¿qué hay hoy?"}},
		LastAssistantReply: "Hoy no tienes eventos.",
	})

	msgs := completion.requests[0]
	require.GreaterOrEqual(t, len(msgs), 4)
	require.Equal(t, assistant.RoleSystem, msgs[0].Role)
	last := msgs[len(msgs)-1]
	require.Equal(t, assistant.RoleUser, last.Role)
	require.Equal(t, "¿y mañana?", last.Content)
	prev := msgs[len(msgs)-2]
	require.Equal(t, assistant.RoleAssistant, prev.Role)
	require.Equal(t, "Hoy no tienes eventos.", prev.Content)
}
