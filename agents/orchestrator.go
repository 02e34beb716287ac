// Package agents contains the dialogue orchestration layer: the per-turn
// state machine, the context assembler and the response synthesizer.
package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
	"github.com/lexcodex/hogar/tools"
)

// State names the phases of one orchestration turn.
type State string

const (
	StateInit           State = "INIT"
	StateFirstCall      State = "FIRST_CALL"
	StateToolsRequested State = "TOOLS_REQUESTED"
	StateDispatchAll    State = "DISPATCH_ALL"
	StateSecondCall     State = "SECOND_CALL"
	StateSynthesize     State = "SYNTHESIZE"
	StateDone           State = "DONE"
	StateFailed         State = "FAILED"
)

// ConversationTurn is one entry of the caller-supplied short-term memory.
type ConversationTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is one inbound utterance plus its conversational context. The
// household is resolved from the member id; the caller never supplies it.
type TurnRequest struct {
	Utterance          string
	MemberID           int64
	RoleID             int64
	History            []ConversationTurn
	LastAssistantReply string
}

// Orchestrator sequences one conversational turn: assemble context, call the
// completion service, dispatch any requested tools, call again for the final
// answer and synthesize the response contract. It holds no per-turn state, so
// a single instance serves concurrent requests.
type Orchestrator struct {
	completion assistant.CompletionService
	catalog    *tools.Catalog
	members    store.MemberStore
	assembler  *ContextAssembler
	logger     *zap.Logger

	// MaxParallelTools bounds the DISPATCH_ALL fan-out of read-only tools.
	MaxParallelTools int
	// MaxHistoryTurns bounds how much caller-supplied history enters the prompt.
	MaxHistoryTurns int
}

// User-safe failure texts. The orchestrator never leaks internal errors.
const (
	msgUnknownMember    = "No puedo identificarte como miembro activo del hogar."
	msgAssistantOffline = "Lo siento, ahora mismo no puedo responder. Inténtalo de nuevo en unos minutos."
)

// NewOrchestrator wires the turn state machine.
func NewOrchestrator(completion assistant.CompletionService, catalog *tools.Catalog, members store.MemberStore, assembler *ContextAssembler, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		completion:       completion,
		catalog:          catalog,
		members:          members,
		assembler:        assembler,
		logger:           logger,
		MaxParallelTools: 4,
		MaxHistoryTurns:  12,
	}
}

// Turn runs the full state machine for one utterance. It always returns a
// renderable AgentResponse; unrecoverable failures collapse to a single
// user-safe bubble instead of propagating.
func (o *Orchestrator) Turn(ctx context.Context, req TurnRequest) *assistant.AgentResponse {
	turnID := uuid.NewString()
	log := o.logger.With(zap.String("turn", turnID), zap.Int64("member", req.MemberID))
	state := StateInit
	log.Debug("turn state", zap.String("state", string(state)))

	profile, err := o.resolveProfile(ctx, req)
	if err != nil {
		if errors.Is(err, assistant.ErrProfileNotFound) {
			log.Warn("profile not resolvable")
			return assistant.FailureResponse(msgUnknownMember)
		}
		log.Error("profile lookup failed", zap.Error(err))
		return assistant.FailureResponse(msgAssistantOffline)
	}

	transcript, err := o.assembleTranscript(ctx, profile, req)
	if err != nil {
		log.Error("context assembly failed", zap.Error(err))
		return assistant.FailureResponse(msgAssistantOffline)
	}

	state = StateFirstCall
	log.Debug("turn state", zap.String("state", string(state)))
	toolDefs := o.catalog.Registry.All()
	first, err := o.completion.Complete(ctx, transcript.Messages(), toolDefs, assistant.ToolChoiceAuto)
	if err != nil {
		cerr := &assistant.CompletionError{Phase: "initial", Err: err}
		log.Error("completion failed", zap.Error(cerr))
		return assistant.FailureResponse(msgAssistantOffline)
	}

	if len(first.ToolCalls) == 0 {
		state = StateSynthesize
		log.Debug("turn state", zap.String("state", string(state)))
		return Synthesize(first.Text, nil, req.Utterance)
	}

	state = StateToolsRequested
	log.Debug("turn state", zap.String("state", string(state)), zap.Int("tool_calls", len(first.ToolCalls)))

	state = StateDispatchAll
	log.Debug("turn state", zap.String("state", string(state)))
	results := o.dispatchAll(ctx, first.ToolCalls, profile)
	if ctx.Err() != nil {
		// Caller gone: abandon the turn without the follow-up call. Results
		// from tools that already committed are discarded.
		log.Warn("turn cancelled during dispatch", zap.Error(ctx.Err()))
		return assistant.FailureResponse(msgAssistantOffline)
	}

	state = StateSecondCall
	log.Debug("turn state", zap.String("state", string(state)))
	transcript = transcript.Append(assistant.Message{
		Role:      assistant.RoleAssistant,
		Content:   first.Text,
		ToolCalls: first.ToolCalls,
	})
	for _, result := range results {
		transcript = transcript.Append(assistant.Message{
			Role:       assistant.RoleTool,
			Name:       result.ToolName,
			ToolCallID: result.InvocationID,
			Content:    encodePayload(result.Payload),
		})
	}
	second, err := o.completion.Complete(ctx, transcript.Messages(), toolDefs, assistant.ToolChoiceNone)
	if err != nil {
		cerr := &assistant.CompletionError{Phase: "followup", Err: err}
		log.Error("completion failed", zap.Error(cerr))
		return assistant.FailureResponse(msgAssistantOffline)
	}

	state = StateSynthesize
	log.Debug("turn state", zap.String("state", string(state)))
	resp := Synthesize(second.Text, results, req.Utterance)
	state = StateDone
	log.Debug("turn state", zap.String("state", string(state)))
	return resp
}

func (o *Orchestrator) resolveProfile(ctx context.Context, req TurnRequest) (assistant.CallerProfile, error) {
	member, err := o.members.MemberByID(ctx, req.MemberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return assistant.CallerProfile{}, assistant.ErrProfileNotFound
		}
		return assistant.CallerProfile{}, err
	}
	profile := assistant.CallerProfile{
		MemberID:    member.ID,
		HouseholdID: member.HouseholdID,
		RoleID:      member.RoleID,
		RoleName:    member.RoleName,
		DisplayName: member.DisplayName,
	}
	if !profile.Valid() {
		return assistant.CallerProfile{}, assistant.ErrProfileNotFound
	}
	return profile, nil
}

func (o *Orchestrator) assembleTranscript(ctx context.Context, profile assistant.CallerProfile, req TurnRequest) (assistant.Transcript, error) {
	transcript := assistant.NewTranscript(assistant.Message{
		Role:    assistant.RoleSystem,
		Content: o.assembler.SystemPrompt(profile),
	})
	grounding, err := o.assembler.GroundingContext(ctx, profile)
	if err != nil {
		return assistant.Transcript{}, err
	}
	if grounding != "" {
		transcript = transcript.Append(assistant.Message{Role: assistant.RoleSystem, Content: grounding})
	}
	transcript = transcript.Append(historyMessages(req.History, o.MaxHistoryTurns)...)
	if req.LastAssistantReply != "" {
		transcript = transcript.Append(assistant.Message{Role: assistant.RoleAssistant, Content: req.LastAssistantReply})
	}
	return transcript.Append(assistant.Message{Role: assistant.RoleUser, Content: req.Utterance}), nil
}

// dispatchAll executes every requested invocation and returns one result per
// call, in request order. Read-only tools fan out concurrently; at most one
// mutating tool runs per turn, serialized after the reads. A failure in one
// invocation never aborts the others.
func (o *Orchestrator) dispatchAll(ctx context.Context, calls []assistant.ToolCall, profile assistant.CallerProfile) []assistant.ToolResult {
	results := make([]assistant.ToolResult, len(calls))

	var mutating []int
	var group errgroup.Group
	limit := o.MaxParallelTools
	if limit <= 0 {
		limit = 1
	}
	group.SetLimit(limit)
	for i, call := range calls {
		if def, ok := o.catalog.Registry.Get(call.Name); ok && def.Mutating {
			mutating = append(mutating, i)
			continue
		}
		i, call := i, call
		group.Go(func() error {
			results[i] = assistant.ToolResult{
				InvocationID: call.ID,
				ToolName:     call.Name,
				Payload:      o.catalog.Dispatcher.Dispatch(ctx, call.Name, call.Args, profile),
			}
			return nil
		})
	}
	// Dispatch never errors; the group only sequences completion.
	_ = group.Wait()

	for n, i := range mutating {
		call := calls[i]
		if n > 0 {
			// One write per turn. Extra mutating invocations degrade to a
			// structured refusal instead of racing the first one.
			results[i] = assistant.ToolResult{
				InvocationID: call.ID,
				ToolName:     call.Name,
				Payload: map[string]interface{}{
					"success": false,
					"error":   "solo se permite una operación de escritura por turno",
				},
			}
			continue
		}
		if ctx.Err() != nil {
			break
		}
		results[i] = assistant.ToolResult{
			InvocationID: call.ID,
			ToolName:     call.Name,
			Payload:      o.catalog.Dispatcher.Dispatch(ctx, call.Name, call.Args, profile),
		}
	}
	return results
}

// encodePayload renders a tool payload for the follow-up completion message.
func encodePayload(payload map[string]interface{}) string {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"success":false,"error":%q}`, err.Error())
	}
	return string(encoded)
}
