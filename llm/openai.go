// Package llm implements assistant.CompletionService against an
// OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lexcodex/hogar/assistant"
)

// Client talks to an OpenAI-compatible completion service. Configuration is
// injected once at construction; the client keeps no other state, so one
// instance serves every turn concurrently.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	Debug       bool
}

// NewClient builds a client from the LLM section of the process config.
func NewClient(cfg *assistant.LLMConfig) *Client {
	endpoint := strings.TrimSuffix(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		endpoint:    endpoint,
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: timeout},
	}
}

type toolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

type toolDef struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	ToolCalls []wireToolCall `json:"tool_calls,omitempty"`
}

type wireChoice struct {
	Message      wireMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type wireResponse struct {
	Choices []wireChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete issues one chat-completions call. Message order is preserved
// exactly as given. Transport failures on tool-free requests are retried
// once; a request already carrying tool results is never retried.
func (c *Client) Complete(ctx context.Context, messages []assistant.Message, tools []assistant.ToolDefinition, choice assistant.ToolChoice) (*assistant.Completion, error) {
	payload := map[string]interface{}{
		"model":    c.model,
		"messages": convertMessages(messages),
	}
	if c.temperature != 0 {
		payload["temperature"] = c.temperature
	}
	if c.maxTokens != 0 {
		payload["max_tokens"] = c.maxTokens
	}
	if len(tools) > 0 {
		payload["tools"] = convertTools(tools)
		payload["tool_choice"] = string(choice)
	}

	resp, err := c.doRequest(ctx, payload)
	if err != nil && retryable(messages) && ctx.Err() == nil {
		resp, err = c.doRequest(ctx, payload)
	}
	return resp, err
}

// retryable reports whether the request is safe to resend: only calls that do
// not carry tool-result messages qualify.
func retryable(messages []assistant.Message) bool {
	for _, msg := range messages {
		if msg.Role == assistant.RoleTool {
			return false
		}
	}
	return true
}

func (c *Client) doRequest(ctx context.Context, payload map[string]interface{}) (*assistant.Completion, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	c.logf("request payload: %s", truncate(string(body), 2048))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	responseBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	c.logf("response payload: %s", truncate(string(responseBody), 2048))
	if resp.StatusCode >= 300 {
		detail := strings.TrimSpace(string(responseBody))
		if detail != "" {
			return nil, fmt.Errorf("completion service error: %s: %s", resp.Status, truncate(detail, 512))
		}
		return nil, fmt.Errorf("completion service error: %s", resp.Status)
	}
	return decodeCompletion(responseBody)
}

func decodeCompletion(body []byte) (*assistant.Completion, error) {
	var raw wireResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed completion response: %w", err)
	}
	if raw.Error != nil {
		return nil, fmt.Errorf("completion service error: %s", raw.Error.Message)
	}
	if len(raw.Choices) == 0 {
		return nil, fmt.Errorf("completion response carried no choices")
	}
	first := raw.Choices[0]
	out := &assistant.Completion{
		Text:         first.Message.Content,
		FinishReason: first.FinishReason,
		ToolCalls:    parseToolCalls(first.Message.ToolCalls),
	}
	usage := make(map[string]int)
	if raw.Usage.PromptTokens > 0 {
		usage["prompt_tokens"] = raw.Usage.PromptTokens
	}
	if raw.Usage.CompletionTokens > 0 {
		usage["completion_tokens"] = raw.Usage.CompletionTokens
	}
	if len(usage) > 0 {
		out.Usage = usage
	}
	return out, nil
}

func parseToolCalls(calls []wireToolCall) []assistant.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	results := make([]assistant.ToolCall, 0, len(calls))
	for _, call := range calls {
		id := call.ID
		if id == "" {
			id = "call_" + uuid.NewString()
		}
		results = append(results, assistant.ToolCall{
			ID:   id,
			Name: call.Function.Name,
			Raw:  call.Function.Arguments,
			Args: ParseArguments(call.Function.Arguments),
		})
	}
	return results
}

// ParseArguments decodes tool-call argument text leniently: invalid payloads
// degrade to an empty argument set instead of failing the turn.
func ParseArguments(raw string) map[string]interface{} {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return map[string]interface{}{}
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj
	}
	var nested string
	if err := json.Unmarshal([]byte(trimmed), &nested); err == nil {
		var inner map[string]interface{}
		if err := json.Unmarshal([]byte(nested), &inner); err == nil {
			return inner
		}
	}
	return map[string]interface{}{}
}

func convertMessages(messages []assistant.Message) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		m := map[string]interface{}{
			"role":    msg.Role,
			"content": msg.Content,
		}
		if msg.Name != "" {
			m["name"] = msg.Name
		}
		if msg.ToolCallID != "" {
			m["tool_call_id"] = msg.ToolCallID
		}
		if len(msg.ToolCalls) > 0 {
			calls := make([]map[string]interface{}, 0, len(msg.ToolCalls))
			for _, call := range msg.ToolCalls {
				args := call.Raw
				if args == "" {
					args = "{}"
				}
				calls = append(calls, map[string]interface{}{
					"id":   call.ID,
					"type": "function",
					"function": map[string]interface{}{
						"name":      call.Name,
						"arguments": args,
					},
				})
			}
			m["tool_calls"] = calls
		}
		out = append(out, m)
	}
	return out
}

func convertTools(tools []assistant.ToolDefinition) []toolDef {
	res := make([]toolDef, 0, len(tools))
	for _, tool := range tools {
		props := make(map[string]interface{})
		var required []string
		for _, param := range tool.Parameters {
			prop := map[string]interface{}{
				"type":        param.Type,
				"description": param.Description,
			}
			if param.Default != nil {
				prop["default"] = param.Default
			}
			props[param.Name] = prop
			if param.Required {
				required = append(required, param.Name)
			}
		}
		parameters := map[string]interface{}{
			"type":       "object",
			"properties": props,
		}
		if len(required) > 0 {
			parameters["required"] = required
		}
		res = append(res, toolDef{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  parameters,
			},
		})
	}
	return res
}

func (c *Client) logf(format string, args ...interface{}) {
	if !c.Debug {
		return
	}
	log.Printf("[llm] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
