package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/tools"
)

// Synthesize turns the model's final text plus the tool results actually
// obtained into the fixed response contract. Parsing is best effort: when the
// text is not the expected JSON shape the whole text becomes a single bubble.
// The deterministic suggestion generator then appends bullets and action
// chips derived from the tool payloads, independent of what the model wrote.
func Synthesize(raw string, results []assistant.ToolResult, utterance string) *assistant.AgentResponse {
	resp := parseStructured(raw)

	intent := detectIntent(results, utterance)
	if intent != "" {
		resp.Intent = &intent
	}
	bullets, actions := suggestions(intent, results)
	resp.Bullets = append(resp.Bullets, bullets...)
	resp.Actions = append(resp.Actions, actions...)
	return resp
}

type structuredOutput struct {
	Bubbles []assistant.Bubble `json:"bubbles"`
	Bullets []string           `json:"bullets"`
	Actions []assistant.Action `json:"actions"`
}

// parseStructured decodes the mandated output JSON, falling back to a single
// raw-text bubble when the text is not well formed. The caller always gets a
// renderable response.
func parseStructured(raw string) *assistant.AgentResponse {
	resp := assistant.NewAgentResponse(raw)
	var out structuredOutput
	snippet := extractJSON(raw)
	if snippet == "" || json.Unmarshal([]byte(snippet), &out) != nil || len(out.Bubbles) == 0 {
		text := raw
		if strings.TrimSpace(text) == "" {
			text = "No tengo una respuesta en este momento."
		}
		resp.Bubbles = append(resp.Bubbles, assistant.Bubble{From: assistant.RoleAssistant, Text: text})
		return resp
	}
	for _, bubble := range out.Bubbles {
		if bubble.From == "" {
			bubble.From = assistant.RoleAssistant
		}
		resp.Bubbles = append(resp.Bubbles, bubble)
	}
	resp.Bullets = append(resp.Bullets, out.Bullets...)
	resp.Actions = append(resp.Actions, out.Actions...)
	return resp
}

// extractJSON returns the outermost JSON object inside the text, or "" when
// no braces are present.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return ""
}

// detectIntent names the dominant intent of the turn: the last tool invoked
// (in request order), or a keyword guess over the utterance when no tool ran.
func detectIntent(results []assistant.ToolResult, utterance string) string {
	if len(results) > 0 {
		return results[len(results)-1].ToolName
	}
	lower := strings.ToLower(utterance)
	switch {
	case strings.Contains(lower, "resumen"):
		return tools.ToolDailySummary
	case strings.Contains(lower, "tarea"):
		return tools.ToolPendingTasks
	case strings.Contains(lower, "evento"), strings.Contains(lower, "calendario"):
		return tools.ToolEvents
	case strings.Contains(lower, "mensaje"):
		return tools.ToolUnreadMessages
	}
	return ""
}

// urgentWithinDays is the threshold for the deadline-urgency bullet.
const urgentWithinDays = 3

// suggestions derives bullets and action chips from the intent and the tool
// payloads. The generator is total: missing or oddly-typed fields simply
// produce no suggestion for that rule.
func suggestions(intent string, results []assistant.ToolResult) ([]string, []assistant.Action) {
	bullets := []string{}
	actions := []assistant.Action{}
	payload := payloadFor(intent, results)

	switch intent {
	case tools.ToolPendingTasks:
		if nearest, ok := payload["proxima_a_vencer"].(map[string]interface{}); ok {
			days, haveDays := asInt(nearest["dias_restantes"])
			title, _ := nearest["titulo"].(string)
			if haveDays && days <= urgentWithinDays && title != "" {
				bullets = append(bullets, urgencyBullet(title, days))
			}
		}
		if total, ok := asInt(payload["total"]); ok && total > 0 {
			actions = append(actions, assistant.Action{Label: "Ver tareas", Action: "ver_tareas"})
		}
	case tools.ToolCompletedTasks:
		actions = append(actions, assistant.Action{Label: "Ver tareas", Action: "ver_tareas"})
	case tools.ToolCreateTask:
		if success, ok := payload["success"].(bool); ok && success {
			actions = append(actions, assistant.Action{Label: "Crear otra tarea", Action: "crear_tarea"})
		}
	case tools.ToolEvents:
		if total, ok := asInt(payload["total"]); ok && total > 0 {
			actions = append(actions, assistant.Action{Label: "Ver eventos", Action: "ver_eventos"})
		}
	case tools.ToolUnreadMessages:
		if total, ok := asInt(payload["total"]); ok && total > 0 {
			bullets = append(bullets, fmt.Sprintf("Tienes %d mensajes sin leer", total))
			actions = append(actions, assistant.Action{Label: "Ver mensajes", Action: "ver_mensajes"})
		}
	case tools.ToolDailySummary:
		actions = append(actions,
			assistant.Action{Label: "Ver tareas", Action: "ver_tareas"},
			assistant.Action{Label: "Ver eventos", Action: "ver_eventos"},
		)
	}
	return bullets, actions
}

func urgencyBullet(title string, days int64) string {
	switch {
	case days < 0:
		return fmt.Sprintf("⏰ «%s» ya está vencida", title)
	case days == 0:
		return fmt.Sprintf("⏰ «%s» vence hoy", title)
	case days == 1:
		return fmt.Sprintf("⏰ «%s» vence mañana", title)
	default:
		return fmt.Sprintf("⏰ «%s» vence en %d días", title, days)
	}
}

// payloadFor returns the payload of the last result matching the intent, or
// an empty map so every rule above can index safely.
func payloadFor(intent string, results []assistant.ToolResult) map[string]interface{} {
	for i := len(results) - 1; i >= 0; i-- {
		if results[i].ToolName == intent && results[i].Payload != nil {
			return results[i].Payload
		}
	}
	return map[string]interface{}{}
}

func asInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
