package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

// ContextAssembler builds the per-turn system prompt and the grounding digest
// injected ahead of the conversation so the model cites real data instead of
// inventing it. The digest is deliberately token-bounded: each section is
// truncated to MaxItems entries, and anything beyond that must be fetched
// through a tool.
type ContextAssembler struct {
	Tasks    store.TaskStore
	Events   store.EventStore
	Inbox    store.InboxStore
	MaxItems int
	Now      func() time.Time
}

const defaultMaxItems = 4

// SystemPrompt renders the role-aware instruction block for the caller.
func (a *ContextAssembler) SystemPrompt(profile assistant.CallerProfile) string {
	var b strings.Builder
	b.WriteString("Eres el asistente del hogar. Hablas en español, de forma breve y cercana.\n")
	fmt.Fprintf(&b, "Estás hablando con %s (rol: %s, miembro %d del hogar %d).\n",
		profile.DisplayName, profile.RoleName, profile.MemberID, profile.HouseholdID)
	b.WriteString(`Reglas:
- Solo afirma datos que provengan del contexto o de los resultados de las herramientas; nunca inventes tareas, eventos ni mensajes.
- Cuando necesites datos completos o actualizados, solicita la herramienta adecuada en lugar de responder de memoria.
- Responde SIEMPRE con un único objeto JSON con esta forma exacta:
  {"bubbles":[{"from":"assistant","text":"..."}],"bullets":["..."],"actions":[{"label":"...","action":"...","payload":{}}]}
- "bubbles" lleva la conversación, "bullets" los datos destacados y "actions" los accesos sugeridos. Deja las listas vacías si no aplican.
`)
	switch strings.ToLower(profile.RoleName) {
	case "admin", "adulto":
		b.WriteString("Este miembro puede crear tareas con la herramienta crear_tarea.\n")
	default:
		b.WriteString("Este miembro solo consulta información; no le ofrezcas crear tareas salvo que lo pida explícitamente.\n")
	}
	return b.String()
}

// GroundingContext renders a short digest of the caller's current data: top
// pending tasks, tasks about to expire, this week's events and unread counts.
func (a *ContextAssembler) GroundingContext(ctx context.Context, profile assistant.CallerProfile) (string, error) {
	now := time.Now()
	if a.Now != nil {
		now = a.Now()
	}
	limit := a.MaxItems
	if limit <= 0 {
		limit = defaultMaxItems
	}

	pending, err := a.Tasks.PendingTasks(ctx, profile.HouseholdID, profile.MemberID)
	if err != nil {
		return "", fmt.Errorf("grounding: pending tasks: %w", err)
	}
	weekFrom, weekTo := weekBounds(now)
	events, err := a.Events.Events(ctx, profile.HouseholdID, weekFrom, weekTo)
	if err != nil {
		return "", fmt.Errorf("grounding: week events: %w", err)
	}
	direct, err := a.Inbox.UnreadDirect(ctx, profile.MemberID)
	if err != nil {
		return "", fmt.Errorf("grounding: unread direct: %w", err)
	}
	broadcast, err := a.Inbox.UnreadBroadcast(ctx, profile.HouseholdID, profile.MemberID)
	if err != nil {
		return "", fmt.Errorf("grounding: unread broadcast: %w", err)
	}

	var b strings.Builder
	b.WriteString("Datos actuales del miembro (resumen, puede estar truncado):\n")

	b.WriteString("Tareas pendientes:")
	if len(pending) == 0 {
		b.WriteString(" ninguna\n")
	} else {
		fmt.Fprintf(&b, " %d en total\n", len(pending))
		for i, task := range pending {
			if i >= limit {
				b.WriteString("- ... (usa consultar_tareas_pendientes para la lista completa)\n")
				break
			}
			if task.DueDate.IsZero() {
				fmt.Fprintf(&b, "- %s (sin fecha límite)\n", task.Title)
			} else {
				fmt.Fprintf(&b, "- %s (vence %s)\n", task.Title, task.DueDate.Format("2006-01-02"))
			}
		}
	}

	b.WriteString("Eventos de esta semana:")
	if len(events) == 0 {
		b.WriteString(" ninguno\n")
	} else {
		b.WriteString("\n")
		for i, ev := range events {
			if i >= limit {
				b.WriteString("- ... (usa consultar_eventos para la lista completa)\n")
				break
			}
			fmt.Fprintf(&b, "- %s (%s)\n", ev.Title, ev.StartsAt.Format("Mon 02 Jan 15:04"))
		}
	}

	fmt.Fprintf(&b, "Mensajes sin leer: %d directos, %d del hogar\n", len(direct), len(broadcast))
	return b.String(), nil
}

// weekBounds mirrors the week filter used by the events tool.
func weekBounds(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := day.AddDate(0, 0, 1-weekday)
	return from, from.AddDate(0, 0, 7)
}

// historyMessages converts caller-supplied turns into completion messages,
// keeping only the most recent maxTurns entries.
func historyMessages(history []ConversationTurn, maxTurns int) []assistant.Message {
	if maxTurns > 0 && len(history) > maxTurns {
		history = history[len(history)-maxTurns:]
	}
	out := make([]assistant.Message, 0, len(history))
	for _, turn := range history {
		role := turn.Role
		if role != assistant.RoleUser && role != assistant.RoleAssistant {
			role = assistant.RoleUser
		}
		out = append(out, assistant.Message{Role: role, Content: turn.Content})
	}
	return out
}
