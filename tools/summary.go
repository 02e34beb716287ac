package tools

import (
	"context"

	"github.com/lexcodex/hogar/assistant"
)

// summaryHandler builds the resumen_diario composite. It owns no business
// logic: it re-enters the dispatcher for the pending-tasks, week-events and
// unread-messages tools and aggregates their payloads.
func summaryHandler(d *Dispatcher) Handler {
	return func(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
		pending := d.Dispatch(ctx, ToolPendingTasks, map[string]interface{}{}, profile)
		events := d.Dispatch(ctx, ToolEvents, map[string]interface{}{"filtro": filterWeek}, profile)
		unread := d.Dispatch(ctx, ToolUnreadMessages, map[string]interface{}{"ambito": scopeAll}, profile)
		return map[string]interface{}{
			"tareas_pendientes":  pending,
			"eventos_semana":     events,
			"mensajes_no_leidos": unread,
		}, nil
	}
}
