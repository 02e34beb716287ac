package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

type eventTools struct {
	events store.EventStore
	now    func() time.Time
}

// Event filter discriminators accepted by consultar_eventos.
const (
	filterAll    = "todos"
	filterMonth  = "mes"
	filterWeek   = "semana"
	filterMember = "miembro"
)

// Events lists household events. The "filtro" argument selects the window:
// todos, mes (current month), semana (current week, Monday-based) or miembro
// (assigned to id_miembro, defaulting to the caller). Unknown discriminators
// yield an empty result set, not an error.
func (e *eventTools) Events(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
	filter := argString(args, "filtro", filterAll)
	var (
		events []store.Event
		err    error
	)
	switch filter {
	case filterAll:
		events, err = e.events.Events(ctx, profile.HouseholdID, time.Time{}, time.Time{})
	case filterMonth:
		from, to := monthWindow(e.now())
		events, err = e.events.Events(ctx, profile.HouseholdID, from, to)
	case filterWeek:
		from, to := weekWindow(e.now())
		events, err = e.events.Events(ctx, profile.HouseholdID, from, to)
	case filterMember:
		memberID := argInt64(args, "id_miembro", profile.MemberID)
		events, err = e.events.EventsForMember(ctx, profile.HouseholdID, memberID)
	default:
		events = nil
	}
	if err != nil {
		return nil, fmt.Errorf("consultar eventos: %w", err)
	}
	items := make([]map[string]interface{}, 0, len(events))
	for _, ev := range events {
		item := map[string]interface{}{
			"id":     ev.ID,
			"titulo": ev.Title,
			"inicio": ev.StartsAt.Format(time.RFC3339),
		}
		if !ev.EndsAt.IsZero() {
			item["fin"] = ev.EndsAt.Format(time.RFC3339)
		}
		if ev.AssignedTo > 0 {
			item["id_miembro"] = ev.AssignedTo
		}
		items = append(items, item)
	}
	return map[string]interface{}{
		"eventos": items,
		"total":   len(items),
		"filtro":  filter,
	}, nil
}

func monthWindow(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 1, 0)
}

// weekWindow returns the Monday-to-Monday window containing now.
func weekWindow(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := day.AddDate(0, 0, 1-weekday)
	return from, from.AddDate(0, 0, 7)
}
