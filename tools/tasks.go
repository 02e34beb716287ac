package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

// taskTools bundles the task-backed handlers with the clock they derive
// "days remaining" from.
type taskTools struct {
	tasks store.TaskStore
	now   func() time.Time
}

const defaultCompletedLookbackDays = 30

// PendingTasks returns the caller's open tasks with a derived
// "dias_restantes" per item and the single nearest-to-expire task as a
// distinguished field. An explicit id_miembro argument switches the query to
// another member (read only).
func (t *taskTools) PendingTasks(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
	memberID := argInt64(args, "id_miembro", profile.MemberID)
	tasks, err := t.tasks.PendingTasks(ctx, profile.HouseholdID, memberID)
	if err != nil {
		return nil, fmt.Errorf("consultar tareas pendientes: %w", err)
	}
	if argBool(args, "ordenar_por_vencimiento", true) {
		sortByDeadline(tasks)
	}
	items := make([]map[string]interface{}, 0, len(tasks))
	var nearest map[string]interface{}
	nearestDays := int64(math.MaxInt64)
	for _, task := range tasks {
		item := taskPayload(task, t.now())
		items = append(items, item)
		if days, ok := item["dias_restantes"].(int64); ok && days < nearestDays {
			nearestDays = days
			nearest = item
		}
	}
	payload := map[string]interface{}{
		"tareas": items,
		"total":  len(items),
	}
	if nearest != nil {
		payload["proxima_a_vencer"] = nearest
	}
	return payload, nil
}

// CompletedTasks returns tasks finished within the lookback window
// (argument "dias", default 30).
func (t *taskTools) CompletedTasks(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
	days := argInt64(args, "dias", defaultCompletedLookbackDays)
	if days <= 0 {
		days = defaultCompletedLookbackDays
	}
	memberID := argInt64(args, "id_miembro", profile.MemberID)
	since := t.now().AddDate(0, 0, -int(days))
	tasks, err := t.tasks.CompletedTasks(ctx, profile.HouseholdID, memberID, since)
	if err != nil {
		return nil, fmt.Errorf("consultar tareas completadas: %w", err)
	}
	items := make([]map[string]interface{}, 0, len(tasks))
	for _, task := range tasks {
		item := map[string]interface{}{
			"id":     task.ID,
			"titulo": task.Title,
		}
		if task.CompletedAt != nil {
			item["completada_en"] = task.CompletedAt.Format("2006-01-02")
		}
		items = append(items, item)
	}
	return map[string]interface{}{
		"tareas": items,
		"total":  len(items),
		"dias":   days,
	}, nil
}

// CreateTask inserts a new task. It refuses to create a malformed record:
// when the household or creator cannot be inferred from the caller profile
// the handler returns a structured error naming the missing context.
func (t *taskTools) CreateTask(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
	var missing []string
	if profile.HouseholdID <= 0 {
		missing = append(missing, "id_hogar")
	}
	if profile.MemberID <= 0 {
		missing = append(missing, "creado_por")
	}
	if len(missing) > 0 {
		return map[string]interface{}{
			"success":          false,
			"error":            fmt.Sprintf("faltan datos obligatorios: %s", strings.Join(missing, ", ")),
			"campos_faltantes": missing,
		}, nil
	}
	title := strings.TrimSpace(argString(args, "titulo", ""))
	if title == "" {
		return map[string]interface{}{
			"success":          false,
			"error":            "faltan datos obligatorios: titulo",
			"campos_faltantes": []string{"titulo"},
		}, nil
	}
	task := store.Task{
		HouseholdID: profile.HouseholdID,
		CreatedBy:   profile.MemberID,
		AssignedTo:  argInt64(args, "id_asignado", profile.MemberID),
		Title:       title,
		Description: argString(args, "descripcion", ""),
	}
	if due, ok := argDate(args, "fecha_limite"); ok {
		task.DueDate = due
	}
	created, err := t.tasks.CreateTask(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("crear tarea: %w", err)
	}
	return map[string]interface{}{
		"tarea": taskPayload(created, t.now()),
	}, nil
}

func taskPayload(task store.Task, now time.Time) map[string]interface{} {
	item := map[string]interface{}{
		"id":     task.ID,
		"titulo": task.Title,
	}
	if task.Description != "" {
		item["descripcion"] = task.Description
	}
	if !task.DueDate.IsZero() {
		item["fecha_limite"] = task.DueDate.Format("2006-01-02")
		item["dias_restantes"] = daysRemaining(task.DueDate, now)
	}
	return item
}

// daysRemaining counts whole calendar days from now to the due date; overdue
// tasks report negative values.
func daysRemaining(due, now time.Time) int64 {
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int64(dueDay.Sub(nowDay).Hours() / 24)
}

func sortByDeadline(tasks []store.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		di, dj := tasks[i].DueDate, tasks[j].DueDate
		switch {
		case di.IsZero():
			return false
		case dj.IsZero():
			return true
		default:
			return di.Before(dj)
		}
	})
}
