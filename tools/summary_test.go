package tools

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDailySummaryAggregatesThroughDispatcher(t *testing.T) {
	f := pendingFixture()
	f.events = eventsFixture().events
	f.direct = inboxFixture().direct
	catalog, err := testCatalog(f, testNow)
	require.NoError(t, err)

	payload := catalog.Dispatcher.Dispatch(context.Background(), ToolDailySummary, nil, testProfile)
	require.Equal(t, true, payload["success"])

	tasks := payload["tareas_pendientes"].(map[string]interface{})
	require.Equal(t, 3, tasks["total"])

	events := payload["eventos_semana"].(map[string]interface{})
	require.Equal(t, "semana", events["filtro"])
	require.Equal(t, 1, events["total"])

	unread := payload["mensajes_no_leidos"].(map[string]interface{})
	require.Equal(t, 1, unread["total"])
}

func TestDailySummarySurvivesSectionFailure(t *testing.T) {
	// Only the inbox store fails; the composite must still return the other
	// sections plus a structured error for the broken one.
	f := pendingFixture()
	catalog, err := NewCatalog(Deps{
		Tasks:  f,
		Events: f,
		Inbox:  &fakeStore{fail: true},
		Now:    func() time.Time { return testNow },
	}, nil)
	require.NoError(t, err)

	payload := catalog.Dispatcher.Dispatch(context.Background(), ToolDailySummary, nil, testProfile)
	require.Equal(t, true, payload["success"])

	tasks := payload["tareas_pendientes"].(map[string]interface{})
	require.Equal(t, true, tasks["success"])

	unread := payload["mensajes_no_leidos"].(map[string]interface{})
	require.Equal(t, false, unread["success"])
	require.Contains(t, unread["error"], "boom")
}
