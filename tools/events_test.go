package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hogar/store"
)

func eventsFixture() *fakeStore {
	return &fakeStore{
		events: []store.Event{
			{ID: 1, Title: "Cena familiar", StartsAt: testNow.AddDate(0, 0, 2)},            // this week
			{ID: 2, Title: "Dentista", StartsAt: testNow.AddDate(0, 0, 10), AssignedTo: 1}, // this month, not this week
			{ID: 3, Title: "Vacaciones", StartsAt: testNow.AddDate(0, 2, 0)},               // far out
		},
	}
}

func TestEventsFilterModes(t *testing.T) {
	catalog, err := testCatalog(eventsFixture(), testNow)
	require.NoError(t, err)
	ctx := context.Background()

	all := catalog.Dispatcher.Dispatch(ctx, ToolEvents, map[string]interface{}{"filtro": "todos"}, testProfile)
	require.Equal(t, 3, all["total"])

	week := catalog.Dispatcher.Dispatch(ctx, ToolEvents, map[string]interface{}{"filtro": "semana"}, testProfile)
	require.Equal(t, 1, week["total"])

	month := catalog.Dispatcher.Dispatch(ctx, ToolEvents, map[string]interface{}{"filtro": "mes"}, testProfile)
	require.Equal(t, 2, month["total"])

	member := catalog.Dispatcher.Dispatch(ctx, ToolEvents, map[string]interface{}{"filtro": "miembro"}, testProfile)
	require.Equal(t, 1, member["total"])
	items := member["eventos"].([]map[string]interface{})
	require.Equal(t, "Dentista", items[0]["titulo"])
}

func TestEventsUnknownFilterYieldsEmptySet(t *testing.T) {
	catalog, err := testCatalog(eventsFixture(), testNow)
	require.NoError(t, err)

	payload := catalog.Dispatcher.Dispatch(context.Background(), ToolEvents,
		map[string]interface{}{"filtro": "trimestre"}, testProfile)
	require.Equal(t, true, payload["success"])
	require.Equal(t, 0, payload["total"])
}
