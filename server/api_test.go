package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lexcodex/hogar/agents"
	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
	"github.com/lexcodex/hogar/tools"
)

// cannedCompletion answers every call with a fixed structured reply and no
// tool requests, which keeps the HTTP tests focused on the transport.
type cannedCompletion struct {
	text string
}

func (c *cannedCompletion) Complete(ctx context.Context, messages []assistant.Message, defs []assistant.ToolDefinition, choice assistant.ToolChoice) (*assistant.Completion, error) {
	return &assistant.Completion{Text: c.text}, nil
}

func newTestServer(t *testing.T) *APIServer {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "hogar.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = st.AddMember(context.Background(), store.Member{
		HouseholdID: 1, RoleID: 1, RoleName: "admin", DisplayName: "Ana", Active: true,
	})
	require.NoError(t, err)

	catalog, err := tools.NewCatalog(tools.Deps{Tasks: st, Events: st, Inbox: st}, nil)
	require.NoError(t, err)
	assembler := &agents.ContextAssembler{Tasks: st, Events: st, Inbox: st}
	completion := &cannedCompletion{text: `{"bubbles":[{"from":"assistant","text":"Hola Ana"}]}`}
	orch := agents.NewOrchestrator(completion, catalog, st, assembler, nil)
	return &APIServer{Orchestrator: orch, TurnTimeout: 5 * time.Second}
}

func TestAssistantEndpoint(t *testing.T) {
	srv := newTestServer(t)
	body := `{"utterance":"hola","member_id":1,"role_id":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp assistant.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bubbles, 1)
	require.Equal(t, "assistant", resp.Bubbles[0].From)
	require.Equal(t, "Hola Ana", resp.Bubbles[0].Text)
	require.NotNil(t, resp.Bullets)
	require.NotNil(t, resp.Actions)
}

func TestAssistantEndpointUnknownMember(t *testing.T) {
	srv := newTestServer(t)
	body := `{"utterance":"hola","member_id":42}`
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	// Unresolvable members still get a well-formed conversational reply.
	require.Equal(t, http.StatusOK, rec.Code)
	var resp assistant.AgentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Bubbles, 1)
	require.Contains(t, resp.Bubbles[0].Text, "miembro activo")
}

func TestAssistantEndpointRejectsWrongMethod(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/assistant", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestAssistantEndpointValidatesPayload(t *testing.T) {
	srv := newTestServer(t)
	for name, body := range map[string]string{
		"empty utterance": `{"utterance":"","member_id":1}`,
		"missing member":  `{"utterance":"hola"}`,
		"bad json":        `{`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/assistant", strings.NewReader(body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
}
