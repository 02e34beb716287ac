// Package server exposes the assistant over HTTP for the household apps.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/lexcodex/hogar/agents"
)

// APIServer serves the conversational endpoint.
type APIServer struct {
	Orchestrator *agents.Orchestrator
	Logger       *zap.Logger
	// TurnTimeout bounds one orchestration turn end to end.
	TurnTimeout time.Duration
}

// AssistantRequest is the inbound payload for one turn.
type AssistantRequest struct {
	Utterance string                    `json:"utterance"`
	MemberID  int64                     `json:"member_id"`
	RoleID    int64                     `json:"role_id"`
	History   []agents.ConversationTurn `json:"history,omitempty"`
	LastReply string                    `json:"last_reply,omitempty"`
}

// Serve starts listening on the provided address.
func (s *APIServer) Serve(addr string) error {
	return s.ServeContext(context.Background(), addr)
}

// ServeContext allows the caller to control shutdown via context cancellation.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	if s.Logger != nil {
		s.Logger.Info("API listening", zap.String("addr", addr))
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler returns the HTTP routes.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/assistant", s.handleAssistant)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

func (s *APIServer) handleAssistant(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Utterance == "" || req.MemberID <= 0 {
		http.Error(w, "utterance and member_id are required", http.StatusBadRequest)
		return
	}
	timeout := s.TurnTimeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	resp := s.Orchestrator.Turn(ctx, agents.TurnRequest{
		Utterance:          req.Utterance,
		MemberID:           req.MemberID,
		RoleID:             req.RoleID,
		History:            req.History,
		LastAssistantReply: req.LastReply,
	})
	writeJSON(w, resp)
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
