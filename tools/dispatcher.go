// Package tools implements the household tool catalog: the registry
// advertised to the completion service and the dispatcher that executes the
// invocations it requests.
package tools

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lexcodex/hogar/assistant"
)

// Handler executes one tool against the persistence layer. Handlers return
// JSON-safe payloads; errors are converted at the dispatcher boundary.
type Handler func(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error)

// Dispatcher maps tool names to handlers. The mapping is populated together
// with the registry by NewCatalog so the two cannot drift apart.
type Dispatcher struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewDispatcher builds a dispatcher over the given handler map.
func NewDispatcher(handlers map[string]Handler, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{handlers: handlers, logger: logger}
}

// Dispatch runs the named tool. It never returns an error: unknown names
// degrade to a "not implemented" payload, nil argument maps are treated as
// empty, and handler failures are logged and converted to structured error
// payloads so one broken tool cannot sink the turn.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args map[string]interface{}, profile assistant.CallerProfile) map[string]interface{} {
	handler, ok := d.handlers[name]
	if !ok {
		d.logger.Warn("tool not implemented", zap.String("tool", name))
		return map[string]interface{}{
			"success":         false,
			"no_implementada": true,
			"error":           fmt.Sprintf("herramienta %q no implementada", name),
		}
	}
	if args == nil {
		args = map[string]interface{}{}
	}
	payload, err := handler(ctx, profile, args)
	if err != nil {
		d.logger.Warn("tool execution failed",
			zap.String("tool", name),
			zap.Int64("member", profile.MemberID),
			zap.Error(err))
		return map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		}
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	if _, ok := payload["success"]; !ok {
		payload["success"] = true
	}
	return payload
}

// Known reports whether the dispatcher has a handler for the name.
func (d *Dispatcher) Known(name string) bool {
	_, ok := d.handlers[name]
	return ok
}
