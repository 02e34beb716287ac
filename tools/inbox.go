package tools

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lexcodex/hogar/assistant"
	"github.com/lexcodex/hogar/store"
)

type inboxTools struct {
	inbox store.InboxStore
}

// Unread scopes accepted by consultar_mensajes_no_leidos.
const (
	scopeDirect    = "directos"
	scopeHousehold = "hogar"
	scopeAll       = "todos"
)

// UnreadMessages lists unread messages in the requested scope. "todos" is the
// union of direct and household-broadcast messages, de-duplicated by message
// id. Unknown scopes fall back to "todos".
func (i *inboxTools) UnreadMessages(ctx context.Context, profile assistant.CallerProfile, args map[string]interface{}) (map[string]interface{}, error) {
	scope := argString(args, "ambito", scopeAll)
	switch scope {
	case scopeDirect, scopeHousehold, scopeAll:
	default:
		scope = scopeAll
	}
	var messages []store.InboxMessage
	if scope == scopeDirect || scope == scopeAll {
		direct, err := i.inbox.UnreadDirect(ctx, profile.MemberID)
		if err != nil {
			return nil, fmt.Errorf("consultar mensajes directos: %w", err)
		}
		messages = append(messages, direct...)
	}
	if scope == scopeHousehold || scope == scopeAll {
		broadcast, err := i.inbox.UnreadBroadcast(ctx, profile.HouseholdID, profile.MemberID)
		if err != nil {
			return nil, fmt.Errorf("consultar mensajes del hogar: %w", err)
		}
		messages = append(messages, broadcast...)
	}
	messages = dedupeByID(messages)
	sort.SliceStable(messages, func(a, b int) bool {
		return messages[a].SentAt.After(messages[b].SentAt)
	})
	items := make([]map[string]interface{}, 0, len(messages))
	for _, msg := range messages {
		item := map[string]interface{}{
			"id":       msg.ID,
			"de":       msg.SenderID,
			"texto":    msg.Body,
			"enviado":  msg.SentAt.Format(time.RFC3339),
			"difusion": msg.RecipientID == 0,
		}
		items = append(items, item)
	}
	return map[string]interface{}{
		"mensajes": items,
		"total":    len(items),
		"ambito":   scope,
	}, nil
}

func dedupeByID(messages []store.InboxMessage) []store.InboxMessage {
	seen := make(map[int64]bool, len(messages))
	out := messages[:0]
	for _, msg := range messages {
		if seen[msg.ID] {
			continue
		}
		seen[msg.ID] = true
		out = append(out, msg)
	}
	return out
}
