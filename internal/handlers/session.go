package handlers

import (
	"context"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
)

// Session keys written by the handlers. The user id key lives in middleware.
const (
	sessionConversationID = "conversationID"
	sessionFlashNotice    = "flash_notice"
	sessionFlashSuccess   = "flash_success"
)

// conversationID returns the active conversation of the session, starting a
// new one if none is set.
func conversationID(ctx context.Context, sm *scs.SessionManager) string {
	id := sm.GetString(ctx, sessionConversationID)
	if id == "" {
		id = newConversation(ctx, sm)
	}
	return id
}

// newConversation starts a fresh conversation and returns its id.
func newConversation(ctx context.Context, sm *scs.SessionManager) string {
	id := uuid.NewString()
	sm.Put(ctx, sessionConversationID, id)
	return id
}

// popFlashes removes and returns any pending notices.
func popFlashes(ctx context.Context, sm *scs.SessionManager) (notice, success string) {
	return sm.PopString(ctx, sessionFlashNotice), sm.PopString(ctx, sessionFlashSuccess)
}
