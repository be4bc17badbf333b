package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/alexedwards/scs/v2"
	"github.com/rs/zerolog/hlog"

	"github.com/carpenike/fitcoach/internal/coach"
	"github.com/carpenike/fitcoach/internal/middleware"
)

// MaxMessageRunes caps a single chat utterance.
const MaxMessageRunes = 2000

// Chat holds dependencies for the coaching conversation pages.
type Chat struct {
	Coach     *coach.Coach
	Sessions  *scs.SessionManager
	Templates TemplateCache
}

func (h *Chat) session(r *http.Request) coach.Session {
	user := middleware.UserFromContext(r.Context())
	return coach.Session{
		ConversationID: conversationID(r.Context(), h.Sessions),
		UserID:         user.ID,
		Username:       user.Username,
	}
}

// Show renders the conversation, greeting the user when it is new.
func (h *Chat) Show(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)

	msgs, err := h.Coach.Conversation(r.Context(), sess)
	if err != nil {
		serverError(w, r, "load conversation", err)
		return
	}

	notice, success := popFlashes(r.Context(), h.Sessions)
	data := map[string]any{
		"Messages": msgs,
		"Notice":   notice,
		"Success":  success,
		"MaxRunes": MaxMessageRunes,
	}
	if err := h.Templates.Render(w, r, "chat.html", data); err != nil {
		serverError(w, r, "chat template", err)
	}
}

// Send handles one user message and redirects back to the conversation.
func (h *Chat) Send(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	msg := strings.TrimSpace(r.FormValue("message"))
	if msg == "" {
		http.Redirect(w, r, "/chat", http.StatusSeeOther)
		return
	}
	if utf8.RuneCountInString(msg) > MaxMessageRunes {
		http.Error(w, "메시지가 너무 길어.", http.StatusRequestEntityTooLarge)
		return
	}

	sess := h.session(r)
	res, err := h.Coach.Reply(r.Context(), sess, msg)
	if err != nil {
		serverError(w, r, "coach reply", err)
		return
	}

	log := hlog.FromRequest(r)
	if res.Err != nil {
		log.Warn().Err(res.Err).Str("outcome", res.Outcome.String()).Msg("provider call failed")
	}
	if res.ProfileChanged {
		log.Info().Int64("user_id", sess.UserID).Msg("profile updated from chat")
	}
	if res.Degraded() {
		h.Sessions.Put(r.Context(), sessionFlashNotice, coach.QuotaNotice)
	}
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}

// Reset starts a new conversation. The profile and logs are kept.
func (h *Chat) Reset(w http.ResponseWriter, r *http.Request) {
	newConversation(r.Context(), h.Sessions)
	http.Redirect(w, r, "/chat", http.StatusSeeOther)
}
