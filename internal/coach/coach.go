package coach

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/carpenike/fitcoach/internal/llm"
	"github.com/carpenike/fitcoach/internal/models"
	"github.com/carpenike/fitcoach/internal/profile"
	"github.com/carpenike/fitcoach/internal/reference"
	"github.com/carpenike/fitcoach/internal/stats"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 60 * time.Second

// Coach runs the coaching pipeline for one deployment. It holds no
// per-user state; everything per-user is loaded from the database on each
// call, so a single Coach is shared by all requests.
type Coach struct {
	DB       *sql.DB
	Provider llm.Provider
	Tables   reference.Tables
	Policy   profile.Policy

	WindowDays    int
	MaxHistory    int
	HistoryBudget int
	Options       llm.Options
	Timeout       time.Duration

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Session identifies the conversation a turn belongs to.
type Session struct {
	ConversationID string
	UserID         int64
	Username       string
}

// Result is the outcome of one coaching turn.
type Result struct {
	Reply          string
	Outcome        llm.Outcome
	ProfileChanged bool
	Profile        profile.Profile
	// Err is the provider error when Outcome is not OutcomeOK.
	Err error
}

// Degraded reports whether the reply came from the canned fallback.
func (r *Result) Degraded() bool { return r.Outcome == llm.OutcomeQuota }

func (c *Coach) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coach) windowDays() int {
	if c.WindowDays <= 0 {
		return stats.DefaultWindowDays
	}
	return c.WindowDays
}

// Stats computes the rolling statistics for a user.
func (c *Coach) Stats(userID int64) (stats.RollingStats, error) {
	logs, err := models.ListLogs(c.DB, userID)
	if err != nil {
		return stats.RollingStats{}, err
	}
	return stats.Compute(models.StatsEntries(logs), c.windowDays(), c.now()), nil
}

// Conversation returns the stored turns of the session. An empty
// conversation is started with a greeting, which is persisted.
func (c *Coach) Conversation(ctx context.Context, sess Session) ([]*models.ChatMessage, error) {
	msgs, err := models.ListChatMessages(c.DB, sess.ConversationID, sess.UserID)
	if err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		return msgs, nil
	}

	u, err := models.GetUserByID(c.DB, sess.UserID)
	if err != nil {
		return nil, err
	}
	s, err := c.Stats(sess.UserID)
	if err != nil {
		return nil, err
	}
	greeting := Greeting(sess.Username, u.Profile(), s)
	if err := models.AppendChatMessages(c.DB, sess.ConversationID, sess.UserID,
		models.NewChatMessage{Role: models.RoleAssistant, Content: greeting},
	); err != nil {
		return nil, err
	}
	return models.ListChatMessages(c.DB, sess.ConversationID, sess.UserID)
}

// Reply handles one user utterance. Provider failures never surface as an
// error: they are mapped to a fallback or apology reply. The returned error
// is reserved for storage failures.
func (c *Coach) Reply(ctx context.Context, sess Session, utterance string) (*Result, error) {
	u, err := models.GetUserByID(c.DB, sess.UserID)
	if err != nil {
		return nil, err
	}

	stored := u.Profile()
	merged, changed := profile.Merge(stored, profile.Extract(utterance), c.Policy)
	if changed {
		if _, err := models.UpdateProfile(c.DB, u.ID, merged); err != nil {
			return nil, err
		}
	}

	s, err := c.Stats(u.ID)
	if err != nil {
		return nil, err
	}

	prior, err := models.ListChatMessages(c.DB, sess.ConversationID, sess.UserID)
	if err != nil {
		return nil, err
	}
	history := make([]llm.Message, 0, len(prior)+1)
	for _, m := range prior {
		history = append(history, llm.Message{Role: llm.Role(m.Role), Content: m.Content})
	}
	history = append(history, llm.Message{Role: llm.RoleUser, Content: utterance})

	payload := BuildPrompt(Input{
		Profile:       merged,
		Stats:         s,
		NormComments:  c.normComments(merged, utterance),
		FacilityHints: c.Tables.Facilities.Hint(merged.Location),
		History:       history,
		MaxHistory:    c.MaxHistory,
		HistoryBudget: c.HistoryBudget,
	})

	res := &Result{ProfileChanged: changed, Profile: merged}
	res.Reply, res.Outcome, res.Err = c.generate(ctx, payload, utterance)

	if err := models.AppendChatMessages(c.DB, sess.ConversationID, sess.UserID,
		models.NewChatMessage{Role: models.RoleUser, Content: utterance},
		models.NewChatMessage{Role: models.RoleAssistant, Content: res.Reply},
	); err != nil {
		return nil, fmt.Errorf("coach: save turn: %w", err)
	}
	return res, nil
}

// normComments compares reported test results against the norm table. Age
// and sex must both be known.
func (c *Coach) normComments(p profile.Profile, utterance string) []string {
	if p.Age == nil || p.Sex == profile.SexUnknown || c.Tables.Norms == nil {
		return nil
	}
	var out []string
	for _, perf := range profile.ExtractPerformances(utterance) {
		if comment := c.Tables.Norms.Comment(*p.Age, p.Sex, perf.Exercise, perf.Value); comment != "" {
			out = append(out, comment)
		}
	}
	return out
}

func (c *Coach) generate(ctx context.Context, payload Payload, utterance string) (string, llm.Outcome, error) {
	if c.Provider == nil {
		return Fallback(utterance), llm.OutcomeQuota, llm.ErrNotConfigured
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := c.Provider.Chat(ctx, payload.System, payload.History, c.Options)
	switch outcome := llm.Classify(err); outcome {
	case llm.OutcomeOK:
		return resp.Content, outcome, nil
	case llm.OutcomeQuota:
		return Fallback(utterance), outcome, err
	default:
		return Apology(err), outcome, err
	}
}
