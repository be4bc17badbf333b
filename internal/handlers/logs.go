package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/hlog"

	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/models"
	"github.com/carpenike/fitcoach/internal/stats"
)

// Logs holds dependencies for workout log handlers.
type Logs struct {
	DB        *sql.DB
	Sessions  *scs.SessionManager
	Templates TemplateCache

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// logForm is the submitted workout log form.
type logForm struct {
	Date     string `validate:"required,datetime=2006-01-02"`
	Exercise string `validate:"required,exercise"`
	Amount   int    `validate:"min=1,max=10000"`
}

var formValidate = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("exercise", func(fl validator.FieldLevel) bool {
		return models.Exercise(fl.Field().String()).Valid()
	})
	return v
}

// formErrorMessages maps form fields to the message shown when they fail.
var formErrorMessages = map[string]string{
	"Date":     "날짜는 YYYY-MM-DD 형식으로 입력해줘.",
	"Exercise": "운동 종류를 목록에서 골라줘.",
	"Amount":   "운동량은 1에서 10000 사이 숫자로 입력해줘.",
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := formErrorMessages[verrs[0].Field()]; ok {
			return msg
		}
	}
	return "입력값을 다시 확인해줘."
}

func (h *Logs) today() string {
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	return now().Format(stats.DateLayout)
}

func (h *Logs) formData(form logForm, errMsg string) map[string]any {
	if form.Date == "" {
		form.Date = h.today()
	}
	return map[string]any{
		"Exercises": models.Exercises,
		"Form":      form,
		"Error":     errMsg,
		"Today":     h.today(),
	}
}

// NewForm renders the workout log form.
func (h *Logs) NewForm(w http.ResponseWriter, r *http.Request) {
	if err := h.Templates.Render(w, r, "log_form.html", h.formData(logForm{}, "")); err != nil {
		serverError(w, r, "log form template", err)
	}
}

// Create validates and stores one workout log entry.
func (h *Logs) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form := logForm{
		Date:     strings.TrimSpace(r.FormValue("date")),
		Exercise: strings.TrimSpace(r.FormValue("exercise")),
	}
	if form.Date == "" {
		form.Date = h.today()
	}
	if ex, ok := models.ParseExercise(form.Exercise); ok {
		form.Exercise = string(ex)
	}

	amount, convErr := strconv.Atoi(strings.TrimSpace(r.FormValue("amount")))
	form.Amount = amount

	var errMsg string
	if convErr != nil {
		errMsg = formErrorMessages["Amount"]
	} else if err := formValidate.Struct(form); err != nil {
		errMsg = validationMessage(err)
	}
	if errMsg != "" {
		h.rejectForm(w, r, form, errMsg)
		return
	}

	entry, err := models.CreateLog(h.DB, user.ID, form.Date, models.Exercise(form.Exercise), form.Amount)
	if errors.Is(err, models.ErrInvalidLog) {
		h.rejectForm(w, r, form, validationMessage(err))
		return
	}
	if err != nil {
		serverError(w, r, "create workout log", err)
		return
	}

	hlog.FromRequest(r).Info().
		Int64("user_id", user.ID).
		Str("exercise", string(entry.Exercise)).
		Int("amount", entry.Amount).
		Msg("workout logged")
	h.Sessions.Put(r.Context(), sessionFlashSuccess, "운동 기록 저장 완료!")
	http.Redirect(w, r, "/logs", http.StatusSeeOther)
}

func (h *Logs) rejectForm(w http.ResponseWriter, r *http.Request, form logForm, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := h.Templates.Render(w, r, "log_form.html", h.formData(form, msg)); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("log form template")
	}
}

// List renders the user's workout history, newest first.
func (h *Logs) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	logs, err := models.ListLogs(h.DB, user.ID)
	if err != nil {
		serverError(w, r, "list workout logs", err)
		return
	}

	data := map[string]any{
		"Logs":    logs,
		"Success": h.Sessions.PopString(r.Context(), sessionFlashSuccess),
	}
	if err := h.Templates.Render(w, r, "logs.html", data); err != nil {
		serverError(w, r, "logs template", err)
	}
}
