package handlers

import (
	"database/sql"
	"net/http"

	"github.com/carpenike/fitcoach/internal/middleware"
	"github.com/carpenike/fitcoach/internal/models"
	"github.com/carpenike/fitcoach/internal/stats"
)

// SummaryChartDays is how many logged dates the bar chart shows.
const SummaryChartDays = 30

// Summary holds dependencies for the workout summary page.
type Summary struct {
	DB        *sql.DB
	Templates TemplateCache
}

// Show renders the summary over all of the user's logs: active days, total
// amount, an encouragement tier and charts of the daily totals.
func (h *Summary) Show(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())

	logs, err := models.ListLogs(h.DB, user.ID)
	if err != nil {
		serverError(w, r, "list logs for summary", err)
		return
	}

	sum := stats.Summarize(models.StatsEntries(logs))
	data := map[string]any{
		"Summary":    sum,
		"Bars":       models.DailyTotalsBarChart(sum.Daily, SummaryChartDays),
		"Cumulative": models.CumulativeChart(sum.Daily, "단위"),
	}
	if err := h.Templates.Render(w, r, "summary.html", data); err != nil {
		serverError(w, r, "summary template", err)
	}
}
