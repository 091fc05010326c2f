package handlers

import (
	"net/http"
	"strings"

	"server/internal/sqlinline"
)

// StatsSummary returns build job counts grouped by status.
func (a *App) StatsSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := a.SQL.Query(r.Context(), sqlinline.QBuildStats)
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to load stats")
		return
	}
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			continue
		}
		counts[strings.ToLower(status)] = n
	}
	a.json(w, http.StatusOK, map[string]any{
		"in_progress": counts["in_progress"],
		"completed":   counts["completed"],
		"failed":      counts["failed"],
	})
}
