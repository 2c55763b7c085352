package scorehandlers

import "net/http"

// Handlers serves the per-match score endpoints.
type Handlers interface {
	HandleScoreboard(w http.ResponseWriter, r *http.Request)
	HandleResults(w http.ResponseWriter, r *http.Request)
	HandleResultsChart(w http.ResponseWriter, r *http.Request)
	HandleExportResults(w http.ResponseWriter, r *http.Request)
}
