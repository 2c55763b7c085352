package playerhandlers

import "net/http"

// Handlers serves the player endpoints.
type Handlers interface {
	HandleGetMe(w http.ResponseWriter, r *http.Request)
	HandleRenameMe(w http.ResponseWriter, r *http.Request)
}
