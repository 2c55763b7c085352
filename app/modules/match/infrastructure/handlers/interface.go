package matchhandlers

import "net/http"

// Handlers serves the match endpoints.
type Handlers interface {
	HandleCreateMatch(w http.ResponseWriter, r *http.Request)
	HandleGetMatchState(w http.ResponseWriter, r *http.Request)
	HandleJoinMatch(w http.ResponseWriter, r *http.Request)
	HandleListPlayers(w http.ResponseWriter, r *http.Request)
	HandleStartRound(w http.ResponseWriter, r *http.Request)
	HandleAnswer(w http.ResponseWriter, r *http.Request)
	HandleNextRound(w http.ResponseWriter, r *http.Request)
	HandleCancelAutoAdvance(w http.ResponseWriter, r *http.Request)
}
