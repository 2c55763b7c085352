package flashcardhandlers

import "net/http"

// Handlers serves the flashcard endpoints.
type Handlers interface {
	HandleList(w http.ResponseWriter, r *http.Request)
	HandleCreate(w http.ResponseWriter, r *http.Request)
	HandleGet(w http.ResponseWriter, r *http.Request)
	HandleDelete(w http.ResponseWriter, r *http.Request)
	HandleImport(w http.ResponseWriter, r *http.Request)
}
