package authhandlers

import "net/http"

// Handlers authenticates API requests.
type Handlers interface {
	RequireIdentity(next http.Handler) http.Handler
	// HandleIssueDevToken mints tokens without an identity provider. It is only
	// mounted outside production.
	HandleIssueDevToken(w http.ResponseWriter, r *http.Request)
}
