// Package session carries the authenticated caller through request contexts.
package session

import (
	"context"
	"errors"
	"strings"
)

// ErrNoIdentity is returned when a context carries no authenticated caller.
var ErrNoIdentity = errors.New("no authenticated identity in context")

// DefaultDisplayName is used when neither profile metadata nor email yield a name.
const DefaultDisplayName = "Player"

// Identity is the authenticated caller as asserted by the auth token.
type Identity struct {
	UserID   string
	Email    string
	Metadata map[string]string
}

// metadataNameKeys are checked in order for a display name.
var metadataNameKeys = []string{"name", "full_name", "display_name", "user_name"}

// DisplayName derives a name from profile metadata, then the email local part,
// then DefaultDisplayName.
func (i Identity) DisplayName() string {
	for _, key := range metadataNameKeys {
		if v := strings.TrimSpace(i.Metadata[key]); v != "" {
			return v
		}
	}
	if local, _, ok := strings.Cut(i.Email, "@"); ok && strings.TrimSpace(local) != "" {
		return strings.TrimSpace(local)
	}
	return DefaultDisplayName
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
