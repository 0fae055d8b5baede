package middleware

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ActorHeader names the staff member operating the front desk client.
// Its value is recorded on audit events; it is not an authentication mechanism.
const ActorHeader = "X-Gymdesk-Actor"

// MaxActorLength bounds the recorded actor name.
const MaxActorLength = 100

type contextKey string

const actorContextKey contextKey = "actor"

// Actor returns middleware that copies the actor header into the request context.
// Requests without the header carry no actor and are audited as the system.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := cleanActor(r.Header.Get(ActorHeader)); actor != "" {
			r = r.WithContext(ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext extracts the actor set by Actor. Empty when none was sent.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey).(string)
	return actor
}

// ContextWithActor returns a context carrying actor.
// Intended for use in tests.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func cleanActor(v string) string {
	v = strings.TrimSpace(v)
	if !utf8.ValidString(v) {
		return ""
	}
	if len(v) > MaxActorLength {
		v = v[:MaxActorLength]
		for !utf8.ValidString(v) {
			v = v[:len(v)-1]
		}
	}
	return v
}
