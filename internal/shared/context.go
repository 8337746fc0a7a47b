package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context. It returns nil when
// the session middleware did not run.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// AuthenticatedUser returns the signed-in user name, or "" for anonymous requests.
func AuthenticatedUser(ctx context.Context) string {
	sess := SessionFromContext(ctx)
	if !sess.Authenticated() {
		return ""
	}
	return sess.User()
}
