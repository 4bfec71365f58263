package auth

import "context"

type sessionContextKey struct{}

// WithSessionRecord adds a resolved session record to the context.
func WithSessionRecord(ctx context.Context, record *SessionRecord) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, record)
}

// SessionFromContext retrieves the resolved session record, if any.
func SessionFromContext(ctx context.Context) (*SessionRecord, bool) {
	record, ok := ctx.Value(sessionContextKey{}).(*SessionRecord)
	return record, ok && record != nil
}

// SubjectIDFromContext retrieves the authenticated subject id, if any.
func SubjectIDFromContext(ctx context.Context) (string, bool) {
	record, ok := SessionFromContext(ctx)
	if !ok {
		return "", false
	}
	return record.SubjectID, true
}
