package remote

import "context"

// Identity is the caller on whose behalf backend requests are made.
type Identity struct {
	SessionID string
	UserID    int64
	Token     string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// scope partitions cached queries per session.
func (id Identity) scope() string {
	if id.SessionID == "" {
		return "anonymous"
	}
	return "session:" + id.SessionID
}
