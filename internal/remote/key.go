package remote

import (
	"context"
	"strings"
)

const sharedScope = "shared"

// Key names a cached query. The first part is the query name used for
// invalidation. Rendered keys end with a separator so that one name is never
// a prefix of another.
type Key struct {
	scope string
	parts []string
}

// Shared keys hold data that is the same for every caller.
func Shared(parts ...string) Key {
	return Key{scope: sharedScope, parts: parts}
}

// Private keys are scoped to the session found in ctx.
func Private(ctx context.Context, parts ...string) Key {
	return Key{scope: IdentityFrom(ctx).scope(), parts: parts}
}

func (k Key) String() string {
	return scopePrefix(k.scope) + strings.Join(k.parts, ":") + ":"
}

func scopePrefix(scope string) string {
	return "query:" + scope + ":"
}

func namePrefix(scope, name string) string {
	return scopePrefix(scope) + name + ":"
}
