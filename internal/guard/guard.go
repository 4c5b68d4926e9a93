// Package guard decides whether the current user may see a role-restricted
// page.
package guard

import (
	"context"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/gin-gonic/gin"
)

type State string

const (
	StateLoading         State = "loading"
	StateUnauthenticated State = "unauthenticated"
	StateWrongRole       State = "wrong_role"
	StateAuthorized      State = "authorized"
)

const (
	LoginPath = "/login"
	HomePath  = "/"

	loadingMessage = "Loading..."
	userKey        = "user"
)

type Decision struct {
	State    State        `json:"state"`
	Redirect string       `json:"redirect,omitempty"`
	Message  string       `json:"message,omitempty"`
	User     *domain.User `json:"user,omitempty"`
}

// Decide maps the current-user query to a guard state. Any failed query
// counts as signed out.
func Decide(result remote.Result[domain.User], required domain.Role) Decision {
	switch {
	case result.IsLoading():
		return Decision{State: StateLoading, Message: loadingMessage}
	case result.IsError(), result.Data.IsZero():
		return Decision{State: StateUnauthenticated, Redirect: LoginPath}
	case result.Data.UserType != required:
		return Decision{State: StateWrongRole, Redirect: HomePath}
	}
	user := result.Data
	return Decision{State: StateAuthorized, User: &user}
}

// Users reports the current user. accessor.API implements it.
type Users interface {
	MeResult(ctx context.Context, wait bool) remote.Result[domain.User]
}

type Guard struct {
	users Users
}

func New(users Users) *Guard {
	return &Guard{users: users}
}

func (g *Guard) Check(ctx context.Context, required domain.Role, wait bool) Decision {
	return Decide(g.users.MeResult(ctx, wait), required)
}

// Require admits only users of the given role. It waits for the user
// query, so it never answers Loading.
func (g *Guard) Require(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Check(c.Request.Context(), required, true)
		switch d.State {
		case StateUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "redirect": d.Redirect})
			return
		case StateWrongRole:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions", "redirect": d.Redirect})
			return
		}
		c.Set(userKey, d.User)
		c.Next()
	}
}

func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*domain.User)
	return u, ok && u != nil
}
