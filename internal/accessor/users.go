package accessor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Registration struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	UserType domain.Role `json:"user_type"`
}

func (a *API) Token(ctx context.Context, creds Credentials) (TokenPair, error) {
	var out TokenPair
	err := a.client.Do(ctx, http.MethodPost, "/token/", creds, &out)
	return out, err
}

func (a *API) Register(ctx context.Context, in Registration) (domain.User, error) {
	var out domain.User
	err := a.client.Do(ctx, http.MethodPost, "/users/register/", in, &out)
	return out, err
}

func (a *API) Me(ctx context.Context) (domain.User, error) {
	return remote.Fetch[domain.User](ctx, a.client, remote.Private(ctx, QueryUser, "me"), "/users/me/")
}

// MeResult reports the current user as a query result. Without a session
// token no request is made. With wait unset the call never blocks and may
// report Loading.
func (a *API) MeResult(ctx context.Context, wait bool) remote.Result[domain.User] {
	if remote.IdentityFrom(ctx).Token == "" {
		return remote.Failure[domain.User](remote.ErrUnauthorized)
	}
	key := remote.Private(ctx, QueryUser, "me")
	if wait {
		return remote.Load[domain.User](ctx, a.client, key, "/users/me/")
	}
	return remote.Peek[domain.User](ctx, a.client, key, "/users/me/")
}

func (a *API) Notifications(ctx context.Context) ([]domain.Notification, error) {
	return remote.Fetch[[]domain.Notification](ctx, a.client, remote.Private(ctx, QueryNotifications), "/notifications/")
}

func (a *API) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	if err := a.client.Do(ctx, http.MethodPost, fmt.Sprintf("/notifications/%d/mark-as-read/", notificationID), nil, nil); err != nil {
		return err
	}
	return a.invalidate(ctx, QueryNotifications)
}
