package accessor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/remote"
	"github.com/cockroachdb/errors"
)

func (a *API) Property(ctx context.Context, propertyID int64) (domain.Property, error) {
	return remote.Fetch[domain.Property](ctx, a.client, remote.Shared(QueryProperty, id(propertyID)), fmt.Sprintf("/properties/%d", propertyID))
}

// OwnProperties lists the properties of the signed-in host.
func (a *API) OwnProperties(ctx context.Context) ([]domain.Property, error) {
	return remote.Fetch[[]domain.Property](ctx, a.client, remote.Private(ctx, QueryOwnProperties), "/properties/")
}

func (a *API) AllProperties(ctx context.Context, page int) (domain.PropertyPage, error) {
	if page < 1 {
		page = 1
	}
	return remote.Fetch[domain.PropertyPage](ctx, a.client, remote.Shared(QueryProperties, fmt.Sprint(page)), fmt.Sprintf("/properties/all?page=%d", page))
}

func (a *API) CreateProperty(ctx context.Context, in domain.Property) (domain.Property, error) {
	var out domain.Property
	if err := a.client.Do(ctx, http.MethodPost, "/properties/", in, &out); err != nil {
		return out, err
	}
	return out, errors.CombineErrors(a.invalidate(ctx, QueryOwnProperties), a.invalidateShared(ctx, QueryProperties))
}

func (a *API) UpdateProperty(ctx context.Context, propertyID int64, in domain.Property) (domain.Property, error) {
	var out domain.Property
	if err := a.client.Do(ctx, http.MethodPut, fmt.Sprintf("/properties/%d/", propertyID), in, &out); err != nil {
		return out, err
	}
	return out, errors.CombineErrors(a.invalidate(ctx, QueryOwnProperties), a.invalidateShared(ctx, QueryProperties, QueryProperty))
}

func (a *API) DeleteProperty(ctx context.Context, propertyID int64) error {
	if err := a.client.Do(ctx, http.MethodDelete, fmt.Sprintf("/properties/%d/", propertyID), nil, nil); err != nil {
		return err
	}
	return errors.CombineErrors(a.invalidate(ctx, QueryOwnProperties), a.invalidateShared(ctx, QueryProperties, QueryProperty))
}
