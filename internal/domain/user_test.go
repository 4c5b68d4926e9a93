package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"Staff", "Host", "Traveler"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}

	_, err := ParseRole("admin")
	assert.Error(t, err)
}

func TestUser_UnmarshalRejectsUnknownRole(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"username":"ann","user_type":"Host"}`), &u))
	assert.Equal(t, RoleHost, u.UserType)

	assert.Error(t, json.Unmarshal([]byte(`{"id":1,"user_type":"Root"}`), &u))
}

func TestRole_Allows(t *testing.T) {
	allowed := map[Role][]Action{
		RoleStaff:    {ActionManageAirports, ActionManageAirlines, ActionManageFlights},
		RoleHost:     {ActionManageProperties},
		RoleTraveler: {ActionBook, ActionViewTickets, ActionViewPayments},
	}
	all := []Action{
		ActionManageAirports, ActionManageAirlines, ActionManageFlights,
		ActionManageProperties, ActionBook, ActionViewTickets, ActionViewPayments,
	}

	for role, actions := range allowed {
		for _, a := range all {
			assert.Equal(t, contains(actions, a), role.Allows(a), "%s/%s", role, a)
		}
	}
	assert.False(t, Role("Root").Allows(ActionBook))
}

func TestRole_Navigation(t *testing.T) {
	assert.Len(t, RoleStaff.Navigation(), 3)
	assert.Equal(t, "/rent/property/list", RoleHost.Navigation()[0].Href)
	assert.Empty(t, RoleTraveler.Navigation())
	assert.Nil(t, Role("Root").Navigation())
}

func contains(actions []Action, a Action) bool {
	for _, x := range actions {
		if x == a {
			return true
		}
	}
	return false
}
