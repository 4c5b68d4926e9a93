package domain

import "fmt"

// Role is the closed set of account types the backend issues.
type Role string

const (
	RoleStaff    Role = "Staff"
	RoleHost     Role = "Host"
	RoleTraveler Role = "Traveler"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleStaff, RoleHost, RoleTraveler:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type Action string

const (
	ActionManageAirports   Action = "manage_airports"
	ActionManageAirlines   Action = "manage_airlines"
	ActionManageFlights    Action = "manage_flights"
	ActionManageProperties Action = "manage_properties"
	ActionBook             Action = "book"
	ActionViewTickets      Action = "view_tickets"
	ActionViewPayments     Action = "view_payments"
)

// Allows reports whether the role may perform the action.
func (r Role) Allows(a Action) bool {
	switch r {
	case RoleStaff:
		return a == ActionManageAirports || a == ActionManageAirlines || a == ActionManageFlights
	case RoleHost:
		return a == ActionManageProperties
	case RoleTraveler:
		return a == ActionBook || a == ActionViewTickets || a == ActionViewPayments
	}
	return false
}

type NavItem struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

// Navigation lists the management pages shown for a role.
func (r Role) Navigation() []NavItem {
	switch r {
	case RoleStaff:
		return []NavItem{
			{Label: "Airports", Href: "/flights/airport/list"},
			{Label: "Airlines", Href: "/flights/airline/list"},
			{Label: "Flights", Href: "/flights/flight/list"},
		}
	case RoleHost:
		return []NavItem{{Label: "Property", Href: "/rent/property/list"}}
	case RoleTraveler:
		return []NavItem{}
	}
	return nil
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserType Role   `json:"user_type"`
}

func (u User) IsZero() bool {
	return u.ID == 0 && u.Username == ""
}
