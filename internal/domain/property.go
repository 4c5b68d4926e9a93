package domain

// Property as returned by the backend. PricePerNight is in dollars.
type Property struct {
	ID            int64    `json:"id,omitempty"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	PricePerNight int64    `json:"price_per_night"`
	MaxGuests     int      `json:"max_guests"`
	PropertyType  string   `json:"property_type"`
	Images        []string `json:"images,omitempty"`
}

func (p Property) Kind() ResourceKind { return KindProperty }
func (p Property) ResourceID() int64  { return p.ID }
func (p Property) UnitPrice() int64   { return p.PricePerNight }
func (p Property) Scale() UnitScale   { return ScaleMajor }

// PropertyPage is one page of the public property listing.
type PropertyPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Property `json:"results"`
}
