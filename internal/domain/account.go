package domain

import "time"

// Ticket is a booked flight. Amount is in cents.
type Ticket struct {
	ID           int64     `json:"id"`
	Flight       Flight    `json:"flight"`
	Seats        int       `json:"seats"`
	CustomerName string    `json:"customer_name"`
	Amount       int64     `json:"amount"`
	CreatedAt    time.Time `json:"created_at"`
}

// Payment is a property stay payment. Amount is in cents.
type Payment struct {
	ID        int64     `json:"id"`
	Property  Property  `json:"property"`
	Nights    int       `json:"nights"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Notification struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	ReadStatus bool      `json:"read_status"`
	CreatedAt  time.Time `json:"created_at"`
}
