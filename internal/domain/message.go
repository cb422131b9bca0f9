package domain

import "time"

// Message is an entry of the Messages collection, the portal inbox.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        Role      `json:"to"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	Read      bool      `json:"read"`
}
