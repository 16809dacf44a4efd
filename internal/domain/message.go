package domain

import "time"

// Message is a single entry in a ticket thread. Messages are cascade-deleted
// with their ticket; on author deletion they are reassigned to the collector
// account, like tickets.
type Message struct {
	ID           int64
	TicketID     int64
	AuthorID     int64
	Body         string
	CreationDate time.Time
}
