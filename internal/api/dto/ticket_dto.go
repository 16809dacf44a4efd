package dto

// CreateTicketRequest is the POST /tickets/ payload. Message becomes the
// initial thread entry and is mandatory.
type CreateTicketRequest struct {
	TicketTheme string `json:"ticket_theme"`
	Message     string `json:"message"`
	IsClosed    bool   `json:"is_closed"`
}

// UpdateTicketRequest is the PATCH /tickets/{id}/ payload; absent fields
// are left untouched. A non-empty Message appends a thread entry.
type UpdateTicketRequest struct {
	TicketTheme *string `json:"ticket_theme"`
	IsClosed    *bool   `json:"is_closed"`
	IsFrozen    *bool   `json:"is_frozen"`
	StaffNote   *string `json:"staff_note"`
	Message     string  `json:"message"`
}
