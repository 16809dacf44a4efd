package dto

// CreateMessageRequest is the POST /tickets/{id}/messages/ payload.
type CreateMessageRequest struct {
	Message string `json:"message"`
}

// UpdateMessageRequest replaces the message body.
type UpdateMessageRequest struct {
	Message string `json:"message"`
}
