package view

import "github.com/spec-kit/support-api/internal/domain"

// ProjectMessage renders a thread message. Author may be nil when the
// account was deleted before the thread.
func ProjectMessage(msg *domain.Message, author *domain.User) map[string]any {
	writtenBy := ""
	if author != nil {
		writtenBy = author.DisplayName()
	}
	return map[string]any{
		"id":            msg.ID,
		"written_by":    writtenBy,
		"creation_date": FormatDate(msg.CreationDate),
		"message":       msg.Body,
	}
}
