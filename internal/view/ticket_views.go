package view

import (
	"time"

	"github.com/spec-kit/support-api/internal/domain"
)

// TicketContext carries a ticket and the related rows wider modes embed.
// Owner and Messages may be nil for the basic shape.
type TicketContext struct {
	Ticket   *domain.Ticket
	Owner    *domain.User
	Messages []domain.Message
	// Authors resolves message author ids for embedded message shapes.
	Authors map[int64]*domain.User
	Now     time.Time
}

// ProjectTicket renders the ticket in the given mode.
func ProjectTicket(ctx TicketContext, mode Mode) map[string]any {
	t := ctx.Ticket

	out := map[string]any{
		"id":               t.ID,
		"ticket_theme":     string(t.Theme),
		"is_closed":        t.IsClosed,
		"no_response_time": noResponseTime(t, ctx.Now),
	}
	if mode == ModeBasic {
		return out
	}

	out["opened_by_id"] = t.OpenedByID
	if ctx.Owner != nil {
		out["screen_name"] = ctx.Owner.DisplayName()
	} else {
		out["screen_name"] = ""
	}
	out["creation_date"] = FormatDate(t.CreationDate)
	out["last_changes"] = FormatDate(t.LastChanges)
	out["messages_count"] = t.MessagesCount
	out["is_answered"] = t.IsAnswered
	if mode == ModeDefault {
		return out
	}

	if t.UserQuestionDate != nil {
		out["user_question_date"] = FormatDate(*t.UserQuestionDate)
	} else {
		out["user_question_date"] = nil
	}
	out["is_frozen"] = t.IsFrozen
	out["answerer_id"] = t.AnswererID
	messages := make([]map[string]any, 0, len(ctx.Messages))
	for i := range ctx.Messages {
		msg := &ctx.Messages[i]
		messages = append(messages, ProjectMessage(msg, ctx.Authors[msg.AuthorID]))
	}
	out["messages"] = messages
	if mode == ModeExpanded {
		return out
	}

	// staff_note never leaves the staff-gated shape
	out["staff_note"] = t.StaffNote
	out["closed_by_id"] = t.ClosedByID
	return out
}

func noResponseTime(t *domain.Ticket, now time.Time) string {
	if t.IsAnswered || t.UserQuestionDate == nil {
		return ""
	}
	return FormatSeconds(ElapsedSince(now, *t.UserQuestionDate))
}
