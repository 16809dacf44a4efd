package view

import (
	"time"

	"github.com/spec-kit/support-api/internal/domain"
)

// UserContext carries everything a user projection may need. Tickets are
// only consulted by the expanded and full shapes; narrower projections may
// leave them nil.
type UserContext struct {
	User    *domain.User
	Tickets []domain.Ticket
	Now     time.Time
}

// ProjectUser renders the user in the given mode. Each wider mode extends
// the narrower one's field set, so shapes stay strict supersets.
func ProjectUser(ctx UserContext, mode Mode) map[string]any {
	u := ctx.User

	out := map[string]any{
		"id":                   u.ID,
		"screen_name":          u.DisplayName(),
		"opened_tickets_count": u.OpenedTicketsCount,
		"max_no_response_time": unansweredFor(u, ctx.Now),
	}
	if mode == ModeBasic {
		return out
	}

	out["email"] = u.Email
	out["username"] = u.Username
	out["first_name"] = u.FirstName
	out["last_name"] = u.LastName
	out["personal_information"] = u.PersonalInformation
	out["hide_private_info"] = u.HidePrivateInfo
	out["creation_date"] = FormatDate(u.CreatedAt)
	out["updated_at"] = FormatDate(u.UpdatedAt)
	if mode == ModeDefault {
		return out
	}

	out["is_staff"] = u.IsStaff
	out["is_support"] = u.IsSupport
	out["tickets_messages"] = u.TicketsMessages
	if u.UnansweredSince != nil {
		out["unanswered_since"] = FormatDate(*u.UnansweredSince)
	} else {
		out["unanswered_since"] = nil
	}
	tickets := make([]map[string]any, 0, len(ctx.Tickets))
	for i := range ctx.Tickets {
		tickets = append(tickets, ProjectTicket(TicketContext{
			Ticket: &ctx.Tickets[i],
			Now:    ctx.Now,
		}, ModeBasic))
	}
	out["tickets"] = tickets
	if mode == ModeExpanded {
		return out
	}

	out["is_superuser"] = u.IsSuperuser
	return out
}

func unansweredFor(u *domain.User, now time.Time) string {
	if u.UnansweredSince == nil {
		return ""
	}
	return FormatSeconds(ElapsedSince(now, *u.UnansweredSince))
}
