package domain

import "time"

// TicketTheme categorizes a support request.
type TicketTheme string

const (
	ThemeProduct  TicketTheme = "product"
	ThemeSoft     TicketTheme = "soft"
	ThemeSecurity TicketTheme = "security"
	ThemeOther    TicketTheme = "other"
)

// TicketThemes lists the accepted themes in declaration order.
var TicketThemes = []TicketTheme{ThemeProduct, ThemeSoft, ThemeSecurity, ThemeOther}

// ValidTheme reports whether the value names a known theme.
func ValidTheme(theme TicketTheme) bool {
	for _, t := range TicketThemes {
		if t == theme {
			return true
		}
	}
	return false
}

// Ticket is a support request owned by exactly one user. When the owner is
// deleted the ticket is reassigned to the collector account instead of being
// dropped.
//
// IsAnswered, UserQuestionDate, AnswererID and MessagesCount are derived by
// the aggregate engine from the ticket's messages.
type Ticket struct {
	ID         int64
	Theme      TicketTheme
	OpenedByID int64

	IsClosed bool
	IsFrozen bool

	IsAnswered       bool
	UserQuestionDate *time.Time
	AnswererID       *int64
	ClosedByID       *int64
	MessagesCount    int

	StaffNote string

	CreationDate time.Time
	LastChanges  time.Time
}
