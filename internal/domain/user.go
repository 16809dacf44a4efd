package domain

import (
	"fmt"
	"time"
)

// User is the principal model. The three role flags are independent booleans;
// use Classify to obtain the effective rank.
//
// OpenedTicketsCount, UnansweredSince and TicketsMessages are denormalized
// aggregates owned by the aggregate engine: they are always recomputed from
// the user's tickets and messages, never edited directly.
type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string

	IsStaff     bool
	IsSuperuser bool
	IsSupport   bool

	HidePrivateInfo     bool
	ScreenName          string
	PersonalInformation string
	FirstName           string
	LastName            string

	OpenedTicketsCount int
	UnansweredSince    *time.Time
	TicketsMessages    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName resolves the name shown to other users: the explicit screen
// name, else the username unless the user hides private info, with an
// admin/support suffix so support-side replies are recognizable.
func (u *User) DisplayName() string {
	tail := ""
	if u.IsStaff {
		tail = " (admin)"
	} else if u.IsSupport {
		tail = " (support)"
	}

	name := u.ScreenName
	if name == "" {
		if u.HidePrivateInfo {
			name = fmt.Sprintf("user#%d", u.ID)
		} else {
			name = u.Username
		}
	}
	return name + tail
}
