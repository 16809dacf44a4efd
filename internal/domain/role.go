package domain

// Role ranks caller privilege. The flags on a user are independent booleans,
// so classification picks the highest applicable rank.
type Role int

const (
	RoleAnonymous Role = iota
	RoleUser
	RoleSupport
	RoleStaff
	RoleSuperuser
)

var roleNames = map[Role]string{
	RoleAnonymous: "anonymous",
	RoleUser:      "user",
	RoleSupport:   "support",
	RoleStaff:     "staff",
	RoleSuperuser: "superuser",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// AtLeast reports whether the role meets the given minimum rank.
func (r Role) AtLeast(min Role) bool {
	return r >= min
}

// Classify maps an authenticated user to its role. A nil user is anonymous.
// Flags are checked in strict priority order superuser > staff > support.
func Classify(user *User) Role {
	if user == nil {
		return RoleAnonymous
	}
	switch {
	case user.IsSuperuser:
		return RoleSuperuser
	case user.IsStaff:
		return RoleStaff
	case user.IsSupport:
		return RoleSupport
	default:
		return RoleUser
	}
}
