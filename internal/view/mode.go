package view

import (
	"github.com/spec-kit/support-api/internal/domain"
	util "github.com/spec-kit/support-api/pkg/util"
)

// Mode names an output projection. Modes form a strictly increasing chain of
// field sets: full ⊇ expanded ⊇ default ⊇ basic.
type Mode string

const (
	ModeBasic    Mode = "basic"
	ModeDefault  Mode = "default"
	ModeExpanded Mode = "expanded"
	ModeFull     Mode = "full"
)

// modeChain orders modes from narrowest to widest.
var modeChain = []Mode{ModeBasic, ModeDefault, ModeExpanded, ModeFull}

// Catalog declares, per resource, which modes exist, the minimum role for
// each, and the defaults. Resolution consults the table instead of branching
// on flags.
type Catalog struct {
	Resource      string
	MinRole       map[Mode]domain.Role
	GetDefault    Mode
	CreateDefault Mode
	// RoleGetDefaults overrides GetDefault for specific roles and above is
	// not implied; each role must be listed explicitly.
	RoleGetDefaults map[domain.Role]Mode
}

// Permitted returns the modes this role may request, in chain order.
func (c Catalog) Permitted(role domain.Role) []Mode {
	permitted := make([]Mode, 0, len(c.MinRole))
	for _, mode := range modeChain {
		min, ok := c.MinRole[mode]
		if !ok {
			continue
		}
		if role.AtLeast(min) {
			permitted = append(permitted, mode)
		}
	}
	return permitted
}

// DefaultFor picks the GET default for the role.
func (c Catalog) DefaultFor(role domain.Role) Mode {
	if mode, ok := c.RoleGetDefaults[role]; ok {
		return mode
	}
	return c.GetDefault
}

// Resolve validates the requested mode against the caller's permitted set.
// An empty request falls back to the role's default; an explicit request
// outside the permitted set fails, never silently falls back.
func (c Catalog) Resolve(role domain.Role, requested string) (Mode, error) {
	permitted := c.Permitted(role)
	if requested == "" {
		return c.DefaultFor(role), nil
	}
	for _, mode := range permitted {
		if Mode(requested) == mode {
			return mode, nil
		}
	}
	return "", util.NewInvalidChoice("mode", requested, modeNames(permitted))
}

func modeNames(modes []Mode) []string {
	names := make([]string, len(modes))
	for i, mode := range modes {
		names[i] = string(mode)
	}
	return names
}

// UsersListCatalog gates the users collection. Plain users see at most the
// default shape; only staff and above may request the full projection.
var UsersListCatalog = Catalog{
	Resource: "users",
	MinRole: map[Mode]domain.Role{
		ModeBasic:    domain.RoleUser,
		ModeDefault:  domain.RoleUser,
		ModeExpanded: domain.RoleSupport,
		ModeFull:     domain.RoleStaff,
	},
	GetDefault:    ModeBasic,
	CreateDefault: ModeDefault,
}

// UserDetailCatalog gates single-profile views. Support-side callers default
// to the expanded shape.
var UserDetailCatalog = Catalog{
	Resource: "user",
	MinRole: map[Mode]domain.Role{
		ModeDefault:  domain.RoleUser,
		ModeExpanded: domain.RoleSupport,
		ModeFull:     domain.RoleStaff,
	},
	GetDefault:    ModeDefault,
	CreateDefault: ModeDefault,
	RoleGetDefaults: map[domain.Role]Mode{
		domain.RoleSupport:   ModeExpanded,
		domain.RoleStaff:     ModeExpanded,
		domain.RoleSuperuser: ModeExpanded,
	},
}

// TicketsListCatalog gates the tickets collection.
var TicketsListCatalog = Catalog{
	Resource: "tickets",
	MinRole: map[Mode]domain.Role{
		ModeBasic:    domain.RoleUser,
		ModeDefault:  domain.RoleUser,
		ModeExpanded: domain.RoleSupport,
		ModeFull:     domain.RoleStaff,
	},
	GetDefault:    ModeBasic,
	CreateDefault: ModeDefault,
}

// TicketDetailCatalog gates single-ticket views.
var TicketDetailCatalog = Catalog{
	Resource: "ticket",
	MinRole: map[Mode]domain.Role{
		ModeDefault:  domain.RoleUser,
		ModeExpanded: domain.RoleSupport,
		ModeFull:     domain.RoleStaff,
	},
	GetDefault:    ModeDefault,
	CreateDefault: ModeDefault,
	RoleGetDefaults: map[domain.Role]Mode{
		domain.RoleSupport:   ModeExpanded,
		domain.RoleStaff:     ModeExpanded,
		domain.RoleSuperuser: ModeExpanded,
	},
}

// MessagesCatalog has a single shape for every role.
var MessagesCatalog = Catalog{
	Resource: "messages",
	MinRole: map[Mode]domain.Role{
		ModeBasic: domain.RoleUser,
	},
	GetDefault:    ModeBasic,
	CreateDefault: ModeBasic,
}
