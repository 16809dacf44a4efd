// Package guard holds the per-request authorization predicates. Each guard
// is a stateless strategy object injected into the handlers; guards never
// mutate state and are re-evaluated on every call.
package guard

import (
	"fmt"

	"github.com/spec-kit/support-api/internal/domain"
	util "github.com/spec-kit/support-api/pkg/util"
)

// SelfOrElevated allows acting on a user-scoped resource when the caller is
// the target user or ranks Support and above. A nil target id means "no
// restriction", which only elevated callers may use; everyone else gets a
// denial that names the exact query value that would succeed.
type SelfOrElevated struct{}

func (SelfOrElevated) Check(caller *domain.User, role domain.Role, targetID *int64) error {
	if role.AtLeast(domain.RoleSupport) {
		return nil
	}
	if caller == nil {
		return util.NewUnauthorized("authentication required")
	}
	if targetID == nil {
		return util.NewPermissionDenied(fmt.Sprintf(
			"permission denied: current user_id = %d; use \"?user_id=%d\" to get your own items",
			caller.ID, caller.ID,
		))
	}
	if *targetID == caller.ID {
		return nil
	}
	return util.NewPermissionDenied(fmt.Sprintf(
		"permission denied: current user_id = %d; use \"?user_id=%d\" to get your own items",
		caller.ID, caller.ID,
	))
}

// TicketOwnership allows viewing or acting on a ticket when the caller is
// its owner or ranks Support and above. Missing tickets are reported where
// the row is fetched, so the error shape never leaks existence here.
type TicketOwnership struct{}

func (TicketOwnership) Check(caller *domain.User, role domain.Role, ticket *domain.Ticket) error {
	if role.AtLeast(domain.RoleSupport) {
		return nil
	}
	if caller == nil {
		return util.NewUnauthorized("authentication required")
	}
	if ticket.OpenedByID == caller.ID {
		return nil
	}
	return util.NewPermissionDenied(fmt.Sprintf(
		"permission denied: current user (id=%d) is not the ticket owner", caller.ID,
	))
}

// MethodByRole gates HTTP verbs by rank: Staff and above use everything,
// Support gets reads and partial updates, plain users only reads. Verbs
// outside the recognized set are a distinct error kind from a recognized
// but forbidden method.
type MethodByRole struct{}

var recognizedMethods = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"PATCH":  {},
	"DELETE": {},
}

func (MethodByRole) Check(role domain.Role, method string) error {
	if _, ok := recognizedMethods[method]; !ok {
		return util.NewMethodNotRecognized(method)
	}
	switch {
	case role.AtLeast(domain.RoleStaff):
		return nil
	case role == domain.RoleSupport:
		if method == "GET" || method == "PATCH" {
			return nil
		}
	default:
		if method == "GET" {
			return nil
		}
	}
	return util.NewPermissionDenied(fmt.Sprintf(
		"permission denied: insufficient permissions to use the method %s", method,
	))
}
