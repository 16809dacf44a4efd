package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-api/internal/api/dto"
	"github.com/spec-kit/support-api/internal/auth"
	"github.com/spec-kit/support-api/internal/domain"
	"github.com/spec-kit/support-api/internal/events"
	"github.com/spec-kit/support-api/internal/guard"
	"github.com/spec-kit/support-api/internal/service"
	"github.com/spec-kit/support-api/internal/view"
	"github.com/spec-kit/support-api/internal/worker"
	apperrors "github.com/spec-kit/support-api/pkg/util"
)

var ticketOrderDefaults = []string{"id", "is_answered", "ticket_theme", "creation_date"}

// TicketsHandler manages the ticket endpoints.
type TicketsHandler struct {
	tickets      *service.TicketService
	queue        worker.Queue
	dispatcher   events.Dispatcher
	selfGuard    guard.SelfOrElevated
	ownership    guard.TicketOwnership
	methodGuard  guard.MethodByRole
	defaultLimit int
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService, queue worker.Queue, dispatcher events.Dispatcher, defaultLimit int) *TicketsHandler {
	return &TicketsHandler{
		tickets:      ticketService,
		queue:        queue,
		dispatcher:   dispatcher,
		defaultLimit: defaultLimit,
	}
}

// List GET /tickets/. Callers below Support must name an owner via
// ?user_id= and may only name themselves; 0 and "me" are caller sentinels.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)

	ownerID, err := h.resolveOwnerFilter(c, principal)
	if err != nil {
		return err
	}
	if err := h.selfGuard.Check(principal.User, principal.Role, ownerID); err != nil {
		return err
	}

	mode, err := view.TicketsListCatalog.Resolve(principal.Role, c.Query("mode"))
	if err != nil {
		return err
	}
	limit, err := view.ParseLimit(c.Query("limit"), h.defaultLimit)
	if err != nil {
		return err
	}
	ordering, err := view.ResolveOrdering(c.Query("order"), ticketOrderDefaults)
	if err != nil {
		return err
	}

	tickets, err := h.tickets.ListTickets(c.UserContext(), ownerID, ordering, limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	now := time.Now()
	items := make([]map[string]any, 0, len(tickets))
	for i := range tickets {
		projected, err := h.projectTicket(c, &tickets[i], mode, now)
		if err != nil {
			return err
		}
		items = append(items, projected)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /tickets/. The route requires authentication; the mandatory
// message becomes the first thread entry, and both rows plus the aggregate
// sync commit together.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), principal.User, service.CreateTicketInput{
		Theme:    req.TicketTheme,
		Message:  req.Message,
		IsClosed: req.IsClosed,
	})
	if err != nil {
		return err
	}

	projected, err := h.projectTicket(c, ticket, view.TicketsListCatalog.CreateDefault, time.Now())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projected})
}

// Get GET /tickets/{id}/.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	ticket, err := h.loadGuarded(c, principal)
	if err != nil {
		return err
	}

	mode, err := view.TicketDetailCatalog.Resolve(principal.Role, c.Query("mode"))
	if err != nil {
		return err
	}
	projected, err := h.projectTicket(c, ticket, mode, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projected})
}

// Patch PATCH /tickets/{id}/.
func (h *TicketsHandler) Patch(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	ticket, err := h.loadGuarded(c, principal)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	updated, err := h.tickets.UpdateTicket(c.UserContext(), principal.User, ticket, service.UpdateTicketInput{
		Theme:     req.TicketTheme,
		IsClosed:  req.IsClosed,
		IsFrozen:  req.IsFrozen,
		StaffNote: req.StaffNote,
		Message:   req.Message,
	})
	if err != nil {
		return err
	}

	projected, err := h.projectTicket(c, updated, view.TicketDetailCatalog.CreateDefault, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projected})
}

// Delete DELETE /tickets/{id}/. Removal is deferred to the worker.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	ticket, err := h.loadGuarded(c, principal)
	if err != nil {
		return err
	}
	return acceptDeletion(c, h.queue, h.dispatcher, principal, worker.TaskKindTicket, ticket.ID)
}

// loadGuarded fetches the ticket and applies the method and ownership
// guards shared by all detail verbs.
func (h *TicketsHandler) loadGuarded(c *fiber.Ctx, principal *auth.Principal) (*domain.Ticket, error) {
	if err := h.methodGuard.Check(principal.Role, c.Method()); err != nil {
		return nil, err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	ticket, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		return nil, err
	}
	if err := h.ownership.Check(principal.User, principal.Role, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (h *TicketsHandler) resolveOwnerFilter(c *fiber.Ctx, principal *auth.Principal) (*int64, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return nil, nil
	}
	if raw == "0" || raw == "me" {
		if principal.User == nil {
			return nil, apperrors.NewUnauthorized("authentication required to filter by your own tickets")
		}
		id := principal.User.ID
		return &id, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.NewInvalidArgument("malformed <user_id>: must be a positive integer, 0 or \"me\"", nil)
	}
	return &id, nil
}

// projectTicket renders the ticket, loading the owner and thread only when
// the shape embeds them.
func (h *TicketsHandler) projectTicket(c *fiber.Ctx, ticket *domain.Ticket, mode view.Mode, now time.Time) (map[string]any, error) {
	ctx := view.TicketContext{Ticket: ticket, Now: now}

	if mode != view.ModeBasic {
		owner, err := h.tickets.OwnerOf(c.UserContext(), ticket)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ctx.Owner = owner
	}
	if mode == view.ModeExpanded || mode == view.ModeFull {
		messages, err := h.tickets.ListMessages(c.UserContext(), ticket.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		authors, err := h.tickets.AuthorsOf(c.UserContext(), messages)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ctx.Messages = messages
		ctx.Authors = authors
	}
	return view.ProjectTicket(ctx, mode), nil
}
