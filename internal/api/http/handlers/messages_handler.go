package handlers

import (
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

// MessagesHandler manages the per-ticket thread endpoints. The collection
// follows ticket ownership; single-message manipulation is staff-side only.
type MessagesHandler struct {
	tickets     *service.TicketService
	queue       worker.Queue
	dispatcher  events.Dispatcher
	ownership   guard.TicketOwnership
	methodGuard guard.MethodByRole
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(ticketService *service.TicketService, queue worker.Queue, dispatcher events.Dispatcher) *MessagesHandler {
	return &MessagesHandler{
		tickets:    ticketService,
		queue:      queue,
		dispatcher: dispatcher,
	}
}

// List GET /tickets/{id}/messages/.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	ticket, err := h.loadTicket(c, principal)
	if err != nil {
		return err
	}

	messages, err := h.tickets.ListMessages(c.UserContext(), ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	authors, err := h.tickets.AuthorsOf(c.UserContext(), messages)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]map[string]any, 0, len(messages))
	for i := range messages {
		msg := &messages[i]
		items = append(items, view.ProjectMessage(msg, authors[msg.AuthorID]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Append POST /tickets/{id}/messages/. The route requires authentication;
// frozen tickets only accept entries from staff and above.
func (h *MessagesHandler) Append(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	ticket, err := h.loadTicket(c, principal)
	if err != nil {
		return err
	}
	if ticket.IsFrozen && !principal.Role.AtLeast(domain.RoleStaff) {
		return apperrors.NewPermissionDenied("permission denied: ticket is frozen")
	}

	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	msg, err := h.tickets.AddMessage(c.UserContext(), principal.User, ticket, req.Message)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": view.ProjectMessage(msg, principal.User),
	})
}

// Get GET /tickets/{id}/messages/{message_id}/.
func (h *MessagesHandler) Get(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	msg, err := h.loadMessageStaff(c, principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.projectOne(c, msg)})
}

// Patch PATCH /tickets/{id}/messages/{message_id}/.
func (h *MessagesHandler) Patch(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	msg, err := h.loadMessageStaff(c, principal)
	if err != nil {
		return err
	}

	var req dto.UpdateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	updated, err := h.tickets.UpdateMessage(c.UserContext(), msg, req.Message)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.projectOne(c, updated)})
}

// Delete DELETE /tickets/{id}/messages/{message_id}/. Removal is deferred
// to the worker.
func (h *MessagesHandler) Delete(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	msg, err := h.loadMessageStaff(c, principal)
	if err != nil {
		return err
	}
	return acceptDeletion(c, h.queue, h.dispatcher, principal, worker.TaskKindMessage, msg.ID)
}

// loadTicket applies ticket ownership for the collection endpoints.
func (h *MessagesHandler) loadTicket(c *fiber.Ctx, principal *auth.Principal) (*domain.Ticket, error) {
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

// loadMessageStaff gates single-message access to staff and above, then
// fetches the message checking ticket membership.
func (h *MessagesHandler) loadMessageStaff(c *fiber.Ctx, principal *auth.Principal) (*domain.Message, error) {
	if err := h.methodGuard.Check(principal.Role, c.Method()); err != nil {
		return nil, err
	}
	if !principal.Role.AtLeast(domain.RoleStaff) {
		return nil, apperrors.NewPermissionDenied("permission denied: message administration requires staff access")
	}
	ticketID, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	messageID, err := parseID(c, "message_id")
	if err != nil {
		return nil, err
	}
	return h.tickets.GetMessage(c.UserContext(), ticketID, messageID)
}

func (h *MessagesHandler) projectOne(c *fiber.Ctx, msg *domain.Message) map[string]any {
	authors, err := h.tickets.AuthorsOf(c.UserContext(), []domain.Message{*msg})
	if err != nil {
		return view.ProjectMessage(msg, nil)
	}
	return view.ProjectMessage(msg, authors[msg.AuthorID])
}
