package handlers

import (
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

var userOrderDefaults = []string{"id", "date_joined"}

// UsersHandler manages the account endpoints.
type UsersHandler struct {
	users        *service.UserService
	queue        worker.Queue
	dispatcher   events.Dispatcher
	selfGuard    guard.SelfOrElevated
	defaultLimit int
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService, queue worker.Queue, dispatcher events.Dispatcher, defaultLimit int) *UsersHandler {
	return &UsersHandler{
		users:        userService,
		queue:        queue,
		dispatcher:   dispatcher,
		defaultLimit: defaultLimit,
	}
}

// List GET /users/. Anonymous callers get the navigation document instead
// of a listing.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	if principal.User == nil {
		return UsersInfo(c)
	}

	mode, err := view.UsersListCatalog.Resolve(principal.Role, c.Query("mode"))
	if err != nil {
		return err
	}
	limit, err := view.ParseLimit(c.Query("limit"), h.defaultLimit)
	if err != nil {
		return err
	}
	ordering, err := view.ResolveOrdering(c.Query("order"), userOrderDefaults)
	if err != nil {
		return err
	}

	users, err := h.users.List(c.UserContext(), ordering, limit)
	if err != nil {
		return apperrors.MapError(err)
	}

	now := time.Now()
	items := make([]map[string]any, 0, len(users))
	for i := range users {
		projected, err := h.projectUser(c, &users[i], mode, now)
		if err != nil {
			return err
		}
		items = append(items, projected)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Register POST /users/. Open to anonymous callers; the response echoes the
// new account in the default shape.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	user, err := h.users.Register(c.UserContext(), service.RegisterInput{
		Username:            req.Username,
		Email:               req.Email,
		Password:            req.Password,
		ScreenName:          req.ScreenName,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PersonalInformation: req.PersonalInformation,
		HidePrivateInfo:     req.HidePrivateInfo,
	})
	if err != nil {
		return err
	}

	projected := view.ProjectUser(view.UserContext{User: user, Now: time.Now()}, view.UsersListCatalog.CreateDefault)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": projected})
}

// Get GET /users/{id|me}/.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	targetID, err := h.resolveTargetID(c, principal)
	if err != nil {
		return err
	}
	if err := h.selfGuard.Check(principal.User, principal.Role, &targetID); err != nil {
		return err
	}

	user, err := h.users.Get(c.UserContext(), targetID)
	if err != nil {
		return err
	}
	mode, err := view.UserDetailCatalog.Resolve(principal.Role, c.Query("mode"))
	if err != nil {
		return err
	}

	projected, err := h.projectUser(c, user, mode, time.Now())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": projected})
}

// Patch PATCH /users/{id|me}/.
func (h *UsersHandler) Patch(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	targetID, err := h.resolveTargetID(c, principal)
	if err != nil {
		return err
	}
	if err := h.selfGuard.Check(principal.User, principal.Role, &targetID); err != nil {
		return err
	}

	user, err := h.users.Get(c.UserContext(), targetID)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	updated, err := h.users.UpdateProfile(c.UserContext(), user, service.UpdateProfileInput{
		Password:            req.Password,
		ScreenName:          req.ScreenName,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PersonalInformation: req.PersonalInformation,
		HidePrivateInfo:     req.HidePrivateInfo,
	})
	if err != nil {
		return err
	}

	projected := view.ProjectUser(view.UserContext{User: updated, Now: time.Now()}, view.UserDetailCatalog.CreateDefault)
	return c.JSON(fiber.Map{"data": projected})
}

// Delete DELETE /users/{id|me}/. The account removal is deferred; the
// response only acknowledges the queued task.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	principal := auth.PrincipalFromContext(c)
	targetID, err := h.resolveTargetID(c, principal)
	if err != nil {
		return err
	}
	if err := h.selfGuard.Check(principal.User, principal.Role, &targetID); err != nil {
		return err
	}
	if _, err := h.users.Get(c.UserContext(), targetID); err != nil {
		return err
	}
	return acceptDeletion(c, h.queue, h.dispatcher, principal, worker.TaskKindUser, targetID)
}

// resolveTargetID maps the route parameter to a concrete user id. "me" and
// "0" are sentinels for the caller.
func (h *UsersHandler) resolveTargetID(c *fiber.Ctx, principal *auth.Principal) (int64, error) {
	raw := c.Params("id")
	if raw == "me" || raw == "0" {
		if principal.User == nil {
			return 0, apperrors.NewUnauthorized("authentication required to address your own account")
		}
		return principal.User.ID, nil
	}
	return parseID(c, "id")
}

// projectUser renders the user, loading their tickets when the shape
// embeds them.
func (h *UsersHandler) projectUser(c *fiber.Ctx, user *domain.User, mode view.Mode, now time.Time) (map[string]any, error) {
	ctx := view.UserContext{User: user, Now: now}
	if mode == view.ModeExpanded || mode == view.ModeFull {
		tickets, err := h.users.TicketsOf(c.UserContext(), user.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ctx.Tickets = tickets
	}
	return view.ProjectUser(ctx, mode), nil
}
