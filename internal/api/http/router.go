package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-api/internal/api/http/handlers"
	"github.com/spec-kit/support-api/internal/auth"
	apperrors "github.com/spec-kit/support-api/pkg/util"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Info           *handlers.InfoHandler
	Tokens         *handlers.TokensHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	Messages       *handlers.MessagesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. The app runs with StrictRouting, so the
// trailing slashes below are significant; the fallthrough handler hints at
// the slashed route when a caller drops it.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Info.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/tokens/obtain/", cfg.Tokens.Obtain)
	app.Post("/tokens/refresh/", cfg.Tokens.Refresh)

	authed := app.Group("", cfg.AuthMiddleware.Handle)

	authed.Get("/users/", cfg.Users.List)
	authed.Post("/users/", cfg.Users.Register)
	authed.Get("/users/:id/", cfg.Users.Get)
	authed.Patch("/users/:id/", cfg.Users.Patch)
	authed.Delete("/users/:id/", cfg.Users.Delete)

	authed.Get("/tickets/", cfg.Tickets.List)
	authed.Post("/tickets/", auth.RequireAuthenticated(), cfg.Tickets.Create)
	authed.Get("/tickets/:id/", cfg.Tickets.Get)
	authed.Patch("/tickets/:id/", cfg.Tickets.Patch)
	authed.Delete("/tickets/:id/", cfg.Tickets.Delete)

	authed.Get("/tickets/:id/messages/", cfg.Messages.List)
	authed.Post("/tickets/:id/messages/", auth.RequireAuthenticated(), cfg.Messages.Append)
	authed.Get("/tickets/:id/messages/:message_id/", cfg.Messages.Get)
	authed.Patch("/tickets/:id/messages/:message_id/", cfg.Messages.Patch)
	authed.Delete("/tickets/:id/messages/:message_id/", cfg.Messages.Delete)

	app.Use(notFoundHandler(app))
}

// notFoundHandler renders the fallthrough errors. A path that only misses
// its trailing slash gets the 404 hint; a known path reached with a verb no
// route serves gets the distinct 405, so unrecognized methods never
// masquerade as missing resources.
func notFoundHandler(app *fiber.App) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !strings.HasSuffix(path, "/") && routeExists(app, c.Method(), path+"/") {
			message := "route not found; did you mean " + path + "/ ?"
			return apperrors.NewDomainError("NOT_FOUND", message, fiber.StatusNotFound, nil)
		}
		if pathExists(app, path) {
			return apperrors.NewMethodNotRecognized(c.Method())
		}
		return apperrors.NewDomainError("NOT_FOUND", "route not found", fiber.StatusNotFound, nil)
	}
}

// pathExists reports whether any route serves the path under some verb,
// accepting the slashed variant as well.
func pathExists(app *fiber.App, path string) bool {
	slashed := path
	if !strings.HasSuffix(slashed, "/") {
		slashed += "/"
	}
	for _, route := range app.GetRoutes() {
		if patternMatches(route.Path, path) || patternMatches(route.Path, slashed) {
			return true
		}
	}
	return false
}

func routeExists(app *fiber.App, method, path string) bool {
	for _, route := range app.GetRoutes() {
		if route.Method != method {
			continue
		}
		if patternMatches(route.Path, path) {
			return true
		}
	}
	return false
}

// patternMatches compares a registered route pattern against a concrete
// path, treating :param segments as wildcards.
func patternMatches(pattern, path string) bool {
	patternParts := strings.Split(strings.TrimSuffix(pattern, "/"), "/")
	pathParts := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if strings.HasSuffix(pattern, "/") != strings.HasSuffix(path, "/") {
		return false
	}
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i := range patternParts {
		if strings.HasPrefix(patternParts[i], ":") {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		if patternParts[i] != pathParts[i] {
			return false
		}
	}
	return true
}
