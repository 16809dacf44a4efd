package handlers

import "github.com/gofiber/fiber/v2"

// InfoHandler serves the static navigation documents.
type InfoHandler struct {
	serviceName string
	version     string
}

// NewInfoHandler returns a new handler instance.
func NewInfoHandler(serviceName, version string) *InfoHandler {
	return &InfoHandler{serviceName: serviceName, version: version}
}

// Root GET / returns the API navigation document.
func (h *InfoHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": h.serviceName,
		"version": h.version,
		"endpoints": fiber.Map{
			"tokens": fiber.Map{
				"obtain":  "POST /tokens/obtain/",
				"refresh": "POST /tokens/refresh/",
			},
			"users": fiber.Map{
				"list":     "GET /users/",
				"register": "POST /users/",
				"detail":   "GET /users/{id}/ (or /users/me/)",
			},
			"tickets": fiber.Map{
				"list":     "GET /tickets/?user_id=<id|0>",
				"create":   "POST /tickets/",
				"detail":   "GET /tickets/{id}/",
				"messages": "GET|POST /tickets/{id}/messages/",
			},
			"query_params": fiber.Map{
				"mode":  "output shape (basic|default|expanded|full, role-gated)",
				"limit": "positive integer cap on list size",
				"order": "field to promote to primary sort key",
			},
		},
	})
}

// UsersInfo is served to anonymous callers of GET /users/ instead of the
// listing: it documents how to register and authenticate.
func UsersInfo(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"info": "authentication required to list users",
		"register": fiber.Map{
			"method": "POST",
			"path":   "/users/",
			"fields": []string{
				"username", "email", "password",
				"screen_name", "first_name", "last_name",
				"personal_information", "hide_private_info",
			},
		},
		"authenticate": fiber.Map{
			"method": "POST",
			"path":   "/tokens/obtain/",
			"fields": []string{"email", "password"},
		},
	})
}
