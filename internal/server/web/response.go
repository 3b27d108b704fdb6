package web

import (
	"errors"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/objects"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"github.com/gofiber/fiber/v2"
)

func jsonOK(c *fiber.Ctx, status int, payload any) error {
	return c.Status(status).JSON(fiber.Map{"status": "ok", "data": payload})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": msg})
}

func badRequest(msg string) error {
	return fiber.NewError(fiber.StatusBadRequest, msg)
}

// errorHandler maps service errors onto HTTP statuses. Anything not
// recognised is logged and reported without detail.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return jsonError(c, fe.Code, fe.Message)
	}

	var ce *objects.ConflictError
	if errors.As(err, &ce) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":   "error",
			"message":  "object already exists",
			"existing": ce.Existing,
		})
	}

	switch {
	case errors.Is(err, common.ErrorUnknownProfile):
		c.Cookie(s.expired(common.ProfileCookieName))
		return jsonError(c, fiber.StatusBadRequest, "selected profile no longer exists, switched back to the default store")
	case errors.Is(err, common.ErrorValidation):
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return jsonError(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, common.ErrorConflict):
		return jsonError(c, fiber.StatusConflict, "already exists")
	case errors.Is(err, common.ErrorUnauthorized):
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrorMissingSetting):
		s.logger.Error(c.UserContext(), "server misconfigured", "error", err)
		return jsonError(c, fiber.StatusInternalServerError, "server configuration incomplete: "+err.Error())
	case storage.Classify(err) == storage.ClassUnavailable:
		s.logger.Warn(c.UserContext(), "object store unavailable", "error", err)
		return jsonError(c, fiber.StatusServiceUnavailable, "object store unavailable")
	}

	s.logger.Error(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	return jsonError(c, fiber.StatusInternalServerError, "internal server error")
}
