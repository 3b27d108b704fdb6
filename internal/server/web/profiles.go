package web

import (
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/profiles"
	"github.com/gofiber/fiber/v2"
)

func (s *Server) listProfiles(c *fiber.Ctx) error {
	list, err := s.profiles.List(c.UserContext())
	if err != nil {
		return err
	}
	if list == nil {
		list = []profiles.Summary{}
	}
	return jsonOK(c, fiber.StatusOK, list)
}

func (s *Server) createProfile(c *fiber.Ctx) error {
	var in profiles.Input
	if err := c.BodyParser(&in); err != nil {
		return badRequest("malformed body")
	}
	v, err := s.profiles.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return jsonOK(c, fiber.StatusCreated, v)
}

func (s *Server) getProfile(c *fiber.Ctx) error {
	v, err := s.profiles.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return jsonOK(c, fiber.StatusOK, v)
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var p profiles.Patch
	if err := c.BodyParser(&p); err != nil {
		return badRequest("malformed body")
	}
	v, err := s.profiles.Update(c.UserContext(), c.Params("code"), p)
	if err != nil {
		return err
	}
	return jsonOK(c, fiber.StatusOK, v)
}

func (s *Server) deleteProfile(c *fiber.Ctx) error {
	code := c.Params("code")
	if err := s.profiles.Delete(c.UserContext(), code); err != nil {
		return err
	}
	if c.Cookies(common.ProfileCookieName) == code {
		c.Cookie(s.expired(common.ProfileCookieName))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// selectProfile points later requests from this browser at the profile's
// store.
func (s *Server) selectProfile(c *fiber.Ctx) error {
	v, err := s.profiles.Get(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	c.Cookie(s.cookie(common.ProfileCookieName, v.Code, time.Now().Add(common.SessionLifetime)))
	return jsonOK(c, fiber.StatusOK, fiber.Map{"profile": v.Code})
}

func (s *Server) clearSelection(c *fiber.Ctx) error {
	c.Cookie(s.expired(common.ProfileCookieName))
	return c.SendStatus(fiber.StatusNoContent)
}
