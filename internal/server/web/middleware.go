package web

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/server/auth"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// paths reachable without a session
var publicPaths = map[string]bool{
	"/api/auth": true,
	"/login":    true,
	"/healthz":  true,
}

func requestID(c *fiber.Ctx) error {
	id := uuid.NewString()
	c.Set(common.RequestIDHeaderName, id)
	c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
	return c.Next()
}

// accessLog resolves chain errors through the error handler so that the
// logged and counted status is the one sent.
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	if err := c.Next(); err != nil {
		if herr := c.App().ErrorHandler(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	d := time.Since(start)
	status := c.Response().StatusCode()
	route := c.Route().Path
	if s.metrics != nil {
		s.metrics.ObserveRequest(c.Method(), route, status, d)
	}
	s.logger.Info(c.UserContext(), "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", d,
		"ip", c.IP(),
	)
	return nil
}

// gate sends requests without a valid session to the login page.
func (s *Server) gate(c *fiber.Ctx) error {
	p := c.Path()
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if publicPaths[p] {
		return c.Next()
	}

	token := c.Cookies(common.SessionCookieName)
	if token == "" {
		return c.Redirect("/login", fiber.StatusFound)
	}
	if _, err := auth.ParseToken(token, s.opts.SessionSecret); err != nil {
		s.logger.Debug(c.UserContext(), "session rejected", "error", err)
		return c.Redirect("/login", fiber.StatusFound)
	}
	return c.Next()
}

func profileFromCookie(c *fiber.Ctx) error {
	if code := c.Cookies(common.ProfileCookieName); code != "" {
		c.SetUserContext(storage.WithProfile(c.UserContext(), code))
	}
	return c.Next()
}
