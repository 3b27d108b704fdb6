package web

import (
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/auth"
	"github.com/gofiber/fiber/v2"
)

type authRequest struct {
	Code string `json:"code" form:"code"`
}

func (s *Server) login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if !s.codes.Configured() {
		s.logger.Error(ctx, "access code is not configured")
		return jsonError(c, fiber.StatusInternalServerError, "server configuration incomplete: access code not set")
	}

	var req authRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return badRequest("access code required")
	}
	if !s.codes.Check(req.Code) {
		s.logger.Warn(ctx, "wrong access code", "ip", clientIP(c))
		return jsonError(c, fiber.StatusUnauthorized, "invalid access code")
	}

	token, claims, err := auth.GenerateToken(s.opts.SessionSecret, common.SessionLifetime)
	if err != nil {
		return err
	}
	c.Cookie(s.cookie(common.SessionCookieName, token, claims.ExpiresAt.Time))
	s.logger.Info(ctx, "session started", "sid", claims.SessionID)
	return jsonOK(c, fiber.StatusOK, fiber.Map{"expires_at": claims.ExpiresAt.Time})
}

func (s *Server) logout(c *fiber.Ctx) error {
	c.Cookie(s.expired(common.SessionCookieName))
	return jsonOK(c, fiber.StatusOK, nil)
}

func (s *Server) cookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (s *Server) expired(name string) *fiber.Cookie {
	return s.cookie(name, "", time.Unix(0, 0))
}
