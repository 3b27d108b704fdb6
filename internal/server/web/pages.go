package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

var (
	//go:embed pages/login.html
	loginHTML []byte

	//go:embed pages/index.html
	indexHTML []byte
)

func (s *Server) loginPage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(loginHTML)
}

func (s *Server) indexPage(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(indexHTML)
}
