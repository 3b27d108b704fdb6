package web

import (
	"mime"
	"net/url"

	"github.com/dmitrijs2005/sharebox/internal/server/objects"
	"github.com/gofiber/fiber/v2"
)

type textRequest struct {
	Text string `json:"text" form:"text"`
}

func keyParam(c *fiber.Ctx) (string, error) {
	k, err := url.PathUnescape(c.Params("key"))
	if err != nil || k == "" {
		return "", badRequest("invalid key")
	}
	return k, nil
}

func (s *Server) listFiles(c *fiber.Ctx) error {
	kind, err := objects.ParseKind(c.Query("kind"))
	if err != nil {
		return err
	}
	list, err := s.objects.Search(c.UserContext(), objects.Filter{Query: c.Query("q"), Kind: kind})
	if err != nil {
		return err
	}
	if list == nil {
		list = []objects.Object{}
	}
	return jsonOK(c, fiber.StatusOK, list)
}

func (s *Server) uploadText(c *fiber.Ctx) error {
	var req textRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest("malformed body")
	}
	o, err := s.objects.UploadText(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	s.observeUpload(o.Size)
	return jsonOK(c, fiber.StatusCreated, o)
}

func (s *Server) uploadFile(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest("file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()

	up := objects.FileUpload{
		Name:        fh.Filename,
		Body:        f,
		Size:        fh.Size,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
	}
	o, err := s.objects.UploadFile(c.UserContext(), up, c.QueryBool("overwrite"), nil)
	if err != nil {
		return err
	}
	s.observeUpload(o.Size)
	return jsonOK(c, fiber.StatusCreated, o)
}

func (s *Server) observeUpload(n int64) {
	if s.metrics != nil {
		s.metrics.ObserveUpload(n)
	}
}

func (s *Server) headFile(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	ok, err := s.objects.Exists(c.UserContext(), key)
	if err != nil {
		return err
	}
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (s *Server) downloadFile(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	d, err := s.objects.Download(c.UserContext(), key)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentDisposition, attachment(d.Filename))
	c.Set(fiber.HeaderContentType, d.ContentType)
	size := int(d.Size)
	if size <= 0 {
		size = -1
	}
	return c.SendStream(d.Body, size)
}

func (s *Server) previewText(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	text, err := s.objects.PreviewText(c.UserContext(), key)
	if err != nil {
		return err
	}
	return jsonOK(c, fiber.StatusOK, fiber.Map{"key": key, "text": text})
}

func (s *Server) thumbnail(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	b, err := s.objects.Thumbnail(c.UserContext(), key, c.QueryInt("w"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(b)
}

func (s *Server) deleteFile(c *fiber.Ctx) error {
	key, err := keyParam(c)
	if err != nil {
		return err
	}
	if err := s.objects.Delete(c.UserContext(), key); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// attachment formats a Content-Disposition value that round-trips through
// mime.ParseMediaType. Non-ASCII names use the RFC 2231 filename* form.
func attachment(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
