// Package web serves the sharebox HTTP API and pages on Fiber.
//
// Every route except the login page, the auth endpoint and the health
// check requires a session cookie issued by POST /api/auth. Store calls
// are made against the connection profile selected by the profile cookie,
// or the default settings when none is selected.
package web

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/netx"
	"github.com/dmitrijs2005/sharebox/internal/server/auth"
	"github.com/dmitrijs2005/sharebox/internal/server/objects"
	"github.com/dmitrijs2005/sharebox/internal/server/profiles"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ObjectService is the object operations the API exposes.
type ObjectService interface {
	UploadText(ctx context.Context, text string) (*objects.Object, error)
	UploadFile(ctx context.Context, f objects.FileUpload, overwrite bool, onProgress netx.ProgressFunc) (*objects.Object, error)
	Search(ctx context.Context, f objects.Filter) ([]objects.Object, error)
	Download(ctx context.Context, key string) (*objects.Download, error)
	PreviewText(ctx context.Context, key string) (string, error)
	Thumbnail(ctx context.Context, key string, width int) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ProfileService manages connection profiles.
type ProfileService interface {
	Create(ctx context.Context, in profiles.Input) (*profiles.View, error)
	Get(ctx context.Context, code string) (*profiles.View, error)
	List(ctx context.Context) ([]profiles.Summary, error)
	Update(ctx context.Context, code string, p profiles.Patch) (*profiles.View, error)
	Delete(ctx context.Context, code string) error
}

// RequestObserver records request metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	ObserveUpload(n int64)
}

// Options configures a Server.
type Options struct {
	Addr            string
	SessionSecret   []byte
	SecureCookies   bool
	AuthRateLimit   float64
	AuthRateBurst   int
	MaxUploadSize   int
	ShutdownTimeout time.Duration
}

type Server struct {
	opts     Options
	app      *fiber.App
	objects  ObjectService
	profiles ProfileService
	codes    *auth.CodeChecker
	limiter  *IPRateLimiter
	metrics  RequestObserver
	logger   logging.Logger
}

// NewServer builds the Fiber application. profs and m may be nil; without
// profs the profile routes are not mounted.
func NewServer(opts Options, objs ObjectService, profs ProfileService, codes *auth.CodeChecker, m RequestObserver, l logging.Logger) (*Server, error) {
	if len(opts.SessionSecret) == 0 {
		return nil, errors.New("session secret is empty")
	}
	if opts.AuthRateLimit <= 0 {
		opts.AuthRateLimit = 1
	}
	if opts.AuthRateBurst <= 0 {
		opts.AuthRateBurst = 5
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}

	logger := l.With("module", "http_server")
	s := &Server{
		opts:     opts,
		objects:  objs,
		profiles: profs,
		codes:    codes,
		limiter:  NewIPRateLimiter(opts.AuthRateLimit, opts.AuthRateBurst, logger),
		metrics:  m,
		logger:   logger,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "sharebox",
		BodyLimit:             opts.MaxUploadSize,
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.app.Use(requestID, s.accessLog, recover.New(), s.gate, profileFromCookie)

	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	s.app.Get("/login", s.loginPage)
	s.app.Get("/", s.indexPage)

	api := s.app.Group("/api")
	api.Post("/auth", s.limiter.Handler(), s.login)
	api.Post("/logout", s.logout)

	api.Get("/files", s.listFiles)
	api.Post("/files", s.uploadFile)
	api.Post("/texts", s.uploadText)
	// HEAD goes first: Get also answers HEAD requests.
	api.Head("/files/:key", s.headFile)
	api.Get("/files/:key", s.downloadFile)
	api.Get("/files/:key/text", s.previewText)
	api.Get("/files/:key/thumbnail", s.thumbnail)
	api.Delete("/files/:key", s.deleteFile)

	if s.profiles != nil {
		api.Get("/profiles", s.listProfiles)
		api.Post("/profiles", s.createProfile)
		api.Delete("/profiles/selection", s.clearSelection)
		api.Get("/profiles/:code", s.getProfile)
		api.Put("/profiles/:code", s.updateProfile)
		api.Delete("/profiles/:code", s.deleteProfile)
		api.Post("/profiles/:code/select", s.selectProfile)
	}
}

// App exposes the Fiber application, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "HTTP server listening", "addr", s.opts.Addr)
		errCh <- s.app.Listen(s.opts.Addr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Shutting down HTTP server")
		return s.app.ShutdownWithTimeout(s.opts.ShutdownTimeout)
	case err := <-errCh:
		return err
	}
}
