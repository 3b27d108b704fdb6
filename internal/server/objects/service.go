package objects

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/netx"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
	"golang.org/x/sync/errgroup"
)

// Store is the bucket-level API the service runs on. *storage.Client
// implements it.
type Store interface {
	List(ctx context.Context, prefix string) ([]storage.Object, error)
	Get(ctx context.Context, key string) (*storage.Content, error)
	Head(ctx context.Context, key string) (*storage.Object, error)
	Exists(ctx context.Context, key string) (bool, error)
	PutDirect(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error
	PutPresigned(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error
	Delete(ctx context.Context, key string) error
}

// Resolver returns the Store for the profile selected in ctx.
type Resolver interface {
	Store(ctx context.Context) (Store, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context) (Store, error)

func (f ResolverFunc) Store(ctx context.Context) (Store, error) { return f(ctx) }

// Upload modes.
const (
	ModePresigned = "presigned"
	ModeDirect    = "direct"
)

const (
	textContentType       = "text/plain; charset=utf-8"
	defaultPreviewWorkers = 8
	maxTextKeyAttempts    = 5
)

// FileUpload is a file to store. Body is rewound on retries.
type FileUpload struct {
	Name        string
	Body        io.ReadSeeker
	Size        int64
	ContentType string
}

// Download is an object body ready to be served. The caller closes Body.
type Download struct {
	Key         string
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

type Service struct {
	resolver       Resolver
	logger         logging.Logger
	mode           string
	keys           *KeyGenerator
	previewWorkers int
}

type Option func(*Service)

// WithUploadMode selects ModePresigned (default) or ModeDirect.
func WithUploadMode(mode string) Option {
	return func(s *Service) { s.mode = mode }
}

func WithKeyGenerator(g *KeyGenerator) Option {
	return func(s *Service) { s.keys = g }
}

// WithPreviewWorkers bounds concurrent preview fetches in List.
func WithPreviewWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.previewWorkers = n
		}
	}
}

func NewService(resolver Resolver, logger logging.Logger, opts ...Option) *Service {
	s := &Service{
		resolver:       resolver,
		logger:         logger,
		mode:           ModePresigned,
		keys:           NewKeyGenerator(),
		previewWorkers: defaultPreviewWorkers,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) put(ctx context.Context, st Store, key string, body io.ReadSeeker, size int64, contentType string, onProgress netx.ProgressFunc) error {
	if s.mode == ModeDirect {
		return st.PutDirect(ctx, key, body, size, contentType, onProgress)
	}
	return st.PutPresigned(ctx, key, body, size, contentType, onProgress)
}

// written returns the store's metadata for a key just written, falling
// back to local values if the store cannot be asked.
func (s *Service) written(ctx context.Context, st Store, key string, size int64) Object {
	o, err := st.Head(ctx, key)
	if err != nil {
		s.logger.Warn(ctx, "head after write failed", "key", key, "error", err)
		return Object{Key: key, Size: size, LastModified: time.Now().UTC(), IsText: IsTextKey(key)}
	}
	return fromStorage(*o)
}

// UploadText stores text under a fresh text key. Existing objects are
// never replaced.
func (s *Service) UploadText(ctx context.Context, text string) (*Object, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text: %w", common.ErrorValidation)
	}
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return nil, err
	}

	key, err := s.freeTextKey(ctx, st)
	if err != nil {
		return nil, err
	}

	body := strings.NewReader(text)
	if err := s.put(ctx, st, key, body, body.Size(), textContentType, nil); err != nil {
		return nil, err
	}
	o := s.written(ctx, st, key, int64(len(text)))
	o.Preview = preview(text)

	s.logger.Info(ctx, "text uploaded", "key", key, "size", o.Size)
	return &o, nil
}

// freeTextKey skips keys already taken, e.g. by another server instance.
func (s *Service) freeTextKey(ctx context.Context, st Store) (string, error) {
	for i := 0; i < maxTextKeyAttempts; i++ {
		key := s.keys.Next()
		ok, err := st.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !ok {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free text key: %w", common.ErrorConflict)
}

// UploadFile stores f under its base name. Without overwrite an existing
// object of the same key yields *ConflictError and nothing is written.
func (s *Service) UploadFile(ctx context.Context, f FileUpload, overwrite bool, onProgress netx.ProgressFunc) (*Object, error) {
	key, err := FileKey(f.Name)
	if err != nil {
		return nil, err
	}
	if f.Body == nil {
		return nil, fmt.Errorf("missing file body: %w", common.ErrorValidation)
	}
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return nil, err
	}

	if !overwrite {
		existing, err := st.List(ctx, key)
		if err != nil {
			return nil, err
		}
		for _, o := range existing {
			if o.Key == key {
				return nil, &ConflictError{Existing: fromStorage(o)}
			}
		}
	}

	if err := s.put(ctx, st, key, f.Body, f.Size, f.ContentType, onProgress); err != nil {
		return nil, err
	}
	o := s.written(ctx, st, key, f.Size)

	s.logger.Info(ctx, "file uploaded", "key", key, "size", o.Size, "overwrite", overwrite)
	return &o, nil
}

// List returns every object, newest first. Text objects carry a preview;
// a preview that cannot be fetched is replaced by a placeholder.
func (s *Service) List(ctx context.Context) ([]Object, error) {
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := st.List(ctx, "")
	if err != nil {
		return nil, err
	}

	out := make([]Object, len(raw))
	var g errgroup.Group
	g.SetLimit(s.previewWorkers)
	for i, r := range raw {
		out[i] = fromStorage(r)
		if !out[i].IsText {
			continue
		}
		g.Go(func() error {
			p, err := s.fetchPreview(ctx, st, out[i].Key)
			if err != nil {
				s.logger.Warn(ctx, "preview failed", "key", out[i].Key, "error", err)
				p = common.PreviewUnavailable
			}
			out[i].Preview = p
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// the first PreviewLength runes always fit in 4 bytes each
const previewReadLimit = common.PreviewLength * 4

func (s *Service) fetchPreview(ctx context.Context, st Store, key string) (string, error) {
	c, err := st.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer c.Body.Close()

	b, err := io.ReadAll(io.LimitReader(c.Body, previewReadLimit))
	if err != nil {
		return "", err
	}
	return preview(string(b)), nil
}

func preview(text string) string {
	n := 0
	for i := range text {
		if n == common.PreviewLength {
			return text[:i]
		}
		n++
	}
	return text
}

// Search lists objects and keeps those matching f.
func (s *Service) Search(ctx context.Context, f Filter) ([]Object, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Object, 0, len(all))
	for _, o := range all {
		if f.match(o) {
			out = append(out, o)
		}
	}
	return out, nil
}

const downloadTimeLayout = "20060102-150405"

// Download opens key for reading. Text messages are named
// message-<timestamp>.txt; files keep their key.
func (s *Service) Download(ctx context.Context, key string) (*Download, error) {
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return nil, err
	}
	c, err := st.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	d := &Download{
		Key:         key,
		Filename:    key,
		ContentType: c.ContentType,
		Size:        c.Size,
		Body:        c.Body,
	}
	if IsTextKey(key) {
		d.Filename = "message-" + c.LastModified.UTC().Format(downloadTimeLayout) + ".txt"
		d.ContentType = textContentType
	}
	if d.ContentType == "" {
		d.ContentType = "application/octet-stream"
	}
	return d, nil
}

// PreviewText returns the whole content of key decoded as text.
func (s *Service) PreviewText(ctx context.Context, key string) (string, error) {
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return "", err
	}
	c, err := st.Get(ctx, key)
	if err != nil {
		return "", err
	}
	defer c.Body.Close()

	b, err := io.ReadAll(c.Body)
	if err != nil {
		return "", fmt.Errorf("read %q: %w", key, err)
	}
	return strings.ToValidUTF8(string(b), "�"), nil
}

// Exists reports whether key is present.
func (s *Service) Exists(ctx context.Context, key string) (bool, error) {
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return false, err
	}
	return st.Exists(ctx, key)
}

// Delete removes key. A missing key is common.ErrorNotFound.
func (s *Service) Delete(ctx context.Context, key string) error {
	st, err := s.resolver.Store(ctx)
	if err != nil {
		return err
	}
	ok, err := st.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("object %q: %w", key, common.ErrorNotFound)
	}
	if err := st.Delete(ctx, key); err != nil {
		return err
	}
	s.logger.Info(ctx, "object deleted", "key", key)
	return nil
}
