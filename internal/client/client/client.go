package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/sharebox/internal/client/models"
	"github.com/dmitrijs2005/sharebox/internal/netx"
)

// API is the server surface the CLI uses.
type API interface {
	Ping(ctx context.Context) error
	Login(ctx context.Context, code string) error
	Logout(ctx context.Context) error
	List(ctx context.Context, query string) ([]models.Object, error)
	UploadText(ctx context.Context, text string) (*models.Object, error)
	UploadFile(ctx context.Context, path string, overwrite bool, onProgress netx.ProgressFunc) (*models.Object, error)
	Download(ctx context.Context, key string) (*Download, error)
	Text(ctx context.Context, key string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Download is an open object body. The caller closes Body.
type Download struct {
	Filename string
	Size     int64
	Body     io.ReadCloser
}
