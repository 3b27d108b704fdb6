package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/sharebox/internal/client/client"
	"github.com/dmitrijs2005/sharebox/internal/client/config"
	"github.com/dmitrijs2005/sharebox/internal/client/models"
	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/netx"
)

type uploadCall struct {
	path      string
	overwrite bool
}

type fakeAPI struct {
	mu sync.Mutex

	code     string
	loginErr error
	pingErr  error

	lists   [][]models.Object // consumed one per List call, the last one repeats
	listErr error
	queries []string

	texts   []string
	uploads []uploadCall
	// uploadErrs are returned by successive UploadFile calls before succeeding.
	uploadErrs []error

	files     map[string]string
	textBody  map[string]string
	deleted   []string
	opErr     error
	loggedOut bool
}

func (f *fakeAPI) Ping(context.Context) error { return f.pingErr }

func (f *fakeAPI) Login(_ context.Context, code string) error {
	if f.loginErr != nil {
		return f.loginErr
	}
	if code != f.code {
		return client.ErrUnauthorized
	}
	return nil
}

func (f *fakeAPI) Logout(context.Context) error {
	f.loggedOut = true
	return f.opErr
}

func (f *fakeAPI) List(_ context.Context, query string) ([]models.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if len(f.lists) == 0 {
		return nil, nil
	}
	l := f.lists[0]
	if len(f.lists) > 1 {
		f.lists = f.lists[1:]
	}
	return l, nil
}

func (f *fakeAPI) UploadText(_ context.Context, text string) (*models.Object, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	f.texts = append(f.texts, text)
	return &models.Object{Key: "text-1.txt", Size: int64(len(text)), IsText: true}, nil
}

func (f *fakeAPI) UploadFile(_ context.Context, path string, overwrite bool, onProgress netx.ProgressFunc) (*models.Object, error) {
	f.uploads = append(f.uploads, uploadCall{path: path, overwrite: overwrite})
	if len(f.uploadErrs) > 0 {
		err := f.uploadErrs[0]
		f.uploadErrs = f.uploadErrs[1:]
		return nil, err
	}
	if onProgress != nil {
		onProgress(5, 10)
		onProgress(10, 10)
	}
	return &models.Object{Key: "report.txt", Size: 10}, nil
}

func (f *fakeAPI) Download(_ context.Context, key string) (*client.Download, error) {
	if f.opErr != nil {
		return nil, f.opErr
	}
	body, ok := f.files[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &client.Download{Filename: key, Size: int64(len(body)), Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeAPI) Text(_ context.Context, key string) (string, error) {
	if f.opErr != nil {
		return "", f.opErr
	}
	return f.textBody[key], nil
}

func (f *fakeAPI) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.files[key]
	return ok, nil
}

func (f *fakeAPI) Delete(_ context.Context, key string) error {
	if f.opErr != nil {
		return f.opErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}

// safeBuffer lets tests read what the watcher goroutine writes.
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, api *fakeAPI, input string) (*App, *safeBuffer) {
	t.Helper()
	out := &safeBuffer{}
	a := &App{
		config: &config.Config{DownloadDir: t.TempDir()},
		api:    api,
		reader: bufio.NewReader(strings.NewReader(input)),
		out:    out,
		mode:   ModeOnline,
	}
	a.loggedIn.Store(true)
	return a, out
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
