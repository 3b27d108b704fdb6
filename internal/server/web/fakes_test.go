package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/logging"
	"github.com/dmitrijs2005/sharebox/internal/netx"
	"github.com/dmitrijs2005/sharebox/internal/server/auth"
	"github.com/dmitrijs2005/sharebox/internal/server/objects"
	"github.com/dmitrijs2005/sharebox/internal/server/profiles"
	"github.com/stretchr/testify/require"
)

const testCode = "letmein"

var testSecret = []byte("test-session-secret")

type fakeObjects struct {
	mu      sync.Mutex
	lastCtx context.Context

	searchResp []objects.Object
	searchErr  error
	lastFilter objects.Filter

	textErr  error
	lastText string

	uploadErr     error
	lastUpload    objects.FileUpload
	lastBody      string
	lastOverwrite bool

	download    *objects.Download
	downloadErr error

	previewText string
	previewErr  error

	thumb     []byte
	thumbErr  error
	lastWidth int

	exists    bool
	existsErr error

	deleteErr  error
	lastDelete string
}

func (f *fakeObjects) seen(ctx context.Context) {
	f.mu.Lock()
	f.lastCtx = ctx
	f.mu.Unlock()
}

func (f *fakeObjects) UploadText(ctx context.Context, text string) (*objects.Object, error) {
	f.seen(ctx)
	f.lastText = text
	if f.textErr != nil {
		return nil, f.textErr
	}
	return &objects.Object{Key: "text-1.txt", Size: int64(len(text)), IsText: true, Preview: text}, nil
}

func (f *fakeObjects) UploadFile(ctx context.Context, up objects.FileUpload, overwrite bool, _ netx.ProgressFunc) (*objects.Object, error) {
	f.seen(ctx)
	f.lastUpload = up
	f.lastOverwrite = overwrite
	b, _ := io.ReadAll(up.Body)
	f.lastBody = string(b)
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &objects.Object{Key: up.Name, Size: up.Size}, nil
}

func (f *fakeObjects) Search(ctx context.Context, flt objects.Filter) ([]objects.Object, error) {
	f.seen(ctx)
	f.lastFilter = flt
	return f.searchResp, f.searchErr
}

func (f *fakeObjects) Download(ctx context.Context, _ string) (*objects.Download, error) {
	f.seen(ctx)
	return f.download, f.downloadErr
}

func (f *fakeObjects) PreviewText(ctx context.Context, _ string) (string, error) {
	f.seen(ctx)
	return f.previewText, f.previewErr
}

func (f *fakeObjects) Thumbnail(ctx context.Context, _ string, width int) ([]byte, error) {
	f.seen(ctx)
	f.lastWidth = width
	return f.thumb, f.thumbErr
}

func (f *fakeObjects) Exists(ctx context.Context, _ string) (bool, error) {
	f.seen(ctx)
	return f.exists, f.existsErr
}

func (f *fakeObjects) Delete(ctx context.Context, key string) error {
	f.seen(ctx)
	f.lastDelete = key
	return f.deleteErr
}

type fakeProfiles struct {
	views     map[string]*profiles.View
	createErr error
	lastInput profiles.Input
	lastPatch profiles.Patch
	deleted   []string
}

func newFakeProfiles(codes ...string) *fakeProfiles {
	f := &fakeProfiles{views: map[string]*profiles.View{}}
	for _, c := range codes {
		f.views[c] = &profiles.View{Code: c, Endpoint: "http://minio:9000", Region: "us-east-1", Bucket: "b-" + c}
	}
	return f
}

func (f *fakeProfiles) Create(_ context.Context, in profiles.Input) (*profiles.View, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	v := &profiles.View{Code: "NEWCODE1", Endpoint: in.Endpoint, Region: in.Region, Bucket: in.Bucket, AccessKey: in.AccessKey}
	f.views[v.Code] = v
	return v, nil
}

func (f *fakeProfiles) Get(_ context.Context, code string) (*profiles.View, error) {
	v, ok := f.views[code]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return v, nil
}

func (f *fakeProfiles) List(_ context.Context) ([]profiles.Summary, error) {
	var out []profiles.Summary
	for _, v := range f.views {
		out = append(out, profiles.Summary{Code: v.Code})
	}
	return out, nil
}

func (f *fakeProfiles) Update(_ context.Context, code string, p profiles.Patch) (*profiles.View, error) {
	f.lastPatch = p
	v, ok := f.views[code]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Bucket != nil {
		v.Bucket = *p.Bucket
	}
	return v, nil
}

func (f *fakeProfiles) Delete(_ context.Context, code string) error {
	if _, ok := f.views[code]; !ok {
		return common.ErrorNotFound
	}
	delete(f.views, code)
	f.deleted = append(f.deleted, code)
	return nil
}

type recordedRequest struct {
	method, route string
	status        int
}

type recordingObserver struct {
	mu       sync.Mutex
	requests []recordedRequest
	uploaded int64
}

func (r *recordingObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, recordedRequest{method, route, status})
}

func (r *recordingObserver) ObserveUpload(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploaded += n
}

func newTestServer(t *testing.T, objs ObjectService, profs ProfileService) *Server {
	t.Helper()
	return newTestServerWith(t, Options{}, objs, profs, nil)
}

func newTestServerWith(t *testing.T, opts Options, objs ObjectService, profs ProfileService, m RequestObserver) *Server {
	t.Helper()
	opts.SessionSecret = testSecret
	if opts.AuthRateLimit == 0 {
		opts.AuthRateLimit = 100
		opts.AuthRateBurst = 100
	}
	if opts.MaxUploadSize == 0 {
		opts.MaxUploadSize = 1 << 20
	}
	s, err := NewServer(opts, objs, profs, auth.NewCodeChecker(testCode, ""), m, logging.Nop())
	require.NoError(t, err)
	return s
}

func sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, _, err := auth.GenerateToken(testSecret, time.Hour)
	require.NoError(t, err)
	return &http.Cookie{Name: common.SessionCookieName, Value: token}
}

func do(t *testing.T, s *Server, req *http.Request) *http.Response {
	t.Helper()
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// authed sends req with a valid session cookie.
func authed(t *testing.T, s *Server, req *http.Request) *http.Response {
	t.Helper()
	req.AddCookie(sessionCookie(t))
	return do(t, s, req)
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req, _ := http.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Existing *objects.Object `json:"existing"`
}

func decode(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
