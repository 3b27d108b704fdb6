package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/client/models"
	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/netx"
)

// HTTPClient implements API against a sharebox server. The session cookie
// lives in the client's jar.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
}

// NewHTTPClient returns a client for the server at baseURL. timeout bounds
// each call except uploads and download bodies; zero means no limit.
func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &HTTPClient{
		baseURL: u.String(),
		http: &http.Client{
			Jar: jar,
			// the gate redirects to /login; that means the session is gone
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout: timeout,
	}, nil
}

type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Message  string          `json:"message"`
	Existing *models.Object  `json:"existing"`
}

// endpoint joins the base URL with an already escaped path.
func (c *HTTPClient) endpoint(path string, query url.Values) string {
	s := c.baseURL + path
	if len(query) > 0 {
		s += "?" + query.Encode()
	}
	return s
}

func fileEndpoint(key, suffix string) string {
	return "/api/files/" + url.PathEscape(key) + suffix
}

func (c *HTTPClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusFound || resp.StatusCode == http.StatusSeeOther {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	return resp, nil
}

func (c *HTTPClient) call(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	var e envelope
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&e); err != nil && resp.StatusCode < 400 {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 400 {
		return statusError(resp.StatusCode, e)
	}
	if out != nil && len(e.Data) > 0 {
		if err := json.Unmarshal(e.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func statusError(status int, e envelope) error {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(status)
	}
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", msg, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", msg, common.ErrorNotFound)
	case http.StatusConflict:
		if e.Existing != nil {
			return &ConflictError{Existing: *e.Existing}
		}
		return fmt.Errorf("%s: %w", msg, common.ErrorConflict)
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", msg, ErrUnavailable)
	}
	return &APIError{StatusCode: status, Message: msg}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/healthz", nil), nil)
	if err != nil {
		return err
	}
	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

// Login trades the access code for a session cookie.
func (c *HTTPClient) Login(ctx context.Context, code string) error {
	return c.call(ctx, http.MethodPost, "/api/auth", nil, map[string]string{"code": code}, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/logout", nil, nil, nil)
}

// List returns the objects matching query, newest first. An empty query
// lists everything.
func (c *HTTPClient) List(ctx context.Context, query string) ([]models.Object, error) {
	var q url.Values
	if query != "" {
		q = url.Values{"q": {query}}
	}
	var out []models.Object
	if err := c.call(ctx, http.MethodGet, "/api/files", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) UploadText(ctx context.Context, text string) (*models.Object, error) {
	var o models.Object
	if err := c.call(ctx, http.MethodPost, "/api/texts", nil, map[string]string{"text": text}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UploadFile streams the file at path as a multipart form. onProgress sees
// the file bytes only.
func (c *HTTPClient) UploadFile(ctx context.Context, path string, overwrite bool, onProgress netx.ProgressFunc) (*models.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if _, err := mw.CreateFormFile("file", filepath.Base(path)); err != nil {
		return nil, err
	}
	head := bytes.Clone(buf.Bytes())
	buf.Reset()
	if err := mw.Close(); err != nil {
		return nil, err
	}
	tail := buf.Bytes()

	body := io.MultiReader(
		bytes.NewReader(head),
		netx.NewProgressReader(f, fi.Size(), onProgress),
		bytes.NewReader(tail),
	)

	var q url.Values
	if overwrite {
		q = url.Values{"overwrite": {"true"}}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/api/files", q), body)
	if err != nil {
		return nil, err
	}
	req.ContentLength = int64(len(head)) + fi.Size() + int64(len(tail))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	var o models.Object
	if err := decodeResponse(resp, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Download opens key. The filename is the one the server suggests.
func (c *HTTPClient) Download(ctx context.Context, key string) (*Download, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(fileEndpoint(key, ""), nil), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeResponse(resp, nil)
	}

	name := key
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}
	return &Download{Filename: name, Size: resp.ContentLength, Body: resp.Body}, nil
}

// Text returns the full content of key as text.
func (c *HTTPClient) Text(ctx context.Context, key string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	if err := c.call(ctx, http.MethodGet, fileEndpoint(key, "/text"), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

func (c *HTTPClient) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.endpoint(fileEndpoint(key, ""), nil), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.send(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, statusError(resp.StatusCode, envelope{})
}

func (c *HTTPClient) Delete(ctx context.Context, key string) error {
	return c.call(ctx, http.MethodDelete, fileEndpoint(key, ""), nil, nil, nil)
}
