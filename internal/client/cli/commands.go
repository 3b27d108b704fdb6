package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/sharebox/internal/client/client"
	"github.com/dmitrijs2005/sharebox/internal/client/models"
	"github.com/dmitrijs2005/sharebox/internal/filex"
	"github.com/dmitrijs2005/sharebox/internal/netx"
)

// List prints every stored object, newest first.
func (a *App) List(ctx context.Context) error {
	return a.Search(ctx, "")
}

// Search prints the objects whose key or text preview contains query.
func (a *App) Search(ctx context.Context, query string) error {
	list, err := a.api.List(ctx, query)
	if err != nil {
		return a.checkSession(err)
	}
	if len(list) == 0 {
		a.println("No objects")
		return nil
	}
	for _, o := range list {
		a.println(formatObject(o))
	}
	return nil
}

// Text uploads text as a snippet. With no text the user is prompted for
// several lines.
func (a *App) Text(ctx context.Context, text string) error {
	if text == "" {
		var err error
		text, err = getMultiline(a.reader, "Enter text", a.out)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(text) == "" {
		a.println("Nothing to upload")
		return nil
	}

	o, err := a.api.UploadText(ctx, text)
	if err != nil {
		return a.checkSession(err)
	}
	a.printf("Uploaded as %s\n", o.Key)
	return nil
}

// Upload sends the file at path. When an object with the same name exists
// and force is not set, the user is asked before it is replaced.
func (a *App) Upload(ctx context.Context, path string, force bool) error {
	name := filepath.Base(path)

	o, err := a.api.UploadFile(ctx, path, force, a.progress(name))
	var conflict *client.ConflictError
	if errors.As(err, &conflict) {
		prompt := fmt.Sprintf("%s already exists (%s, modified %s). Overwrite?",
			conflict.Existing.Key, formatSize(conflict.Existing.Size), formatTime(conflict.Existing))
		ok, perr := confirm(a.reader, prompt, a.out)
		if perr != nil {
			return perr
		}
		if !ok {
			a.println("Upload cancelled")
			return nil
		}
		o, err = a.api.UploadFile(ctx, path, true, a.progress(name))
	}
	if err != nil {
		return a.checkSession(err)
	}

	a.printf("Uploaded %s (%s)\n", o.Key, formatSize(o.Size))
	return nil
}

// Get downloads key. dest may be empty (the configured download directory),
// an existing directory or a file path.
func (a *App) Get(ctx context.Context, key, dest string) error {
	d, err := a.api.Download(ctx, key)
	if err != nil {
		return a.checkSession(err)
	}
	defer d.Body.Close()

	path, err := filex.Destination(dest, a.config.DownloadDir, d.Filename)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := io.Copy(f, d.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("download %s: %w", key, err)
	}

	a.printf("Saved %s (%s)\n", path, formatSize(n))
	return nil
}

// Cat prints the full content of a text object.
func (a *App) Cat(ctx context.Context, key string) error {
	text, err := a.api.Text(ctx, key)
	if err != nil {
		return a.checkSession(err)
	}
	a.println(text)
	return nil
}

func (a *App) Remove(ctx context.Context, key string) error {
	if err := a.api.Delete(ctx, key); err != nil {
		return a.checkSession(err)
	}
	a.printf("Deleted %s\n", key)
	return nil
}

// progress returns a callback printing the upload percentage in place.
func (a *App) progress(name string) netx.ProgressFunc {
	last := -1
	return func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		if pct == last {
			return
		}
		last = pct
		a.printf("\rUploading %s: %3d%%", name, pct)
		if sent >= total {
			a.println()
		}
	}
}

func formatObject(o models.Object) string {
	line := fmt.Sprintf("%-40s %10s  %s", o.Key, formatSize(o.Size), formatTime(o))
	if o.IsText && o.Preview != "" {
		line += "  " + oneLine(o.Preview, 60)
	}
	return line
}

func formatTime(o models.Object) string {
	if o.LastModified.IsZero() {
		return "-"
	}
	return o.LastModified.Local().Format("2006-01-02 15:04")
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// oneLine flattens s and cuts it to at most n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
