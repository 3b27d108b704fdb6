// Package objects implements the sharebox operations over a bucket: text
// and file uploads, listing with previews, search, download, thumbnails
// and deletion.
package objects

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dmitrijs2005/sharebox/internal/common"
	"github.com/dmitrijs2005/sharebox/internal/server/storage"
)

// Object is a stored object as seen by clients.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
	IsText       bool      `json:"is_text"`
	Preview      string    `json:"preview,omitempty"`
}

// IsTextKey reports whether key names an inline text message.
func IsTextKey(key string) bool {
	return strings.HasPrefix(key, common.TextKeyPrefix)
}

func fromStorage(o storage.Object) Object {
	return Object{
		Key:          o.Key,
		Size:         o.Size,
		LastModified: o.LastModified,
		ETag:         o.ETag,
		IsText:       IsTextKey(o.Key),
	}
}

// ConflictError is returned when an upload would replace an existing
// object and overwrite was not requested.
type ConflictError struct {
	Existing Object
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("object %q already exists", e.Existing.Key)
}

// Is makes ConflictError match common.ErrorConflict.
func (e *ConflictError) Is(target error) bool {
	return target == common.ErrorConflict
}

// FileKey reduces a client-supplied filename to the key it is stored
// under: its base name, with either slash treated as a separator.
func FileKey(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	key := path.Base(name)
	switch key {
	case "", ".", "..", "/":
		return "", fmt.Errorf("invalid file name %q: %w", name, common.ErrorValidation)
	}
	return key, nil
}

// Kind narrows a search to one category of objects.
type Kind string

const (
	KindAll     Kind = "all"
	KindMessage Kind = "message"
	KindFile    Kind = "file"
	KindMedia   Kind = "media"
)

// ParseKind accepts the empty string as KindAll.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case "":
		return KindAll, nil
	case KindAll, KindMessage, KindFile, KindMedia:
		return k, nil
	default:
		return "", fmt.Errorf("unknown kind %q: %w", s, common.ErrorValidation)
	}
}

var mediaExt = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "svg": true, "bmp": true,
	"mp4": true, "avi": true, "mov": true,
	"mp3": true, "wav": true,
}

// imaging can decode these
var imageExt = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "bmp": true, "tif": true, "tiff": true,
}

func ext(key string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
}

// KindOf classifies key. Text messages are never media.
func KindOf(key string) Kind {
	switch {
	case IsTextKey(key):
		return KindMessage
	case mediaExt[ext(key)]:
		return KindMedia
	default:
		return KindFile
	}
}

// Filter selects objects in Search. An empty Query matches everything.
type Filter struct {
	Query string
	Kind  Kind
}

func (f Filter) match(o Object) bool {
	if f.Kind != "" && f.Kind != KindAll && KindOf(o.Key) != f.Kind {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	return strings.Contains(strings.ToLower(o.Key), q) ||
		strings.Contains(strings.ToLower(o.Preview), q)
}
