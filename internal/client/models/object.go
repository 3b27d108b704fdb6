// Package models holds the data shapes the CLI exchanges with the server.
package models

import "time"

// Object is one stored item as listed by the server.
type Object struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	ETag         string    `json:"etag,omitempty"`
	IsText       bool      `json:"is_text"`
	Preview      string    `json:"preview,omitempty"`
}
