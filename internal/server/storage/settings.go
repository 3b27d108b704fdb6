// Package storage wraps an S3-compatible object store: client construction
// from settings, a per-profile client provider, one-to-one object
// operations and the clock-skew retry policy they share.
package storage

import (
	"fmt"

	"github.com/dmitrijs2005/sharebox/internal/common"
)

// Settings locate and authenticate one bucket.
type Settings struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// Validate reports the first absent setting as common.ErrorMissingSetting.
func (s Settings) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"endpoint", s.Endpoint},
		{"region", s.Region},
		{"access key", s.AccessKey},
		{"secret key", s.SecretKey},
		{"bucket", s.Bucket},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("store %s not configured: %w", f.name, common.ErrorMissingSetting)
		}
	}
	return nil
}
