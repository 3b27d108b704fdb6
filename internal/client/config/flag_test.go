package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	// Test cases
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "Test1 OK", args: []string{"-a", "http://127.0.0.1:9090", "-i", "10", "-d", "/tmp/dl"}, expectErr: false,
			expected: &Config{ServerURL: "http://127.0.0.1:9090", PollInterval: 10 * time.Second, DownloadDir: "/tmp/dl"}},
		{name: "Test2 unrelated flags ignored", args: []string{"-x", "1", "-a", "http://h"}, expectErr: false,
			expected: &Config{ServerURL: "http://h"}},
		{name: "Test3 incorrect poll interval", args: []string{"-a", "http://127.0.0.1:9090", "-i", "abc"}, expectErr: true, expected: &Config{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(config, tt.expected))
		})
	}
}
