package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		shouldSet bool
		wantPanic bool
	}{
		{
			name:      "variable set",
			key:       "TEST_VAR",
			value:     "test_value",
			shouldSet: true,
			wantPanic: false,
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			shouldSet: false,
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := requireEnv(tt.key)
			if !tt.wantPanic && result != tt.value {
				t.Errorf("requireEnv() = %v, want %v", result, tt.value)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{
			name:     "true value",
			key:      "TEST_BOOL",
			value:    "true",
			def:      false,
			expected: true,
		},
		{
			name:     "false value",
			key:      "TEST_BOOL_FALSE",
			value:    "false",
			def:      true,
			expected: false,
		},
		{
			name:     "invalid value uses default",
			key:      "TEST_BOOL_INVALID",
			value:    "invalid",
			def:      true,
			expected: true,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_BOOL_MISSING",
			value:    "",
			def:      false,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				if err := os.Setenv(tt.key, tt.value); err != nil {
					t.Fatalf("failed to set env var: %v", err)
				}
				defer func() {
					if err := os.Unsetenv(tt.key); err != nil {
						t.Errorf("failed to unset env var: %v", err)
					}
				}()
			}

			result := mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "single", input: "a", expected: []string{"a"}},
		{name: "spaces and quotes", input: ` "a" , 'b',, c `, expected: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := splitAndTrim(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("splitAndTrim() = %v, want %v", result, tt.expected)
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("splitAndTrim()[%d] = %v, want %v", i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	raw := map[string]any{
		"log_level": "debug",
		"redis": map[string]any{
			"addr":      "localhost:6379",
			"pool-size": int64(4),
		},
		"allowed_cidrs": []any{"10.0.0.0/8", "127.0.0.1"},
		"pretty_log":    false,
	}

	expected := map[string]string{
		"LOG_LEVEL":       "debug",
		"REDIS_ADDR":      "localhost:6379",
		"REDIS_POOL_SIZE": "4",
		"ALLOWED_CIDRS":   "10.0.0.0/8,127.0.0.1",
		"PRETTY_LOG":      "false",
	}

	result := flatten("", raw)
	if len(result) != len(expected) {
		t.Fatalf("flatten() = %v, want %v", result, expected)
	}
	for k, v := range expected {
		if result[k] != v {
			t.Errorf("flatten()[%s] = %q, want %q", k, result[k], v)
		}
	}
}

// unsetForTest clears key for the duration of the test and restores it after.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env var: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagsearch.toml")
	content := `
log_level = "debug"
store = "memory"

[seed]
interval = "10m"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	unsetForTest(t, "TAGSEARCH_STORE")
	unsetForTest(t, "TAGSEARCH_SEED_INTERVAL")
	t.Setenv("TAGSEARCH_LOG_LEVEL", "warn")

	if err := loadFile(path); err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}

	if got := os.Getenv("TAGSEARCH_STORE"); got != "memory" {
		t.Errorf("TAGSEARCH_STORE = %q, want memory", got)
	}
	if got := os.Getenv("TAGSEARCH_SEED_INTERVAL"); got != "10m" {
		t.Errorf("TAGSEARCH_SEED_INTERVAL = %q, want 10m", got)
	}
	// Environment wins over the file.
	if got := os.Getenv("TAGSEARCH_LOG_LEVEL"); got != "warn" {
		t.Errorf("TAGSEARCH_LOG_LEVEL = %q, want warn", got)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if err := loadFile("/nonexistent/tagsearch.toml"); err == nil {
		t.Error("loadFile() with missing file should return error")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("this is = = not toml"), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if err := loadFile(path); err == nil {
		t.Error("loadFile() with invalid toml should return error")
	}
}

func TestLoad(t *testing.T) {
	unsetForTest(t, "TAGSEARCH_CONFIG_FILE")
	t.Setenv("TAGSEARCH_STORE", "MEMORY")
	t.Setenv("TAGSEARCH_LOG_LEVEL", "error")
	t.Setenv("TAGSEARCH_SEARCH_URL", "https://example.com/?q={query}")
	t.Setenv("TAGSEARCH_ALLOWED_CIDRS", "10.0.0.0/8, 127.0.0.1")

	cfg := Load()

	if cfg.StoreBackend != "memory" {
		t.Errorf("StoreBackend = %q, want memory", cfg.StoreBackend)
	}
	if cfg.SearchURL != "https://example.com/?q={query}" {
		t.Errorf("SearchURL = %q", cfg.SearchURL)
	}
	if len(cfg.AllowedCIDRS) != 2 {
		t.Errorf("AllowedCIDRS = %v, want 2 entries", cfg.AllowedCIDRS)
	}
}

func TestLoadPanics(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown backend",
			env:  map[string]string{"TAGSEARCH_STORE": "etcd"},
		},
		{
			name: "redis without address",
			env:  map[string]string{"TAGSEARCH_STORE": "redis", "TAGSEARCH_REDIS_ADDR": ""},
		},
		{
			name: "share text without placeholder",
			env:  map[string]string{"TAGSEARCH_STORE": "memory", "TAGSEARCH_SHARE_TEXT": "no url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetForTest(t, "TAGSEARCH_CONFIG_FILE")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			defer func() {
				if r := recover(); r == nil {
					t.Errorf("Load() should have panicked")
				}
			}()
			Load()
		})
	}
}
