package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/MrSnakeDoc/tagsearch/internal/domain"
)

const envPrefix = "TAGSEARCH_"

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	StoreBackend   string // "file" | "redis" | "memory"
	FilePath       string // file backend: YAML document path
	RedisNamespace string // redis backend: key prefix (hash is <ns>:searches)

	// Searches
	SearchURL    string // search URL template, {query} or %s placeholder, else appended
	ShareSubject string // optional, empty => built-in subject
	ShareText    string // optional, must contain one %s for the URL

	// Seed file
	SeedFile     string        // optional, empty = seed import disabled
	SeedInterval time.Duration // periodic re-import (0 = only on start/trigger)
	SeedWatch    bool          // re-import when the seed file changes on disk

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Write rate limiting, per client IP
	RateLimitRPS   int // sustained writes per second (0 = unlimited)
	RateLimitBurst int // burst size

	AllowedHosts []string // optional, restrict write/admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict write/admin routes to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
	CORSOrigins  []string // optional, allowed CORS origins ("*" for any)
}

// Load reads the configuration from the environment. A .env file in the
// working directory and the TOML file named by TAGSEARCH_CONFIG_FILE are
// applied first; variables already set in the environment win over both.
func Load() *Config {
	loadDotEnv()

	if path := getenv(envPrefix+"CONFIG_FILE", ""); path != "" {
		if err := loadFile(path); err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
	}

	cfg := &Config{
		// Server settings
		ListenPort:      getenv(envPrefix+"LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration(envPrefix+"SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv(envPrefix+"LOG_LEVEL", "info"),
		PrettyLog: mustBool(envPrefix+"PRETTY_LOG", true),

		// Storage
		StoreBackend:   strings.ToLower(getenv(envPrefix+"STORE", "file")),
		FilePath:       getenv(envPrefix+"FILE_PATH", "./data/searches.yaml"),
		RedisNamespace: getenv(envPrefix+"REDIS_NAMESPACE", "tagsearch"),

		// Searches
		SearchURL:    getenv(envPrefix+"SEARCH_URL", domain.DefaultSearchURL),
		ShareSubject: getenv(envPrefix+"SHARE_SUBJECT", ""),
		ShareText:    getenv(envPrefix+"SHARE_TEXT", ""),

		// Seed file
		SeedFile:     getenv(envPrefix+"SEED_FILE", ""), // Optional, empty = no seed import
		SeedInterval: mustDuration(envPrefix+"SEED_INTERVAL", time.Hour),
		SeedWatch:    mustBool(envPrefix+"SEED_WATCH", true),

		// Redis settings
		RedisAddr:             getenv(envPrefix+"REDIS_ADDR", ""),
		RedisUser:             getenv(envPrefix+"REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool(envPrefix+"REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv(envPrefix+"REDIS_PASSWORD", ""),
		RedisDB:               getenvInt(envPrefix+"REDIS_DB", 0),
		RedisDT:               mustDuration(envPrefix+"REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration(envPrefix+"REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration(envPrefix+"REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration(envPrefix+"REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration(envPrefix+"REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt(envPrefix+"REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration(envPrefix+"REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration(envPrefix+"REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt(envPrefix+"REDIS_WARN_THRESHOLD", 3),

		// Rate limiting
		RateLimitRPS:   getenvInt(envPrefix+"RATE_LIMIT_RPS", 5),
		RateLimitBurst: getenvInt(envPrefix+"RATE_LIMIT_BURST", 10),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv(envPrefix+"ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv(envPrefix+"ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool(envPrefix+"TRUST_PROXY", false),
		CORSOrigins:  splitAndTrim(getenv(envPrefix+"CORS_ORIGINS", "")),
	}

	switch cfg.StoreBackend {
	case "file", "memory":
	case "redis":
		cfg.RedisAddr = requireEnv(envPrefix + "REDIS_ADDR")
	default:
		panic(fmt.Sprintf("❌ FATAL: %sSTORE must be one of file, redis, memory (got %q)", envPrefix, cfg.StoreBackend))
	}

	// Validate Redis password configuration
	if cfg.StoreBackend == "redis" && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: TAGSEARCH_REDIS_PASSWORD is required when TAGSEARCH_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.ShareText != "" && strings.Count(cfg.ShareText, "%s") != 1 {
		panic("❌ FATAL: TAGSEARCH_SHARE_TEXT must contain exactly one %s")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loadDotEnv applies ./.env without overriding variables that are already set.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[WARN] failed to load .env file: %v\n", err)
	}
}

// loadFile applies a TOML config file. Keys map to environment variables:
// tables are joined with '_' and upper-cased, so
//
//	[redis]
//	addr = "localhost:6379"
//
// sets TAGSEARCH_REDIS_ADDR unless it is already set.
func loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	for key, val := range flatten("", raw) {
		name := envPrefix + key
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, val); err != nil {
			return fmt.Errorf("failed to apply %s: %w", name, err)
		}
	}
	return nil
}

var keyReplacer = strings.NewReplacer("-", "_", ".", "_")

func flatten(prefix string, m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		key := strings.ToUpper(keyReplacer.Replace(k))
		if prefix != "" {
			key = prefix + "_" + key
		}

		switch v := v.(type) {
		case map[string]any:
			for fk, fv := range flatten(key, v) {
				out[fk] = fv
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(v)
		}
	}
	return out
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
