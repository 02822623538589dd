package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/netip"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline (ex: 10s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	FixtureFile    string        // path to the reference data file (JSON, JSONC or YAML)
	SeedOnStart    bool          // import the fixture into the store on boot
	ReseedInterval time.Duration // periodic re-import (0 = disabled)

	JanitorInterval time.Duration // dangling index sweep (0 = disabled)

	// Store
	StoreURL            string        // ex: "redis://localhost:6379/0"
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// HTTP surface
	CORSOrigins       []string // allowed origins, "*" for any
	WriteBurst        int      // bookmark write bucket size per client IP (0 = unlimited)
	WriteRefillPerMin int      // tokens added per minute

	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific networks
	TrustProxy   bool     // true => trust X-Forwarded-For headers
}

// LoadEnvFile pre-loads variables from a dotenv file. Variables already set
// in the environment win. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      listenPort(),
		ShutdownTimeout: mustDuration("PMSTD_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("PMSTD_REQUEST_TIMEOUT", 10*time.Second),

		// Logging
		LogLevel:  getenv("PMSTD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("PMSTD_PRETTY_LOG", true),

		// Reference data
		FixtureFile:    getenv("PMSTD_FIXTURE_FILE", "data/pm_data.json"),
		SeedOnStart:    mustBool("PMSTD_SEED_ON_START", false),
		ReseedInterval: mustDuration("PMSTD_RESEED_INTERVAL", 0),

		JanitorInterval: mustDuration("PMSTD_JANITOR_INTERVAL", time.Hour),

		// Store settings
		StoreURL:            getenv("PMSTD_STORE_URL", "redis://localhost:6379/0"),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// HTTP surface
		CORSOrigins:       splitAndTrim(getenv("PMSTD_CORS_ORIGINS", "*")),
		WriteBurst:        getenvInt("PMSTD_WRITE_BURST", 30),
		WriteRefillPerMin: getenvInt("PMSTD_WRITE_REFILL_PER_MIN", 60),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("PMSTD_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("PMSTD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("PMSTD_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted credentials
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.StoreURL = RedactURL(cfg.StoreURL)
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// Validate reports settings that cannot work together.
func (c *Config) Validate() error {
	var errs []error

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("PMSTD_LOG_LEVEL: unknown level %q", c.LogLevel))
	}

	port := strings.TrimPrefix(c.ListenPort, ":")
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		errs = append(errs, fmt.Errorf("PMSTD_PORT: invalid port %q", c.ListenPort))
	}

	if u, err := url.Parse(c.StoreURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
		errs = append(errs, fmt.Errorf("PMSTD_STORE_URL: expected redis:// or rediss:// URL, got %q", RedactURL(c.StoreURL)))
	}

	if c.FixtureFile == "" {
		errs = append(errs, errors.New("PMSTD_FIXTURE_FILE must not be empty"))
	}
	if c.ReseedInterval < 0 {
		errs = append(errs, fmt.Errorf("PMSTD_RESEED_INTERVAL must be >= 0, got %v", c.ReseedInterval))
	}
	if c.JanitorInterval < 0 {
		errs = append(errs, fmt.Errorf("PMSTD_JANITOR_INTERVAL must be >= 0, got %v", c.JanitorInterval))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("PMSTD_REQUEST_TIMEOUT must be > 0, got %v", c.RequestTimeout))
	}
	if c.WriteBurst < 0 || c.WriteRefillPerMin < 0 {
		errs = append(errs, errors.New("PMSTD_WRITE_BURST and PMSTD_WRITE_REFILL_PER_MIN must be >= 0"))
	}
	if c.WriteBurst > 0 && c.WriteRefillPerMin == 0 {
		errs = append(errs, errors.New("PMSTD_WRITE_REFILL_PER_MIN must be > 0 when PMSTD_WRITE_BURST is set"))
	}

	for _, cidr := range c.AllowedCIDRS {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			if _, err := netip.ParseAddr(cidr); err != nil {
				errs = append(errs, fmt.Errorf("PMSTD_ALLOWED_CIDRS: invalid entry %q", cidr))
			}
		}
	}

	return errors.Join(errs...)
}

// RedactURL hides the password of a connection URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***INVALID URL***"
	}
	return u.Redacted()
}

// listenPort honours PMSTD_PORT, then the conventional PORT.
func listenPort() string {
	port := getenv("PMSTD_PORT", getenv("PORT", "5000"))
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
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
