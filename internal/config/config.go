package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Storage backend names.
const (
	StorageMemory = "memory"
	StorageJSON   = "json"
	StorageSQLite = "sqlite"
)

// Environment names. Production without an explicit backend keeps data in memory.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds application configuration.
type Config struct {
	// Env is the deployment environment reported by /api/health.
	Env string `json:"env,omitempty"`

	// Storage selects the backend: "memory", "json" or "sqlite".
	// Empty means json in development and memory in production.
	Storage string `json:"storage,omitempty"`

	// Bind and Port are the HTTP listen address.
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`

	// Categories are offered by /api/categories. Records may still use any category.
	Categories []string `json:"categories,omitempty"`

	// AllowedOrigins is the CORS allowlist. Empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `json:"max_body_bytes,omitempty"`

	// AllowedPaths is an allowlist of directories for import/export operations.
	// Paths outside <data>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for import/export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections
	// for the sqlite backend. 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// BaseDir is the data directory the config was loaded from.
	BaseDir string `json:"-"`
}

// DefaultCategories is the dashboard's built-in category list.
var DefaultCategories = []string{"Finance", "HR", "Inventory", "Sales", "Reports", "Marketing"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Env:          EnvDevelopment,
		Bind:         "127.0.0.1",
		Port:         5000,
		Categories:   append([]string(nil), DefaultCategories...),
		MaxBodyBytes: 1 << 20,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.BaseDir = baseDir
	return cfg, nil
}

// LoadWithEnv loads baseDir/config.json and overlays environment variables.
func LoadWithEnv(baseDir string, getenv func(string) string) (*Config, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	env, err := FromEnv(getenv)
	if err != nil {
		return nil, err
	}
	merged := Merge(cfg, env)
	merged.BaseDir = baseDir
	return merged, nil
}

// FromEnv builds an overlay from APP_ENV (or NODE_ENV), STORAGE_BACKEND,
// HOST, PORT and ALLOWED_ORIGINS (comma-separated).
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Env:     strings.TrimSpace(getenv("APP_ENV")),
		Storage: strings.ToLower(strings.TrimSpace(getenv("STORAGE_BACKEND"))),
		Bind:    strings.TrimSpace(getenv("HOST")),
	}
	if cfg.Env == "" {
		cfg.Env = strings.TrimSpace(getenv("NODE_ENV"))
	}
	if p := strings.TrimSpace(getenv("PORT")); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid PORT %q", p)
		}
		cfg.Port = port
	}
	if o := getenv("ALLOWED_ORIGINS"); o != "" {
		cfg.AllowedOrigins = strings.Split(o, ",")
	}
	return cfg, nil
}

// StorageBackend resolves the backend name, applying the environment default.
func (c *Config) StorageBackend() string {
	if s := strings.ToLower(strings.TrimSpace(c.Storage)); s != "" {
		return s
	}
	if strings.EqualFold(c.Env, EnvProduction) {
		return StorageMemory
	}
	return StorageJSON
}

// ExportsDir is the default directory for import/export files.
func (c *Config) ExportsDir() string {
	return filepath.Join(c.BaseDir, "exports")
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{BaseDir: base.BaseDir}

	// Scalars: overlay wins if non-zero, else base
	result.Env = firstNonEmpty(overlay.Env, base.Env)
	result.Storage = firstNonEmpty(overlay.Storage, base.Storage)
	result.Bind = firstNonEmpty(overlay.Bind, base.Bind)

	result.Port = overlay.Port
	if result.Port == 0 {
		result.Port = base.Port
	}

	result.MaxBodyBytes = overlay.MaxBodyBytes
	if result.MaxBodyBytes == 0 {
		result.MaxBodyBytes = base.MaxBodyBytes
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	// Booleans: overlay wins if true, else base
	result.AllowUnsafePaths = base.AllowUnsafePaths || overlay.AllowUnsafePaths

	// Arrays: merge and deduplicate
	result.Categories = mergeStringSlice(base.Categories, overlay.Categories)
	result.AllowedOrigins = mergeStringSlice(base.AllowedOrigins, overlay.AllowedOrigins)
	result.AllowedPaths = mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths)
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
