package types

import (
	"errors"
	"fmt"
)

// Config holds backend selection and parameters for Shelf.Attach.
type Config struct {
	Backend        string      `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir        string      `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Redis          RedisConfig `json:"redis" yaml:"redis" mapstructure:"redis"`
	Locale         string      `json:"locale" yaml:"locale" mapstructure:"locale"`
	PageSize       int         `json:"page_size" yaml:"page_size" mapstructure:"page_size"`
	JournalEnabled bool        `json:"journal_enabled" yaml:"journal_enabled" mapstructure:"journal_enabled"`
}

// RedisConfig holds the connection parameters of the redis backend.
type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr" mapstructure:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	DB       int    `json:"db" yaml:"db" mapstructure:"db"`
	Prefix   string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// Supported backend names.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
)

// Defaults applied by Shelf.Attach when a field is left empty.
const (
	DefaultBackend     = BackendJSONFile
	DefaultLocale      = "en"
	DefaultRedisPrefix = "shelf:"
)

// Config validation errors.
var (
	ErrBackendEmpty    = errors.New("backend must not be empty")
	ErrBackendUnknown  = errors.New("unknown backend")
	ErrRedisAddrEmpty  = errors.New("redis backend requires an address")
	ErrPageSizeInvalid = errors.New("page size must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSONFile: true,
	BackendSQLite:   true,
	BackendRedis:    true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return ErrRedisAddrEmpty
	}
	if c.PageSize < 0 {
		return ErrPageSizeInvalid
	}
	return nil
}

// EffectivePageSize returns PageSize, or DefaultPageSize when unset.
func (c Config) EffectivePageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

// EffectiveLocale returns Locale, or DefaultLocale when unset.
func (c Config) EffectiveLocale() string {
	if c.Locale == "" {
		return DefaultLocale
	}
	return c.Locale
}
