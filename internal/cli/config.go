package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "SHELF"

	cfgKeyBackend        = "backend"
	cfgKeyDataDir        = "data_dir"
	cfgKeyRedisAddr      = "redis.addr"
	cfgKeyRedisPassword  = "redis.password"
	cfgKeyRedisDB        = "redis.db"
	cfgKeyRedisPrefix    = "redis.prefix"
	cfgKeyLocale         = "locale"
	cfgKeyPageSize       = "page_size"
	cfgKeyJournalEnabled = "journal.enabled"
	cfgKeyLogLevel       = "log.level"
	cfgKeyLogFormat      = "log.format"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# Shelf configuration

# Storage backend: jsonfile, sqlite or redis
backend: jsonfile

# Data directory for jsonfile and sqlite (optional; overridable by --data-dir)
# data_dir:

redis:
  addr: ""
  db: 0
  prefix: "shelf:"

# Collation locale for text sorting (BCP 47)
locale: en

# Records per list page
page_size: 5

# Activity log
journal:
  enabled: false

log:
  level: warn
  format: console
`

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. SHELF_* environment variables override file
// values, with dots in keys written as underscores (SHELF_REDIS_ADDR).
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.DefaultBackend)
	v.SetDefault(cfgKeyRedisPrefix, types.DefaultRedisPrefix)
	v.SetDefault(cfgKeyLocale, types.DefaultLocale)
	v.SetDefault(cfgKeyPageSize, types.DefaultPageSize)
	v.SetDefault(cfgKeyJournalEnabled, false)
	v.SetDefault(cfgKeyLogLevel, "warn")
	v.SetDefault(cfgKeyLogFormat, "console")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// configFromViper maps viper keys onto a types.Config. DataDir is the raw
// configured value; the caller resolves it.
func configFromViper(v *viper.Viper) types.Config {
	return types.Config{
		Backend: v.GetString(cfgKeyBackend),
		DataDir: v.GetString(cfgKeyDataDir),
		Redis: types.RedisConfig{
			Addr:     v.GetString(cfgKeyRedisAddr),
			Password: v.GetString(cfgKeyRedisPassword),
			DB:       v.GetInt(cfgKeyRedisDB),
			Prefix:   v.GetString(cfgKeyRedisPrefix),
		},
		Locale:         v.GetString(cfgKeyLocale),
		PageSize:       v.GetInt(cfgKeyPageSize),
		JournalEnabled: v.GetBool(cfgKeyJournalEnabled),
	}
}

// persist sets key in config.yaml. Values coming from the environment are
// not written.
func persist(v *viper.Viper, configDir, key string, value any) error {
	file := viper.New()
	file.SetConfigFile(filepath.Join(configDir, paths.ConfigFileName))
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	file.Set(key, value)
	if err := file.WriteConfig(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	v.Set(key, value)
	return nil
}
