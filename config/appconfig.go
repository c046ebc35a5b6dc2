// config/appconfig.go
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// AppKey defines a configuration key owned by the service on top of
// CoreConfig (e.g. routes_file). It is loaded with the same precedence as
// the core keys.
type AppKey struct {
	// Name is used as-is for config files and flags. For env vars it is
	// uppercased and prefixed (e.g. ROUTENAV_ROUTES_FILE).
	Name string

	// Default is the default value if not set elsewhere.
	// Supported types: string, int, int64, bool, []string.
	Default any

	// Desc is a short description for --help output.
	Desc string
}

// AppConfigValues holds the loaded app configuration values.
// Keys are the AppKey.Name values, values are the loaded configuration.
type AppConfigValues map[string]any

// String returns a string value or empty string if not found/wrong type.
func (a AppConfigValues) String(key string) string {
	if v, ok := a[key].(string); ok {
		return v
	}
	return ""
}

// Int returns an int value or 0 if not found/wrong type.
// Env vars and JSON files deliver numbers as strings or float64, so those
// are converted too.
func (a AppConfigValues) Int(key string) int {
	switch v := a[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil {
			return n
		}
	}
	return 0
}

// Int64 returns an int64 value or 0 if not found/wrong type.
// Handles both int64 and int for flexibility.
func (a AppConfigValues) Int64(key string) int64 {
	switch v := a[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

// Bool returns a bool value or false if not found/wrong type.
func (a AppConfigValues) Bool(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// StringSlice returns a []string value or nil if not found/wrong type.
func (a AppConfigValues) StringSlice(key string) []string {
	if v, ok := a[key].([]string); ok {
		return v
	}
	return nil
}

// Duration parses a duration value from the config.
// Accepts:
//   - Duration strings: "10m", "1h30m", "90s", "2h"
//   - Numeric values: interpreted as seconds (e.g., 600 = 10 minutes)
//   - Plain numeric strings: "600" = 600 seconds
//
// Returns the default value if the key is not found, empty, or invalid.
// Use this for timeout, expiry, and interval configurations.
func (a AppConfigValues) Duration(key string, def time.Duration) time.Duration {
	raw := a[key]
	if raw == nil {
		return def
	}
	dur, err := parseDurationFlexible(raw, def)
	if err != nil {
		return def
	}
	return dur
}

// loadAppConfig resolves keys on the viper instance that already holds the
// core keys, so config files, env vars (EnvPrefix) and explicit flags apply
// to app keys exactly as they do to core keys.
func loadAppConfig(logger *zap.Logger, v *viper.Viper, fs *pflag.FlagSet, keys []AppKey) (AppConfigValues, error) {
	result := make(AppConfigValues, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	var lists []string
	for _, key := range keys {
		v.SetDefault(key.Name, key.Default)
		_ = v.BindEnv(key.Name)
		if f := fs.Lookup(key.Name); f != nil && f.Changed {
			_ = v.BindPFlag(key.Name, f)
		}
		if _, ok := key.Default.([]string); ok {
			lists = append(lists, key.Name)
		}
	}
	if err := normalizeListKeys(logger, v, lists...); err != nil {
		return nil, err
	}

	for _, key := range keys {
		result[key.Name] = v.Get(key.Name)
	}

	if logger != nil {
		fields := make([]zap.Field, 0, len(keys))
		for _, key := range keys {
			nameLower := strings.ToLower(key.Name)
			if strings.Contains(nameLower, "key") ||
				strings.Contains(nameLower, "secret") ||
				strings.Contains(nameLower, "password") ||
				strings.Contains(nameLower, "token") {
				fields = append(fields, zap.String(key.Name, "[REDACTED]"))
			} else {
				fields = append(fields, zap.Any(key.Name, result[key.Name]))
			}
		}
		logger.Info("app config loaded", fields...)
	}

	return result, nil
}

// registerAppFlags registers flags for app keys. Must run before Parse.
func registerAppFlags(fs *pflag.FlagSet, keys []AppKey) error {
	for _, key := range keys {
		if fs.Lookup(key.Name) != nil {
			return fmt.Errorf("config key %q conflicts with existing flag", key.Name)
		}

		switch d := key.Default.(type) {
		case string:
			fs.String(key.Name, d, key.Desc)
		case int:
			fs.Int(key.Name, d, key.Desc)
		case int64:
			fs.Int64(key.Name, d, key.Desc)
		case bool:
			fs.Bool(key.Name, d, key.Desc)
		case []string:
			fs.String(key.Name, "", key.Desc+" (JSON array)")
		default:
			return fmt.Errorf("config key %q has unsupported default type %T", key.Name, key.Default)
		}
	}
	return nil
}
