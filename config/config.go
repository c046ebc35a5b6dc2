// config/config.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// EnvPrefix is prepended to every environment variable, e.g. ROUTENAV_HTTP_PORT.
const EnvPrefix = "ROUTENAV"

// HTTPConfig groups the listener port and server timeouts.
type HTTPConfig struct {
	HTTPPort int `mapstructure:"http_port"`

	// Timeouts are filled by parseDurationFlexible, not by Unmarshal.
	ReadTimeout       time.Duration `mapstructure:"-"`
	ReadHeaderTimeout time.Duration `mapstructure:"-"`
	WriteTimeout      time.Duration `mapstructure:"-"`
	IdleTimeout       time.Duration `mapstructure:"-"`
	ShutdownTimeout   time.Duration `mapstructure:"-"`
}

// CORSConfig groups all CORS behavior and lists.
type CORSConfig struct {
	EnableCORS           bool     `mapstructure:"enable_cors"`
	CORSAllowedOrigins   []string `mapstructure:"cors_allowed_origins"`
	CORSAllowedMethods   []string `mapstructure:"cors_allowed_methods"`
	CORSAllowedHeaders   []string `mapstructure:"cors_allowed_headers"`
	CORSExposedHeaders   []string `mapstructure:"cors_exposed_headers"`
	CORSAllowCredentials bool     `mapstructure:"cors_allow_credentials"`
	CORSMaxAge           int      `mapstructure:"cors_max_age"`
}

// SecurityConfig controls the response security headers.
type SecurityConfig struct {
	SecurityHeaders bool   `mapstructure:"security_headers"`
	ReferrerPolicy  string `mapstructure:"referrer_policy"`
	HSTSMaxAge      int    `mapstructure:"hsts_max_age"` // seconds; sent over TLS only
}

// CoreConfig holds the service-level configuration.
type CoreConfig struct {
	Env      string `mapstructure:"env"`       // "dev" | "prod"
	LogLevel string `mapstructure:"log_level"` // debug, info, warn, error …

	HTTP HTTPConfig `mapstructure:",squash"`
	CORS     CORSConfig     `mapstructure:",squash"`
	Security SecurityConfig `mapstructure:",squash"`

	MaxRequestBodyBytes int64 `mapstructure:"max_request_body_bytes"`
	CompressionLevel    int   `mapstructure:"compression_level"` // 0 disables, 1..9
}

// Dump returns an indented JSON rendering of the config for debug logs.
func (c CoreConfig) Dump() string {
	b, _ := json.MarshalIndent(c, "", "  ")
	return string(b)
}

// durationKeys maps each duration key to its default.
var durationKeys = []struct {
	key string
	def time.Duration
}{
	{"read_timeout", 15 * time.Second},
	{"read_header_timeout", 10 * time.Second},
	{"write_timeout", 60 * time.Second},
	{"idle_timeout", 120 * time.Second},
	{"shutdown_timeout", 15 * time.Second},
}

// Load reads configuration from the process command line and environment.
// See LoadFrom.
func Load(logger *zap.Logger, appKeys []AppKey) (*CoreConfig, AppConfigValues, error) {
	return LoadFrom(logger, pflag.CommandLine, os.Args[1:], appKeys)
}

// LoadFrom merges defaults → config.* file(s) → env vars → explicit flags into
// one CoreConfig plus the app values for appKeys.
// Final precedence (highest wins): flags(explicit) > env > config > defaults.
func LoadFrom(logger *zap.Logger, fs *pflag.FlagSet, args []string, appKeys []AppKey) (*CoreConfig, AppConfigValues, error) {
	// 0) Optionally load .env (real env still wins over .env)
	if err := godotenv.Load(); err == nil && logger != nil {
		logger.Info("Loaded .env file")
	}

	// 1) Define flags (only *explicitly set* flags will override)
	fs.String("env", "dev", `Runtime environment "dev"|"prod"`)
	fs.String("log_level", "debug", "Log level")
	fs.Int("http_port", 8080, "HTTP port")
	for _, d := range durationKeys {
		fs.String(d.key, d.def.String(), "HTTP server "+strings.ReplaceAll(d.key, "_", " ")+` (e.g. "15s", "2m")`)
	}

	fs.Bool("enable_cors", false, "Enable CORS")
	fs.String("cors_allowed_origins", "", `JSON array of origins, e.g. '["https://a.example","https://b.example"]'`)
	fs.String("cors_allowed_methods", "", `JSON array of methods, e.g. '["GET","POST"]'`)
	fs.String("cors_allowed_headers", "", `JSON array of headers, e.g. '["Accept","Authorization"]'`)
	fs.String("cors_exposed_headers", "", `JSON array of headers, e.g. '["Link"]'`)
	fs.Bool("cors_allow_credentials", false, "CORS: allow credentials")
	fs.Int("cors_max_age", 0, "CORS: max age seconds (0 disables cache)")

	fs.Bool("security_headers", true, "Send nosniff, frame, referrer and HSTS headers")
	fs.String("referrer_policy", "no-referrer", "Referrer-Policy header value")
	fs.Int("hsts_max_age", 31536000, "HSTS max-age seconds for TLS requests (0 disables)")

	fs.Int64("max_request_body_bytes", 1<<20, "Max HTTP request body size in bytes (0 = unlimited)")
	fs.Int("compression_level", 0, "gzip/deflate level 1..9 for responses (0 disables)")

	if err := registerAppFlags(fs, appKeys); err != nil {
		return nil, nil, err
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	// 2) Viper + env
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, k := range allKeys() {
		_ = v.BindEnv(k)
	}

	// 3) Optional config.* files (yaml|yml|json|toml)
	for _, ext := range [...]string{"yaml", "yml", "json", "toml"} {
		file := "config." + ext
		if _, err := os.Stat(file); err != nil {
			continue
		}
		b, err := os.ReadFile(file)
		if err != nil {
			if logger != nil {
				logger.Warn("cannot read config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		v.SetConfigType(ext)
		if err := v.MergeConfig(bytes.NewReader(b)); err != nil {
			if logger != nil {
				logger.Warn("cannot decode config file", zap.String("file", file), zap.Error(err))
			}
			continue
		}
		if logger != nil {
			logger.Info("Loaded config file", zap.String("file", file))
		}
	}

	// 4) Defaults (lowest precedence)
	setDefaults(v)

	// 5) Apply *explicit* flags (highest precedence)
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed && isCoreKey(f.Name) {
			_ = v.BindPFlag(f.Name, f)
		}
	})

	// 6) Normalize list keys (accept JSON strings → []string)
	if err := normalizeListKeys(logger, v,
		"cors_allowed_origins",
		"cors_allowed_methods",
		"cors_allowed_headers",
		"cors_exposed_headers",
	); err != nil {
		return nil, nil, err
	}

	// 7) Build struct. Durations are parsed by hand so plain seconds work too.
	var cfg CoreConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unable to decode core config: %w", err)
	}
	durs := map[string]*time.Duration{
		"read_timeout":        &cfg.HTTP.ReadTimeout,
		"read_header_timeout": &cfg.HTTP.ReadHeaderTimeout,
		"write_timeout":       &cfg.HTTP.WriteTimeout,
		"idle_timeout":        &cfg.HTTP.IdleTimeout,
		"shutdown_timeout":    &cfg.HTTP.ShutdownTimeout,
	}
	for _, d := range durationKeys {
		dur, err := parseDurationFlexible(v.Get(d.key), d.def)
		if err != nil && logger != nil {
			logger.Warn("invalid "+d.key+"; using default "+d.def.String(),
				zap.Any("value", v.Get(d.key)), zap.Error(err))
		}
		*durs[d.key] = dur
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	// 8) Validate
	if err := validateCoreConfig(cfg); err != nil {
		return nil, nil, err
	}

	appCfg, err := loadAppConfig(logger, v, fs, appKeys)
	if err != nil {
		return nil, nil, err
	}
	return &cfg, appCfg, nil
}

func allKeys() []string {
	keys := []string{
		"env", "log_level",
		"http_port",
		"enable_cors",
		"cors_allowed_origins", "cors_allowed_methods", "cors_allowed_headers",
		"cors_exposed_headers", "cors_allow_credentials", "cors_max_age",
		"security_headers", "referrer_policy", "hsts_max_age",
		"max_request_body_bytes", "compression_level",
	}
	for _, d := range durationKeys {
		keys = append(keys, d.key)
	}
	return keys
}

func isCoreKey(name string) bool {
	for _, k := range allKeys() {
		if k == name {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log_level", "debug")
	v.SetDefault("http_port", 8080)
	for _, d := range durationKeys {
		v.SetDefault(d.key, d.def.String())
	}

	// Neutral CORS defaults
	v.SetDefault("enable_cors", false)
	v.SetDefault("cors_allowed_origins", []string{})
	v.SetDefault("cors_allowed_methods", []string{})
	v.SetDefault("cors_allowed_headers", []string{})
	v.SetDefault("cors_exposed_headers", []string{})
	v.SetDefault("cors_allow_credentials", false)
	v.SetDefault("cors_max_age", 0)

	v.SetDefault("security_headers", true)
	v.SetDefault("referrer_policy", "no-referrer")
	v.SetDefault("hsts_max_age", 31536000)

	v.SetDefault("max_request_body_bytes", int64(1<<20))
	v.SetDefault("compression_level", 0)
}

// normalizeListKeys coerces JSON-string values into []string for the given keys.
func normalizeListKeys(logger *zap.Logger, v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		val := v.Get(key)
		switch t := val.(type) {
		case string:
			s := strings.TrimSpace(t)
			if s == "" {
				v.Set(key, []string{})
				continue
			}
			var arr []string
			if err := json.Unmarshal([]byte(s), &arr); err != nil {
				return fmt.Errorf("config key %q expects a JSON array string, got %q: %w", key, s, err)
			}
			v.Set(key, arr)
		case []interface{}:
			arr := make([]string, 0, len(t))
			for _, e := range t {
				arr = append(arr, fmt.Sprint(e))
			}
			v.Set(key, arr)
		case []string, nil:
			// already correct or unset
		default:
			if logger != nil {
				logger.Warn("unexpected type for list key; expected JSON array/string",
					zap.String("key", key), zap.Any("value", t))
			}
		}
	}
	return nil
}

func validateCoreConfig(cfg CoreConfig) error {
	var missing []string
	var invalid []string

	if cfg.Env != "dev" && cfg.Env != "prod" {
		invalid = append(invalid, `env must be "dev" or "prod"`)
	}

	if cfg.HTTP.HTTPPort <= 0 || cfg.HTTP.HTTPPort > 65535 {
		invalid = append(invalid, "http_port must be in 1..65535")
	}

	if cfg.CORS.EnableCORS {
		if len(cfg.CORS.CORSAllowedOrigins) == 0 {
			missing = append(missing, "CORS: cors_allowed_origins (JSON array) required when enable_cors=true")
		}
		if len(cfg.CORS.CORSAllowedMethods) == 0 {
			missing = append(missing, "CORS: cors_allowed_methods (JSON array) required when enable_cors=true")
		}
		for _, o := range cfg.CORS.CORSAllowedOrigins {
			if o == "*" && cfg.CORS.CORSAllowCredentials {
				invalid = append(invalid, `CORS: cannot use "*" in cors_allowed_origins when cors_allow_credentials=true`)
				break
			}
		}
		if cfg.CORS.CORSMaxAge < 0 {
			invalid = append(invalid, "CORS: cors_max_age must be >= 0")
		}
	}

	if cfg.MaxRequestBodyBytes < 0 {
		invalid = append(invalid, "max_request_body_bytes must be >= 0")
	}
	if cfg.CompressionLevel < 0 || cfg.CompressionLevel > 9 {
		invalid = append(invalid, "compression_level must be in 0..9")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		invalid = append(invalid, "hsts_max_age must be >= 0")
	}

	if len(missing) == 0 && len(invalid) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(invalid, ", "))
	}
	return fmt.Errorf("core configuration errors: %s", strings.Join(parts, " | "))
}
