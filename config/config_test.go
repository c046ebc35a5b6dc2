package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAppKeys = []AppKey{
	{Name: "routes_file", Default: "routes.yaml", Desc: "route table"},
	{Name: "redirect_status", Default: 303, Desc: "redirect status"},
	{Name: "state_keys", Default: []string{}, Desc: "state keys"},
}

func load(t *testing.T, args ...string) (*CoreConfig, AppConfigValues, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	return LoadFrom(nil, fs, args, testAppKeys)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, app, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.HTTP.HTTPPort)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.MaxRequestBodyBytes)
	assert.False(t, cfg.CORS.EnableCORS)
	assert.Equal(t, SecurityConfig{SecurityHeaders: true, ReferrerPolicy: "no-referrer", HSTSMaxAge: 31536000}, cfg.Security)
	assert.Zero(t, cfg.CompressionLevel)

	assert.Equal(t, "routes.yaml", app.String("routes_file"))
	assert.Equal(t, 303, app.Int("redirect_status"))
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("http_port: 9000\nlog_level: warn\nroutes_file: file.yaml\n"), 0o600))

	t.Setenv("ROUTENAV_LOG_LEVEL", "error")
	t.Setenv("ROUTENAV_ROUTES_FILE", "env.yaml")
	t.Setenv("ROUTENAV_REDIRECT_STATUS", "302")

	cfg, app, err := load(t, "--log_level=INFO", "--shutdown_timeout=30")
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTP.HTTPPort, "file beats default")
	assert.Equal(t, "info", cfg.LogLevel, "flag beats env")
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "env.yaml", app.String("routes_file"), "env beats file")
	assert.Equal(t, 302, app.Int("redirect_status"))
}

func TestLoadCORSLists(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, _, err := load(t,
		"--enable_cors",
		`--cors_allowed_origins=["https://a.example"]`,
		`--cors_allowed_methods=["GET"]`,
	)
	require.NoError(t, err)
	assert.True(t, cfg.CORS.EnableCORS)
	assert.Equal(t, []string{"https://a.example"}, cfg.CORS.CORSAllowedOrigins)
	assert.Equal(t, []string{"GET"}, cfg.CORS.CORSAllowedMethods)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad port", []string{"--http_port=70000"}, "http_port must be in 1..65535"},
		{"bad env", []string{"--env=staging"}, `env must be "dev" or "prod"`},
		{"cors without origins", []string{"--enable_cors"}, "cors_allowed_origins"},
		{"bad compression level", []string{"--compression_level=10"}, "compression_level must be in 0..9"},
		{"negative hsts", []string{"--hsts_max_age=-1"}, "hsts_max_age must be >= 0"},
		{"bad cors json", []string{"--cors_allowed_origins=nope"}, "expects a JSON array string"},
		{
			"wildcard with credentials",
			[]string{"--enable_cors", `--cors_allowed_origins=["*"]`, `--cors_allowed_methods=["GET"]`, "--cors_allow_credentials"},
			`cannot use "*"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			_, _, err := load(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsConflictingAppKey(t *testing.T) {
	chdir(t, t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, _, err := LoadFrom(nil, fs, nil, []AppKey{{Name: "http_port", Default: 1}})
	assert.ErrorContains(t, err, "conflicts with existing flag")
}

func TestParseDurationFlexible(t *testing.T) {
	def := 5 * time.Second
	tests := []struct {
		name    string
		raw     any
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "90s", 90 * time.Second, false},
		{"seconds string", "120", 120 * time.Second, false},
		{"int", 3, 3 * time.Second, false},
		{"float", 1.5, 1500 * time.Millisecond, false},
		{"duration", 2 * time.Minute, 2 * time.Minute, false},
		{"empty", "  ", def, false},
		{"nil", nil, def, false},
		{"garbage", "soon", def, true},
		{"zero", "0s", def, true},
		{"negative int", -4, def, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDurationFlexible(tt.raw, def)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAppConfigValues(t *testing.T) {
	a := AppConfigValues{
		"s":   "x",
		"i":   int64(4),
		"f":   float64(7),
		"n":   "12",
		"b":   "true",
		"l":   []string{"a"},
		"dur": "45s",
	}

	assert.Equal(t, "x", a.String("s"))
	assert.Equal(t, "", a.String("i"))
	assert.Equal(t, 4, a.Int("i"))
	assert.Equal(t, 7, a.Int("f"))
	assert.Equal(t, 12, a.Int("n"))
	assert.Equal(t, int64(4), a.Int64("i"))
	assert.True(t, a.Bool("b"))
	assert.Equal(t, []string{"a"}, a.StringSlice("l"))
	assert.Equal(t, 45*time.Second, a.Duration("dur", time.Second))
	assert.Equal(t, time.Second, a.Duration("missing", time.Second))
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent of testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
