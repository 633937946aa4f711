package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/artpar/modhost/config"
	"github.com/google/go-cmp/cmp"
	"golang.org/x/crypto/bcrypt"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "0.0.0.0"
  port: 9090
  read_timeout: 5s

database:
  driver: "sqlite"
  dsn: ":memory:"

environment:
  mode: "staging"
  host_version: "6.4.2"
  builder_a_version: "3.21.0"
  plugins:
    woocommerce: "8.5.1"

logging:
  level: "debug"
  format: "console"

metrics:
  enabled: true
`

	cfg := writeAndLoad(t, content)

	if cfg.Server.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr = %s, want 0.0.0.0:9090", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.DSN != ":memory:" {
		t.Errorf("DSN = %s, want :memory:", cfg.Database.DSN)
	}

	want := config.EnvironmentConfig{
		Mode:            "staging",
		HostVersion:     "6.4.2",
		BuilderAVersion: "3.21.0",
		Plugins:         map[string]string{"woocommerce": "8.5.1"},
	}
	if diff := cmp.Diff(want, cfg.Environment); diff != "" {
		t.Errorf("Environment mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := writeAndLoad(t, "{}")

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("default Host = %s, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("default ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Driver != "sqlite" || cfg.Database.DSN != "modhost.db" {
		t.Errorf("default Database = %+v", cfg.Database)
	}
	if cfg.Auth.BcryptCost != bcrypt.DefaultCost {
		t.Errorf("default BcryptCost = %d, want %d", cfg.Auth.BcryptCost, bcrypt.DefaultCost)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("default TokenTTL = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Environment.Mode != "production" {
		t.Errorf("default Environment.Mode = %s, want production", cfg.Environment.Mode)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default Logging = %+v", cfg.Logging)
	}
}

func TestLoad_MemoryDriverHasNoDSN(t *testing.T) {
	cfg := writeAndLoad(t, "database:\n  driver: memory\n")

	if cfg.Database.DSN != "" {
		t.Errorf("DSN = %q, want empty", cfg.Database.DSN)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_HOST_VERSION", "6.5.0")

	cfg := writeAndLoad(t, `
environment:
  host_version: "${TEST_HOST_VERSION}"
`)

	if cfg.Environment.HostVersion != "6.5.0" {
		t.Errorf("HostVersion = %s, want 6.5.0", cfg.Environment.HostVersion)
	}
}

func TestLoad_AdminTokenHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("token"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	cfg := writeAndLoad(t, "auth:\n  admin_token_hash: '"+string(hash)+"'\n")
	if cfg.Auth.AdminTokenHash != string(hash) {
		t.Errorf("AdminTokenHash = %s", cfg.Auth.AdminTokenHash)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad driver", "database:\n  driver: postgres\n", "database.driver"},
		{"bad mode", "environment:\n  mode: qa\n", "environment.mode"},
		{"bad level", "logging:\n  level: loud\n", "logging.level"},
		{"bad format", "logging:\n  format: xml\n", "logging.format"},
		{"bad port", "server:\n  port: 70000\n", "server.port"},
		{"bad cost", "auth:\n  bcrypt_cost: 99\n", "auth.bcrypt_cost"},
		{"plain token", "auth:\n  admin_token_hash: secret\n", "auth.admin_token_hash"},
		{"empty plugin id", "environment:\n  plugins:\n    \" \": \"1.0\"\n", "environment.plugins"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := config.Load(path)
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := config.Load(path); err == nil {
		t.Error("Load should fail for invalid YAML")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MODHOST_SERVER_PORT", "9191")
	t.Setenv("MODHOST_DATABASE_DRIVER", "memory")
	t.Setenv("MODHOST_ENVIRONMENT_MODE", "development")
	t.Setenv("MODHOST_HOST_VERSION", "6.1")
	t.Setenv("MODHOST_BUILDER_B_VERSION", "4.0.0")
	t.Setenv("MODHOST_METRICS_ENABLED", "yes")
	t.Setenv("MODHOST_OPENAPI_ENABLED", "1")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv error: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Database.Driver != "memory" {
		t.Errorf("Driver = %s, want memory", cfg.Database.Driver)
	}
	if cfg.Environment.Mode != "development" || cfg.Environment.HostVersion != "6.1" {
		t.Errorf("Environment = %+v", cfg.Environment)
	}
	if cfg.Environment.BuilderBVersion != "4.0.0" {
		t.Errorf("BuilderBVersion = %s, want 4.0.0", cfg.Environment.BuilderBVersion)
	}
	if !cfg.Metrics.Enabled || !cfg.OpenAPI.Enabled {
		t.Errorf("Metrics/OpenAPI should be enabled: %+v %+v", cfg.Metrics, cfg.OpenAPI)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("MODHOST_LOG_LEVEL", "warn")
	t.Setenv("MODHOST_SERVER_READ_TIMEOUT", "2s")

	cfg := writeAndLoad(t, `
logging:
  level: debug
server:
  read_timeout: 30s
`)

	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %s, want warn (env wins)", cfg.Logging.Level)
	}
	if cfg.Server.ReadTimeout != 2*time.Second {
		t.Errorf("ReadTimeout = %v, want 2s", cfg.Server.ReadTimeout)
	}
}

func TestEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("MODHOST_SERVER_PORT", "not-a-port")
	t.Setenv("MODHOST_TOKEN_TTL", "forever")

	cfg := writeAndLoad(t, "{}")

	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("TokenTTL = %v, want default 12h", cfg.Auth.TokenTTL)
	}
}

func TestLoadWithFallback(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 7070\n")

	cfg, err := config.LoadWithFallback(path)
	if err != nil {
		t.Fatalf("LoadWithFallback error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want 7070 from file", cfg.Server.Port)
	}

	cfg, err = config.LoadWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadWithFallback env error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want default 8080", cfg.Server.Port)
	}
}

// Helpers

func writeAndLoad(t *testing.T, content string) *config.Config {
	t.Helper()
	cfg, err := config.Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	return cfg
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modhost.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
