package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./cinelist.db" {
			t.Errorf("expected database path ./cinelist.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}

		if config.Store.BaseURL != "http://127.0.0.1:3000" {
			t.Errorf("expected store base URL http://127.0.0.1:3000, got %s", config.Store.BaseURL)
		}

		if config.TMDB.BaseURL != "https://api.themoviedb.org/3" {
			t.Errorf("unexpected tmdb base URL %s", config.TMDB.BaseURL)
		}

		if config.TMDB.TimeoutSeconds != 10 {
			t.Errorf("expected tmdb timeout 10, got %d", config.TMDB.TimeoutSeconds)
		}

		if config.Catalog.Locale != "en" {
			t.Errorf("expected catalog locale en, got %s", config.Catalog.Locale)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080

[tmdb]
read_access_token = "token"
requests_per_second = 4.5
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.TMDB.ReadAccessToken != "token" {
			t.Errorf("expected read access token, got %q", config.TMDB.ReadAccessToken)
		}

		if config.TMDB.RequestsPerSecond != 4.5 {
			t.Errorf("expected 4.5 rps, got %v", config.TMDB.RequestsPerSecond)
		}

		t.Run("keeps defaults for omitted sections", func(t *testing.T) {
			if config.Store.BaseURL != "http://127.0.0.1:3000" {
				t.Errorf("expected default store URL, got %s", config.Store.BaseURL)
			}
			if config.TMDB.Language != "en-US" {
				t.Errorf("expected default language, got %s", config.TMDB.Language)
			}
		})
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

func TestEnv(t *testing.T) {
	t.Run("ApplyEnv overrides secrets", func(t *testing.T) {
		t.Setenv(EnvTMDBToken, " bearer ")
		t.Setenv(EnvTMDBAPIKey, "key")
		t.Setenv(EnvStoreURL, "http://store.test")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.TMDB.ReadAccessToken != "bearer" {
			t.Errorf("expected trimmed token, got %q", config.TMDB.ReadAccessToken)
		}
		if config.TMDB.APIKey != "key" {
			t.Errorf("expected api key, got %q", config.TMDB.APIKey)
		}
		if config.Store.BaseURL != "http://store.test" {
			t.Errorf("expected store URL override, got %q", config.Store.BaseURL)
		}
	})

	t.Run("LoadEnv reads dotenv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("CINELIST_TEST_DOTENV=hello\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("CINELIST_TEST_DOTENV") })

		if err := LoadEnv(path); err != nil {
			t.Fatalf("LoadEnv failed: %v", err)
		}
		if got := os.Getenv("CINELIST_TEST_DOTENV"); got != "hello" {
			t.Errorf("expected hello, got %q", got)
		}
	})

	t.Run("LoadEnv ignores missing file", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Errorf("expected nil for missing file, got %v", err)
		}
	})
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandHome("~/.cinelist/session.json")
	if err != nil {
		t.Fatalf("ExpandHome failed: %v", err)
	}
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join(".cinelist", "session.json")) {
		t.Errorf("unexpected expansion %q", got)
	}

	if got, _ := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path should be unchanged, got %q", got)
	}
}

func TestApplyLogLevel(t *testing.T) {
	logger := NewLogger(nil)

	if err := ApplyLogLevel(logger, "debug"); err != nil {
		t.Errorf("expected debug to parse, got %v", err)
	}

	if err := ApplyLogLevel(logger, "loud"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if err := ApplyLogLevel(logger, ""); err != nil {
		t.Errorf("empty level should be a no-op, got %v", err)
	}
}
