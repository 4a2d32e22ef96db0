package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Persona != DefaultPersona {
		t.Errorf("Persona = %q, want %q", cfg.Persona, DefaultPersona)
	}
	if cfg.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", cfg.Format, DefaultFormat)
	}
	if cfg.SysctlDir != DefaultSysctlDir {
		t.Errorf("SysctlDir = %q, want %q", cfg.SysctlDir, DefaultSysctlDir)
	}
	if cfg.Ledger.Path != DefaultLedgerPath {
		t.Errorf("Ledger.Path = %q, want %q", cfg.Ledger.Path, DefaultLedgerPath)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "kerntune")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `persona: gamer
format: json
ledger:
  path: /tmp/test-ledger.json
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Persona != "gamer" {
		t.Errorf("Persona = %q, want gamer", cfg.Persona)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Ledger.Path != "/tmp/test-ledger.json" {
		t.Errorf("Ledger.Path = %q, want /tmp/test-ledger.json", cfg.Ledger.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoadFileExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("persona: server\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Persona != "server" {
		t.Errorf("Persona = %q, want server", cfg.Persona)
	}

	t.Run("missing explicit file is an error", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("LoadFile() on a missing explicit path succeeded, want error")
		}
	})
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KERNTUNE_PERSONA", "developer")
	t.Setenv("KERNTUNE_FORMAT", "yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Persona != "developer" {
		t.Errorf("Persona = %q, want developer via KERNTUNE_PERSONA", cfg.Persona)
	}
	if cfg.Format != "yaml" {
		t.Errorf("Format = %q, want yaml via KERNTUNE_FORMAT", cfg.Format)
	}
}

func TestLoadExpandsHomeLedgerPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("KERNTUNE_LEDGER_PATH", "~/state/ledger.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(home, "state", "ledger.json")
	if cfg.Ledger.Path != want {
		t.Errorf("Ledger.Path = %q, want %q", cfg.Ledger.Path, want)
	}
}

func TestWriteDefault(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	if err := WriteDefault(); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	path := filepath.Join(configHome, "kerntune", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if len(data) == 0 {
		t.Error("written config is empty")
	}

	t.Run("existing file untouched", func(t *testing.T) {
		if err := os.WriteFile(path, []byte("persona: gamer\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := WriteDefault(); err != nil {
			t.Fatalf("WriteDefault() error = %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != "persona: gamer\n" {
			t.Error("WriteDefault() overwrote an existing config file")
		}
	})
}
