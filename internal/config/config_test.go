package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BUILDBUMP_CONFIG_PATH",
		"BUILDBUMP_UPDATE_IOS",
		"BUILDBUMP_UPDATE_ANDROID",
		"BUILDBUMP_STRICT_NUMBERS",
		"BUILDBUMP_DRY_RUN",
		"BUILDBUMP_LOG_LEVEL",
		"BUILDBUMP_LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.UpdateIOS || cfg.UpdateAndroid {
		t.Error("platform toggles should default to false")
	}
	if !cfg.StrictNumbers {
		t.Error("expected StrictNumbers=true by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %s", cfg.Logging.Level)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.StrictNumbers || cfg.ConfigPath != "" {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected Format=console, got %s", cfg.Logging.Format)
	}
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".buildbump.yaml")
	data := `config_path: app.config.ts
update_ios: true
strict_numbers: false
targets:
  - name: tvos
    path: tvos.buildNumber
    output: newTvosBuildNumber
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ConfigPath != "app.config.ts" || !cfg.UpdateIOS || cfg.UpdateAndroid {
		t.Errorf("unexpected toggles: %+v", cfg)
	}
	if cfg.StrictNumbers {
		t.Error("expected StrictNumbers=false")
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Path != "tvos.buildNumber" {
		t.Errorf("unexpected targets: %+v", cfg.Targets)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".buildbump.toml")
	data := `config_path = "app.config.js"
update_android = true

[[targets]]
name = "wear"
path = "wear.versionCode"
output = "newWearVersionCode"
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.UpdateAndroid || cfg.ConfigPath != "app.config.js" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if len(cfg.Targets) != 1 || cfg.Targets[0].Name != "wear" {
		t.Errorf("unexpected targets: %+v", cfg.Targets)
	}
	if !cfg.StrictNumbers {
		t.Error("defaults should survive a partial file")
	}
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".buildbump.yaml")
	if err := os.WriteFile(path, []byte("update_ios: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	for _, name := range []string{"settings.yaml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.ConfigPath = "app.config.js"
			cfg.UpdateAndroid = true

			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.ConfigPath != "app.config.js" || !loaded.UpdateAndroid || loaded.UpdateIOS {
				t.Errorf("round trip lost values: %+v", loaded)
			}
		})
	}
}

func TestFindSettings(t *testing.T) {
	dir := t.TempDir()
	if got := FindSettings(dir); got != "" {
		t.Errorf("expected no settings, got %s", got)
	}

	toml := filepath.Join(dir, ".buildbump.toml")
	if err := os.WriteFile(toml, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindSettings(dir); got != toml {
		t.Errorf("expected %s, got %s", toml, got)
	}

	yml := filepath.Join(dir, ".buildbump.yaml")
	if err := os.WriteFile(yml, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := FindSettings(dir); got != yml {
		t.Errorf("yaml should win over toml, got %s", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
		wantMsg string
	}{
		{
			name:    "no platform",
			cfg:     Config{ConfigPath: "app.config.js"},
			wantErr: ErrNoPlatform,
			wantMsg: "At least one platform must be selected",
		},
		{
			name:    "no platform wins over missing path",
			cfg:     Config{},
			wantErr: ErrNoPlatform,
		},
		{
			name:    "missing path",
			cfg:     Config{UpdateIOS: true},
			wantErr: ErrMissingPath,
		},
		{
			name:    "bad log level",
			cfg:     Config{UpdateAndroid: true, ConfigPath: "a.js", Logging: LoggingConfig{Level: "loud"}},
			wantMsg: "invalid log level: loud (valid: debug, info, warn, error)",
		},
		{
			name: "ok",
			cfg:  Config{UpdateIOS: true, ConfigPath: "a.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil && tt.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}
