package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		LogDir: "/data/buildfix/log",
		Android: AndroidConfig{
			CompileSdk: 34,
			MinSdk:     29,
			TargetSdk:  34,
			JvmTarget:  "17",
			Namespace:  "com.omni.message",
		},
		Gradle: GradleConfig{
			Version:       "8.12",
			AgpVersion:    "8.3.0",
			KotlinVersion: "1.9.22",
			Memory:        "2048m",
		},
		Dependencies: DependencyConfig{
			AndroidxCore: "1.12.0",
			Hilt:         "2.50",
		},
		Backup:   BackupConfig{RetentionDays: 7},
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/data/buildfix"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Android.MinSdk != 29 {
		t.Errorf("Android.MinSdk = %d, want 29", got.Android.MinSdk)
	}
	if got.Android.Namespace != "com.omni.message" {
		t.Errorf("Android.Namespace = %q, want %q", got.Android.Namespace, "com.omni.message")
	}
	if got.Gradle.Version != "8.12" {
		t.Errorf("Gradle.Version = %q, want %q", got.Gradle.Version, "8.12")
	}
	if got.Gradle.Memory != "2048m" {
		t.Errorf("Gradle.Memory = %q, want %q", got.Gradle.Memory, "2048m")
	}
	if got.Dependencies.Hilt != "2.50" {
		t.Errorf("Dependencies.Hilt = %q, want %q", got.Dependencies.Hilt, "2.50")
	}
	if got.Backup.RetentionDays != 7 {
		t.Errorf("Backup.RetentionDays = %d, want 7", got.Backup.RetentionDays)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/buildfix", 16384)

	if cfg.LogDir != filepath.Join("/data/buildfix", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Android.CompileSdk != 34 {
		t.Errorf("Android.CompileSdk = %d, want 34", cfg.Android.CompileSdk)
	}
	if cfg.Android.MinSdk != 29 {
		t.Errorf("Android.MinSdk = %d, want 29", cfg.Android.MinSdk)
	}
	if cfg.Android.JvmTarget != "17" {
		t.Errorf("Android.JvmTarget = %q, want %q", cfg.Android.JvmTarget, "17")
	}
	if cfg.Backup.RetentionDays != 7 {
		t.Errorf("Backup.RetentionDays = %d, want 7", cfg.Backup.RetentionDays)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", cfg.Database.Type, "sqlite")
	}
}

func TestNewConfig_MemorySizing(t *testing.T) {
	tests := []struct {
		name     string
		memoryMB int
		want     string
	}{
		{"large machine", 16384, "4096m"},
		{"8 GiB boundary", 8192, "4096m"},
		{"mid machine", 6000, "2048m"},
		{"4 GiB boundary", 4096, "2048m"},
		{"small machine", 2048, "1024m"},
		{"unknown memory", 0, "1024m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/data", tt.memoryMB)
			if cfg.Gradle.Memory != tt.want {
				t.Errorf("Gradle.Memory = %q, want %q", cfg.Gradle.Memory, tt.want)
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		cfg := NewConfig(dir, 4096)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		cfg := NewConfig(dir, 4096)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		if err := Init(path, cfg); err == nil {
			t.Error("second Init() expected error for existing file")
		}
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "deeper", "config.toml")
		cfg := NewConfig(dir, 4096)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads written config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.toml")
		cfg := NewConfig(dir, 8192)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Gradle.Memory != "4096m" {
			t.Errorf("Gradle.Memory = %q, want %q", got.Gradle.Memory, "4096m")
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		if _, err := ReadFromFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("ReadFromFile() expected error for missing file")
		}
	})
}
