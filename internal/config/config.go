package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for buildfix: the target Android
// and Gradle versions written into generated build files, dependency
// versions for the generated dependency definitions, and tool-level settings.
type Config struct {
	LogDir       string           `toml:"log_dir"`
	Android      AndroidConfig    `toml:"android"`
	Gradle       GradleConfig     `toml:"gradle"`
	Dependencies DependencyConfig `toml:"dependencies"`
	Backup       BackupConfig     `toml:"backup"`
	Database     DatabaseConfig   `toml:"database"`
}

// AndroidConfig holds the Android SDK targets written into module build files.
// Defaults target Android 10+ (minSdk 29) on JDK 17.
type AndroidConfig struct {
	CompileSdk int    `toml:"compile_sdk"`
	MinSdk     int    `toml:"min_sdk"`
	TargetSdk  int    `toml:"target_sdk"`
	JvmTarget  string `toml:"jvm_target"`
	Namespace  string `toml:"namespace"` // base package, e.g. "com.omni.message"
}

// GradleConfig holds Gradle and build-plugin versions plus the JVM heap
// size used in gradle.properties.
type GradleConfig struct {
	Version       string `toml:"version"`
	AgpVersion    string `toml:"agp_version"`
	KotlinVersion string `toml:"kotlin_version"`
	Memory        string `toml:"memory"` // e.g. "2048m"
}

// DependencyConfig holds library versions written into dependencies.gradle.kts.
type DependencyConfig struct {
	AndroidxCore      string `toml:"androidx_core"`
	AndroidxLifecycle string `toml:"androidx_lifecycle"`
	AndroidxActivity  string `toml:"androidx_activity"`
	Navigation        string `toml:"navigation"`
	ComposeBom        string `toml:"compose_bom"`
	ComposeCompiler   string `toml:"compose_compiler"`
	Hilt              string `toml:"hilt"`
	Room              string `toml:"room"`
	Retrofit          string `toml:"retrofit"`
	OkHttp            string `toml:"okhttp"`
	Gson              string `toml:"gson"`
	Coroutines        string `toml:"coroutines"`
}

// BackupConfig holds settings for the backup engine.
type BackupConfig struct {
	RetentionDays int `toml:"retention_days"` // default age for `backup cleanup`
}

// DatabaseConfig represents configuration for the fix-run history database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a Config with defaults sized to the machine.
// memoryMB is the detected total system memory; it selects the Gradle JVM
// heap: 4 GiB heap on 8 GiB+ machines, 2 GiB on 4 GiB+, 1 GiB otherwise.
func NewConfig(baseDir string, memoryMB int) *Config {
	memory := "1024m"
	switch {
	case memoryMB >= 8192:
		memory = "4096m"
	case memoryMB >= 4096:
		memory = "2048m"
	}

	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
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
			Memory:        memory,
		},
		Dependencies: DependencyConfig{
			AndroidxCore:      "1.12.0",
			AndroidxLifecycle: "2.8.0",
			AndroidxActivity:  "1.8.2",
			Navigation:        "2.7.6",
			ComposeBom:        "2024.02.01",
			ComposeCompiler:   "1.5.8",
			Hilt:              "2.50",
			Room:              "2.6.1",
			Retrofit:          "2.9.0",
			OkHttp:            "4.12.0",
			Gson:              "2.10.1",
			Coroutines:        "1.7.3",
		},
		Backup: BackupConfig{
			RetentionDays: 7,
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: baseDir,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
// This is an internal helper and should not be exported.
func writeToFile(path string, cfg *Config) error {
	// Ensure the directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	// Check if config already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
