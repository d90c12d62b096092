package app

import (
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths for a project, checking
// environment variables first. Environment variables:
//   - BUILDFIX_CONFIG_PATH: config file location (default: <project>/.buildfix/config.toml)
//   - BUILDFIX_HOME: base directory for buildfix state (default: <project>/.buildfix)
func GetDefaults(projectRoot string) map[string]string {
	baseDir := os.Getenv("BUILDFIX_HOME")
	if baseDir == "" {
		baseDir = filepath.Join(projectRoot, ".buildfix")
	}

	configPath := os.Getenv("BUILDFIX_CONFIG_PATH")
	if configPath == "" {
		configPath = filepath.Join(baseDir, "config.toml")
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
	}
}
