package app

import (
	"errors"
	"fmt"
	"os"

	"buildfix/internal/backup"
	"buildfix/internal/config"
	"buildfix/internal/database"
	"buildfix/internal/envprobe"
	"buildfix/internal/fix"
	"buildfix/internal/gradle"
)

// App is the application layer between the CLI and FixService.
// It constructs all dependencies from config, exposes high-level operations
// on a single project root, and manages the DB lifecycle on Close.
type App struct {
	projectRoot string
	cfg         *config.Config
	db          fix.Database
	backups     fix.BackupStore
	service     *fix.FixService
	detector    *envprobe.Detector
	env         *envprobe.Environment
	run         *FixRun
	logFile     *os.File
}

// NewApp creates a fully wired App for the given project root.
// operation identifies the CLI command being run (e.g. "Fix", "RestoreBackup").
// If no config file exists, defaults sized to the machine are used.
// The caller must call Close when done.
func NewApp(projectRoot string, operation string) (*App, error) {
	defaults := GetDefaults(projectRoot)
	detector := envprobe.NewDetector(projectRoot)

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		cfg = config.NewConfig(defaults["base_dir"], detector.DetectMemory().TotalMB)
	}
	// A partial config file may leave log_dir unset.
	if cfg.LogDir == "" {
		cfg.LogDir = defaults["log_dir"]
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	runID := fix.UUIDGenerator{}.New()
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	backups, err := backup.NewManager(projectRoot, fix.RealClock{}, &slogAdapter{l: logger})
	if err != nil {
		db.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating backup manager: %w", err)
	}

	svc := fix.NewFixService(db, backups, &slogAdapter{l: logger}, fix.RealClock{})
	run := NewFixRun(operation, "")

	return &App{
		projectRoot: projectRoot,
		cfg:         cfg,
		db:          db,
		backups:     backups,
		service:     svc,
		detector:    detector,
		run:         run,
		logFile:     logFile,
	}, nil
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// persistRun saves the fix run to the history database, giving it an
// auto-increment ID. This should only be called for mutating commands.
func (a *App) persistRun(parameters string) error {
	if a.run.Persisted() {
		return nil // already persisted
	}
	a.run.Parameters = parameters
	op, err := a.db.CreateFixOperation(a.run.Operation, a.run.Parameters)
	if err != nil {
		return fmt.Errorf("persisting fix run: %w", err)
	}
	a.run.ID = op.ID
	return nil
}

// Environment probes the local toolchain, caching the result for the
// lifetime of the App.
func (a *App) Environment() *envprobe.Environment {
	if a.env == nil {
		a.env = a.detector.Detect()
	}
	return a.env
}

// Analyze inspects the project's Gradle configuration without modifying it.
func (a *App) Analyze() (*gradle.Analysis, error) {
	return a.service.Analyze(a.projectRoot)
}

// Fix regenerates broken or missing build files across the project,
// backing up every file it overwrites. It also writes an environment
// snapshot and sweeps expired backups.
func (a *App) Fix() (*fix.FixSummary, error) {
	if err := a.persistRun(""); err != nil {
		return nil, err
	}

	env := a.Environment()
	summary, err := a.service.FixProject(a.projectRoot, a.cfg, env)
	if err != nil {
		return nil, err
	}

	if err := a.service.SaveEnvironmentSnapshot(a.projectRoot, env, a.cfg); err != nil {
		return nil, fmt.Errorf("saving environment snapshot: %w", err)
	}

	return summary, nil
}

// ListBackups returns all backup log records, oldest first.
func (a *App) ListBackups() ([]fix.BackupRecord, error) {
	return a.service.ListBackups()
}

// RestoreBackup restores a stored backup file over its original location,
// or to target if non-empty. Returns the path written.
func (a *App) RestoreBackup(backupPath string, target string) (string, error) {
	if err := a.persistRun(backupPath); err != nil {
		return "", err
	}
	return a.service.RestoreBackup(backupPath, target)
}

// CleanupBackups removes stored backup files older than maxAgeDays.
// Returns the number of files removed.
func (a *App) CleanupBackups(maxAgeDays int) (int, error) {
	if err := a.persistRun(fmt.Sprintf("days=%d", maxAgeDays)); err != nil {
		return 0, err
	}
	return a.service.CleanupBackups(maxAgeDays)
}

// GetHistory returns the most recent fix runs, newest first.
func (a *App) GetHistory(limit int) ([]*fix.FixOperation, error) {
	return a.service.GetHistory(limit)
}

// Close finalizes the run record and closes all resources.
// Persisted runs get their finish time and status stamped; non-mutating
// runs leave no trace in the history database.
func (a *App) Close() error {
	var firstErr error

	if a.run.Persisted() {
		if err := a.db.FinishFixOperation(a.run.ID, a.run.Status); err != nil {
			firstErr = fmt.Errorf("finishing fix run: %w", err)
		}
	}

	if err := a.db.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing database: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// SetStatus marks the run's final status ("success" or "error") before Close.
func (a *App) SetStatus(status string) {
	a.run.Status = status
}
