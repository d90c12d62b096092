package fix

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"buildfix/internal/config"
	"buildfix/internal/envprobe"
	"buildfix/internal/gradle"
)

// FixService is the orchestration layer that coordinates analysis, backup,
// and generation to perform the high-level operations needed by the CLI.
type FixService struct {
	database Database
	backups  BackupStore
	logger   Logger
	clock    Clock
}

// NewFixService creates a new FixService with the provided dependencies.
func NewFixService(database Database, backups BackupStore, logger Logger, clock Clock) *FixService {
	return &FixService{
		database: database,
		backups:  backups,
		logger:   logger,
		clock:    clock,
	}
}

// FixSummary reports what a fix run did.
type FixSummary struct {
	TotalModules   int
	FixedModules   int
	SkippedModules int
	FilesWritten   []string
	BackupsCreated []string
	SweptBackups   int
	Problems       []string
}

// Report renders the summary for terminal output.
func (s *FixSummary) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Modules:  %d total, %d fixed, %d skipped\n",
		s.TotalModules, s.FixedModules, s.SkippedModules)
	fmt.Fprintf(&b, "Files:    %d written, %d backed up\n",
		len(s.FilesWritten), len(s.BackupsCreated))
	if s.SweptBackups > 0 {
		fmt.Fprintf(&b, "Backups:  %d expired file(s) swept\n", s.SweptBackups)
	}
	for _, p := range s.Problems {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	return b.String()
}

// Analyze inspects the project's build configuration.
func (s *FixService) Analyze(projectRoot string) (*gradle.Analysis, error) {
	a, err := gradle.AnalyzeProject(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("analyzing project: %w", err)
	}
	s.logger.Debug("project analyzed", "modules", len(a.Includes), "problems", len(a.Problems))
	return a, nil
}

// FixProject rewrites the project's build-configuration files. Every file
// that already exists is captured into the backup store before it is
// overwritten. Missing module source-set directories are created, and
// backups past the configured retention age are swept at the end of the run.
func (s *FixService) FixProject(projectRoot string, cfg *config.Config, env *envprobe.Environment) (*FixSummary, error) {
	analysis, err := s.Analyze(projectRoot)
	if err != nil {
		return nil, err
	}

	renderer := gradle.NewRenderer(cfg, env.Java.Home, env.AndroidSDK.Path, env.CPUCores, s.clock.Now())
	plan := gradle.Plan(projectRoot, analysis, renderer)

	summary := &FixSummary{
		TotalModules: len(analysis.Includes),
		Problems:     analysis.Problems,
	}
	for _, name := range analysis.Includes {
		if analysis.Modules[name].NeedsFix() {
			summary.FixedModules++
		} else {
			summary.SkippedModules++
		}
	}

	for _, pf := range plan {
		target := filepath.Join(projectRoot, filepath.FromSlash(pf.Path))

		rec, err := s.backups.Capture(target, pf.Reason)
		if err != nil {
			return summary, fmt.Errorf("capturing %s: %w", pf.Path, err)
		}
		if rec != nil {
			summary.BackupsCreated = append(summary.BackupsCreated, rec.Backup)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return summary, fmt.Errorf("creating directory for %s: %w", pf.Path, err)
		}
		if err := os.WriteFile(target, pf.Content, 0644); err != nil {
			return summary, fmt.Errorf("writing %s: %w", pf.Path, err)
		}

		summary.FilesWritten = append(summary.FilesWritten, pf.Path)
		s.logger.Info("file written", "path", pf.Path, "reason", pf.Reason)
	}

	// Standard source-set skeleton for modules that were just (re)generated.
	for _, name := range analysis.Includes {
		mod := analysis.Modules[name]
		if !mod.NeedsFix() {
			continue
		}
		for _, dir := range gradle.StandardDirs() {
			full := filepath.Join(projectRoot, filepath.FromSlash(mod.Path), filepath.FromSlash(dir))
			if err := os.MkdirAll(full, 0755); err != nil {
				return summary, fmt.Errorf("creating module directory %s: %w", dir, err)
			}
		}
	}

	swept, err := s.backups.Cleanup(cfg.Backup.RetentionDays)
	if err != nil {
		return summary, fmt.Errorf("sweeping old backups: %w", err)
	}
	summary.SweptBackups = swept

	s.logger.Info("fix complete",
		"modules_fixed", summary.FixedModules,
		"files_written", len(summary.FilesWritten),
		"backups_created", len(summary.BackupsCreated),
	)
	return summary, nil
}

// ListBackups returns all backup log records, oldest first.
func (s *FixService) ListBackups() ([]BackupRecord, error) {
	return s.backups.List()
}

// RestoreBackup restores a stored backup to its original location, or to
// target if non-empty. Returns the path written.
func (s *FixService) RestoreBackup(backupPath string, target string) (string, error) {
	return s.backups.Restore(backupPath, target)
}

// CleanupBackups removes stored backups older than maxAgeDays and returns
// the number removed.
func (s *FixService) CleanupBackups(maxAgeDays int) (int, error) {
	return s.backups.Cleanup(maxAgeDays)
}

// GetHistory returns the most recent fix operations, newest first.
func (s *FixService) GetHistory(limit int) ([]*FixOperation, error) {
	ops, err := s.database.ListFixOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing fix operations: %w", err)
	}
	return ops, nil
}

// environmentSnapshot is the persisted .environment_config.json document.
type environmentSnapshot struct {
	DetectedAt    string                `json:"detected_at"`
	Environment   *envprobe.Environment `json:"environment"`
	ProjectConfig *config.Config        `json:"project_config"`
}

// SaveEnvironmentSnapshot writes the detected environment and resolved
// project config to <project_root>/.environment_config.json.
func (s *FixService) SaveEnvironmentSnapshot(projectRoot string, env *envprobe.Environment, cfg *config.Config) error {
	snap := environmentSnapshot{
		DetectedAt:    s.clock.Now().Format("2006-01-02T15:04:05Z07:00"),
		Environment:   env,
		ProjectConfig: cfg,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding environment snapshot: %w", err)
	}

	path := filepath.Join(projectRoot, ".environment_config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing environment snapshot: %w", err)
	}

	s.logger.Debug("environment snapshot saved", "path", path)
	return nil
}
