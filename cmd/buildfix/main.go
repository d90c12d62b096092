package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"buildfix/internal/app"
	"buildfix/internal/config"
	"buildfix/internal/envprobe"
	"buildfix/internal/validate"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// projectRoot resolves the --project flag to an absolute path.
func projectRoot(cmd *cobra.Command) (string, error) {
	project, _ := cmd.Flags().GetString("project")
	root, err := filepath.Abs(project)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return root, nil
}

// newApp creates a fully wired App for the project named by --project.
// The caller must defer a.Close().
func newApp(cmd *cobra.Command, operation string) (*app.App, error) {
	root, err := projectRoot(cmd)
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(root, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "buildfix",
	Short: "Android build configuration fixer",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		defaults := app.GetDefaults(root)

		memory := envprobe.NewDetector(root).DetectMemory()
		cfg := config.NewConfig(defaults["base_dir"], memory.TotalMB)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Gradle memory: %s (system: %d MB)\n", cfg.Gradle.Memory, memory.TotalMB)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		defaults := app.GetDefaults(root)

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Namespace:     %s\n", cfg.Android.Namespace)
		fmt.Printf("Compile SDK:   %d\n", cfg.Android.CompileSdk)
		fmt.Printf("Min SDK:       %d\n", cfg.Android.MinSdk)
		fmt.Printf("JVM target:    %s\n", cfg.Android.JvmTarget)
		fmt.Printf("Gradle:        %s (AGP %s, Kotlin %s)\n", cfg.Gradle.Version, cfg.Gradle.AgpVersion, cfg.Gradle.KotlinVersion)
		fmt.Printf("Gradle memory: %s\n", cfg.Gradle.Memory)
		fmt.Printf("Retention:     %d days\n", cfg.Backup.RetentionDays)
		fmt.Printf("Log dir:       %s\n", cfg.LogDir)
		return nil
	},
}

// env command
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Detect the development environment",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		env := envprobe.NewDetector(root).Detect()
		fmt.Print(env.Report())
		return nil
	},
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check environment requirements",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		env := envprobe.NewDetector(root).Detect()

		ok, issues := env.CheckRequirements()
		for _, issue := range issues {
			fmt.Printf("  - %s\n", issue)
		}
		if !ok {
			return fmt.Errorf("environment requirements not met")
		}
		fmt.Println("Environment OK")
		return nil
	},
}

// analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze project build configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Analyze")
		if err != nil {
			return err
		}
		defer a.Close()

		analysis, err := a.Analyze()
		if err != nil {
			return err
		}

		fmt.Printf("Modules: %d\n", len(analysis.Modules))
		for _, include := range analysis.Includes {
			m := analysis.Modules[include]
			state := "ok"
			switch {
			case !m.DirExists:
				state = "missing directory"
			case !m.BuildExists:
				state = "missing build file"
			case m.NeedsFix():
				state = "build file too small"
			}
			fmt.Printf("  %-40s %-10s %s\n", m.Path, m.Kind, state)
		}

		if len(analysis.Problems) > 0 {
			fmt.Println("\nProblems:")
			for _, p := range analysis.Problems {
				fmt.Printf("  - %s\n", p)
			}
		}
		return nil
	},
}

// fix command
var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "Fix broken build files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "Fix")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Fix()
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("fix failed: %w", err)
		}

		fmt.Print(summary.Report())
		return nil
	},
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate project configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot(cmd)
		if err != nil {
			return err
		}
		env := envprobe.NewDetector(root).Detect()

		v := validate.NewValidator(root, env)
		checks := v.Run()
		fmt.Print(validate.Report(checks))

		for _, c := range checks {
			if !c.OK {
				return fmt.Errorf("validation failed")
			}
		}
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage file backups",
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backup log entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "ListBackups")
		if err != nil {
			return err
		}
		defer a.Close()

		records, err := a.ListBackups()
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Println("No backups recorded.")
			return nil
		}

		for _, r := range records {
			fmt.Printf("%s  %-40s  %8d  %s\n",
				r.Timestamp.Format("2006-01-02 15:04:05"),
				r.Original,
				r.Size,
				r.Reason,
			)
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore BACKUP_PATH",
	Short: "Restore a file from backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")

		a, err := newApp(cmd, "RestoreBackup")
		if err != nil {
			return err
		}
		defer a.Close()

		restored, err := a.RestoreBackup(args[0], target)
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Restored %s\n", restored)
		return nil
	},
}

var backupCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired backup files",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, _ := cmd.Flags().GetInt("days")

		a, err := newApp(cmd, "CleanupBackups")
		if err != nil {
			return err
		}
		defer a.Close()

		removed, err := a.CleanupBackups(days)
		if err != nil {
			a.SetStatus("error")
			return fmt.Errorf("cleanup failed: %w", err)
		}

		fmt.Printf("Removed %d expired backup file(s)\n", removed)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View fix run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No fix runs recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-15s  %s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
			)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("project", "p", ".", "Project root directory")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// env subcommands
	envCmd.AddCommand(envCheckCmd)

	// backup subcommands
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupCleanupCmd)
	backupRestoreCmd.Flags().StringP("target", "t", "", "Restore to this path instead of the original location")
	backupCleanupCmd.Flags().IntP("days", "d", 7, "Remove backups older than this many days")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of runs to show")
}
