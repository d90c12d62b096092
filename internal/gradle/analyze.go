// Package gradle analyzes a Gradle project's structure and generates
// replacement build-configuration files targeting Android 10+ and JDK 17.
package gradle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Module describes one module declared in settings.gradle.kts.
type Module struct {
	Name          string // as declared, without the leading colon ("feature:chat")
	Path          string // relative directory path ("feature/chat")
	Kind          ModuleKind
	DirExists     bool
	BuildFile     string // relative path of the module build file
	BuildExists   bool
	BuildFileSize int64
}

// Analysis is the result of inspecting a project's build configuration.
type Analysis struct {
	Includes     []string // module names in declaration order
	Modules      map[string]*Module
	Problems     []string
	BuildFiles   []string
	EmptyFiles   []string
	MissingFiles []string
}

// minBuildFileSize is the size below which a module build file is treated
// as empty and in need of regeneration.
const minBuildFileSize = 100

var includeRe = regexp.MustCompile(`include\("([^"]+)"\)`)

// AnalyzeProject inspects settings.gradle.kts, the declared modules, the
// root build file, and the Gradle wrapper. Structural problems are collected
// in the returned Analysis rather than reported as errors; only I/O faults
// reading an existing settings file fail the call.
func AnalyzeProject(projectRoot string) (*Analysis, error) {
	a := &Analysis{Modules: make(map[string]*Module)}

	settingsPath := filepath.Join(projectRoot, "settings.gradle.kts")
	data, err := os.ReadFile(settingsPath)
	switch {
	case os.IsNotExist(err):
		a.Problems = append(a.Problems, "settings.gradle.kts does not exist")
	case err != nil:
		return nil, fmt.Errorf("reading settings.gradle.kts: %w", err)
	default:
		a.scanIncludes(projectRoot, string(data))
	}

	rootBuild := filepath.Join(projectRoot, "build.gradle.kts")
	info, err := os.Stat(rootBuild)
	switch {
	case os.IsNotExist(err):
		a.Problems = append(a.Problems, "root build.gradle.kts does not exist")
		a.MissingFiles = append(a.MissingFiles, "build.gradle.kts")
	case err != nil:
		return nil, fmt.Errorf("stat root build file: %w", err)
	case info.Size() < 50:
		a.Problems = append(a.Problems, "root build.gradle.kts is empty or too small")
		a.EmptyFiles = append(a.EmptyFiles, "build.gradle.kts")
	}

	wrapper := filepath.Join(projectRoot, "gradlew")
	if runtime.GOOS == "windows" {
		wrapper = filepath.Join(projectRoot, "gradlew.bat")
	}
	if _, err := os.Stat(wrapper); os.IsNotExist(err) {
		a.Problems = append(a.Problems, "Gradle wrapper does not exist")
	}

	return a, nil
}

// scanIncludes parses include directives and inventories each declared module.
func (a *Analysis) scanIncludes(projectRoot string, settings string) {
	for _, m := range includeRe.FindAllStringSubmatch(settings, -1) {
		name := strings.TrimPrefix(m[1], ":")
		dirPath := strings.ReplaceAll(name, ":", "/")
		moduleDir := filepath.Join(projectRoot, filepath.FromSlash(dirPath))
		buildFile := dirPath + "/build.gradle.kts"

		mod := &Module{
			Name:      name,
			Path:      dirPath,
			Kind:      GuessKind(name),
			BuildFile: buildFile,
		}
		a.Includes = append(a.Includes, name)
		a.Modules[name] = mod

		if _, err := os.Stat(moduleDir); err != nil {
			a.Problems = append(a.Problems, fmt.Sprintf("module directory does not exist: %s", dirPath))
			a.MissingFiles = append(a.MissingFiles, buildFile)
			continue
		}
		mod.DirExists = true
		a.BuildFiles = append(a.BuildFiles, buildFile)

		info, err := os.Stat(filepath.Join(moduleDir, "build.gradle.kts"))
		if err != nil {
			a.Problems = append(a.Problems, fmt.Sprintf("build file does not exist: %s", buildFile))
			a.MissingFiles = append(a.MissingFiles, buildFile)
			continue
		}
		mod.BuildExists = true
		mod.BuildFileSize = info.Size()
		if info.Size() < minBuildFileSize {
			a.Problems = append(a.Problems, fmt.Sprintf("build file is empty or too small: %s", buildFile))
			a.EmptyFiles = append(a.EmptyFiles, buildFile)
		}
	}
}

// NeedsFix reports whether a module's build file must be regenerated.
func (m *Module) NeedsFix() bool {
	return !m.BuildExists || m.BuildFileSize < minBuildFileSize
}
