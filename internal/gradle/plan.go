package gradle

import (
	"fmt"
	"os"
	"path/filepath"
)

// PlannedFile is one build-configuration file to be written, with the
// reason recorded alongside its pre-write backup.
type PlannedFile struct {
	Path    string // relative to the project root, forward slashes
	Content []byte
	Reason  string
}

// Plan computes the full set of files a fix run will write: the root build
// script, the unified dependency definitions, gradle.properties, the wrapper
// properties, the project structure document, a build script for every module
// that needs one, and skeleton manifest/proguard files for modules that lack
// them.
func Plan(projectRoot string, a *Analysis, r *Renderer) []PlannedFile {
	files := []PlannedFile{
		{Path: "build.gradle.kts", Content: r.RootBuildScript(), Reason: "fix root build configuration"},
		{Path: "dependencies.gradle.kts", Content: r.DependenciesScript(), Reason: "create unified dependency management"},
		{Path: "gradle.properties", Content: r.GradleProperties(), Reason: "create gradle.properties"},
		{Path: "gradle/wrapper/gradle-wrapper.properties", Content: r.WrapperProperties(), Reason: "update gradle wrapper"},
		{Path: "docs/PROJECT_STRUCTURE.md", Content: r.ProjectStructureDoc(), Reason: "create project documentation"},
	}

	for _, name := range a.Includes {
		mod := a.Modules[name]
		if !mod.NeedsFix() {
			continue
		}
		files = append(files, PlannedFile{
			Path:    mod.BuildFile,
			Content: r.ModuleBuildScript(mod),
			Reason:  fmt.Sprintf("fix module %s", mod.Name),
		})

		// Skeleton files only where none exist yet.
		manifest := mod.Path + "/src/main/AndroidManifest.xml"
		if _, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(manifest))); os.IsNotExist(err) {
			files = append(files, PlannedFile{
				Path:    manifest,
				Content: r.AndroidManifest(mod),
				Reason:  fmt.Sprintf("create manifest for %s", mod.Name),
			})
		}
		proguard := mod.Path + "/proguard-rules.pro"
		if _, err := os.Stat(filepath.Join(projectRoot, filepath.FromSlash(proguard))); os.IsNotExist(err) {
			files = append(files, PlannedFile{
				Path:    proguard,
				Content: r.ProguardRules(),
				Reason:  fmt.Sprintf("create proguard rules for %s", mod.Name),
			})
		}
	}

	return files
}

// StandardDirs returns the standard source-set directories for a module,
// relative to the module directory.
func StandardDirs() []string {
	return []string{
		"src/main/kotlin",
		"src/main/res/values",
		"src/main/res/layout",
		"src/main/res/drawable",
		"src/test/kotlin",
		"src/androidTest/kotlin",
	}
}
