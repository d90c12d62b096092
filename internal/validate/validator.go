// Package validate checks a fixed project's build configuration against the
// Android 10+ / JDK 17 requirements and renders a pass/fail report.
package validate

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"buildfix/internal/envprobe"
)

// Check is the outcome of one validation step.
type Check struct {
	Name    string
	OK      bool
	Details []string
}

// Validator runs build-configuration checks against a project.
type Validator struct {
	projectRoot string
	env         *envprobe.Environment
}

// NewValidator creates a Validator for the given project, using an already
// detected environment snapshot.
func NewValidator(projectRoot string, env *envprobe.Environment) *Validator {
	return &Validator{projectRoot: projectRoot, env: env}
}

// Run executes all checks and returns their results in order.
func (v *Validator) Run() []Check {
	return []Check{
		v.CheckJava(),
		v.CheckGradleWrapper(),
		v.CheckProjectStructure(),
		v.CheckDependencies(),
		v.CheckAndroidConfig(),
	}
}

// CheckJava verifies a JDK 17 installation was detected.
func (v *Validator) CheckJava() Check {
	c := Check{Name: "Java version"}
	switch {
	case !v.env.Java.Installed:
		c.Details = append(c.Details, "no Java installation detected")
	case !v.env.Java.IsJDK17:
		c.Details = append(c.Details, fmt.Sprintf("%s is not JDK 17", v.env.Java.Version))
	default:
		c.OK = true
		c.Details = append(c.Details, v.env.Java.Version)
	}
	return c
}

// CheckGradleWrapper verifies the wrapper script exists and, on Unix, is
// executable.
func (v *Validator) CheckGradleWrapper() Check {
	c := Check{Name: "Gradle wrapper"}

	name := "gradlew"
	if runtime.GOOS == "windows" {
		name = "gradlew.bat"
	}
	info, err := os.Stat(filepath.Join(v.projectRoot, name))
	if err != nil {
		c.Details = append(c.Details, name+" does not exist")
		return c
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0111 == 0 {
		c.Details = append(c.Details, name+" is not executable")
		return c
	}

	c.OK = true
	if v.env.Gradle.Version != "" {
		c.Details = append(c.Details, v.env.Gradle.Version)
	}
	return c
}

// CheckProjectStructure verifies the files every fixed project must have.
func (v *Validator) CheckProjectStructure() Check {
	c := Check{Name: "Project structure"}

	required := []string{
		"settings.gradle.kts",
		"build.gradle.kts",
		"gradle.properties",
		"dependencies.gradle.kts",
	}
	for _, name := range required {
		if _, err := os.Stat(filepath.Join(v.projectRoot, name)); err != nil {
			c.Details = append(c.Details, "missing "+name)
		}
	}

	c.OK = len(c.Details) == 0
	return c
}

// CheckDependencies verifies the unified dependency definitions exist and
// carry version declarations.
func (v *Validator) CheckDependencies() Check {
	c := Check{Name: "Dependency definitions"}

	data, err := os.ReadFile(filepath.Join(v.projectRoot, "dependencies.gradle.kts"))
	if err != nil {
		c.Details = append(c.Details, "dependencies.gradle.kts is not readable")
		return c
	}
	content := string(data)
	if !strings.Contains(content, "object Versions") || !strings.Contains(content, "object Libraries") {
		c.Details = append(c.Details, "dependencies.gradle.kts lacks Versions/Libraries definitions")
		return c
	}

	c.OK = true
	return c
}

// CheckAndroidConfig verifies gradle.properties and the dependency
// definitions carry the required Android 10+ / JDK 17 settings.
func (v *Validator) CheckAndroidConfig() Check {
	c := Check{Name: "Android configuration"}

	props, err := os.ReadFile(filepath.Join(v.projectRoot, "gradle.properties"))
	if err != nil {
		c.Details = append(c.Details, "gradle.properties is not readable")
	} else {
		content := string(props)
		required := []struct {
			setting string
			desc    string
		}{
			{"android.useAndroidX=true", "AndroidX enabled"},
			{"kotlin.code.style=official", "Kotlin code style"},
		}
		for _, req := range required {
			if !strings.Contains(content, req.setting) {
				c.Details = append(c.Details, "gradle.properties missing: "+req.desc)
			}
		}
	}

	deps, err := os.ReadFile(filepath.Join(v.projectRoot, "dependencies.gradle.kts"))
	if err == nil {
		if !strings.Contains(string(deps), "minSdk = 29") {
			c.Details = append(c.Details, "minSdk is not 29 in dependencies.gradle.kts")
		}
		if !strings.Contains(string(deps), `jvmTarget = "17"`) {
			c.Details = append(c.Details, "jvmTarget is not 17 in dependencies.gradle.kts")
		}
	}

	c.OK = len(c.Details) == 0
	return c
}

// Report renders the check results as a human-readable report.
func Report(checks []Check) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Build validation report")
	fmt.Fprintln(&b, rule)

	allOK := true
	for _, c := range checks {
		status := "PASS"
		if !c.OK {
			status = "FAIL"
			allOK = false
		}
		fmt.Fprintf(&b, "%-4s %s\n", status, c.Name)
		for _, d := range c.Details {
			fmt.Fprintf(&b, "     %s\n", d)
		}
	}

	fmt.Fprintln(&b, rule)
	if allOK {
		fmt.Fprintln(&b, "All checks passed.")
	} else {
		fmt.Fprintln(&b, "Some checks failed. Run `buildfix fix` and retry.")
	}
	return b.String()
}
