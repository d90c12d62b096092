package envprobe

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders a human-readable environment report.
func (e *Environment) Report() string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Environment report")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "OS: %s (%s)\n", e.System, e.Arch)
	fmt.Fprintf(&b, "CPU cores: %d\n", e.CPUCores)
	fmt.Fprintf(&b, "Memory: %dMB total, %dMB available\n", e.Memory.TotalMB, e.Memory.AvailableMB)

	fmt.Fprintln(&b, "\nJava:")
	if e.Java.Installed {
		fmt.Fprintf(&b, "  installed: %s\n", e.Java.Version)
		fmt.Fprintf(&b, "  home: %s\n", e.Java.Home)
		if e.Java.IsJDK17 {
			fmt.Fprintln(&b, "  JDK 17: yes")
		} else {
			fmt.Fprintln(&b, "  JDK 17: no (JDK 17 recommended)")
		}
	} else {
		fmt.Fprintln(&b, "  not found")
	}

	fmt.Fprintln(&b, "\nAndroid SDK:")
	if e.AndroidSDK.Installed {
		fmt.Fprintf(&b, "  installed: %s\n", e.AndroidSDK.Path)
		if len(e.AndroidSDK.Platforms) > 0 {
			fmt.Fprintf(&b, "  platforms: %s\n", lastN(e.AndroidSDK.Platforms, 5))
		}
		if len(e.AndroidSDK.BuildTools) > 0 {
			fmt.Fprintf(&b, "  build-tools: %s\n", lastN(e.AndroidSDK.BuildTools, 5))
		}
	} else {
		fmt.Fprintln(&b, "  not found")
	}

	fmt.Fprintln(&b, "\nAndroid Studio:")
	if e.AndroidStudio.Installed {
		fmt.Fprintf(&b, "  installed: %s\n", e.AndroidStudio.Path)
		if e.AndroidStudio.Version != "" {
			fmt.Fprintf(&b, "  version: %s\n", e.AndroidStudio.Version)
		}
	} else {
		fmt.Fprintln(&b, "  not found")
	}

	fmt.Fprintln(&b, "\nGradle:")
	if e.Gradle.WrapperExists {
		fmt.Fprintln(&b, "  wrapper: present")
		if e.Gradle.Installed {
			fmt.Fprintf(&b, "  %s\n", e.Gradle.Version)
		}
	} else {
		fmt.Fprintln(&b, "  wrapper: missing")
	}

	if len(e.Problems) > 0 {
		fmt.Fprintln(&b, "\nProbe problems:")
		for _, p := range e.Problems {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}

	fmt.Fprintln(&b, rule)
	return b.String()
}

// CheckRequirements verifies the environment against the minimum needed to
// build the project. Returns ok=false only for hard failures; soft issues
// (non-17 JDK, low memory) are reported but do not fail the check.
func (e *Environment) CheckRequirements() (bool, []string) {
	var issues []string
	ok := true

	if !e.Java.Installed {
		issues = append(issues, "Java is not installed")
		ok = false
	} else if !e.Java.IsJDK17 {
		issues = append(issues, "Java is not JDK 17")
	}

	if !e.AndroidSDK.Installed {
		issues = append(issues, "Android SDK is not installed")
		ok = false
	}

	if e.Memory.TotalMB > 0 && e.Memory.TotalMB < 4096 {
		issues = append(issues, fmt.Sprintf("low system memory (%dMB), 8GB recommended", e.Memory.TotalMB))
	}

	return ok, issues
}

// lastN joins the alphabetically last n entries of names.
func lastN(names []string, n int) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	if len(sorted) > n {
		sorted = sorted[len(sorted)-n:]
	}
	return strings.Join(sorted, ", ")
}
