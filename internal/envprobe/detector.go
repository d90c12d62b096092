// Package envprobe detects the local development toolchain: Java, the
// Android SDK, Android Studio, the Gradle wrapper, and machine resources.
// Individual probes that fail do not abort detection; their failures are
// collected in Environment.Problems so callers can surface them.
package envprobe

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// Environment is a snapshot of the detected development environment.
type Environment struct {
	System        string     `json:"system"`
	Arch          string     `json:"arch"`
	Java          JavaInfo   `json:"java"`
	AndroidSDK    SDKInfo    `json:"android_sdk"`
	AndroidStudio StudioInfo `json:"android_studio"`
	Gradle        GradleInfo `json:"gradle"`
	Memory        MemoryInfo `json:"memory"`
	CPUCores      int        `json:"cpu_cores"`
	Problems      []string   `json:"problems,omitempty"`
}

// JavaInfo describes a detected Java installation.
type JavaInfo struct {
	Installed bool   `json:"installed"`
	Version   string `json:"version"`
	Home      string `json:"home"`
	IsJDK17   bool   `json:"is_jdk_17"`
}

// SDKInfo describes a detected Android SDK installation.
type SDKInfo struct {
	Installed  bool     `json:"installed"`
	Path       string   `json:"path"`
	Platforms  []string `json:"platforms"`
	BuildTools []string `json:"build_tools"`
}

// StudioInfo describes a detected Android Studio installation.
type StudioInfo struct {
	Installed bool   `json:"installed"`
	Path      string `json:"path"`
	Version   string `json:"version"`
}

// GradleInfo describes the Gradle wrapper state of the project.
type GradleInfo struct {
	Installed     bool   `json:"installed"`
	Version       string `json:"version"`
	WrapperExists bool   `json:"wrapper_exists"`
}

// MemoryInfo holds system memory in megabytes.
type MemoryInfo struct {
	TotalMB     int `json:"total_mb"`
	AvailableMB int `json:"available_mb"`
}

// Detector probes the local machine and a project directory.
type Detector struct {
	projectRoot string
	goos        string
}

// NewDetector creates a Detector for the given project root.
func NewDetector(projectRoot string) *Detector {
	return &Detector{projectRoot: projectRoot, goos: runtime.GOOS}
}

// Detect runs all probes and returns the combined snapshot.
func (d *Detector) Detect() *Environment {
	env := &Environment{
		System:   d.goos,
		Arch:     runtime.GOARCH,
		CPUCores: runtime.NumCPU(),
	}

	env.Java = d.detectJava(env)
	env.AndroidSDK = d.detectAndroidSDK(env)
	env.AndroidStudio = d.detectAndroidStudio(env)
	env.Gradle = d.detectGradle(env)
	env.Memory = d.detectMemory(env)

	return env
}

// addProblem records a non-fatal probe failure on the snapshot.
func (d *Detector) addProblem(env *Environment, probe string, err error) {
	env.Problems = append(env.Problems, fmt.Sprintf("%s: %v", probe, err))
}

// javaCandidates returns well-known JDK install locations for the current
// OS, with JAVA_HOME first.
func (d *Detector) javaCandidates() []string {
	var paths []string
	if home := os.Getenv("JAVA_HOME"); home != "" {
		paths = append(paths, home)
	}

	switch d.goos {
	case "windows":
		paths = append(paths,
			`C:\Program Files\Java\jdk-17`,
			`C:\Program Files\Java\jdk-17.0.0`,
			`D:\Program Files\Java\jdk-17`,
			`C:\Program Files\Android\Android Studio\jbr`,
		)
	case "darwin":
		paths = append(paths,
			"/Library/Java/JavaVirtualMachines/jdk-17.jdk/Contents/Home",
			"/Library/Java/JavaVirtualMachines/jdk-17.0.0.jdk/Contents/Home",
			"/usr/local/opt/openjdk@17",
			"/Applications/Android Studio.app/Contents/jbr/Contents/Home",
		)
	default:
		paths = append(paths,
			"/usr/lib/jvm/jdk-17",
			"/usr/lib/jvm/java-17-openjdk",
			"/opt/jdk-17",
			"/usr/local/android-studio/jbr",
		)
	}
	return paths
}

// detectJava locates a usable JDK by running `java -version` from candidate homes.
func (d *Detector) detectJava(env *Environment) JavaInfo {
	var info JavaInfo

	javaName := "java"
	if d.goos == "windows" {
		javaName = "java.exe"
	}

	for _, home := range d.javaCandidates() {
		javaBin := filepath.Join(home, "bin", javaName)
		if _, err := os.Stat(javaBin); err != nil {
			continue
		}

		// java prints its version banner on stderr.
		out, err := exec.Command(javaBin, "-version").CombinedOutput()
		if err != nil {
			d.addProblem(env, "java", fmt.Errorf("%s: %w", javaBin, err))
			continue
		}

		for _, line := range strings.Split(string(out), "\n") {
			if strings.Contains(strings.ToLower(line), "version") {
				info.Installed = true
				info.Version = strings.TrimSpace(line)
				info.Home = home
				info.IsJDK17 = strings.Contains(line, "17")
				return info
			}
		}
	}

	return info
}

// sdkCandidates returns well-known Android SDK locations for the current OS,
// with ANDROID_HOME and ANDROID_SDK_ROOT first.
func (d *Detector) sdkCandidates() []string {
	var paths []string
	for _, envVar := range []string{"ANDROID_HOME", "ANDROID_SDK_ROOT"} {
		if p := os.Getenv(envVar); p != "" {
			paths = append(paths, p)
		}
	}

	home, err := os.UserHomeDir()
	switch d.goos {
	case "windows":
		if err == nil {
			paths = append(paths, filepath.Join(home, "AppData", "Local", "Android", "Sdk"))
		}
		paths = append(paths, `C:\Android\Sdk`)
	case "darwin":
		if err == nil {
			paths = append(paths, filepath.Join(home, "Library", "Android", "sdk"))
		}
		paths = append(paths, "/usr/local/share/android-sdk")
	default:
		if err == nil {
			paths = append(paths, filepath.Join(home, "Android", "Sdk"))
		}
		paths = append(paths, "/usr/lib/android-sdk")
	}
	return paths
}

// detectAndroidSDK finds an SDK root containing a platforms directory and
// inventories installed platforms and build-tools.
func (d *Detector) detectAndroidSDK(env *Environment) SDKInfo {
	var info SDKInfo

	for _, path := range d.sdkCandidates() {
		platformsDir := filepath.Join(path, "platforms")
		if _, err := os.Stat(platformsDir); err != nil {
			continue
		}

		info.Installed = true
		info.Path = path
		info.Platforms = listSubdirs(platformsDir)
		info.BuildTools = listSubdirs(filepath.Join(path, "build-tools"))
		return info
	}

	return info
}

// studioCandidates returns well-known Android Studio locations for the current OS.
func (d *Detector) studioCandidates() []string {
	switch d.goos {
	case "windows":
		return []string{
			`C:\Program Files\Android\Android Studio`,
			`C:\Program Files\JetBrains\Android Studio`,
		}
	case "darwin":
		return []string{"/Applications/Android Studio.app"}
	default:
		return []string{
			"/usr/local/android-studio",
			"/opt/android-studio",
			"/snap/android-studio/current",
		}
	}
}

var studioVersionRe = regexp.MustCompile(`version=(\S+)`)

// detectAndroidStudio finds an Android Studio installation and reads its
// version from idea.properties.
func (d *Detector) detectAndroidStudio(env *Environment) StudioInfo {
	var info StudioInfo

	for _, path := range d.studioCandidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}

		info.Installed = true
		info.Path = path

		props := filepath.Join(path, "bin", "idea.properties")
		if d.goos == "darwin" {
			props = filepath.Join(path, "Contents", "bin", "idea.properties")
		}
		data, err := os.ReadFile(props)
		if err != nil {
			if !os.IsNotExist(err) {
				d.addProblem(env, "android_studio", err)
			}
			return info
		}
		if m := studioVersionRe.FindSubmatch(data); m != nil {
			info.Version = string(m[1])
		}
		return info
	}

	return info
}

// detectGradle checks for the project's Gradle wrapper and asks it for its version.
func (d *Detector) detectGradle(env *Environment) GradleInfo {
	var info GradleInfo

	wrapper := filepath.Join(d.projectRoot, "gradlew")
	if d.goos == "windows" {
		wrapper = filepath.Join(d.projectRoot, "gradlew.bat")
	}
	if _, err := os.Stat(wrapper); err != nil {
		return info
	}
	info.WrapperExists = true

	cmd := exec.Command(wrapper, "--version")
	cmd.Dir = d.projectRoot
	out, err := cmd.Output()
	if err != nil {
		d.addProblem(env, "gradle", err)
		return info
	}

	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, "Gradle") && strings.Contains(strings.ToLower(line), "version") {
			info.Installed = true
			info.Version = strings.TrimSpace(line)
			break
		}
	}
	return info
}

// detectMemory reads total and available system memory.
func (d *Detector) detectMemory(env *Environment) MemoryInfo {
	var info MemoryInfo

	switch d.goos {
	case "linux":
		data, err := os.ReadFile("/proc/meminfo")
		if err != nil {
			d.addProblem(env, "memory", err)
			return info
		}
		for _, line := range strings.Split(string(data), "\n") {
			fields := strings.Fields(line)
			if len(fields) < 2 {
				continue
			}
			kb, err := strconv.Atoi(fields[1])
			if err != nil {
				continue
			}
			switch fields[0] {
			case "MemTotal:":
				info.TotalMB = kb / 1024
			case "MemAvailable:":
				info.AvailableMB = kb / 1024
			}
		}
	case "darwin":
		out, err := exec.Command("sysctl", "-n", "hw.memsize").Output()
		if err != nil {
			d.addProblem(env, "memory", err)
			return info
		}
		bytes, err := strconv.ParseInt(strings.TrimSpace(string(out)), 10, 64)
		if err != nil {
			d.addProblem(env, "memory", err)
			return info
		}
		info.TotalMB = int(bytes / (1024 * 1024))
	}

	return info
}

// DetectMemory runs only the memory probe. Callers that just need machine
// sizing (for config defaults) use this instead of a full Detect.
func (d *Detector) DetectMemory() MemoryInfo {
	var env Environment
	return d.detectMemory(&env)
}

// listSubdirs returns the names of all subdirectories of dir, or nil if dir
// cannot be read.
func listSubdirs(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}
