package gradle

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"buildfix/internal/config"
)

// Renderer produces build-configuration file contents from the resolved
// config and environment. All output is deterministic for a fixed clock.
type Renderer struct {
	cfg        *config.Config
	javaHome   string
	androidSDK string
	cpuCores   int
	now        time.Time
}

// NewRenderer creates a Renderer.
// javaHome and androidSDK are the detected toolchain paths written into
// gradle.properties; cpuCores sizes the Gradle worker pool.
func NewRenderer(cfg *config.Config, javaHome string, androidSDK string, cpuCores int, now time.Time) *Renderer {
	return &Renderer{
		cfg:        cfg,
		javaHome:   javaHome,
		androidSDK: androidSDK,
		cpuCores:   cpuCores,
		now:        now,
	}
}

func (r *Renderer) header() string {
	return "Generated by buildfix at " + r.now.Format("2006-01-02 15:04:05")
}

// render executes a template against data, panicking on template syntax
// errors (all templates are compile-time constants exercised by tests).
func render(name string, text string, data any) []byte {
	t := template.Must(template.New(name).Parse(text))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("rendering %s: %v", name, err))
	}
	return buf.Bytes()
}

const rootBuildTmpl = `// Top-level build file where you can add configuration options common to all sub-projects/modules.
// Optimized for Android 10+ (minSdk {{.Android.MinSdk}}) and JDK {{.Android.JvmTarget}}
// {{.Header}}

plugins {
    id("com.android.application") version "{{.Gradle.AgpVersion}}" apply false
    id("com.android.library") version "{{.Gradle.AgpVersion}}" apply false
    id("org.jetbrains.kotlin.android") version "{{.Gradle.KotlinVersion}}" apply false
    id("com.google.dagger.hilt.android") version "{{.Deps.Hilt}}" apply false
    id("org.jetbrains.kotlin.kapt") version "{{.Gradle.KotlinVersion}}" apply false
    id("com.google.devtools.ksp") version "{{.Gradle.KotlinVersion}}-1.0.19" apply false
}

tasks.register("clean", Delete::class) {
    delete(rootProject.layout.buildDirectory)
}
`

// RootBuildScript renders the root build.gradle.kts.
func (r *Renderer) RootBuildScript() []byte {
	return render("root", rootBuildTmpl, map[string]any{
		"Header":  r.header(),
		"Android": r.cfg.Android,
		"Gradle":  r.cfg.Gradle,
		"Deps":    r.cfg.Dependencies,
	})
}

const dependenciesTmpl = `// Unified dependency management
// {{.Header}}

object Versions {
    // Android - targeting Android 10+ (minSdk {{.Android.MinSdk}})
    const val compileSdk = {{.Android.CompileSdk}}
    const val minSdk = {{.Android.MinSdk}}
    const val targetSdk = {{.Android.TargetSdk}}
    const val jvmTarget = "{{.Android.JvmTarget}}"
    const val kotlinCompilerExtensionVersion = "{{.Deps.ComposeCompiler}}"

    const val kotlin = "{{.Gradle.KotlinVersion}}"
    const val coroutines = "{{.Deps.Coroutines}}"
    const val coreKtx = "{{.Deps.AndroidxCore}}"
    const val lifecycle = "{{.Deps.AndroidxLifecycle}}"
    const val activity = "{{.Deps.AndroidxActivity}}"
    const val navigation = "{{.Deps.Navigation}}"
    const val hilt = "{{.Deps.Hilt}}"
    const val room = "{{.Deps.Room}}"
    const val retrofit = "{{.Deps.Retrofit}}"
    const val okhttp = "{{.Deps.OkHttp}}"
    const val composeBom = "{{.Deps.ComposeBom}}"

    // Test
    const val junit = "4.13.2"
    const val testExtJunit = "1.1.5"
    const val espresso = "3.5.1"
}

object Libraries {
    // Kotlin
    const val kotlinStdlib = "org.jetbrains.kotlin:kotlin-stdlib:${Versions.kotlin}"
    const val coroutinesAndroid = "org.jetbrains.kotlinx:kotlinx-coroutines-android:${Versions.coroutines}"
    const val coroutinesCore = "org.jetbrains.kotlinx:kotlinx-coroutines-core:${Versions.coroutines}"

    // AndroidX
    const val coreKtx = "androidx.core:core-ktx:${Versions.coreKtx}"
    const val lifecycleRuntime = "androidx.lifecycle:lifecycle-runtime-ktx:${Versions.lifecycle}"
    const val lifecycleViewModel = "androidx.lifecycle:lifecycle-viewmodel-ktx:${Versions.lifecycle}"
    const val activityCompose = "androidx.activity:activity-compose:${Versions.activity}"
    const val navigationCompose = "androidx.navigation:navigation-compose:${Versions.navigation}"

    // Compose
    const val composeBom = "androidx.compose:compose-bom:${Versions.composeBom}"
    const val composeUi = "androidx.compose.ui:ui"
    const val composeMaterial3 = "androidx.compose.material3:material3"
    const val composeToolingPreview = "androidx.compose.ui:ui-tooling-preview"

    // Hilt
    const val hiltAndroid = "com.google.dagger:hilt-android:${Versions.hilt}"
    const val hiltCompiler = "com.google.dagger:hilt-compiler:${Versions.hilt}"

    // Room
    const val roomRuntime = "androidx.room:room-runtime:${Versions.room}"
    const val roomKtx = "androidx.room:room-ktx:${Versions.room}"
    const val roomCompiler = "androidx.room:room-compiler:${Versions.room}"

    // Network
    const val retrofit = "com.squareup.retrofit2:retrofit:${Versions.retrofit}"
    const val retrofitGson = "com.squareup.retrofit2:converter-gson:${Versions.retrofit}"
    const val okhttp = "com.squareup.okhttp3:okhttp:${Versions.okhttp}"
    const val okhttpLogging = "com.squareup.okhttp3:logging-interceptor:${Versions.okhttp}"

    // Other
    const val gson = "com.google.code.gson:gson:{{.Deps.Gson}}"

    // Test
    const val junit = "junit:junit:${Versions.junit}"
    const val testExtJunit = "androidx.test.ext:junit:${Versions.testExtJunit}"
    const val espressoCore = "androidx.test.espresso:espresso-core:${Versions.espresso}"
}
`

// DependenciesScript renders dependencies.gradle.kts, the unified
// dependency-version definitions shared by all modules.
func (r *Renderer) DependenciesScript() []byte {
	return render("dependencies", dependenciesTmpl, map[string]any{
		"Header":  r.header(),
		"Android": r.cfg.Android,
		"Gradle":  r.cfg.Gradle,
		"Deps":    r.cfg.Dependencies,
	})
}

const gradlePropertiesTmpl = `# Project-wide Gradle settings
# Optimized for JDK {{.Android.JvmTarget}} and Android 10+
# {{.Header}}

# Java
{{if .JavaHome}}org.gradle.java.home={{.JavaHome}}
{{end}}org.gradle.jvmargs=-Xmx{{.Gradle.Memory}} -XX:MaxMetaspaceSize=512m -Dfile.encoding=UTF-8

# Android SDK
{{if .AndroidSDK}}sdk.dir={{.AndroidSDK}}
{{end}}android.useAndroidX=true
android.enableJetifier=false
android.nonTransitiveRClass=true
android.suppressUnsupportedCompileSdk={{.Android.CompileSdk}}
android.defaults.buildfeatures.buildconfig=true

# Kotlin
kotlin.code.style=official
kotlin.incremental=true
kotlin.caching.enabled=true
kotlin.daemon.jvmargs=-Xmx{{.Gradle.Memory}}

# Build performance
org.gradle.parallel=true
org.gradle.caching=true
org.gradle.configureondemand=true
org.gradle.daemon=true
org.gradle.vfs.watch=true
org.gradle.workers.max={{.Workers}}
`

// GradleProperties renders gradle.properties. Windows toolchain paths are
// normalized to forward slashes, which Gradle accepts on all platforms.
func (r *Renderer) GradleProperties() []byte {
	return render("gradle.properties", gradlePropertiesTmpl, map[string]any{
		"Header":     r.header(),
		"Android":    r.cfg.Android,
		"Gradle":     r.cfg.Gradle,
		"JavaHome":   strings.ReplaceAll(r.javaHome, `\`, "/"),
		"AndroidSDK": strings.ReplaceAll(r.androidSDK, `\`, "/"),
		"Workers":    maxInt(4, r.cpuCores/2),
	})
}

const wrapperPropertiesTmpl = `# {{.Header}}
distributionBase=GRADLE_USER_HOME
distributionPath=wrapper/dists
distributionUrl=https\://services.gradle.org/distributions/gradle-{{.Version}}-bin.zip
zipStoreBase=GRADLE_USER_HOME
zipStorePath=wrapper/dists
`

// WrapperProperties renders gradle/wrapper/gradle-wrapper.properties.
func (r *Renderer) WrapperProperties() []byte {
	return render("wrapper", wrapperPropertiesTmpl, map[string]any{
		"Header":  r.header(),
		"Version": r.cfg.Gradle.Version,
	})
}

const projectStructureTmpl = `# Omni-Message Project Structure

## Modules
- ` + "`:app`" + ` - main application module
- ` + "`:core`" + ` - core functionality (database, network, utilities)
- ` + "`:shared`" + ` - shared resources and UI components
- ` + "`:feature:*`" + ` - feature modules, split by capability
- ` + "`:extension:*`" + ` - extension modules (third-party integrations, plugins)

## Build configuration
- **minSdk**: {{.Android.MinSdk}} (Android 10+)
- **compileSdk**: {{.Android.CompileSdk}}
- **targetSdk**: {{.Android.TargetSdk}}
- **JDK**: {{.Android.JvmTarget}}
- **Kotlin**: {{.Gradle.KotlinVersion}}
- **AGP**: {{.Gradle.AgpVersion}}
- **Gradle**: {{.Gradle.Version}}

## Development environment
1. JDK 17 or newer
2. Android SDK 34+
3. At least 8 GB RAM
4. Android Studio Flamingo or newer
`

// ProjectStructureDoc renders docs/PROJECT_STRUCTURE.md, the module layout
// and toolchain reference kept in sync with the generated build files.
func (r *Renderer) ProjectStructureDoc() []byte {
	return render("structure", projectStructureTmpl, map[string]any{
		"Android": r.cfg.Android,
		"Gradle":  r.cfg.Gradle,
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
