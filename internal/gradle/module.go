package gradle

import (
	"strings"
)

const appBuildTmpl = `plugins {
    id("com.android.application")
    id("org.jetbrains.kotlin.android")
    id("kotlin-kapt")
    id("com.google.dagger.hilt.android")
    id("com.google.devtools.ksp")
}

// Application module - Android 10+ and JDK {{.Android.JvmTarget}}
// {{.Header}}

android {
    namespace = "{{.Namespace}}"
    compileSdk = {{.Android.CompileSdk}}

    defaultConfig {
        applicationId = "{{.Namespace}}"
        minSdk = {{.Android.MinSdk}}
        targetSdk = {{.Android.TargetSdk}}
        versionCode = 1
        versionName = "1.0.0"

        testInstrumentationRunner = "androidx.test.runner.AndroidJUnitRunner"
        vectorDrawables {
            useSupportLibrary = true
        }
    }

    buildTypes {
        getByName("release") {
            isMinifyEnabled = true
            isShrinkResources = true
            proguardFiles(
                getDefaultProguardFile("proguard-android-optimize.txt"),
                "proguard-rules.pro"
            )
        }
        getByName("debug") {
            isMinifyEnabled = false
            isDebuggable = true
            applicationIdSuffix = ".debug"
            versionNameSuffix = "-debug"
        }
    }

    buildFeatures {
        compose = true
        buildConfig = true
    }

    composeOptions {
        kotlinCompilerExtensionVersion = "{{.Deps.ComposeCompiler}}"
    }

    compileOptions {
        sourceCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
        targetCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
    }

    kotlinOptions {
        jvmTarget = "{{.Android.JvmTarget}}"
    }

    packaging {
        resources {
            excludes += "/META-INF/{AL2.0,LGPL2.1}"
        }
    }
}

dependencies {
    implementation(Libraries.coreKtx)
    implementation(Libraries.lifecycleRuntime)
    implementation(Libraries.activityCompose)
    implementation(platform(Libraries.composeBom))
    implementation(Libraries.composeUi)
    implementation(Libraries.composeMaterial3)
    implementation(Libraries.navigationCompose)
    implementation(Libraries.hiltAndroid)
    kapt(Libraries.hiltCompiler)
    implementation(Libraries.roomRuntime)
    implementation(Libraries.roomKtx)
    ksp(Libraries.roomCompiler)
    implementation(Libraries.retrofit)
    implementation(Libraries.retrofitGson)
    implementation(Libraries.okhttp)
    implementation(Libraries.okhttpLogging)

    testImplementation(Libraries.junit)
    androidTestImplementation(Libraries.testExtJunit)
    androidTestImplementation(Libraries.espressoCore)
}
`

const libraryBuildTmpl = `plugins {
    id("com.android.library")
    id("org.jetbrains.kotlin.android")
    id("kotlin-kapt")
    id("com.google.dagger.hilt.android")
}

// {{.KindName}} module "{{.ModuleName}}" - Android 10+ and JDK {{.Android.JvmTarget}}
// {{.Header}}

android {
    namespace = "{{.Namespace}}"
    compileSdk = {{.Android.CompileSdk}}

    defaultConfig {
        minSdk = {{.Android.MinSdk}}
        consumerProguardFiles("consumer-rules.pro")
    }

    buildTypes {
        getByName("release") {
            isMinifyEnabled = false
            proguardFiles(
                getDefaultProguardFile("proguard-android-optimize.txt"),
                "proguard-rules.pro"
            )
        }
    }

    compileOptions {
        sourceCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
        targetCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
    }

    kotlinOptions {
        jvmTarget = "{{.Android.JvmTarget}}"
    }
}

dependencies {
    implementation(Libraries.coreKtx)
    implementation(Libraries.coroutinesCore)
    implementation(Libraries.coroutinesAndroid)
    implementation(Libraries.hiltAndroid)
    kapt(Libraries.hiltCompiler)

    testImplementation(Libraries.junit)
}
`

const generalBuildTmpl = `plugins {
    id("com.android.library")
    id("org.jetbrains.kotlin.android")
}

// Module "{{.ModuleName}}"
// {{.Header}}

android {
    namespace = "{{.Namespace}}"
    compileSdk = {{.Android.CompileSdk}}

    defaultConfig {
        minSdk = {{.Android.MinSdk}}
    }

    compileOptions {
        sourceCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
        targetCompatibility = JavaVersion.VERSION_{{.Android.JvmTarget}}
    }

    kotlinOptions {
        jvmTarget = "{{.Android.JvmTarget}}"
    }
}

dependencies {
    implementation(Libraries.coreKtx)
    testImplementation(Libraries.junit)
}
`

// ModuleBuildScript renders the build.gradle.kts for a module of the given
// kind. The module namespace is derived from the configured base package
// plus the module path.
func (r *Renderer) ModuleBuildScript(mod *Module) []byte {
	data := map[string]any{
		"Header":     r.header(),
		"Android":    r.cfg.Android,
		"Deps":       r.cfg.Dependencies,
		"ModuleName": mod.Name,
		"KindName":   mod.Kind.String(),
		"Namespace":  r.moduleNamespace(mod),
	}

	switch mod.Kind {
	case KindApp:
		return render("app-build", appBuildTmpl, data)
	case KindCore, KindShared, KindFeature, KindExtension, KindLibrary:
		return render("library-build", libraryBuildTmpl, data)
	default:
		return render("general-build", generalBuildTmpl, data)
	}
}

// moduleNamespace builds the Android namespace for a module: the base
// package for the app module, base package plus sanitized module path for
// everything else.
func (r *Renderer) moduleNamespace(mod *Module) string {
	base := r.cfg.Android.Namespace
	if mod.Kind == KindApp {
		return base
	}
	suffix := strings.ReplaceAll(mod.Name, ":", ".")
	suffix = strings.ReplaceAll(suffix, "-", "_")
	return base + "." + suffix
}

const manifestTmpl = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android">
</manifest>
`

// AndroidManifest renders a minimal src/main/AndroidManifest.xml for a
// library module. AGP 7+ takes the package from the namespace in the build
// file, so the manifest carries no package attribute.
func (r *Renderer) AndroidManifest(mod *Module) []byte {
	return []byte(manifestTmpl)
}

// ProguardRules returns the default proguard-rules.pro for a new module.
func (r *Renderer) ProguardRules() []byte {
	return []byte("# Add project specific ProGuard rules here.\n")
}
