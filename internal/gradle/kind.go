package gradle

// ModuleKind classifies a Gradle module by its role in the project. This is
// a closed set: generators switch exhaustively on it.
type ModuleKind int

const (
	KindGeneral ModuleKind = iota // fallback for unrecognized modules
	KindApp
	KindCore
	KindShared
	KindFeature
	KindExtension
	KindLibrary
)

func (k ModuleKind) String() string {
	switch k {
	case KindApp:
		return "application"
	case KindCore:
		return "core"
	case KindShared:
		return "shared"
	case KindFeature:
		return "feature"
	case KindExtension:
		return "extension"
	case KindLibrary:
		return "library"
	default:
		return "general"
	}
}

// GuessKind maps a settings.gradle.kts module path (without the leading
// colon) to its kind by naming convention.
func GuessKind(modulePath string) ModuleKind {
	switch {
	case modulePath == "app":
		return KindApp
	case modulePath == "core":
		return KindCore
	case modulePath == "shared":
		return KindShared
	case hasSegmentPrefix(modulePath, "feature"):
		return KindFeature
	case hasSegmentPrefix(modulePath, "extension"):
		return KindExtension
	case hasSegmentPrefix(modulePath, "lib"), hasSegmentPrefix(modulePath, "library"):
		return KindLibrary
	default:
		return KindGeneral
	}
}

func hasSegmentPrefix(modulePath string, segment string) bool {
	return len(modulePath) > len(segment)+1 &&
		modulePath[:len(segment)+1] == segment+":"
}
