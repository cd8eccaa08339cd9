// Package version holds build metadata injected with -ldflags.
package version

import "runtime/debug"

// Set at link time: -X github.com/Sumatoshi-tech/astmatch/pkg/version.Version=v1.2.3.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// InitBinaryVersion fills unset fields from the embedded module build info,
// which is what `go install` binaries carry.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == "unknown" {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == "unknown" {
				Date = setting.Value
			}
		}
	}
}

// String renders "Version (commit: Commit, built: Date)".
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
