package cli

import (
	"runtime/debug"
	"strings"
)

const devVersion = "dev"

var readBuildInfo = debug.ReadBuildInfo

func resolvedVersion(raw string) string {
	if trimmed := strings.TrimSpace(raw); trimmed != "" && trimmed != devVersion {
		return trimmed
	}
	if info, ok := readBuildInfo(); ok && info != nil {
		if mainVersion := info.Main.Version; mainVersion != "" && mainVersion != "(devel)" {
			return mainVersion
		}
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
				return setting.Value[:12]
			}
		}
	}
	return devVersion
}
