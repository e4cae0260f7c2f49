// Package version holds build metadata. Version, Commit and BuildDate are
// set with -ldflags "-X github.com/keshon/flowbot/internal/version.Version=...";
// missing values are filled from the module build info.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const (
	AppName        = "flowbot"
	AppDescription = "Prefix commands and interactive menus for Discord"
)

var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

type Info struct {
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
}

// Get merges the linker values with debug.ReadBuildInfo.
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(bi, Version, Commit, BuildDate)
}

func resolve(bi *debug.BuildInfo, ver, commit, date string) Info {
	info := Info{Version: ver, Commit: commit, BuildDate: date}
	if bi != nil {
		info.GoVersion = bi.GoVersion
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = s.Value
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			}
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if len(info.Commit) > 7 {
		info.Commit = info.Commit[:7]
	}
	return info
}

// Release formats the build date and Go version, e.g. "2026-10-15 (Go 1.26)".
func (i Info) Release() string {
	date := "unknown"
	if i.BuildDate != "" {
		if t, err := time.Parse(time.RFC3339, i.BuildDate); err == nil {
			date = t.Format("2006-01-02")
		} else {
			date = "invalid date"
		}
	}
	goVer := "unknown"
	if i.GoVersion != "" {
		goVer = strings.TrimPrefix(i.GoVersion, "go")
	}
	return date + " (Go " + goVer + ")"
}
