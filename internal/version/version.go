package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags by the release build.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

type Info struct {
	Version string
	Commit  string
	Date    string
	Dirty   bool
}

// Resolve fills missing release metadata from the VCS stamp the Go
// toolchain embeds in development builds.
func Resolve() Info {
	return resolve(Version, Commit, Date, debug.ReadBuildInfo)
}

func (i Info) String() string {
	if i.Commit == "" || i.Commit == "unknown" {
		return i.Version
	}
	short := i.Commit
	if len(short) > 7 {
		short = short[:7]
	}
	s := fmt.Sprintf("%s-g%s", i.Version, short)
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

func resolve(base, commit, date string, readBuildInfo func() (*debug.BuildInfo, bool)) Info {
	if base == "" {
		base = "0.0.0"
	}
	info := Info{Version: base, Commit: commit, Date: date}
	if commit != "" && commit != "unknown" {
		return info
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.Commit = setting.Value
		case "vcs.time":
			info.Date = setting.Value
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		}
	}
	return info
}
