// Package version provides build information and version details.
package version

import (
	"fmt"
	"runtime/debug"
)

// These are set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info contains version and build information
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Commit    string `json:"commit,omitempty"`
	Dirty     bool   `json:"dirty"`
}

// Get returns the current version and build information
func Get() Info {
	info := Info{
		Version:   Version,
		BuildTime: BuildTime,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = buildInfo.GoVersion
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				info.Commit = setting.Value
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			}
		}
	}

	return info
}

// String returns the one-line form printed at start-up
func (i Info) String() string {
	s := "crowdlog " + i.Version
	if i.Commit != "" {
		rev := i.Commit
		if len(rev) > 8 {
			rev = rev[:8]
		}
		if i.Dirty {
			rev += "+dirty"
		}
		s += fmt.Sprintf(" (%s)", rev)
	}
	if i.GoVersion != "" {
		s += ", " + i.GoVersion
	}
	return s
}

// Warning describes a build that cannot be traced to a commit, or "" when
// there is nothing to report
func (i Info) Warning() string {
	switch {
	case i.Dirty:
		return "binary built from a modified source tree"
	case i.Commit == "" && i.Version == "dev":
		return "development build without version control information"
	}
	return ""
}
