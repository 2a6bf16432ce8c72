// Package version reports build information for the forecast binary.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X forecast/internal/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info contains version and build information
type Info struct {
	Version     string `json:"version"`
	BuildTime   string `json:"build_time"`
	GoVersion   string `json:"go_version"`
	VCSRevision string `json:"vcs_revision,omitempty"`
	VCSTime     string `json:"vcs_time,omitempty"`
	VCSModified bool   `json:"vcs_modified"`
}

// Get returns the current version and build information
func Get() Info {
	info := Info{Version: Version, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = fromBuildInfo(info, bi)
	}
	return info
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			info.VCSRevision = setting.Value
		case "vcs.time":
			info.VCSTime = setting.Value
		case "vcs.modified":
			info.VCSModified = setting.Value == "true"
		}
	}
	return info
}

// ShortRevision returns the first eight characters of the commit
func (i Info) ShortRevision() string {
	if len(i.VCSRevision) > 8 {
		return i.VCSRevision[:8]
	}
	return i.VCSRevision
}

// String returns a one-line summary, e.g. "forecast 1.2.0 (3f9a1c2e, modified) go1.25.0"
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "forecast %s", i.Version)

	var detail []string
	if rev := i.ShortRevision(); rev != "" {
		detail = append(detail, rev)
	}
	if i.VCSModified {
		detail = append(detail, "modified")
	}
	if i.BuildTime != "unknown" {
		detail = append(detail, "built "+i.BuildTime)
	}
	if len(detail) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(detail, ", "))
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, " %s", i.GoVersion)
	}
	return b.String()
}

// Check returns a warning for builds that cannot be traced to a commit
func (i Info) Check() string {
	if i.VCSModified {
		return "warning: binary built from a modified source tree"
	}
	if i.VCSRevision == "" && i.Version == "dev" {
		return "warning: development build without version control information"
	}
	return ""
}
