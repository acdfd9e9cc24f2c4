package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// Info is the build identity served by GET /version and --version.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Release   bool   `json:"release"`
	Dirty     bool   `json:"dirty"`
}

var readBuildInfo = debug.ReadBuildInfo

// GetVersionInfo merges the ldflags values with the embedded build info.
func GetVersionInfo() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		Release:   Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if bi, ok := readBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = shortCommit(s.Value)
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	if info.Dirty {
		info.Release = false
	}
	return info
}

// Short renders "1.2.0-abc1234", with a -dirty suffix for modified trees.
func (i Info) Short() string {
	v := i.Version
	if i.GitCommit != "" {
		v += "-" + i.GitCommit
	}
	if i.Dirty {
		v += "-dirty"
	}
	return v
}

// String renders the --version line.
func (i Info) String() string {
	var extra []string
	if i.BuildDate != "" {
		extra = append(extra, "built "+i.BuildDate)
	}
	if i.GoVersion != "" {
		extra = append(extra, i.GoVersion)
	}
	if len(extra) == 0 {
		return "whisperbridge " + i.Short()
	}
	return fmt.Sprintf("whisperbridge %s (%s)", i.Short(), strings.Join(extra, ", "))
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
