package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Product is the name used in the User-Agent header.
const Product = "remotekit"

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info represents version information.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
	IsRelease bool   `json:"is_release"`
	IsDirty   bool   `json:"is_dirty"`
}

// GetVersionInfo merges the ldflags values with the VCS stamp of the binary.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	info.IsRelease = info.Version != "dev" && !info.IsDirty && !strings.Contains(info.Version, "dirty")
	return info
}

// GetShortVersion returns "<version>[-<commit>][-dirty]".
func GetShortVersion() string {
	info := GetVersionInfo()
	v := info.Version
	if info.GitCommit != "" {
		v += "-" + info.GitCommit
	}
	if info.IsDirty {
		v += "-dirty"
	}
	return v
}

// GetFullVersion returns the short version with build details.
func GetFullVersion() string {
	info := GetVersionInfo()
	full := fmt.Sprintf("%s %s (%s, %s)", Product, GetShortVersion(), info.GoVersion, info.Platform)
	if info.BuildTime != "" {
		full += " built " + info.BuildTime
	}
	return full
}

// UserAgent returns the value remotekit sends as User-Agent.
func UserAgent() string {
	return Product + "/" + Version
}
