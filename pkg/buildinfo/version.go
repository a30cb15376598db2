// Package buildinfo reports which pvmviz build is running.
//
// Release builds stamp the values through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/pvmviz/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/pvmviz/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/pvmviz/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Builds made with "go install" carry no ldflags; [Get] then reads the
// module version and VCS stamp the toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Stamped by ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info describes a build. The render server reports it on /healthz.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go"`
}

// Get returns the stamped values, completed from the embedded build
// information where ldflags left the defaults.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	return complete(info, bi)
}

func complete(info Info, bi *debug.BuildInfo) Info {
	info.GoVersion = bi.GoVersion
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == "none":
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == "unknown":
			info.Date = s.Value
		}
	}
	return info
}

// String returns the build information one field per line.
func (i Info) String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the version template string for cobra.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
