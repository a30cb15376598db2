package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestCompleteFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	}

	got := complete(Info{Version: "dev", Commit: "none", Date: "unknown"}, bi)
	want := Info{Version: "v0.3.1", Commit: "abc123", Date: "2026-01-02T03:04:05Z", GoVersion: "go1.24.0"}
	if got != want {
		t.Errorf("complete() = %+v, want %+v", got, want)
	}
}

func TestStampedValuesWin(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "abc123"}},
	}
	got := complete(Info{Version: "v1.0.0", Commit: "deadbeef", Date: "unknown"}, bi)
	if got.Version != "v1.0.0" || got.Commit != "deadbeef" {
		t.Errorf("ldflags values were overridden: %+v", got)
	}
}

func TestDevelVersionIgnored(t *testing.T) {
	got := complete(Info{Version: "dev"}, &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	if got.Version != "dev" {
		t.Errorf("Version = %q, want dev", got.Version)
	}
}

func TestTemplate(t *testing.T) {
	if !strings.Contains(Template(), "{{.Name}} version ") {
		t.Error("template should start with the command name")
	}
	if !strings.Contains(Get().String(), "commit: ") {
		t.Error("String should list the commit")
	}
}
