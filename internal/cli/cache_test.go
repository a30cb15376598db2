package cli

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func TestPurgePattern(t *testing.T) {
	if got := purgePattern(""); got != "pvmviz:*" {
		t.Errorf("purgePattern() = %q", got)
	}
	if got := purgePattern("png"); got != "pvmviz:artifact:png:*" {
		t.Errorf("purgePattern(png) = %q", got)
	}
}

func TestCacheClearRedisFormat(t *testing.T) {
	mr := miniredis.RunT(t)
	for _, k := range []string{"pvmviz:artifact:png:a", "pvmviz:artifact:svg:b", "other:artifact:png:c"} {
		if err := mr.Set(k, "x"); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := execute(t, newTestCLI(t), "cache", "clear", "--redis-addr", mr.Addr(), "--format", "png"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if mr.Exists("pvmviz:artifact:png:a") {
		t.Error("png artifact should be purged")
	}
	for _, k := range []string{"pvmviz:artifact:svg:b", "other:artifact:png:c"} {
		if !mr.Exists(k) {
			t.Errorf("%s should survive", k)
		}
	}
}
