package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	s := String()
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Info()
	if info["version"] != Version || info["commit"] != Commit || info["date"] != Date {
		t.Errorf("Info() = %v", info)
	}
}
