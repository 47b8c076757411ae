package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	for _, want := range []string{"version: " + Version, "commit: " + Commit, "built: " + Date} {
		if !strings.Contains(String(), want) {
			t.Errorf("String() missing %q", want)
		}
	}
	if !strings.HasPrefix(Template(), "{{.Name}} version ") {
		t.Errorf("Template() = %q", Template())
	}
	if UserAgent() != "handscript/"+Version {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
