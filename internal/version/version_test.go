package version_test

import (
	"strings"
	"testing"

	"github.com/JochiRaider/RepoCapsule/internal/version"
)

func TestShort(t *testing.T) {
	if version.Short() == "" {
		t.Error("Short() should return non-empty string")
	}
}

func TestInfo(t *testing.T) {
	info := version.Info()

	if !strings.Contains(info, "repocapsule") {
		t.Errorf("Info() should contain the binary name, got %q", info)
	}
	if !strings.Contains(info, version.Short()) {
		t.Errorf("Info() should contain the version, got %q", info)
	}
}
