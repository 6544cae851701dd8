package utils

import (
	"path/filepath"
	"testing"
)

func TestIsPathWithin(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "a", "b.cfg")
	outside := filepath.Join(filepath.Dir(root), "outside.cfg")

	if !IsPathWithin(child, []string{root}) {
		t.Fatalf("expected %s to be within %s", child, root)
	}
	if IsPathWithin(outside, []string{root}) {
		t.Fatalf("did not expect %s to be within %s", outside, root)
	}
}

func TestSlashLower(t *testing.T) {
	if got := SlashLower(`C:\TI\MMWAVE_L_SDK\Tools`); got != "c:/ti/mmwave_l_sdk/tools" {
		t.Fatalf("unexpected %s", got)
	}
}
