package main

import (
	"os"
	"testing"

	"github.com/habibjh88/html-copier/internal/cmd"
)

func TestVersionVariables(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty string")
	}
	if BuildTime == "" {
		t.Error("BuildTime should not be empty string")
	}

	cmd.SetVersionInfo(Version, BuildTime)
}

func TestHelpExecution(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	cmd.SetVersionInfo(Version, BuildTime)
	os.Args = []string{"htmlcopier", "--help"}

	if err := cmd.Execute(); err != nil {
		t.Errorf("Execute with --help should not return error, got: %v", err)
	}
}
