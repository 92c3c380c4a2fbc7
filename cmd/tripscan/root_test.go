package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	if cmd.Use != "tripscan" {
		t.Errorf("Use = %q, want tripscan", cmd.Use)
	}

	wantSubcommands := []string{"run", "export", "regions", "init", "version"}
	for _, name := range wantSubcommands {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if !strings.Contains(buf.String(), "tripscan") {
		t.Errorf("help output missing program name: %s", buf.String())
	}
}

func TestRootCmdUnknownCommand(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nonsense"})

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() accepted unknown command")
	}
}
