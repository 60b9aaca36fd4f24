package cmd

import (
	"testing"

	"github.com/mj1618/skipad/internal/output"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"run", "locate", "snapshot", "patterns", "whitelist", "tap", "observe", "serve"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestRootCommand_Format(t *testing.T) {
	origFormat, origPretty := output.OutputFormat, output.PrettyOutput
	defer func() {
		output.OutputFormat, output.PrettyOutput = origFormat, origPretty
		rootCmd.PersistentFlags().Set("format", "yaml")
		rootCmd.PersistentFlags().Set("pretty", "false")
	}()

	rootCmd.PersistentFlags().Set("format", "json")
	rootCmd.PersistentFlags().Set("pretty", "true")
	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err != nil {
		t.Fatal(err)
	}
	if output.OutputFormat != output.FormatJSON || !output.PrettyOutput {
		t.Errorf("got format %q pretty %v", output.OutputFormat, output.PrettyOutput)
	}

	rootCmd.PersistentFlags().Set("format", "agent")
	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPatternsCommand_HasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range patternsCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"list", "capture"} {
		if !found[name] {
			t.Errorf("expected patterns subcommand %q not found", name)
		}
	}
}

func TestWhitelistCommand_HasSubcommands(t *testing.T) {
	found := make(map[string]bool)
	for _, c := range whitelistCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"list", "add", "remove", "clear"} {
		if !found[name] {
			t.Errorf("expected whitelist subcommand %q not found", name)
		}
	}
}
