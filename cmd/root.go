package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "skipad",
	Short: "Dismiss app launch ads on Android devices",
	Long: `skipad watches an Android device over adb and taps the skip control of
launch (splash) ads while an app starts. Skip controls are found with
patterns learned per app and a vocabulary of common skip labels.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("config", "", "Config file (default: <data-dir>/config.yaml)")
	rootCmd.PersistentFlags().String("device", "", "adb serial of the target device")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory holding patterns, whitelist and config")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
