package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	socketPath string

	rootCmd = &cobra.Command{
		Use:   "prism",
		Short: "Prism - software compositor",
		Long: `Prism is a damage-tracked software compositor. It owns a set of
windows, composes their pixel content into frames on a paced cadence,
and exposes a control socket for window management commands.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&socketPath, "socket", "", "Control socket path (default: $XDG_RUNTIME_DIR/prism/control.sock)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(windowsCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(effectCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(setupCmd)
}
