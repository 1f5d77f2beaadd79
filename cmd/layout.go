package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prismwm/prism/internal/ipc"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Arrange, save and restore window layouts",
}

var tileCmd = &cobra.Command{
	Use:   "tile",
	Short: "Arrange all windows in a grid",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendSimpleCommand(ipc.TypeTile)
	},
}

var cascadeCmd = &cobra.Command{
	Use:   "cascade",
	Short: "Stagger all windows diagonally",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendSimpleCommand(ipc.TypeCascade)
	},
}

var minimizeAllCmd = &cobra.Command{
	Use:   "minimize-all",
	Short: "Minimize every window",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendSimpleCommand(ipc.TypeMinimizeAll)
	},
}

var restoreAllCmd = &cobra.Command{
	Use:   "restore-all",
	Short: "Restore every window to its normal state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendSimpleCommand(ipc.TypeRestoreAll)
	},
}

var saveLayoutCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Save the current window layout to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendPathCommand(ipc.TypeSnapshotSave, args[0])
	},
}

var loadLayoutCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Restore a saved window layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendPathCommand(ipc.TypeSnapshotLoad, args[0])
	},
}

func init() {
	layoutCmd.AddCommand(tileCmd)
	layoutCmd.AddCommand(cascadeCmd)
	layoutCmd.AddCommand(minimizeAllCmd)
	layoutCmd.AddCommand(restoreAllCmd)
	layoutCmd.AddCommand(saveLayoutCmd)
	layoutCmd.AddCommand(loadLayoutCmd)
}

func sendSimpleCommand(msgType ipc.MessageType) error {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Send(&ipc.Message{Type: msgType}); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func sendPathCommand(msgType ipc.MessageType, path string) error {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	if _, err := client.Send(&ipc.Message{Type: msgType, Path: path}); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
