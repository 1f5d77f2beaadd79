package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prismwm/prism/internal/ipc"
)

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List the compositor's windows front-to-back",
	RunE:  runWindows,
}

var focusCmd = &cobra.Command{
	Use:   "focus <id>",
	Short: "Focus a window and raise it to the front",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendWindowCommand(ipc.TypeFocus, args[0])
	},
}

var raiseCmd = &cobra.Command{
	Use:   "raise <id>",
	Short: "Raise a window to the front of the z-order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendWindowCommand(ipc.TypeRaise, args[0])
	},
}

var lowerCmd = &cobra.Command{
	Use:   "lower <id>",
	Short: "Lower a window to the back of the z-order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sendWindowCommand(ipc.TypeLower, args[0])
	},
}

func init() {
	windowsCmd.AddCommand(focusCmd)
	windowsCmd.AddCommand(raiseCmd)
	windowsCmd.AddCommand(lowerCmd)
}

func runWindows(cmd *cobra.Command, args []string) error {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Send(&ipc.Message{Type: ipc.TypeWindows})
	if err != nil {
		return err
	}

	if len(reply.Windows) == 0 {
		fmt.Println("no windows")
		return nil
	}
	for _, w := range reply.Windows {
		marker := " "
		if w.Focused {
			marker = "*"
		}
		vis := "visible"
		if !w.Visible {
			vis = "hidden"
		}
		fmt.Printf("%s %4d  %-20s %4dx%-4d @%d,%d  %-10s %s\n",
			marker, w.ID, w.Title, w.Width, w.Height, w.X, w.Y, w.State, vis)
	}
	return nil
}

func sendWindowCommand(msgType ipc.MessageType, idArg string) error {
	var id uint32
	if _, err := fmt.Sscanf(idArg, "%d", &id); err != nil {
		return fmt.Errorf("invalid window id %q", idArg)
	}

	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.Send(&ipc.Message{Type: msgType, WindowID: id})
	return err
}
