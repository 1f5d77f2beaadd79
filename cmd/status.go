package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prismwm/prism/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running compositor's frame statistics",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	reply, err := client.Send(&ipc.Message{Type: ipc.TypeStatus})
	if err != nil {
		return err
	}
	if reply.Status == nil {
		return fmt.Errorf("malformed status reply")
	}

	st := reply.Status
	fmt.Printf("frames:      %d\n", st.FrameCount)
	fmt.Printf("fps:         %.1f\n", st.CurrentFPS)
	fmt.Printf("frame time:  %s (avg)\n", st.AverageFrameTime)
	fmt.Printf("draw calls:  %d\n", st.DrawCalls)
	fmt.Printf("skipped:     %d\n", st.SkippedWindows)
	fmt.Printf("windows:     %d\n", st.WindowCount)
	if st.FocusedWindow != 0 {
		fmt.Printf("focused:     %d\n", st.FocusedWindow)
	}
	for _, e := range st.Effects {
		note := ""
		if e.Unsupported {
			note = " (not implemented)"
		}
		fmt.Printf("effect:      %s%s\n", e.Name, note)
	}
	return nil
}
