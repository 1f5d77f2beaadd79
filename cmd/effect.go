package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/prismwm/prism/internal/ipc"
)

var effectParams []float64

var effectCmd = &cobra.Command{
	Use:   "effect",
	Short: "Enable, disable and configure post-composition effects",
}

var effectOnCmd = &cobra.Command{
	Use:   "on <name>",
	Short: "Enable an effect (blur, glow, shadow, transparency, reflection, liquid)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enable := true
		return sendEffectCommand(args[0], &enable, effectParams)
	},
}

var effectOffCmd = &cobra.Command{
	Use:   "off <name>",
	Short: "Disable an effect",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enable := false
		return sendEffectCommand(args[0], &enable, nil)
	},
}

var effectSetCmd = &cobra.Command{
	Use:   "set <name> <param>...",
	Short: "Set an effect's parameter list",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params := make([]float64, 0, len(args)-1)
		for _, arg := range args[1:] {
			v, err := strconv.ParseFloat(arg, 64)
			if err != nil {
				return fmt.Errorf("invalid parameter %q: %w", arg, err)
			}
			params = append(params, v)
		}
		return sendEffectCommand(args[0], nil, params)
	},
}

func init() {
	effectOnCmd.Flags().Float64SliceVar(&effectParams, "params", nil, "Effect parameters")
	effectCmd.AddCommand(effectOnCmd)
	effectCmd.AddCommand(effectOffCmd)
	effectCmd.AddCommand(effectSetCmd)
}

func sendEffectCommand(name string, enable *bool, params []float64) error {
	client, err := ipc.Dial(socketPath)
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = client.Send(&ipc.Message{
		Type:   ipc.TypeEffect,
		Effect: name,
		Enable: enable,
		Params: params,
	})
	if err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
