package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prismwm/prism/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively write the initial configuration",
	Long: `Walk through the compositor's main settings and write the config
file. Existing settings are used as defaults.`,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	if err := config.Init(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	cfg := config.Get()

	width := strconv.Itoa(int(cfg.Compositor.Width))
	height := strconv.Itoa(int(cfg.Compositor.Height))
	background := cfg.Compositor.Background
	backend := cfg.Display.Backend
	frameLimit := cfg.Compositor.FrameLimit

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output width").
				Value(&width).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Output height").
				Value(&height).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Background color (#rrggbb)").
				Value(&background).
				Validate(func(s string) error {
					_, _, _, err := config.ParseHexColor(s)
					return err
				}),
			huh.NewSelect[string]().
				Title("Presenter backend").
				Options(
					huh.NewOption("null (discard frames)", "null"),
					huh.NewOption("png (write frames to disk)", "png"),
				).
				Value(&backend),
			huh.NewConfirm().
				Title("Limit frame rate to the display refresh?").
				Value(&frameLimit),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	w, _ := strconv.Atoi(width)
	h, _ := strconv.Atoi(height)
	viper.Set("compositor.width", w)
	viper.Set("compositor.height", h)
	viper.Set("compositor.background", background)
	viper.Set("compositor.frame_limit", frameLimit)
	viper.Set("display.backend", backend)

	if err := config.Save(); err != nil {
		return err
	}
	fmt.Printf("Config written to %s\n", config.GetConfigPath())
	return nil
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}
