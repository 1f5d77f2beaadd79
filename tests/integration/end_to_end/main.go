// End-to-end integration harness: boots the display server with the
// png presenter, animates demo windows, drives the control socket the
// way the CLI does, and verifies frames landed on disk. Run manually:
//
//	go run ./tests/integration/end_to_end -frames 30
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/prismwm/prism/internal/config"
	"github.com/prismwm/prism/internal/ipc"
	"github.com/prismwm/prism/internal/server"
)

var (
	frames  = flag.Int("frames", 30, "number of frames to render")
	keep    = flag.Bool("keep", false, "keep the rendered frames on disk")
	timeout = flag.Duration("timeout", 30*time.Second, "harness timeout")

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	testStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
)

func main() {
	flag.Parse()

	outDir, err := os.MkdirTemp("", "prism-e2e-*")
	if err != nil {
		fail("create output dir: %v", err)
	}
	if !*keep {
		defer os.RemoveAll(outDir)
	}
	sockPath := filepath.Join(outDir, "control.sock")

	cfg := config.DefaultConfig
	cfg.Compositor.Width = 640
	cfg.Compositor.Height = 480
	cfg.Compositor.TargetFPS = 60
	cfg.Display.Backend = "png"
	cfg.Display.OutputDir = filepath.Join(outDir, "frames")
	cfg.Display.FrameCap = *frames

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	step("starting display server")
	srv, err := server.New(&cfg, server.NewNoopTuner(), sockPath)
	if err != nil {
		fail("create server: %v", err)
	}
	if err := srv.Start(ctx); err != nil {
		fail("start server: %v", err)
	}

	step("spawning demo windows")
	producer, err := server.NewPatternProducer(srv.Registry(), 3)
	if err != nil {
		fail("create demo windows: %v", err)
	}
	producer.Start(ctx)

	step("exercising the control socket")
	client, err := ipc.Dial(sockPath)
	if err != nil {
		fail("dial control socket: %v", err)
	}
	defer client.Close()

	if _, err := client.Send(&ipc.Message{Type: ipc.TypeTile}); err != nil {
		fail("tile: %v", err)
	}
	on := true
	if _, err := client.Send(&ipc.Message{Type: ipc.TypeEffect, Effect: "shadow", Enable: &on}); err != nil {
		fail("enable shadow: %v", err)
	}

	step("waiting for frames")
	for {
		if ctx.Err() != nil {
			fail("timed out waiting for %d frames", *frames)
		}
		reply, err := client.Send(&ipc.Message{Type: ipc.TypeStatus})
		if err != nil {
			fail("status: %v", err)
		}
		if reply.Status.FrameCount >= uint64(*frames) {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	producer.Stop()
	if err := srv.Stop(); err != nil {
		fail("stop server: %v", err)
	}

	entries, err := os.ReadDir(cfg.Display.OutputDir)
	if err != nil {
		fail("read frame dir: %v", err)
	}
	if len(entries) != *frames {
		fail("wrote %d frames, want %d", len(entries), *frames)
	}

	fmt.Println(successStyle.Render(fmt.Sprintf("OK: %d frames rendered to %s", len(entries), cfg.Display.OutputDir)))
}

func step(name string) {
	fmt.Println(testStyle.Render("==> " + name))
}

func fail(format string, args ...interface{}) {
	fmt.Println(errorStyle.Render(fmt.Sprintf("FAIL: "+format, args...)))
	os.Exit(1)
}
