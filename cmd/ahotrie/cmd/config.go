package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/app"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show configuration",
	Long:  "Shows project root, store path, socket path, and daemon status. No daemon required.",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	paths := app.NewPaths(root)
	sockPath := socket.SocketPath(root)
	p := palette(resolveColor(rootColor))

	daemonRunning := socket.NewClient(sockPath).Ping()
	daemonStatus := p.paint(colorYellow, "✗ not running")
	if daemonRunning {
		daemonStatus = p.paint(colorGreen, "✓ running")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, p.paint(colorBold, "⚡ ahotrie config"))
	fmt.Fprintf(out, "  Project:      %s\n", filepath.Base(root))
	fmt.Fprintf(out, "  Root:         %s\n", root)
	fmt.Fprintf(out, "  Store:        %s\n", dbPath())
	fmt.Fprintf(out, "  Dictionaries: %s\n", paths.DictDir)
	fmt.Fprintf(out, "  Socket:       %s\n", sockPath)
	fmt.Fprintf(out, "  Daemon:       %s\n", daemonStatus)

	if daemonRunning {
		if portData, err := os.ReadFile(paths.PortFile); err == nil {
			fmt.Fprintf(out, "  Playground:   http://localhost:%s\n", strings.TrimSpace(string(portData)))
		}
	}
	return nil
}
