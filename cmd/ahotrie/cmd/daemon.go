package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/corey/ahotrie/internal/adapters/socket"
	"github.com/corey/ahotrie/internal/app"
	"github.com/corey/ahotrie/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Manage the ahotrie daemon",
	Long: "The daemon keeps a built trie in memory and answers queries over a\n" +
		"Unix socket (scan --daemon) and an HTTP playground. Dictionary files\n" +
		"and stored dictionaries are watched and reloaded on change.",
}

var (
	daemonFlags    matchFlags
	daemonHTTPPort int
	daemonNoHTTP   bool
	daemonJSON     bool
)

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the daemon in the foreground",
	Long: "Starts the daemon with the dictionaries named by the flags, or every\n" +
		"dictionary file in .ahotrie/dict/ when none are named. Runs until\n" +
		"interrupted or stopped with 'ahotrie daemon stop'.",
	Args: cobra.NoArgs,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the daemon",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon's dictionary and uptime",
	Long:  "Shows daemon health. Exits 1 when the daemon is not running.",
	Args:  cobra.NoArgs,
	RunE:  runDaemonStatus,
}

var daemonReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Re-read the daemon's dictionaries",
	Args:  cobra.NoArgs,
	RunE:  runDaemonReload,
}

func init() {
	f := daemonStartCmd.Flags()
	daemonFlags.register(f)
	f.IntVar(&daemonHTTPPort, "http-port", 0, "HTTP playground port (default: derived from the project root)")
	f.BoolVar(&daemonNoHTTP, "no-http", false, "Do not serve the HTTP playground")

	daemonStatusCmd.Flags().BoolVar(&daemonJSON, "json", false, "Output as JSON")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonReloadCmd)
}

func daemonClient() *socket.Client {
	return socket.NewClient(socket.SocketPath(projectRoot()))
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	root := projectRoot()
	out := cmd.OutOrStdout()

	client := daemonClient()
	if client.Ping() {
		fmt.Fprintln(out, "⚡ daemon already running")
		return nil
	}

	paths := app.NewPaths(root)
	if err := paths.EnsureDirs(); err != nil {
		return fmt.Errorf("create %s: %w", paths.Root, err)
	}
	if n, err := paths.Migrate(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "[warning] migrate %s: %v\n", paths.Root, err)
	} else if n > 0 {
		logger.Logger.Printf("moved %d runtime files into %s subdirectories", n, paths.Root)
	}

	logFile, err := os.OpenFile(paths.DaemonLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open daemon log: %w", err)
	}
	defer logFile.Close()
	var logOut io.Writer = logFile
	if rootVerbose {
		logOut = io.MultiWriter(logFile, cmd.ErrOrStderr())
	}
	prev := logger.Logger
	logger.SetLogger(logger.New(logOut))
	defer logger.SetLogger(prev)

	src := daemonFlags.source()
	if src.Empty() {
		src.Files = []string{paths.DictDir}
	}

	a, err := app.New(app.Config{
		ProjectRoot: root,
		Source:      src,
		DBPath:      dbPath(),
		HTTPPort:    daemonHTTPPort,
		NoHTTP:      daemonNoHTTP,
	})
	if err != nil {
		return fmt.Errorf("init: %w", storeError(root, err))
	}
	if err := a.Start(); err != nil {
		return err
	}
	if err := os.WriteFile(paths.PIDFile, []byte(strconv.Itoa(os.Getpid())), 0644); err != nil {
		logger.Logger.Printf("write pid file: %v", err)
	}
	defer paths.CleanEphemeral()

	info := a.DictionaryInfo()
	fmt.Fprintf(out, "⚡ ahotrie daemon started at %s\n", a.Server.Addr())
	fmt.Fprintf(out, "  dictionary %s │ %d keywords │ %d states\n", info.Name, info.Keywords, info.States)
	if a.WebServer != nil && a.WebServer.Port() != 0 {
		fmt.Fprintf(out, "  playground %s\n", a.WebServer.URL())
	}

	// Wait for a signal or a shutdown request over the socket.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case <-a.Server.ShutdownCh():
	case <-cmd.Context().Done():
	}

	fmt.Fprintln(out, "\n⚡ shutting down...")
	return a.Stop()
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	client := daemonClient()
	out := cmd.OutOrStdout()

	if !client.Ping() {
		fmt.Fprintln(out, "⚡ daemon is not running")
		return nil
	}
	if err := client.Shutdown(); err != nil {
		return err
	}
	fmt.Fprintln(out, "⚡ daemon stopped")
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	client := daemonClient()
	out := cmd.OutOrStdout()

	if !client.Ping() {
		fmt.Fprintln(out, "⚡ daemon is not running")
		return errNoMatch
	}
	health, err := client.Health()
	if err != nil {
		return err
	}
	if daemonJSON {
		return writeJSON(out, health)
	}
	fmt.Fprint(out, formatHealth(health, resolveColor(rootColor)))
	return nil
}

func runDaemonReload(cmd *cobra.Command, args []string) error {
	client := daemonClient()
	if !client.Ping() {
		return fmt.Errorf("daemon is not running (start with: ahotrie daemon start)")
	}
	result, err := client.Reload()
	if err != nil {
		return err
	}
	d := result.Dictionary
	fmt.Fprintf(cmd.OutOrStdout(), "⚡ reloaded %s │ %d keywords │ %d states │ %s\n",
		d.Name, d.Keywords, d.States, result.Elapsed)
	return nil
}
